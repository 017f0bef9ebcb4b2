package registry

import (
	"fmt"

	"blocks-cms/internal/domain/errs"
)

// ResolvedRelation is a relation with both ends looked up.
type ResolvedRelation struct {
	*RelationDefinition
	Owner  *ModelDescriptor
	Target *ModelDescriptor
}

// PivotSpec describes the association table behind a pivotMany relation.
type PivotSpec struct {
	Table       string
	OwnerColumn string
	BlockColumn string
	OrderColumn string
}

// Pivot returns the association table; ok is false for other kinds.
func (rr *ResolvedRelation) Pivot() (PivotSpec, bool) {
	if rr.Kind != PivotMany {
		return PivotSpec{}, false
	}
	return PivotSpec{
		Table:       rr.PivotTable,
		OwnerColumn: PivotOwnerColumn,
		BlockColumn: PivotBlockColumn,
		OrderColumn: PivotOrderColumn,
	}, true
}

// ResolveRelation looks up one relation of model against the registry.
func (r *Registry) ResolveRelation(model, name string) (*ResolvedRelation, error) {
	owner, err := r.Resolve(model)
	if err != nil {
		return nil, err
	}
	rel, ok := owner.Relations[name]
	if !ok {
		return nil, fmt.Errorf("model %s has no relation %q: %w", owner.Name, name, errs.ErrNotFound)
	}
	return r.resolveRelation(owner, rel)
}

// ResolveRelations checks every declared relation of every model.
func (r *Registry) ResolveRelations() error {
	for _, m := range r.Models() {
		for _, n := range m.RelationNames() {
			if _, err := r.resolveRelation(m, m.Relations[n]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) resolveRelation(owner *ModelDescriptor, rel *RelationDefinition) (*ResolvedRelation, error) {
	target, err := r.Resolve(rel.Target)
	if err != nil {
		return nil, fmt.Errorf("%s.%s -> %s: %w", owner.Name, rel.Name, rel.Target, errs.ErrUnknownRelationTarget)
	}

	switch rel.Kind {
	case HasMany:
		if !declaresForeignKey(target, rel.ForeignKey) {
			return nil, fmt.Errorf("%s.%s: target %s does not declare inverse foreign key %q",
				owner.Name, rel.Name, target.Name, rel.ForeignKey)
		}
	case PivotMany:
		if !target.IsBlock && target.TableName != "blocks" {
			return nil, fmt.Errorf("%s.%s: pivot target %s is not a block model", owner.Name, rel.Name, target.Name)
		}
	}
	return &ResolvedRelation{RelationDefinition: rel, Owner: owner, Target: target}, nil
}

func declaresForeignKey(m *ModelDescriptor, fk string) bool {
	if _, ok := m.Attributes[fk]; ok {
		return true
	}
	for _, rel := range m.Relations {
		if (rel.Kind == BelongsTo || rel.Kind == HasOne) && rel.ForeignKey == fk {
			return true
		}
	}
	return false
}

// CheckRelations verifies that every required belongsTo/hasOne relation has
// a concrete foreign key value in values.
func CheckRelations(d *ModelDescriptor, values map[string]any) error {
	var failures errs.ValidationErrors
	for _, n := range d.RelationNames() {
		rel := d.Relations[n]
		if !rel.Required || (rel.Kind != BelongsTo && rel.Kind != HasOne) {
			continue
		}
		if IsZeroKey(values[rel.ForeignKey]) {
			failures = append(failures, errs.MissingRelation(rel.Name))
		}
	}
	return failures.Err()
}

// IsZeroKey reports whether v is an unset foreign key value.
func IsZeroKey(v any) bool {
	switch k := v.(type) {
	case nil:
		return true
	case string:
		return k == ""
	case int:
		return k == 0
	case int64:
		return k == 0
	case uint:
		return k == 0
	case uint64:
		return k == 0
	case float64:
		return k == 0
	case *uint:
		return k == nil || *k == 0
	case *string:
		return k == nil || *k == ""
	}
	return false
}

// LayoutPath reports where the block layout of model lives. via is nil when
// the model carries its own pivot relation; otherwise via is the belongsTo
// relation leading to the model that does. pivot is nil when the model has
// no layout at all.
func (r *Registry) LayoutPath(model string) (via *RelationDefinition, pivot *ResolvedRelation, err error) {
	d, err := r.Resolve(model)
	if err != nil {
		return nil, nil, err
	}
	if rel, ok := d.PivotRelation(); ok {
		rr, err := r.resolveRelation(d, rel)
		return nil, rr, err
	}
	for _, n := range d.RelationNames() {
		rel := d.Relations[n]
		if rel.Kind != BelongsTo {
			continue
		}
		parent, err := r.Resolve(rel.Target)
		if err != nil {
			return nil, nil, fmt.Errorf("%s.%s: %w", d.Name, rel.Name, errs.ErrUnknownRelationTarget)
		}
		if prel, ok := parent.PivotRelation(); ok {
			rr, err := r.resolveRelation(parent, prel)
			return rel, rr, err
		}
	}
	return nil, nil, nil
}

// Pivot returns the association table of model's own pivotMany relation.
func (r *Registry) Pivot(model string) (PivotSpec, error) {
	d, err := r.Resolve(model)
	if err != nil {
		return PivotSpec{}, err
	}
	rel, ok := d.PivotRelation()
	if !ok {
		return PivotSpec{}, fmt.Errorf("model %s has no block layout: %w", d.Name, errs.ErrNotFound)
	}
	rr, err := r.resolveRelation(d, rel)
	if err != nil {
		return PivotSpec{}, err
	}
	spec, _ := rr.Pivot()
	return spec, nil
}

// PivotTables lists every association table declared in the registry.
func (r *Registry) PivotTables() []PivotSpec {
	var out []PivotSpec
	for _, m := range r.Models() {
		if rel, ok := m.PivotRelation(); ok {
			out = append(out, PivotSpec{
				Table:       rel.PivotTable,
				OwnerColumn: PivotOwnerColumn,
				BlockColumn: PivotBlockColumn,
				OrderColumn: PivotOrderColumn,
			})
		}
	}
	return out
}

// ContentTables lists the content table of every hasContent model.
func (r *Registry) ContentTables() []string {
	var out []string
	for _, m := range r.Models() {
		if m.HasContent {
			out = append(out, m.ContentTable)
		}
	}
	return out
}
