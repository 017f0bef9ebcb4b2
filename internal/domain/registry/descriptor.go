package registry

import (
	"fmt"
	"sort"
	"strings"

	"blocks-cms/internal/domain/schema"
)

type RelationKind string

const (
	BelongsTo RelationKind = "belongsTo"
	HasOne    RelationKind = "hasOne"
	HasMany   RelationKind = "hasMany"
	PivotMany RelationKind = "pivotMany"
)

// Pivot column names shared by every association table.
const (
	PivotOwnerColumn = "owner_id"
	PivotBlockColumn = "block_id"
	PivotOrderColumn = "sort_index"
)

type RelationDefinition struct {
	Name       string
	Kind       RelationKind
	Target     string
	ForeignKey string
	Required   bool
	Unique     bool
	// PivotTable is only used by PivotMany.
	PivotTable string
}

// ModelDescriptor is the single description of an entity: its table, typed
// attributes, relations and capability flags. Descriptors handed out by a
// Registry are shared and must not be modified.
type ModelDescriptor struct {
	Name         string
	TableName    string
	ContentTable string
	Attributes   map[string]*schema.AttributeDefinition
	Relations    map[string]*RelationDefinition

	HasContent  bool
	HasSettings bool
	IsBlock     bool

	// ValueAttribute names the attribute a block's per-owner value is
	// validated against. Empty means "the only attribute" or, with several
	// attributes, an object value.
	ValueAttribute string
}

func (d *ModelDescriptor) Attribute(name string) (*schema.AttributeDefinition, bool) {
	a, ok := d.Attributes[name]
	return a, ok
}

func (d *ModelDescriptor) Relation(name string) (*RelationDefinition, bool) {
	r, ok := d.Relations[name]
	return r, ok
}

// AttributeNames returns attribute names in sorted order.
func (d *ModelDescriptor) AttributeNames() []string {
	names := make([]string, 0, len(d.Attributes))
	for n := range d.Attributes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RelationNames returns relation names in sorted order.
func (d *ModelDescriptor) RelationNames() []string {
	names := make([]string, 0, len(d.Relations))
	for n := range d.Relations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PivotRelation returns the model's many-to-many block relation, if any.
func (d *ModelDescriptor) PivotRelation() (*RelationDefinition, bool) {
	for _, n := range d.RelationNames() {
		if r := d.Relations[n]; r.Kind == PivotMany {
			return r, true
		}
	}
	return nil, false
}

// ValueShape is the shape of the value a block model stores per owner.
func (d *ModelDescriptor) ValueShape() (schema.Shape, error) {
	if !d.IsBlock {
		return schema.Shape{}, fmt.Errorf("model %s is not a block", d.Name)
	}
	if d.ValueAttribute != "" {
		a, ok := d.Attributes[d.ValueAttribute]
		if !ok {
			return schema.Shape{}, fmt.Errorf("model %s: value attribute %q not declared", d.Name, d.ValueAttribute)
		}
		return schema.Shape{Single: a}, nil
	}
	names := d.AttributeNames()
	switch len(names) {
	case 0:
		return schema.Shape{}, fmt.Errorf("block model %s declares no attributes", d.Name)
	case 1:
		return schema.Shape{Single: d.Attributes[names[0]]}, nil
	}
	fields := make([]*schema.AttributeDefinition, 0, len(names))
	for _, n := range names {
		fields = append(fields, d.Attributes[n])
	}
	return schema.Shape{Fields: fields}, nil
}

// normalize fills derived names and checks the descriptor in isolation.
func (d *ModelDescriptor) normalize() error {
	if d.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if d.TableName == "" {
		d.TableName = strings.ToLower(d.Name)
	}
	if d.HasContent && d.ContentTable == "" {
		d.ContentTable = strings.TrimSuffix(d.TableName, "s") + "content"
	}
	if d.Attributes == nil {
		d.Attributes = map[string]*schema.AttributeDefinition{}
	}
	if d.Relations == nil {
		d.Relations = map[string]*RelationDefinition{}
	}
	for key, a := range d.Attributes {
		if a == nil {
			return fmt.Errorf("model %s: attribute %q is nil", d.Name, key)
		}
		if a.Name == "" {
			a.Name = key
		}
		if a.Name != key {
			return fmt.Errorf("model %s: attribute key %q does not match name %q", d.Name, key, a.Name)
		}
		if err := a.Check(); err != nil {
			return fmt.Errorf("model %s: %w", d.Name, err)
		}
	}
	for key, r := range d.Relations {
		if r == nil {
			return fmt.Errorf("model %s: relation %q is nil", d.Name, key)
		}
		if r.Name == "" {
			r.Name = key
		}
		if r.Name != key {
			return fmt.Errorf("model %s: relation key %q does not match name %q", d.Name, key, r.Name)
		}
		switch r.Kind {
		case BelongsTo, HasOne, HasMany:
			if r.ForeignKey == "" {
				return fmt.Errorf("model %s: relation %s needs a foreign key", d.Name, key)
			}
		case PivotMany:
			if r.PivotTable == "" {
				r.PivotTable = strings.TrimSuffix(d.TableName, "s") + "blocks"
			}
		default:
			return fmt.Errorf("model %s: relation %s has unknown kind %q", d.Name, key, r.Kind)
		}
		if r.Target == "" {
			return fmt.Errorf("model %s: relation %s needs a target", d.Name, key)
		}
	}
	if d.IsBlock {
		if _, err := d.ValueShape(); err != nil {
			return err
		}
	}
	return nil
}

func (d *ModelDescriptor) clone() *ModelDescriptor {
	out := *d
	out.Attributes = make(map[string]*schema.AttributeDefinition, len(d.Attributes))
	for k, a := range d.Attributes {
		if a == nil {
			out.Attributes[k] = nil
			continue
		}
		cp := *a
		out.Attributes[k] = &cp
	}
	out.Relations = make(map[string]*RelationDefinition, len(d.Relations))
	for k, r := range d.Relations {
		if r == nil {
			out.Relations[k] = nil
			continue
		}
		cp := *r
		out.Relations[k] = &cp
	}
	return &out
}
