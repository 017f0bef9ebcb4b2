package registry

import (
	"sort"

	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/schema"
)

// ValidateRecord validates a full row of model d. Every attribute and
// required relation is checked and all failures are returned together.
// Keys that are neither attributes nor relation foreign keys are rejected.
func ValidateRecord(d *ModelDescriptor, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	var failures errs.ValidationErrors

	for _, n := range d.AttributeNames() {
		v, err := schema.Validate(d.Attributes[n], values[n])
		if err != nil {
			failures.Add(n, err)
			continue
		}
		if v != nil {
			out[n] = v
		}
	}

	fks := make(map[string]bool)
	for _, rel := range d.Relations {
		if rel.Kind == BelongsTo || rel.Kind == HasOne {
			fks[rel.ForeignKey] = true
		}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := values[k]
		if _, ok := d.Attributes[k]; ok {
			continue
		}
		if fks[k] {
			out[k] = v
			continue
		}
		failures = append(failures, errs.Invalid(k, "unknown attribute of %s", d.Name))
	}

	if err := CheckRelations(d, values); err != nil {
		failures.Add("", err)
	}
	if err := failures.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
