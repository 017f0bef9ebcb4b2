package schema

import (
	"encoding/json"
	"sort"

	"blocks-cms/internal/domain/errs"
)

// Shape is the value a block holds per owner: either one attribute (Single)
// or an object with one member per attribute (Fields).
type Shape struct {
	Single *AttributeDefinition
	Fields []*AttributeDefinition
}

// Validate normalizes raw against the shape.
func (s Shape) Validate(raw any) (any, error) {
	if s.Single != nil {
		return Validate(s.Single, raw)
	}
	obj, err := asObject(raw)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(s.Fields))
	out := make(map[string]any, len(s.Fields))
	var failures errs.ValidationErrors
	for _, def := range s.Fields {
		known[def.Name] = true
		v, err := Validate(def, obj[def.Name])
		if err != nil {
			failures.Add(def.Name, err)
			continue
		}
		if v != nil {
			out[def.Name] = v
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			failures = append(failures, errs.Invalid(k, "unknown attribute"))
		}
	}
	if err := failures.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Empty reports whether v counts as no value for a required block.
func (s Shape) Empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func (s Shape) Encode(v any) ([]byte, error) {
	if s.Single != nil {
		return Encode(s.Single, v)
	}
	obj, _ := v.(map[string]any)
	members := make(map[string]json.RawMessage, len(obj))
	for _, def := range s.Fields {
		fv, ok := obj[def.Name]
		if !ok {
			continue
		}
		b, err := Encode(def, fv)
		if err != nil {
			return nil, err
		}
		members[def.Name] = b
	}
	return json.Marshal(members)
}

func (s Shape) Decode(data []byte) (any, error) {
	if s.Single != nil {
		return Decode(s.Single, data)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(members))
	for _, def := range s.Fields {
		b, ok := members[def.Name]
		if !ok {
			continue
		}
		v, err := Decode(def, b)
		if err != nil {
			return nil, err
		}
		out[def.Name] = v
	}
	return out, nil
}

func asObject(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, errs.Invalid("", "expected an object: %v", err)
		}
		return out, nil
	}
	return nil, errs.Invalid("", "expected an object, got %T", raw)
}
