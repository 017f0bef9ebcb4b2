package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Encode serializes a validated value for storage.
func Encode(def *AttributeDefinition, v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	if t, ok := v.(time.Time); ok && def.Type == TypeDate {
		return json.Marshal(t.UTC().Format(time.RFC3339Nano))
	}
	return json.Marshal(v)
}

// Decode restores a stored value to the Go type Validate produces.
func Decode(def *AttributeDefinition, data []byte) (any, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	switch def.Type {
	case TypeInteger:
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("decode %s: %w", def.Name, err)
		}
		return n, nil
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode %s: %w", def.Name, err)
		}
		return b, nil
	case TypeDate:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", def.Name, err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", def.Name, err)
		}
		return t.UTC(), nil
	case TypeJSON:
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", def.Name, err)
		}
		return out, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", def.Name, err)
	}
	return s, nil
}
