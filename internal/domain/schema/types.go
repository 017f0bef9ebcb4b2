package schema

import "fmt"

type AttributeType string

const (
	TypeString     AttributeType = "string"
	TypeText       AttributeType = "text"
	TypeName       AttributeType = "name"
	TypeVarchar    AttributeType = "varchar"
	TypeInteger    AttributeType = "integer"
	TypeBoolean    AttributeType = "boolean"
	TypeDate       AttributeType = "date"
	TypeJSON       AttributeType = "json"
	TypeVersion    AttributeType = "version"
	TypeBuild      AttributeType = "build"
	TypeLanguage   AttributeType = "language_code"
	TypeURL        AttributeType = "url"
	TypeLicenseKey AttributeType = "license_key"
)

const licenseKeySize = 36

var knownTypes = map[AttributeType]bool{
	TypeString: true, TypeText: true, TypeName: true, TypeVarchar: true,
	TypeInteger: true, TypeBoolean: true, TypeDate: true, TypeJSON: true,
	TypeVersion: true, TypeBuild: true, TypeLanguage: true, TypeURL: true,
	TypeLicenseKey: true,
}

// Known reports whether t is a supported attribute type.
func (t AttributeType) Known() bool { return knownTypes[t] }

// IsText reports whether values of t are length-bounded strings.
func (t AttributeType) IsText() bool {
	switch t {
	case TypeString, TypeText, TypeName, TypeVarchar:
		return true
	}
	return false
}

// AttributeDefinition describes one typed field of a model.
// MaxLength also carries the "size" constraint.
type AttributeDefinition struct {
	Name      string
	Type      AttributeType
	Required  bool
	Unique    bool
	MaxLength int
	MinLength int
	Min       *int64
	Max       *int64
	Default   any
}

// Check verifies the definition itself is coherent.
func (d *AttributeDefinition) Check() error {
	if d.Name == "" {
		return fmt.Errorf("attribute name is required")
	}
	if !d.Type.Known() {
		return fmt.Errorf("attribute %q: unknown type %q", d.Name, d.Type)
	}
	if d.MaxLength < 0 || d.MinLength < 0 {
		return fmt.Errorf("attribute %q: lengths must be >= 0", d.Name)
	}
	if d.MaxLength > 0 && d.MinLength > d.MaxLength {
		return fmt.Errorf("attribute %q: min length %d exceeds max length %d", d.Name, d.MinLength, d.MaxLength)
	}
	if d.Min != nil && d.Max != nil && *d.Max < *d.Min {
		return fmt.Errorf("attribute %q: max must be >= min", d.Name)
	}
	if d.Default != nil {
		if _, err := Validate(d, d.Default); err != nil {
			return fmt.Errorf("attribute %q: invalid default: %w", d.Name, err)
		}
	}
	return nil
}

// Bound returns a pointer to n, for Min/Max literals.
func Bound(n int64) *int64 { return &n }
