package registry

import (
	"fmt"
	"io"
	"os"

	"blocks-cms/internal/domain/schema"

	"gopkg.in/yaml.v3"
)

// Catalog is a set of model descriptors and deprecated aliases read from a
// YAML document.
type Catalog struct {
	Models  []ModelDescriptor
	Aliases map[string]string
}

type catalogFile struct {
	Models  []modelFile       `yaml:"models"`
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

type modelFile struct {
	Name           string          `yaml:"name"`
	Table          string          `yaml:"table,omitempty"`
	ContentTable   string          `yaml:"content_table,omitempty"`
	HasContent     bool            `yaml:"has_content,omitempty"`
	HasSettings    bool            `yaml:"has_settings,omitempty"`
	IsBlock        bool            `yaml:"is_block,omitempty"`
	ValueAttribute string          `yaml:"value_attribute,omitempty"`
	Attributes     []attributeFile `yaml:"attributes"`
	Relations      []relationFile  `yaml:"relations,omitempty"`
}

type attributeFile struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Required  bool   `yaml:"required,omitempty"`
	Unique    bool   `yaml:"unique,omitempty"`
	MaxLength int    `yaml:"max_length,omitempty"`
	Size      int    `yaml:"size,omitempty"`
	MinLength int    `yaml:"min_length,omitempty"`
	Min       *int64 `yaml:"min,omitempty"`
	Max       *int64 `yaml:"max,omitempty"`
	Default   any    `yaml:"default,omitempty"`
}

type relationFile struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Target     string `yaml:"target"`
	ForeignKey string `yaml:"foreign_key,omitempty"`
	Required   bool   `yaml:"required,omitempty"`
	Unique     bool   `yaml:"unique,omitempty"`
	PivotTable string `yaml:"pivot_table,omitempty"`
}

// LoadCatalog parses a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	cat := &Catalog{Aliases: f.Aliases}
	seen := make(map[string]bool)
	for i, m := range f.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("models[%d]: name is required", i)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate model name: %s", m.Name)
		}
		seen[m.Name] = true

		d := ModelDescriptor{
			Name:           m.Name,
			TableName:      m.Table,
			ContentTable:   m.ContentTable,
			HasContent:     m.HasContent,
			HasSettings:    m.HasSettings,
			IsBlock:        m.IsBlock,
			ValueAttribute: m.ValueAttribute,
			Attributes:     make(map[string]*schema.AttributeDefinition, len(m.Attributes)),
			Relations:      make(map[string]*RelationDefinition, len(m.Relations)),
		}
		for j, a := range m.Attributes {
			if a.Name == "" {
				return nil, fmt.Errorf("models[%s].attributes[%d]: name is required", m.Name, j)
			}
			if _, dup := d.Attributes[a.Name]; dup {
				return nil, fmt.Errorf("duplicate attribute '%s' in model '%s'", a.Name, m.Name)
			}
			maxLen := a.MaxLength
			if maxLen == 0 {
				maxLen = a.Size
			} else if a.Size != 0 && a.Size != a.MaxLength {
				return nil, fmt.Errorf("models[%s].attributes[%s]: size %d conflicts with max_length %d", m.Name, a.Name, a.Size, a.MaxLength)
			}
			d.Attributes[a.Name] = &schema.AttributeDefinition{
				Name:      a.Name,
				Type:      schema.AttributeType(a.Type),
				Required:  a.Required,
				Unique:    a.Unique,
				MaxLength: maxLen,
				MinLength: a.MinLength,
				Min:       a.Min,
				Max:       a.Max,
				Default:   a.Default,
			}
		}
		for j, rel := range m.Relations {
			if rel.Name == "" {
				return nil, fmt.Errorf("models[%s].relations[%d]: name is required", m.Name, j)
			}
			d.Relations[rel.Name] = &RelationDefinition{
				Name:       rel.Name,
				Kind:       RelationKind(rel.Kind),
				Target:     rel.Target,
				ForeignKey: rel.ForeignKey,
				Required:   rel.Required,
				Unique:     rel.Unique,
				PivotTable: rel.PivotTable,
			}
		}
		cat.Models = append(cat.Models, d)
	}
	return cat, nil
}

// LoadCatalogFile reads a catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Apply registers the catalog's models, then its aliases.
func (c *Catalog) Apply(r *Registry) error {
	for _, m := range c.Models {
		if _, err := r.Register(m); err != nil {
			return err
		}
	}
	for old, canonical := range c.Aliases {
		if err := r.Alias(old, canonical); err != nil {
			return err
		}
	}
	return nil
}
