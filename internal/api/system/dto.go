package system

import (
	"blocks-cms/internal/domain/registry"
)

type AttributeDTO struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
	Unique    bool   `json:"unique,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	MinLength int    `json:"min_length,omitempty"`
	Min       *int64 `json:"min,omitempty"`
	Max       *int64 `json:"max,omitempty"`
	Default   any    `json:"default,omitempty"`
}

type RelationDTO struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	ForeignKey string `json:"foreign_key,omitempty"`
	Required   bool   `json:"required,omitempty"`
	PivotTable string `json:"pivot_table,omitempty"`
}

type ModelDTO struct {
	Name         string         `json:"name"`
	TableName    string         `json:"table"`
	ContentTable string         `json:"content_table,omitempty"`
	HasContent   bool           `json:"has_content"`
	HasSettings  bool           `json:"has_settings"`
	IsBlock      bool           `json:"is_block"`
	Attributes   []AttributeDTO `json:"attributes"`
	Relations    []RelationDTO  `json:"relations"`
}

func toModelDTO(d *registry.ModelDescriptor) ModelDTO {
	out := ModelDTO{
		Name:         d.Name,
		TableName:    d.TableName,
		ContentTable: d.ContentTable,
		HasContent:   d.HasContent,
		HasSettings:  d.HasSettings,
		IsBlock:      d.IsBlock,
		Attributes:   make([]AttributeDTO, 0, len(d.Attributes)),
		Relations:    make([]RelationDTO, 0, len(d.Relations)),
	}
	for _, n := range d.AttributeNames() {
		a := d.Attributes[n]
		out.Attributes = append(out.Attributes, AttributeDTO{
			Name:      a.Name,
			Type:      string(a.Type),
			Required:  a.Required,
			Unique:    a.Unique,
			MaxLength: a.MaxLength,
			MinLength: a.MinLength,
			Min:       a.Min,
			Max:       a.Max,
			Default:   a.Default,
		})
	}
	for _, n := range d.RelationNames() {
		r := d.Relations[n]
		out.Relations = append(out.Relations, RelationDTO{
			Name:       r.Name,
			Kind:       string(r.Kind),
			Target:     r.Target,
			ForeignKey: r.ForeignKey,
			Required:   r.Required,
			PivotTable: r.PivotTable,
		})
	}
	return out
}

type LanguageRequest struct {
	LanguageCode string `json:"language_code" binding:"required"`
}

type LicenseKeyRequest struct {
	LicenseKey string `json:"license_key"` // empty generates a key
}

type MemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type PermissionRequest struct {
	Name  string `json:"name" binding:"required"`
	Value int64  `json:"value"`
}
