package blocks

import (
	"time"

	"blocks-cms/internal/domain/schema"

	"gorm.io/datatypes"
)

// Block is one configured custom field: an instance of a registered block
// model, attachable to owners through layouts.
type Block struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Handle       string         `gorm:"size:64;not null;uniqueIndex:idx_blocks_handle" json:"handle"`
	Model        string         `gorm:"size:150;not null;index" json:"model"`
	Required     bool           `gorm:"not null;default:false" json:"required"`
	Translatable bool           `gorm:"not null;default:false" json:"translatable"`
	Title        bool           `gorm:"not null;default:false" json:"title"`
	Instructions string         `json:"instructions,omitempty"`
	Settings     datatypes.JSON `gorm:"not null" json:"settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field is a block together with the shape of the value it stores.
type Field struct {
	*Block
	Shape schema.Shape
}
