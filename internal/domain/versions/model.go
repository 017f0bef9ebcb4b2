package versions

import (
	"time"

	"blocks-cms/internal/domain/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Draft is a mutable working copy of one entry's content in one language.
type Draft struct {
	ID              string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID         uint         `gorm:"not null;index" json:"owner_id"`
	LanguageCode    string       `gorm:"size:12;not null" json:"language_code"`
	ParentVersionID *string      `gorm:"type:varchar(36)" json:"parent_version_id,omitempty"`
	Contents        []DraftValue `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	Values map[uint]any `gorm:"-" json:"values"`
}

type DraftValue struct {
	DraftID string          `gorm:"type:varchar(36);primaryKey" json:"-"`
	BlockID uint            `gorm:"primaryKey;autoIncrement:false" json:"block_id"`
	Value   schema.RawValue `json:"value"`
	Title   bool            `gorm:"not null;default:false" json:"title"`
}

// Version is an immutable published snapshot. Num counts from 1 per owner.
type Version struct {
	ID              string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID         uint           `gorm:"not null;uniqueIndex:idx_entryversions_owner_num" json:"owner_id"`
	Num             int            `gorm:"not null;uniqueIndex:idx_entryversions_owner_num" json:"num"`
	LanguageCode    string         `gorm:"size:12;not null" json:"language_code"`
	ParentVersionID *string        `gorm:"type:varchar(36)" json:"parent_version_id,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Contents        []VersionValue `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`

	Values map[uint]any `gorm:"-" json:"values"`
}

type VersionValue struct {
	VersionID string          `gorm:"type:varchar(36);primaryKey" json:"-"`
	BlockID   uint            `gorm:"primaryKey;autoIncrement:false" json:"block_id"`
	Value     schema.RawValue `json:"value"`
	Title     bool            `gorm:"not null;default:false" json:"title"`
}

func (Draft) TableName() string        { return "drafts" }
func (DraftValue) TableName() string   { return "draftcontent" }
func (Version) TableName() string      { return "entryversions" }
func (VersionValue) TableName() string { return "entryversioncontent" }

func (d *Draft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (v *Version) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Models lists the tables of this package for migration.
func Models() []any {
	return []any{&Draft{}, &DraftValue{}, &Version{}, &VersionValue{}}
}
