package system

import (
	"time"

	"gorm.io/datatypes"
)

type Language struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	LanguageCode string    `gorm:"size:12;not null;uniqueIndex:idx_languages_code" json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// Info is the installation record. There is at most one row.
type Info struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Version     string    `gorm:"size:15;not null" json:"version"`
	Build       string    `gorm:"size:15;not null" json:"build"`
	ReleaseDate time.Time `gorm:"not null" json:"release_date"`
	On          bool      `gorm:"column:on;not null;default:false" json:"on"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Setting struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	Category  string         `gorm:"size:15;not null;uniqueIndex:idx_systemsettings_category" json:"category"`
	Settings  datatypes.JSON `gorm:"not null" json:"settings"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type LicenseKey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LicenseKey string    `gorm:"size:36;not null;uniqueIndex:idx_licensekeys_key" json:"license_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Language) TableName() string   { return "languages" }
func (Info) TableName() string       { return "info" }
func (Setting) TableName() string    { return "systemsettings" }
func (LicenseKey) TableName() string { return "licensekeys" }

func Models() []any {
	return []any{&Language{}, &Info{}, &Setting{}, &LicenseKey{}}
}
