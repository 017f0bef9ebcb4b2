// Package system manages installation-wide records: enabled languages, the
// info row, settings per category and license keys.
package system

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/schema"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const infoID = 1

type Service struct {
	db  *gorm.DB
	reg *registry.Registry
}

func NewService(db *gorm.DB, reg *registry.Registry) *Service {
	return &Service{db: db, reg: reg}
}

// create validates values against model, pre-checks unique attributes and
// inserts row.
func (s *Service) create(ctx context.Context, model string, values map[string]any, row any) (map[string]any, error) {
	d, err := s.reg.Resolve(model)
	if err != nil {
		return nil, err
	}
	clean, err := registry.ValidateRecord(d, values)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := records.CheckUnique(tx, d, clean, 0); err != nil {
			return err
		}
		return records.TranslateError(d.TableName, tx.Create(row).Error)
	})
	return clean, err
}

func (s *Service) AddLanguage(ctx context.Context, code string) (*Language, error) {
	l := Language{LanguageCode: code}
	if _, err := s.create(ctx, catalog.Language, map[string]any{"language_code": code}, &l); err != nil {
		return nil, err
	}
	log.Info().Str("lang", code).Msg("language added")
	return &l, nil
}

func (s *Service) Languages(ctx context.Context) ([]Language, error) {
	var out []Language
	err := s.db.WithContext(ctx).Order("language_code ASC").Find(&out).Error
	return out, err
}

// RemoveLanguage disables a language and drops every content value stored
// in it.
func (s *Service) RemoveLanguage(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("language_code = ?", code).Delete(&Language{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("language", code)
		}
		for _, table := range s.reg.ContentTables() {
			if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(table)+" WHERE language_code = ?", code).Error; err != nil {
				return err
			}
		}
		log.Info().Str("lang", code).Msg("language removed")
		return nil
	})
}

func (s *Service) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := s.db.WithContext(ctx).First(&info, "id = ?", infoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("info", infoID)
		}
		return nil, err
	}
	return &info, nil
}

// SetInfo validates and stores the info row, replacing any previous one.
func (s *Service) SetInfo(ctx context.Context, values map[string]any) (*Info, error) {
	d, err := s.reg.Resolve(catalog.Info)
	if err != nil {
		return nil, err
	}
	clean, err := registry.ValidateRecord(d, values)
	if err != nil {
		return nil, err
	}
	info := Info{
		ID:          infoID,
		Version:     clean["version"].(string),
		Build:       clean["build"].(string),
		ReleaseDate: clean["release_date"].(time.Time),
	}
	if on, ok := clean["on"].(bool); ok {
		info.On = on
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "build", "release_date", "on", "updated_at"}),
	}).Create(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// PutSettings stores the settings object of category, replacing it.
func (s *Service) PutSettings(ctx context.Context, category string, settings map[string]any) (*Setting, error) {
	d, err := s.reg.Resolve(catalog.SystemSettings)
	if err != nil {
		return nil, err
	}
	values := map[string]any{"category": category, "settings": settings}
	if settings == nil {
		values["settings"] = map[string]any{}
	}
	clean, err := registry.ValidateRecord(d, values)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(clean["settings"])
	if err != nil {
		return nil, err
	}
	row := Setting{Category: clean["category"].(string), Settings: datatypes.JSON(b)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, records.TranslateError(d.TableName, err)
	}
	return &row, nil
}

// Settings returns the settings object of category.
func (s *Service) Settings(ctx context.Context, category string) (map[string]any, error) {
	var row Setting
	if err := s.db.WithContext(ctx).First(&row, "category = ?", category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("settings", category)
		}
		return nil, err
	}
	out := map[string]any{}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddLicenseKey stores key, or a freshly generated one when key is empty.
func (s *Service) AddLicenseKey(ctx context.Context, key string) (*LicenseKey, error) {
	if key == "" {
		key = schema.NewLicenseKey()
	}
	lk := LicenseKey{LicenseKey: key}
	if _, err := s.create(ctx, catalog.LicenseKeys, map[string]any{"license_key": key}, &lk); err != nil {
		return nil, err
	}
	return &lk, nil
}

func (s *Service) LicenseKeys(ctx context.Context) ([]LicenseKey, error) {
	var out []LicenseKey
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (s *Service) RemoveLicenseKey(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("license_key = ?", key).Delete(&LicenseKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("license key", key)
	}
	return nil
}
