package database

import (
	"fmt"

	"blocks-cms/config"
	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/content"
	"blocks-cms/internal/domain/layouts"
	"blocks-cms/internal/domain/owners"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/system"
	"blocks-cms/internal/domain/usergroups"
	"blocks-cms/internal/domain/versions"
	"blocks-cms/logging"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB connects to postgres with config.DB_URL and migrates every table
// reg describes.
func InitDB(reg *registry.Registry) {
	if config.DB_URL == "" {
		log.Fatal().Msg("DB_URL not set")
	}

	db, err := Open(postgres.Open(config.DB_URL), config.DB_DEBUG)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	DB = db

	if err := Migrate(DB, reg); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate failed")
	}

	log.Info().Int("models", len(reg.Names())).Msg("connected and migrated")
}

// Open opens a GORM handle with the engine's settings on any dialector.
func Open(dialector gorm.Dialector, trace bool) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logging.NewGormLogger(trace),
	})
}

// Migrate creates the fixed tables, then one content table per hasContent
// model and one pivot table per pivotMany relation.
func Migrate(db *gorm.DB, reg *registry.Registry) error {
	models := []any{&blocks.Block{}}
	models = append(models, owners.Models()...)
	models = append(models, system.Models()...)
	models = append(models, usergroups.Models()...)
	models = append(models, versions.Models()...)

	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	for _, m := range reg.Models() {
		if !m.HasContent {
			continue
		}
		if err := content.Migrate(db, m); err != nil {
			return fmt.Errorf("content table %s: %w", m.ContentTable, err)
		}
	}
	for _, p := range reg.PivotTables() {
		if err := layouts.Migrate(db, p); err != nil {
			return fmt.Errorf("pivot table %s: %w", p.Table, err)
		}
	}
	return nil
}
