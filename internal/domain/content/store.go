// Package content stores per-owner, per-language block values in the
// content table of each hasContent model.
package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one stored value. There is at most one per
// (owner, language, block).
type Record struct {
	OwnerID      uint            `gorm:"primaryKey;autoIncrement:false" json:"owner_id"`
	LanguageCode string          `gorm:"primaryKey;size:12" json:"language_code"`
	BlockID      uint            `gorm:"primaryKey;autoIncrement:false" json:"block_id"`
	Value        schema.RawValue `json:"value"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Migrate creates or updates the content table of d.
func Migrate(db *gorm.DB, d *registry.ModelDescriptor) error {
	if !d.HasContent {
		return fmt.Errorf("model %s has no content", d.Name)
	}
	return db.Table(d.ContentTable).AutoMigrate(&Record{})
}

// Store reads and writes content of one owner model.
type Store struct {
	db     *gorm.DB
	model  *registry.ModelDescriptor
	blocks *blocks.Service
}

func NewStore(db *gorm.DB, reg *registry.Registry, model string, bs *blocks.Service) (*Store, error) {
	d, err := reg.Resolve(model)
	if err != nil {
		return nil, err
	}
	if !d.HasContent {
		return nil, fmt.Errorf("model %s does not carry content: %w", d.Name, errs.ErrNotFound)
	}
	return &Store{db: db, model: d, blocks: bs}, nil
}

// WithTx returns a store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	c := *s
	c.db = tx
	return &c
}

func (s *Store) Model() *registry.ModelDescriptor { return s.model }

func (s *Store) Table() string { return s.model.ContentTable }

func (s *Store) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.model.ContentTable)
}

// Rows returns the raw stored rows of owner in lang ordered by block.
func (s *Store) Rows(ctx context.Context, ownerID uint, lang string) ([]Record, error) {
	var rows []Record
	err := s.table(ctx).
		Where("owner_id = ? AND language_code = ?", ownerID, lang).
		Order("block_id ASC").
		Find(&rows).Error
	return rows, err
}

// Get returns every value of owner in lang keyed by block id. An owner with
// nothing stored yields an empty map.
func (s *Store) Get(ctx context.Context, ownerID uint, lang string) (map[uint]any, error) {
	rows, err := s.Rows(ctx, ownerID, lang)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]any, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.BlockID)
	}
	fields, err := s.blocks.Fields(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		v, err := fields[r.BlockID].Shape.Decode(r.Value)
		if err != nil {
			return nil, fmt.Errorf("%s owner %d block %d: %w", s.model.ContentTable, ownerID, r.BlockID, err)
		}
		out[r.BlockID] = v
	}
	return out, nil
}

// Set validates value against the block and upserts it.
func (s *Store) Set(ctx context.Context, ownerID uint, lang string, blockID uint, value any) error {
	return s.SetMany(ctx, ownerID, lang, map[uint]any{blockID: value})
}

// SetMany validates every value first and writes nothing if any fails.
func (s *Store) SetMany(ctx context.Context, ownerID uint, lang string, values map[uint]any) error {
	if !schema.ValidLanguageCode(lang) {
		return errs.ValidationErrors{errs.Invalid("language_code", "%q is not a valid language code", lang)}
	}
	if len(values) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fields, err := s.blocks.Fields(ctx, s.db, ids)
	if err != nil {
		return err
	}

	rows := make([]Record, 0, len(ids))
	var failures errs.ValidationErrors
	for _, id := range ids {
		f := fields[id]
		v, err := f.Shape.Validate(values[id])
		if err != nil {
			failures.Add(f.Handle, err)
			continue
		}
		raw, err := f.Shape.Encode(v)
		if err != nil {
			failures.Add(f.Handle, err)
			continue
		}
		rows = append(rows, Record{OwnerID: ownerID, LanguageCode: lang, BlockID: id, Value: raw})
	}
	if err := failures.Err(); err != nil {
		return err
	}
	return s.upsert(ctx, rows)
}

// Replace makes values the complete content of owner in lang: values are
// upserted as in SetMany and every other block value in lang is removed.
func (s *Store) Replace(ctx context.Context, ownerID uint, lang string, values map[uint]any) error {
	if err := s.SetMany(ctx, ownerID, lang, values); err != nil {
		return err
	}
	q := s.table(ctx).Where("owner_id = ? AND language_code = ?", ownerID, lang)
	if len(values) > 0 {
		keep := make([]uint, 0, len(values))
		for id := range values {
			keep = append(keep, id)
		}
		q = q.Where("block_id NOT IN ?", keep)
	}
	return q.Delete(&Record{}).Error
}

// Copy writes already encoded rows as they are.
func (s *Store) Copy(ctx context.Context, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	return s.upsert(ctx, rows)
}

func (s *Store) upsert(ctx context.Context, rows []Record) error {
	err := s.table(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "language_code"}, {Name: "block_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	return records.TranslateError(s.model.ContentTable, err)
}

// DeleteOwner removes all content of owner in every language.
func (s *Store) DeleteOwner(ctx context.Context, ownerID uint) error {
	return s.table(ctx).Where("owner_id = ?", ownerID).Delete(&Record{}).Error
}

// DeleteBlock removes one value of owner in lang.
func (s *Store) DeleteBlock(ctx context.Context, ownerID uint, lang string, blockID uint) error {
	res := s.table(ctx).
		Where("owner_id = ? AND language_code = ? AND block_id = ?", ownerID, lang, blockID).
		Delete(&Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("content", fmt.Sprintf("%d/%s/%d", ownerID, lang, blockID))
	}
	return nil
}

// DeleteLanguage removes every value stored in lang.
func (s *Store) DeleteLanguage(ctx context.Context, lang string) error {
	return s.table(ctx).Where("language_code = ?", lang).Delete(&Record{}).Error
}

// Languages lists the languages owner has content in.
func (s *Store) Languages(ctx context.Context, ownerID uint) ([]string, error) {
	var langs []string
	err := s.table(ctx).
		Where("owner_id = ?", ownerID).
		Distinct("language_code").
		Order("language_code ASC").
		Pluck("language_code", &langs).Error
	return langs, err
}
