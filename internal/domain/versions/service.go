// Package versions implements entry drafts and published versions. A draft
// is edited freely; publishing writes its values to the entry's live
// content and records an immutable, numbered snapshot, all in one
// transaction.
package versions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/content"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/layouts"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/schema"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db              *gorm.DB
	blocks          *blocks.Service
	layouts         *layouts.Service
	content         *content.Store
	defaultLanguage string
}

func NewService(db *gorm.DB, reg *registry.Registry, bs *blocks.Service, ls *layouts.Service, defaultLanguage string) (*Service, error) {
	store, err := content.NewStore(db, reg, catalog.Entry, bs)
	if err != nil {
		return nil, err
	}
	if !schema.ValidLanguageCode(defaultLanguage) {
		return nil, fmt.Errorf("default language %q is not a valid language code", defaultLanguage)
	}
	// a deleted block drops out of open drafts; versions keep their rows
	bs.OnDelete(func(tx *gorm.DB, blockID uint) error {
		return tx.Where("block_id = ?", blockID).Delete(&DraftValue{}).Error
	})
	return &Service{db: db, blocks: bs, layouts: ls, content: store, defaultLanguage: defaultLanguage}, nil
}

// DeleteOwner removes every draft and version of an entry. It matches
// owners.CascadeFunc and runs inside the entry's delete transaction.
func (s *Service) DeleteOwner(tx *gorm.DB, ownerID uint) error {
	drafts := tx.Model(&Draft{}).Select("id").Where("owner_id = ?", ownerID)
	if err := tx.Where("draft_id IN (?)", drafts).Delete(&DraftValue{}).Error; err != nil {
		return err
	}
	if err := tx.Where("owner_id = ?", ownerID).Delete(&Draft{}).Error; err != nil {
		return err
	}
	versions := tx.Model(&Version{}).Select("id").Where("owner_id = ?", ownerID)
	if err := tx.Where("version_id IN (?)", versions).Delete(&VersionValue{}).Error; err != nil {
		return err
	}
	return tx.Where("owner_id = ?", ownerID).Delete(&Version{}).Error
}

func (s *Service) ownerExists(tx *gorm.DB, ownerID uint) (bool, error) {
	var n int64
	err := tx.Table(s.content.Model().TableName).Where("id = ?", ownerID).Count(&n).Error
	return n > 0, err
}

// Content exposes the live entry content store.
func (s *Service) Content() *content.Store { return s.content }

type draftOptions struct {
	language    string
	fromVersion string
}

type DraftOption func(*draftOptions)

// InLanguage picks the draft's language. Defaults to the configured default
// language, or the source version's language.
func InLanguage(code string) DraftOption {
	return func(o *draftOptions) { o.language = code }
}

// FromVersion seeds the draft from a published version instead of the
// current live content.
func FromVersion(id string) DraftOption {
	return func(o *draftOptions) { o.fromVersion = id }
}

// CreateDraft opens a new draft of owner.
func (s *Service) CreateDraft(ctx context.Context, ownerID uint, opts ...DraftOption) (*Draft, error) {
	var o draftOptions
	for _, opt := range opts {
		opt(&o)
	}
	if ownerID == 0 {
		return nil, errs.ValidationErrors{errs.MissingRelation("owner")}
	}

	var d Draft
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ok, err := s.ownerExists(tx, ownerID); err != nil {
			return err
		} else if !ok {
			return errs.NotFound(catalog.Entry, ownerID)
		}
		d = Draft{OwnerID: ownerID, LanguageCode: o.language}

		if o.fromVersion != "" {
			v, err := loadVersion(tx, o.fromVersion)
			if err != nil {
				return err
			}
			if v.OwnerID != ownerID {
				return errs.ValidationErrors{errs.Invalid("version", "version %s belongs to owner %d", v.ID, v.OwnerID)}
			}
			if d.LanguageCode == "" {
				d.LanguageCode = v.LanguageCode
			} else if d.LanguageCode != v.LanguageCode {
				return errs.ValidationErrors{errs.Invalid("language_code", "version %s is in %s", v.ID, v.LanguageCode)}
			}
			d.ParentVersionID = &v.ID
			ids := make([]uint, 0, len(v.Contents))
			for _, c := range v.Contents {
				ids = append(ids, c.BlockID)
			}
			fields, err := s.blocks.ExistingFields(ctx, tx, ids)
			if err != nil {
				return err
			}
			for _, c := range v.Contents {
				// values of deleted blocks stay in the version only
				if _, ok := fields[c.BlockID]; !ok {
					continue
				}
				d.Contents = append(d.Contents, DraftValue{BlockID: c.BlockID, Value: c.Value, Title: c.Title})
			}
		} else {
			if d.LanguageCode == "" {
				d.LanguageCode = s.defaultLanguage
			}
			if !schema.ValidLanguageCode(d.LanguageCode) {
				return errs.ValidationErrors{errs.Invalid("language_code", "%q is not a valid language code", d.LanguageCode)}
			}
			rows, err := s.content.WithTx(tx).Rows(ctx, ownerID, d.LanguageCode)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				ids := make([]uint, 0, len(rows))
				for _, r := range rows {
					ids = append(ids, r.BlockID)
				}
				fields, err := s.blocks.Fields(ctx, tx, ids)
				if err != nil {
					return err
				}
				for _, r := range rows {
					d.Contents = append(d.Contents, DraftValue{BlockID: r.BlockID, Value: r.Value, Title: fields[r.BlockID].Title})
				}
			}
			latest, err := latestVersion(tx, ownerID)
			if err != nil {
				return err
			}
			if latest != nil {
				d.ParentVersionID = &latest.ID
			}
		}
		return tx.Create(&d).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("draft_id", d.ID).Uint("owner_id", ownerID).Str("lang", d.LanguageCode).Msg("draft created")
	return s.GetDraft(ctx, d.ID)
}

// EditDraft sets one block value of a draft. Live content is untouched.
func (s *Service) EditDraft(ctx context.Context, draftID string, blockID uint, value any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadDraft(tx, draftID, false); err != nil {
			return err
		}
		f, err := s.blocks.Field(ctx, tx, blockID)
		if err != nil {
			return err
		}
		v, err := f.Shape.Validate(value)
		if err != nil {
			var failures errs.ValidationErrors
			failures.Add(f.Handle, err)
			return failures
		}
		raw, err := f.Shape.Encode(v)
		if err != nil {
			return err
		}
		row := DraftValue{DraftID: draftID, BlockID: blockID, Value: raw, Title: f.Title}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "draft_id"}, {Name: "block_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "title"}),
		}).Create(&row).Error
		if err != nil {
			return records.TranslateError(DraftValue{}.TableName(), err)
		}
		return tx.Model(&Draft{}).Where("id = ?", draftID).Update("updated_at", tx.NowFunc()).Error
	})
}

// GetDraft returns the draft with its decoded values.
func (s *Service) GetDraft(ctx context.Context, id string) (*Draft, error) {
	tx := s.db.WithContext(ctx)
	d, err := loadDraft(tx, id, true)
	if err != nil {
		return nil, err
	}
	if d.Values, err = s.decodeDraft(ctx, tx, d.Contents); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDrafts returns the open drafts of owner, oldest first.
func (s *Service) ListDrafts(ctx context.Context, ownerID uint) ([]*Draft, error) {
	var ds []*Draft
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&ds).Error
	return ds, err
}

// Discard deletes a draft.
func (s *Service) Discard(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_id = ?", id).Delete(&DraftValue{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Draft{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("draft", id)
		}
		log.Info().Str("draft_id", id).Msg("draft discarded")
		return nil
	})
}

type publishOptions struct {
	notes string
}

type PublishOption func(*publishOptions)

// WithNotes attaches release notes to the published version.
func WithNotes(notes string) PublishOption {
	return func(o *publishOptions) { o.notes = notes }
}

// Publish validates the draft, makes its values the live content of its
// language, records the next version and removes the draft. Nothing is written when
// any step fails.
func (s *Service) Publish(ctx context.Context, draftID string, opts ...PublishOption) (*Version, error) {
	var o publishOptions
	for _, opt := range opts {
		opt(&o)
	}

	var v Version
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := loadDraft(tx, draftID, true)
		if err != nil {
			return err
		}
		if ok, err := s.ownerExists(tx, d.OwnerID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: entry %d no longer exists", errs.ErrPublishConflict, d.OwnerID)
		}

		ids := make([]uint, 0, len(d.Contents))
		for _, c := range d.Contents {
			ids = append(ids, c.BlockID)
		}
		fields, err := s.blocks.Fields(ctx, tx, ids)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return fmt.Errorf("%w: %v", errs.ErrPublishConflict, err)
			}
			return err
		}

		values := make(map[uint]any, len(d.Contents))
		for _, c := range d.Contents {
			val, err := fields[c.BlockID].Shape.Decode(c.Value)
			if err != nil {
				return fmt.Errorf("draft %s block %d: %w", d.ID, c.BlockID, err)
			}
			values[c.BlockID] = val
		}

		required, err := s.layouts.RequiredBlocks(ctx, tx, catalog.Entry, d.OwnerID)
		if err != nil {
			return err
		}
		var missing []string
		for _, b := range required {
			val, ok := values[b.ID]
			if !ok {
				missing = append(missing, b.Handle)
				continue
			}
			if f, ok := fields[b.ID]; ok && f.Shape.Empty(val) {
				missing = append(missing, b.Handle)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("%w: required blocks without a value: %s", errs.ErrPublishConflict, strings.Join(missing, ", "))
		}

		if err := s.content.WithTx(tx).Replace(ctx, d.OwnerID, d.LanguageCode, values); err != nil {
			return err
		}

		var max int
		if err := tx.Model(&Version{}).
			Where("owner_id = ?", d.OwnerID).
			Select("COALESCE(MAX(num), 0)").
			Scan(&max).Error; err != nil {
			return err
		}
		v = Version{
			OwnerID:         d.OwnerID,
			Num:             max + 1,
			LanguageCode:    d.LanguageCode,
			ParentVersionID: d.ParentVersionID,
			Notes:           o.notes,
		}
		for _, c := range d.Contents {
			v.Contents = append(v.Contents, VersionValue{BlockID: c.BlockID, Value: c.Value, Title: c.Title})
		}
		if err := tx.Create(&v).Error; err != nil {
			return records.TranslateError(Version{}.TableName(), err)
		}

		if err := tx.Where("draft_id = ?", d.ID).Delete(&DraftValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Draft{}, "id = ?", d.ID).Error
	})
	if err != nil {
		log.Warn().Err(err).Str("draft_id", draftID).Msg("publish failed")
		return nil, err
	}
	log.Info().Str("version_id", v.ID).Uint("owner_id", v.OwnerID).Int("num", v.Num).Msg("draft published")
	return s.GetVersion(ctx, v.ID)
}

// ListVersions returns the versions of owner in ascending order.
func (s *Service) ListVersions(ctx context.Context, ownerID uint) ([]*Version, error) {
	var vs []*Version
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("num ASC").
		Find(&vs).Error
	return vs, err
}

// GetVersion returns a version with its decoded values.
func (s *Service) GetVersion(ctx context.Context, id string) (*Version, error) {
	tx := s.db.WithContext(ctx)
	v, err := loadVersion(tx, id)
	if err != nil {
		return nil, err
	}
	rows := make([]DraftValue, 0, len(v.Contents))
	for _, c := range v.Contents {
		rows = append(rows, DraftValue{BlockID: c.BlockID, Value: c.Value})
	}
	if v.Values, err = s.decodeDraft(ctx, tx, rows); err != nil {
		return nil, err
	}
	return v, nil
}

// Revert opens a draft seeded from an older version. Publishing it restores
// that version's values as a new version.
func (s *Service) Revert(ctx context.Context, ownerID uint, versionID string) (*Draft, error) {
	return s.CreateDraft(ctx, ownerID, FromVersion(versionID))
}

func (s *Service) decodeDraft(ctx context.Context, tx *gorm.DB, rows []DraftValue) (map[uint]any, error) {
	out := make(map[uint]any, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.BlockID)
	}
	fields, err := s.blocks.ExistingFields(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		f, ok := fields[r.BlockID]
		if !ok {
			// block was deleted after the value was stored
			var v any
			if err := json.Unmarshal(r.Value, &v); err != nil {
				return nil, fmt.Errorf("block %d: %w", r.BlockID, err)
			}
			out[r.BlockID] = v
			continue
		}
		v, err := f.Shape.Decode(r.Value)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", r.BlockID, err)
		}
		out[r.BlockID] = v
	}
	return out, nil
}

func loadDraft(tx *gorm.DB, id string, withContents bool) (*Draft, error) {
	var d Draft
	q := tx
	if withContents {
		q = q.Preload("Contents", func(db *gorm.DB) *gorm.DB { return db.Order("block_id ASC") })
	}
	if err := q.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("draft", id)
		}
		return nil, err
	}
	return &d, nil
}

func loadVersion(tx *gorm.DB, id string) (*Version, error) {
	var v Version
	err := tx.Preload("Contents", func(db *gorm.DB) *gorm.DB { return db.Order("block_id ASC") }).
		First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("version", id)
		}
		return nil, err
	}
	return &v, nil
}

func latestVersion(tx *gorm.DB, ownerID uint) (*Version, error) {
	var v Version
	err := tx.Where("owner_id = ?", ownerID).Order("num DESC").Limit(1).Find(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == "" {
		return nil, nil
	}
	return &v, nil
}
