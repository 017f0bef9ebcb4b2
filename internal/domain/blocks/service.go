package blocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeleteHook removes rows that reference a deleted block. It runs inside
// the delete transaction.
type DeleteHook func(tx *gorm.DB, blockID uint) error

type Service struct {
	db    *gorm.DB
	reg   *registry.Registry
	hooks []DeleteHook
}

// OnDelete registers fn to run whenever a block is deleted. Hooks are
// registered at wiring time, before the service is shared.
func (s *Service) OnDelete(fn DeleteHook) { s.hooks = append(s.hooks, fn) }

func NewService(db *gorm.DB, reg *registry.Registry) *Service {
	return &Service{db: db, reg: reg}
}

// Definition is the input for Create.
type Definition struct {
	Name         string         `json:"name"`
	Handle       string         `json:"handle"`
	Model        string         `json:"model"`
	Required     bool           `json:"required"`
	Translatable bool           `json:"translatable"`
	Title        bool           `json:"title"`
	Instructions string         `json:"instructions"`
	Settings     map[string]any `json:"settings"`
}

// Create validates def against the Block model and the named block model,
// then stores it.
func (s *Service) Create(ctx context.Context, def Definition) (*Block, error) {
	desc, err := s.reg.Resolve(catalog.Block)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"name":         def.Name,
		"handle":       def.Handle,
		"model":        def.Model,
		"required":     def.Required,
		"translatable": def.Translatable,
		"title":        def.Title,
		"instructions": def.Instructions,
	}
	if def.Settings != nil {
		values["settings"] = def.Settings
	}
	clean, err := registry.ValidateRecord(desc, values)
	if err != nil {
		return nil, err
	}

	blockModel, err := s.reg.Resolve(def.Model)
	if err != nil {
		return nil, err
	}
	if !blockModel.IsBlock {
		return nil, errs.ValidationErrors{errs.Invalid("model", "%s is not a block model", blockModel.Name)}
	}

	settings := datatypes.JSON("{}")
	if v, ok := clean["settings"]; ok {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		settings = b
	}

	b := Block{
		Name:         clean["name"].(string),
		Handle:       clean["handle"].(string),
		Model:        blockModel.Name,
		Required:     clean["required"].(bool),
		Translatable: clean["translatable"].(bool),
		Title:        clean["title"].(bool),
		Settings:     settings,
	}
	if v, ok := clean["instructions"].(string); ok {
		b.Instructions = v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := records.CheckUnique(tx, desc, clean, 0); err != nil {
			return err
		}
		return records.TranslateError(desc.TableName, tx.Create(&b).Error)
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Uint("block_id", b.ID).Str("handle", b.Handle).Str("model", b.Model).Msg("block created")
	return &b, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Block, error) {
	var b Block
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("block", id)
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) ByHandle(ctx context.Context, handle string) (*Block, error) {
	var b Block
	if err := s.db.WithContext(ctx).First(&b, "handle = ?", handle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("block", handle)
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) List(ctx context.Context) ([]Block, error) {
	var out []Block
	err := s.db.WithContext(ctx).Order("handle ASC").Find(&out).Error
	return out, err
}

// Field loads one block with its value shape.
func (s *Service) Field(ctx context.Context, tx *gorm.DB, id uint) (*Field, error) {
	fields, err := s.Fields(ctx, tx, []uint{id})
	if err != nil {
		return nil, err
	}
	return fields[id], nil
}

// Fields loads the given blocks with their value shapes. Every id must
// exist. tx may be nil to use the service's own handle.
func (s *Service) Fields(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*Field, error) {
	out, err := s.ExistingFields(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, errs.NotFound("block", id)
		}
	}
	return out, nil
}

// ExistingFields is Fields without the existence check: ids of deleted
// blocks are left out of the result.
func (s *Service) ExistingFields(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*Field, error) {
	if tx == nil {
		tx = s.db
	}
	out := make(map[uint]*Field, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Block
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		b := &rows[i]
		desc, err := s.reg.Resolve(b.Model)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Handle, err)
		}
		shape, err := desc.ValueShape()
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Handle, err)
		}
		out[b.ID] = &Field{Block: b, Shape: shape}
	}
	return out, nil
}

// Delete removes a block, its layout assignments, its stored content and
// whatever the OnDelete hooks remove.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Block{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("block", id)
		}
		for _, p := range s.reg.PivotTables() {
			if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(p.Table)+" WHERE "+tx.Statement.Quote(p.BlockColumn)+" = ?", id).Error; err != nil {
				return err
			}
		}
		for _, table := range s.reg.ContentTables() {
			if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(table)+" WHERE block_id = ?", id).Error; err != nil {
				return err
			}
		}
		for _, fn := range s.hooks {
			if err := fn(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}
