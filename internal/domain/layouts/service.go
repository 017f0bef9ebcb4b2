// Package layouts assigns blocks to owners through the pivot tables declared
// by pivotMany relations.
package layouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"

	"gorm.io/gorm"
)

// Assignment is one row of a pivot table.
type Assignment struct {
	OwnerID   uint `gorm:"primaryKey;autoIncrement:false" json:"owner_id"`
	BlockID   uint `gorm:"primaryKey;autoIncrement:false" json:"block_id"`
	SortIndex int  `gorm:"not null;default:0" json:"sort_index"`
}

// Migrate creates or updates one pivot table.
func Migrate(db *gorm.DB, p registry.PivotSpec) error {
	return db.Table(p.Table).AutoMigrate(&Assignment{})
}

type Service struct {
	db     *gorm.DB
	reg    *registry.Registry
	blocks *blocks.Service
}

func NewService(db *gorm.DB, reg *registry.Registry, bs *blocks.Service) *Service {
	return &Service{db: db, reg: reg, blocks: bs}
}

// Assign appends block to the layout of owner. Assigning the same block
// twice is a unique constraint violation.
func (s *Service) Assign(ctx context.Context, model string, ownerID, blockID uint) (*Assignment, error) {
	p, err := s.reg.Pivot(model)
	if err != nil {
		return nil, err
	}
	if _, err := s.blocks.Get(ctx, blockID); err != nil {
		return nil, err
	}

	a := Assignment{OwnerID: ownerID, BlockID: blockID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(p.Table).Where("owner_id = ? AND block_id = ?", ownerID, blockID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &errs.UniqueError{Table: p.Table, Err: errs.ValidationErrors{
				errs.Invalid("block_id", "block %d is already assigned to %s %d", blockID, model, ownerID),
			}}
		}
		var next int
		if err := tx.Table(p.Table).
			Where("owner_id = ?", ownerID).
			Select("COALESCE(MAX(sort_index) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		a.SortIndex = next
		return records.TranslateError(p.Table, tx.Table(p.Table).Create(&a).Error)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) Unassign(ctx context.Context, model string, ownerID, blockID uint) error {
	p, err := s.reg.Pivot(model)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Table(p.Table).
		Where("owner_id = ? AND block_id = ?", ownerID, blockID).
		Delete(&Assignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("assignment", fmt.Sprintf("%s %d/%d", model, ownerID, blockID))
	}
	return nil
}

// Reorder rewrites the order of owner's layout. blockIDs must name exactly
// the blocks currently assigned.
func (s *Service) Reorder(ctx context.Context, model string, ownerID uint, blockIDs []uint) error {
	p, err := s.reg.Pivot(model)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := list(tx, p, ownerID)
		if err != nil {
			return err
		}
		assigned := make(map[uint]bool, len(current))
		for _, a := range current {
			assigned[a.BlockID] = true
		}
		seen := make(map[uint]bool, len(blockIDs))
		for _, id := range blockIDs {
			if !assigned[id] || seen[id] {
				return errs.ValidationErrors{errs.Invalid("block_ids", "block %d is not assigned or repeated", id)}
			}
			seen[id] = true
		}
		if len(seen) != len(assigned) {
			return errs.ValidationErrors{errs.Invalid("block_ids", "expected %d blocks, got %d", len(assigned), len(seen))}
		}
		for i, id := range blockIDs {
			if err := tx.Table(p.Table).
				Where("owner_id = ? AND block_id = ?", ownerID, id).
				Update("sort_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns owner's layout in order.
func (s *Service) List(ctx context.Context, model string, ownerID uint) ([]Assignment, error) {
	p, err := s.reg.Pivot(model)
	if err != nil {
		return nil, err
	}
	return list(s.db.WithContext(ctx), p, ownerID)
}

func list(tx *gorm.DB, p registry.PivotSpec, ownerID uint) ([]Assignment, error) {
	var out []Assignment
	err := tx.Table(p.Table).
		Where("owner_id = ?", ownerID).
		Order("sort_index ASC, block_id ASC").
		Find(&out).Error
	return out, err
}

// RequiredBlocks returns the required blocks laid out for an owner of
// model, following a belongsTo relation to the model carrying the pivot
// when needed. An owner with no layout has no required blocks. tx may be
// nil.
func (s *Service) RequiredBlocks(ctx context.Context, tx *gorm.DB, model string, ownerID uint) ([]blocks.Block, error) {
	if tx == nil {
		tx = s.db
	}
	tx = tx.WithContext(ctx)

	via, pivot, err := s.reg.LayoutPath(model)
	if err != nil || pivot == nil {
		return nil, err
	}
	layoutOwner := ownerID
	if via != nil {
		d, err := s.reg.Resolve(model)
		if err != nil {
			return nil, err
		}
		var parent sql.NullInt64
		row := tx.Table(d.TableName).Select(via.ForeignKey).Where("id = ?", ownerID).Row()
		if err := row.Scan(&parent); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, err
		}
		if !parent.Valid {
			return nil, nil
		}
		layoutOwner = uint(parent.Int64)
	}

	pt, _ := pivot.Pivot()
	var out []blocks.Block
	err = tx.Model(&blocks.Block{}).
		Joins(fmt.Sprintf("JOIN %s p ON p.block_id = blocks.id", tx.Statement.Quote(pt.Table))).
		Where("p.owner_id = ? AND blocks.required = ?", layoutOwner, true).
		Order("p.sort_index ASC").
		Find(&out).Error
	return out, err
}
