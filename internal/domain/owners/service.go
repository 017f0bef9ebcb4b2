// Package owners stores the entities blocks are attached to: sections,
// entries, assets, sites, users and user groups.
package owners

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var rowTypes = map[string]reflect.Type{
	catalog.Section:   reflect.TypeOf(Section{}),
	catalog.Entry:     reflect.TypeOf(Entry{}),
	catalog.Asset:     reflect.TypeOf(Asset{}),
	catalog.Site:      reflect.TypeOf(Site{}),
	catalog.User:      reflect.TypeOf(User{}),
	catalog.UserGroup: reflect.TypeOf(UserGroup{}),
}

// CascadeFunc removes rows that depend on a deleted owner. It runs inside
// the delete transaction.
type CascadeFunc func(tx *gorm.DB, ownerID uint) error

type Service struct {
	db       *gorm.DB
	reg      *registry.Registry
	cascades map[string][]CascadeFunc
}

func NewService(db *gorm.DB, reg *registry.Registry) *Service {
	return &Service{db: db, reg: reg, cascades: map[string][]CascadeFunc{}}
}

// OnDelete registers fn to run whenever a row of model is deleted. Hooks
// are registered at wiring time, before the service is shared.
func (s *Service) OnDelete(model string, fn CascadeFunc) error {
	d, err := s.reg.Resolve(model)
	if err != nil {
		return err
	}
	s.cascades[d.Name] = append(s.cascades[d.Name], fn)
	return nil
}

func (s *Service) newRow(model string) (*registry.ModelDescriptor, any, error) {
	d, err := s.reg.Resolve(model)
	if err != nil {
		return nil, nil, err
	}
	t, ok := rowTypes[d.Name]
	if !ok {
		return nil, nil, fmt.Errorf("model %s is not an owner: %w", d.Name, errs.ErrUnknownModel)
	}
	return d, reflect.New(t).Interface(), nil
}

// Create validates values against model and inserts a row. It returns the
// new row.
func (s *Service) Create(ctx context.Context, model string, values map[string]any) (any, error) {
	d, row, err := s.newRow(model)
	if err != nil {
		return nil, err
	}
	clean, err := registry.ValidateRecord(d, values)
	if err != nil {
		return nil, err
	}
	if err := fill(row, clean); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insert(tx, d, row, clean)
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", d.Name).Msg("owner created")
	return row, nil
}

// Update applies a partial change to an existing row.
func (s *Service) Update(ctx context.Context, model string, id uint, changes map[string]any) (any, error) {
	d, row, err := s.newRow(model)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound(d.Name, id)
			}
			return err
		}
		merged, err := toMap(row)
		if err != nil {
			return err
		}
		for k, v := range changes {
			merged[k] = v
		}
		clean, err := registry.ValidateRecord(d, onlyDeclared(d, merged))
		if err != nil {
			return err
		}
		if err := records.CheckUnique(tx, d, clean, id); err != nil {
			return err
		}
		if err := fill(row, clean); err != nil {
			return err
		}
		return records.TranslateError(d.TableName, tx.Save(row).Error)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) Get(ctx context.Context, model string, id uint) (any, error) {
	d, row, err := s.newRow(model)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound(d.Name, id)
		}
		return nil, err
	}
	return row, nil
}

// Delete removes an owner together with its content and layout rows, the
// rows of its hasMany relations and whatever OnDelete hooks remove.
func (s *Service) Delete(ctx context.Context, model string, id uint) error {
	d, err := s.reg.Resolve(model)
	if err != nil {
		return err
	}
	if _, ok := rowTypes[d.Name]; !ok {
		return fmt.Errorf("model %s is not an owner: %w", d.Name, errs.ErrUnknownModel)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.remove(tx, d, id)
	})
	if err != nil {
		return err
	}
	log.Debug().Str("model", d.Name).Uint("id", id).Msg("owner deleted")
	return nil
}

func (s *Service) remove(tx *gorm.DB, d *registry.ModelDescriptor, id uint) error {
	res := tx.Delete(reflect.New(rowTypes[d.Name]).Interface(), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(d.Name, id)
	}
	if d.HasContent {
		if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(d.ContentTable)+" WHERE owner_id = ?", id).Error; err != nil {
			return err
		}
	}
	if rel, ok := d.PivotRelation(); ok {
		if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(rel.PivotTable)+" WHERE "+registry.PivotOwnerColumn+" = ?", id).Error; err != nil {
			return err
		}
	}
	for _, fn := range s.cascades[d.Name] {
		if err := fn(tx, id); err != nil {
			return err
		}
	}

	for _, name := range d.RelationNames() {
		rel := d.Relations[name]
		if rel.Kind != registry.HasMany {
			continue
		}
		target, err := s.reg.Resolve(rel.Target)
		if err != nil {
			return err
		}
		// owner children get the full cascade
		if _, ok := rowTypes[target.Name]; ok {
			var ids []uint
			if err := tx.Table(target.TableName).Where(tx.Statement.Quote(rel.ForeignKey)+" = ?", id).Pluck("id", &ids).Error; err != nil {
				return err
			}
			for _, cid := range ids {
				if err := s.remove(tx, target, cid); err != nil {
					return err
				}
			}
			continue
		}
		if err := tx.Exec("DELETE FROM "+tx.Statement.Quote(target.TableName)+" WHERE "+tx.Statement.Quote(rel.ForeignKey)+" = ?", id).Error; err != nil {
			return err
		}
	}
	return nil
}

func insert(tx *gorm.DB, d *registry.ModelDescriptor, row any, clean map[string]any) error {
	if err := records.CheckUnique(tx, d, clean, 0); err != nil {
		return err
	}
	return records.TranslateError(d.TableName, tx.Create(row).Error)
}

// fill copies validated values into row through its json tags, which
// match attribute and foreign key names.
func fill(row any, values map[string]any) error {
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, row)
}

func toMap(row any) (map[string]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	return out, json.Unmarshal(b, &out)
}

func onlyDeclared(d *registry.ModelDescriptor, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if _, ok := d.Attributes[k]; ok {
			out[k] = v
			continue
		}
		for _, rel := range d.Relations {
			if rel.ForeignKey == k && (rel.Kind == registry.BelongsTo || rel.Kind == registry.HasOne) {
				out[k] = v
			}
		}
	}
	return out
}
