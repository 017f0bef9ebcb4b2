// Package usergroups manages group membership and per-group permissions.
package usergroups

import (
	"context"
	"fmt"
	"time"

	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/records"
	"blocks-cms/internal/domain/registry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Member links one user to one group. A pair exists at most once.
type Member struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	GroupID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Permission is a named integer grant held by a group.
type Permission struct {
	GroupID   uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	Name      string    `gorm:"primaryKey;size:255" json:"name"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string     { return "usergroupmembers" }
func (Permission) TableName() string { return "usergrouppermissions" }

func Models() []any { return []any{&Member{}, &Permission{}} }

type Service struct {
	db  *gorm.DB
	reg *registry.Registry
}

func NewService(db *gorm.DB, reg *registry.Registry) *Service {
	return &Service{db: db, reg: reg}
}

func (s *Service) AddMember(ctx context.Context, groupID, userID uint) (*Member, error) {
	d, err := s.reg.Resolve(catalog.UserGroupMember)
	if err != nil {
		return nil, err
	}
	if _, err := registry.ValidateRecord(d, map[string]any{"user_id": userID, "group_id": groupID}); err != nil {
		return nil, err
	}
	m := Member{UserID: userID, GroupID: groupID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Member{}).Where("user_id = ? AND group_id = ?", userID, groupID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &errs.UniqueError{Table: d.TableName, Err: fmt.Errorf("user %d is already in group %d", userID, groupID)}
		}
		return records.TranslateError(d.TableName, tx.Create(&m).Error)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND group_id = ?", userID, groupID).Delete(&Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("membership", fmt.Sprintf("%d/%d", groupID, userID))
	}
	return nil
}

// Members lists the user ids of a group.
func (s *Service) Members(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&Member{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// Groups lists the group ids a user belongs to.
func (s *Service) Groups(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&Member{}).
		Where("user_id = ?", userID).
		Order("group_id ASC").
		Pluck("group_id", &ids).Error
	return ids, err
}

// SetPermission creates or replaces one permission of a group.
func (s *Service) SetPermission(ctx context.Context, groupID uint, name string, value int64) (*Permission, error) {
	d, err := s.reg.Resolve(catalog.UserGroupPermission)
	if err != nil {
		return nil, err
	}
	clean, err := registry.ValidateRecord(d, map[string]any{"group_id": groupID, "name": name, "value": value})
	if err != nil {
		return nil, err
	}
	p := Permission{GroupID: groupID, Name: clean["name"].(string), Value: clean["value"].(int64)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, records.TranslateError(d.TableName, err)
	}
	return &p, nil
}

func (s *Service) Permissions(ctx context.Context, groupID uint) ([]Permission, error) {
	var out []Permission
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("name ASC").Find(&out).Error
	return out, err
}

// Can reports whether any group of user grants name with a value of at
// least level.
func (s *Service) Can(ctx context.Context, userID uint, name string, level int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Permission{}).
		Joins("JOIN usergroupmembers m ON m.group_id = usergrouppermissions.group_id").
		Where("m.user_id = ? AND usergrouppermissions.name = ? AND usergrouppermissions.value >= ?", userID, name, level).
		Count(&count).Error
	return count > 0, err
}
