package records

import (
	"errors"
	"fmt"
	"testing"

	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/schema"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type language struct {
	ID           uint   `gorm:"primaryKey"`
	LanguageCode string `gorm:"uniqueIndex"`
}

func (language) TableName() string { return "languages" }

func TestTranslateError(t *testing.T) {
	assert.Nil(t, TranslateError("t", nil))

	plain := errors.New("boom")
	assert.Same(t, plain, TranslateError("t", plain))

	for _, dup := range []error{
		gorm.ErrDuplicatedKey,
		&pgconn.PgError{Code: "23505"},
		fmt.Errorf("exec: %w", errors.New("constraint failed: UNIQUE constraint failed: languages.language_code (2067)")),
	} {
		err := TranslateError("languages", dup)
		assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)
		var ue *errs.UniqueError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "languages", ue.Table)
	}
}

func TestCheckUnique(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:records_unique?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&language{}))
	require.NoError(t, db.Create(&language{LanguageCode: "en"}).Error)

	d := &registry.ModelDescriptor{
		Name:      "Language",
		TableName: "languages",
		Attributes: map[string]*schema.AttributeDefinition{
			"language_code": {Name: "language_code", Type: schema.TypeLanguage, Unique: true},
		},
	}

	err = CheckUnique(db, d, map[string]any{"language_code": "en"}, 0)
	assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)

	assert.NoError(t, CheckUnique(db, d, map[string]any{"language_code": "de"}, 0))

	var existing language
	require.NoError(t, db.First(&existing, "language_code = ?", "en").Error)
	assert.NoError(t, CheckUnique(db, d, map[string]any{"language_code": "en"}, existing.ID))

	err = db.Create(&language{LanguageCode: "en"}).Error
	assert.ErrorIs(t, TranslateError("languages", err), errs.ErrUniqueConstraintViolation)
}

type profile struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint
	Bio    string
}

func (profile) TableName() string { return "profiles" }

func TestCheckUniqueRelation(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:records_unique_rel?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile{}))
	existing := profile{UserID: 7, Bio: "first"}
	require.NoError(t, db.Create(&existing).Error)

	d := &registry.ModelDescriptor{
		Name:      "Profile",
		TableName: "profiles",
		Attributes: map[string]*schema.AttributeDefinition{
			"bio": {Name: "bio", Type: schema.TypeString},
		},
		Relations: map[string]*registry.RelationDefinition{
			"user": {Name: "user", Kind: registry.BelongsTo, Target: "User", ForeignKey: "user_id", Unique: true},
		},
	}

	err = CheckUnique(db, d, map[string]any{"user_id": uint(7), "bio": "second"}, 0)
	assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)
	var ue *errs.UniqueError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "user_id")

	assert.NoError(t, CheckUnique(db, d, map[string]any{"user_id": uint(8)}, 0))
	assert.NoError(t, CheckUnique(db, d, map[string]any{"user_id": uint(7)}, existing.ID))
	assert.NoError(t, CheckUnique(db, d, map[string]any{"bio": "no owner"}, 0))

	d.Relations["user"].Unique = false
	assert.NoError(t, CheckUnique(db, d, map[string]any{"user_id": uint(7)}, 0))
}
