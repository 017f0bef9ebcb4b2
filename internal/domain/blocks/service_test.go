package blocks_test

import (
	"context"
	"errors"
	"testing"

	"blocks-cms/internal/dbtest"
	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLoadField(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := blocks.NewService(db, reg)
	ctx := context.Background()

	b, err := svc.Create(ctx, blocks.Definition{Name: "Body", Handle: "body", Model: "PlainText", Required: true})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, "PlainText", b.Model)
	assert.JSONEq(t, `{}`, string(b.Settings))

	f, err := svc.Field(ctx, nil, b.ID)
	require.NoError(t, err)
	require.NotNil(t, f.Shape.Single)
	assert.Equal(t, "value", f.Shape.Single.Name)

	byHandle, err := svc.ByHandle(ctx, "body")
	require.NoError(t, err)
	assert.Equal(t, b.ID, byHandle.ID)
}

func TestCreateRejectsDuplicateHandle(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := blocks.NewService(db, reg)
	ctx := context.Background()

	_, err := svc.Create(ctx, blocks.Definition{Name: "Body", Handle: "body", Model: "PlainText"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, blocks.Definition{Name: "Other", Handle: "body", Model: "Number"})
	assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)
}

func TestCreateValidatesDefinition(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := blocks.NewService(db, reg)
	ctx := context.Background()

	_, err := svc.Create(ctx, blocks.Definition{Handle: "x", Model: "PlainText"})
	assert.ErrorIs(t, err, errs.ErrMissingRequiredAttribute)

	_, err = svc.Create(ctx, blocks.Definition{Name: "X", Handle: "x", Model: "Nope"})
	assert.ErrorIs(t, err, errs.ErrUnknownModel)

	_, err = svc.Create(ctx, blocks.Definition{Name: "X", Handle: "x", Model: "Section"})
	var failures errs.ValidationErrors
	require.True(t, errors.As(err, &failures))
	assert.Equal(t, "model", failures[0].Field)
}

func TestFieldsReportsMissingBlock(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := blocks.NewService(db, reg)

	_, err := svc.Fields(context.Background(), nil, []uint{42})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteRemovesLayoutAndContent(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := blocks.NewService(db, reg)
	ctx := context.Background()

	b, err := svc.Create(ctx, blocks.Definition{Name: "Body", Handle: "body", Model: "PlainText"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("INSERT INTO sectionblocks (owner_id, block_id, sort_index) VALUES (1, ?, 0)", b.ID).Error)
	require.NoError(t, db.Exec("INSERT INTO entrycontent (owner_id, language_code, block_id, value) VALUES (1, 'en', ?, '\"x\"')", b.ID).Error)

	require.NoError(t, svc.Delete(ctx, b.ID))

	var n int64
	require.NoError(t, db.Table("sectionblocks").Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Table("entrycontent").Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.Delete(ctx, b.ID), errs.ErrNotFound)
}
