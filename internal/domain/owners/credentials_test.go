package owners_test

import (
	"context"
	"testing"

	"blocks-cms/internal/dbtest"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/owners"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := owners.NewService(db, reg)
	ctx := context.Background()

	row, err := svc.Create(ctx, catalog.User, map[string]any{"username": "ada", "email": "ada@example.com"})
	require.NoError(t, err)
	id := row.(*owners.User).ID

	_, err = svc.Authenticate(ctx, "ada", "whatever1")
	assert.ErrorIs(t, err, owners.ErrInvalidCredentials)

	assert.ErrorIs(t, svc.SetCredentials(ctx, id, "short", ""), errs.ErrValidation)
	assert.ErrorIs(t, svc.SetCredentials(ctx, id, "analytical1", "root"), errs.ErrValidation)
	require.NoError(t, svc.SetCredentials(ctx, id, "analytical1", owners.RoleAdmin))

	u, err := svc.Authenticate(ctx, "ada", "analytical1")
	require.NoError(t, err)
	assert.Equal(t, owners.RoleAdmin, u.Role)

	_, err = svc.Authenticate(ctx, "ada", "analytical2")
	assert.ErrorIs(t, err, owners.ErrInvalidCredentials)

	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "wrong", "engine2024"), owners.ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, id, "analytical1", "engine2024"))
	_, err = svc.Authenticate(ctx, "ada", "engine2024")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetCredentials(ctx, 999, "engine2024", ""), errs.ErrNotFound)
}

func TestCreateUserWritesNothingOnWeakPassword(t *testing.T) {
	db, reg := dbtest.Open(t)
	svc := owners.NewService(db, reg)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, map[string]any{"username": "ada", "email": "ada@example.com"}, "weak", owners.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrValidation)

	var n int64
	require.NoError(t, db.Model(&owners.User{}).Count(&n).Error)
	assert.Zero(t, n)

	u, err := svc.CreateUser(ctx, map[string]any{"username": "ada", "email": "ada@example.com"}, "analytical1", owners.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, owners.RoleAdmin, u.Role)

	_, err = svc.Authenticate(ctx, "ada", "analytical1")
	assert.NoError(t, err)

	_, err = svc.CreateUser(ctx, map[string]any{"username": "ada", "email": "ada2@example.com"}, "analytical1", "")
	assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)
}
