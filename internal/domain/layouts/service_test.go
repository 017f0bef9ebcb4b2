package layouts_test

import (
	"context"
	"testing"

	"blocks-cms/internal/dbtest"
	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/layouts"
	"blocks-cms/internal/domain/owners"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*layouts.Service, *blocks.Service, *owners.Service) {
	t.Helper()
	db, reg := dbtest.Open(t)
	bs := blocks.NewService(db, reg)
	return layouts.NewService(db, reg, bs), bs, owners.NewService(db, reg)
}

func newBlock(t *testing.T, bs *blocks.Service, handle string, required bool) uint {
	t.Helper()
	b, err := bs.Create(context.Background(), blocks.Definition{Name: handle, Handle: handle, Model: "PlainText", Required: required})
	require.NoError(t, err)
	return b.ID
}

func TestAssignAppendsInOrder(t *testing.T) {
	svc, bs, _ := setup(t)
	ctx := context.Background()
	a := newBlock(t, bs, "a", false)
	b := newBlock(t, bs, "b", false)

	first, err := svc.Assign(ctx, catalog.Section, 1, a)
	require.NoError(t, err)
	second, err := svc.Assign(ctx, catalog.Section, 1, b)
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortIndex)
	assert.Equal(t, 1, second.SortIndex)

	list, err := svc.List(ctx, "bSections", 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].BlockID)
	assert.Equal(t, b, list[1].BlockID)
}

func TestAssignTwiceIsUniqueViolation(t *testing.T) {
	svc, bs, _ := setup(t)
	ctx := context.Background()
	a := newBlock(t, bs, "a", false)

	_, err := svc.Assign(ctx, catalog.Section, 1, a)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, catalog.Section, 1, a)
	assert.ErrorIs(t, err, errs.ErrUniqueConstraintViolation)
}

func TestAssignRequiresLayoutAndBlock(t *testing.T) {
	svc, bs, _ := setup(t)
	ctx := context.Background()
	a := newBlock(t, bs, "a", false)

	_, err := svc.Assign(ctx, catalog.Entry, 1, a)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = svc.Assign(ctx, catalog.Section, 1, 404)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReorderAndUnassign(t *testing.T) {
	svc, bs, _ := setup(t)
	ctx := context.Background()
	a := newBlock(t, bs, "a", false)
	b := newBlock(t, bs, "b", false)
	c := newBlock(t, bs, "c", false)
	for _, id := range []uint{a, b, c} {
		_, err := svc.Assign(ctx, catalog.Asset, 3, id)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Reorder(ctx, catalog.Asset, 3, []uint{c, a, b}))
	list, err := svc.List(ctx, catalog.Asset, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint{c, a, b}, ids(list))

	assert.ErrorIs(t, svc.Reorder(ctx, catalog.Asset, 3, []uint{c, a}), errs.ErrValidation)
	assert.ErrorIs(t, svc.Reorder(ctx, catalog.Asset, 3, []uint{c, c, a}), errs.ErrValidation)

	require.NoError(t, svc.Unassign(ctx, catalog.Asset, 3, a))
	assert.ErrorIs(t, svc.Unassign(ctx, catalog.Asset, 3, a), errs.ErrNotFound)
	list, err = svc.List(ctx, catalog.Asset, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint{c, b}, ids(list))
}

func TestRequiredBlocksFollowEntrySection(t *testing.T) {
	svc, bs, ow := setup(t)
	ctx := context.Background()
	req := newBlock(t, bs, "body", true)
	opt := newBlock(t, bs, "teaser", false)

	sec, err := ow.Create(ctx, catalog.Section, map[string]any{"name": "Blog", "handle": "blog"})
	require.NoError(t, err)
	sectionID := sec.(*owners.Section).ID
	entry, err := ow.Create(ctx, catalog.Entry, map[string]any{"section_id": sectionID, "slug": "hello"})
	require.NoError(t, err)
	entryID := entry.(*owners.Entry).ID

	_, err = svc.Assign(ctx, catalog.Section, sectionID, opt)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, catalog.Section, sectionID, req)
	require.NoError(t, err)

	got, err := svc.RequiredBlocks(ctx, nil, catalog.Entry, entryID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "body", got[0].Handle)

	none, err := svc.RequiredBlocks(ctx, nil, catalog.Entry, entryID+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ids(list []layouts.Assignment) []uint {
	out := make([]uint, 0, len(list))
	for _, a := range list {
		out = append(out, a.BlockID)
	}
	return out
}
