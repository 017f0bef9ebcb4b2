package content_test

import (
	"context"
	"testing"
	"time"

	"blocks-cms/internal/dbtest"
	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/content"
	"blocks-cms/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	store  *content.Store
	blocks *blocks.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, reg := dbtest.Open(t)
	bs := blocks.NewService(db, reg)
	store, err := content.NewStore(db, reg, catalog.Entry, bs)
	require.NoError(t, err)
	return &fixture{db: db, store: store, blocks: bs}
}

func (f *fixture) block(t *testing.T, handle, model string) uint {
	t.Helper()
	b, err := f.blocks.Create(context.Background(), blocks.Definition{Name: handle, Handle: handle, Model: model})
	require.NoError(t, err)
	return b.ID
}

func TestGetEmptyOwner(t *testing.T) {
	f := newFixture(t)
	got, err := f.store.Get(context.Background(), 7, "en")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSetRoundTripsTypedValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")
	count := f.block(t, "count", "Number")
	flag := f.block(t, "flag", "Checkbox")
	day := f.block(t, "day", "Date")
	meta := f.block(t, "meta", "Json")

	require.NoError(t, f.store.SetMany(ctx, 1, "en", map[uint]any{
		body:  "hello",
		count: "12",
		flag:  true,
		day:   "2024-03-01",
		meta:  map[string]any{"a": 1},
	}))

	got, err := f.store.Get(ctx, 1, "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", got[body])
	assert.Equal(t, int64(12), got[count])
	assert.Equal(t, true, got[flag])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[day])
	assert.Equal(t, map[string]any{"a": float64(1)}, got[meta])
}

func TestSetTwiceKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")

	require.NoError(t, f.store.Set(ctx, 1, "en", body, "first"))
	require.NoError(t, f.store.Set(ctx, 1, "en", body, "second"))

	var n int64
	require.NoError(t, f.db.Table(f.store.Table()).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	got, err := f.store.Get(ctx, 1, "en")
	require.NoError(t, err)
	assert.Equal(t, "second", got[body])
}

func TestLanguagesAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")

	require.NoError(t, f.store.Set(ctx, 1, "en", body, "hello"))
	require.NoError(t, f.store.Set(ctx, 1, "fr-FR", body, "bonjour"))

	en, err := f.store.Get(ctx, 1, "en")
	require.NoError(t, err)
	fr, err := f.store.Get(ctx, 1, "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "hello", en[body])
	assert.Equal(t, "bonjour", fr[body])

	langs, err := f.store.Languages(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr-FR"}, langs)
}

func TestSetManyIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")
	count := f.block(t, "count", "Number")

	err := f.store.SetMany(ctx, 1, "en", map[uint]any{body: "ok", count: "twelve"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	got, err := f.store.Get(ctx, 1, "en")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")

	assert.ErrorIs(t, f.store.Set(ctx, 1, "english", body, "x"), errs.ErrValidation)
	assert.ErrorIs(t, f.store.Set(ctx, 1, "en", 999, "x"), errs.ErrNotFound)
}

func TestDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := f.block(t, "body", "PlainText")

	require.NoError(t, f.store.Set(ctx, 1, "en", body, "a"))
	require.NoError(t, f.store.Set(ctx, 2, "en", body, "b"))
	require.NoError(t, f.store.Set(ctx, 2, "de", body, "c"))

	require.NoError(t, f.store.DeleteBlock(ctx, 2, "de", body))
	assert.ErrorIs(t, f.store.DeleteBlock(ctx, 2, "de", body), errs.ErrNotFound)

	require.NoError(t, f.store.DeleteOwner(ctx, 1))
	got, err := f.store.Get(ctx, 1, "en")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.store.Get(ctx, 2, "en")
	require.NoError(t, err)
	assert.Equal(t, "b", got[body])
}

func TestNewStoreRequiresContentModel(t *testing.T) {
	db, reg := dbtest.Open(t)
	_, err := content.NewStore(db, reg, catalog.Section, blocks.NewService(db, reg))
	assert.Error(t, err)
}
