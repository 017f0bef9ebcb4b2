// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"blocks-cms/database"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/registry"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Open returns a private sqlite database migrated for the built-in catalog.
func Open(t testing.TB) (*gorm.DB, *registry.Registry) {
	t.Helper()
	reg, err := catalog.Load("")
	require.NoError(t, err)
	return OpenWith(t, reg), reg
}

// OpenWith migrates a private sqlite database for reg.
func OpenWith(t testing.TB, reg *registry.Registry) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open(sqlite.Open(dsn), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, reg))
	return db
}
