package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"blocks-cms/internal/domain/errs"
	"blocks-cms/internal/domain/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalogSeals(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.True(t, r.Sealed())

	for _, name := range []string{Language, Info, SystemSettings, LicenseKeys, Block, Entry, UserGroupMember} {
		_, err := r.Resolve(name)
		assert.NoError(t, err, name)
	}
}

func TestDeprecatedNamesResolveToCanonical(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	for old, canonical := range aliases {
		d, err := r.Resolve(old)
		require.NoError(t, err, old)
		assert.Equal(t, canonical, d.Name)
		want, _ := r.Resolve(canonical)
		assert.Same(t, want, d)
	}
}

func TestEntryLayoutComesFromSection(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	via, pivot, err := r.LayoutPath(Entry)
	require.NoError(t, err)
	require.NotNil(t, via)
	assert.Equal(t, "section_id", via.ForeignKey)
	assert.Equal(t, "sectionblocks", pivot.PivotTable)
}

func TestContentTables(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	want := map[string]string{
		Entry: "entrycontent", Asset: "assetcontent", User: "usercontent",
		Site: "sitecontent", UserGroup: "usergroupcontent",
	}
	for model, table := range want {
		d, err := r.Resolve(model)
		require.NoError(t, err)
		assert.True(t, d.HasContent)
		assert.Equal(t, table, d.ContentTable)
	}
}

func TestLoadWithCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: BlogBlock
    table: blogblocks
    is_block: true
    attributes:
      - {name: body, type: text}
aliases:
  bBlogBlock: BlogBlock
`), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	d, err := r.Resolve("bBlogBlock")
	require.NoError(t, err)
	assert.True(t, d.IsBlock)

	_, err = r.Register(registry.ModelDescriptor{Name: "Late"})
	assert.ErrorIs(t, err, errs.ErrRegistrySealed)
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: Broken
    relations:
      - {name: parent, kind: belongsTo, target: Nowhere, foreign_key: parent_id}
    attributes: []
`), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, errs.ErrUnknownRelationTarget)
}
