package registry

import (
	"strings"
	"testing"

	"blocks-cms/internal/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
models:
  - name: BlogBlock
    table: blogblocks
    is_block: true
    attributes:
      - name: body
        type: text
        required: true
        size: 2000
  - name: LicenseKeys
    table: licensekeys
    attributes:
      - name: license_key
        type: license_key
        required: true
        unique: true
        max_length: 36
aliases:
  Licensekeys: LicenseKeys
`

func TestLoadCatalogAndApply(t *testing.T) {
	cat, err := LoadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cat.Models, 2)

	body := cat.Models[0].Attributes["body"]
	assert.Equal(t, schema.TypeText, body.Type)
	assert.Equal(t, 2000, body.MaxLength)

	r := New()
	require.NoError(t, cat.Apply(r))

	d, err := r.Resolve("Licensekeys")
	require.NoError(t, err)
	assert.Equal(t, "LicenseKeys", d.Name)
	assert.True(t, d.Attributes["license_key"].Unique)
}

func TestLoadCatalogRejectsConflicts(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader(`
models:
  - name: A
    attributes:
      - {name: x, type: string, size: 10, max_length: 20}
`))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader(`
models:
  - {name: A, attributes: []}
  - {name: A, attributes: []}
`))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader(`
models:
  - {name: A, colour: red, attributes: []}
`))
	assert.Error(t, err)
}
