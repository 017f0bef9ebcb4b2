package main

import (
	"testing"

	"blocks-cms/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	reg, err := catalog.Load("")
	require.NoError(t, err)

	user, err := reg.Resolve(catalog.User)
	require.NoError(t, err)
	assert.Equal(t, "content:usercontent,settings", flags(user))

	text, err := reg.Resolve("PlainText")
	require.NoError(t, err)
	assert.Equal(t, "block", flags(text))

	lang, err := reg.Resolve(catalog.Language)
	require.NoError(t, err)
	assert.Empty(t, flags(lang))
}
