package schema

import (
	"testing"
	"time"

	"blocks-cms/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeSingleRoundTrip(t *testing.T) {
	cases := []struct {
		def *AttributeDefinition
		in  any
	}{
		{&AttributeDefinition{Name: "body", Type: TypeText}, "hello"},
		{&AttributeDefinition{Name: "n", Type: TypeInteger}, int64(42)},
		{&AttributeDefinition{Name: "b", Type: TypeBoolean}, true},
		{&AttributeDefinition{Name: "j", Type: TypeJSON}, map[string]any{"k": "v"}},
	}
	for _, tc := range cases {
		shape := Shape{Single: tc.def}
		v, err := shape.Validate(tc.in)
		require.NoError(t, err)
		data, err := shape.Encode(v)
		require.NoError(t, err)
		back, err := shape.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestShapeDateRoundTrip(t *testing.T) {
	shape := Shape{Single: &AttributeDefinition{Name: "d", Type: TypeDate}}
	v, err := shape.Validate("2020-02-29")
	require.NoError(t, err)
	data, err := shape.Encode(v)
	require.NoError(t, err)
	back, err := shape.Decode(data)
	require.NoError(t, err)
	assert.True(t, v.(time.Time).Equal(back.(time.Time)))
}

func TestShapeObject(t *testing.T) {
	shape := Shape{Fields: []*AttributeDefinition{
		{Name: "heading", Type: TypeString, Required: true, MaxLength: 10},
		{Name: "count", Type: TypeInteger},
	}}

	v, err := shape.Validate(map[string]any{"heading": "Hi", "count": "3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"heading": "Hi", "count": int64(3)}, v)

	data, err := shape.Encode(v)
	require.NoError(t, err)
	back, err := shape.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = shape.Validate(map[string]any{"count": "x", "extra": 1})
	var many errs.ValidationErrors
	require.ErrorAs(t, err, &many)
	assert.Len(t, many, 3)
	assert.ErrorIs(t, err, errs.ErrMissingRequiredAttribute)
}
