package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariant_Canonical(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		want    string
	}{
		{name: "nil variant", variant: nil, want: "{}"},
		{name: "empty variant", variant: Variant{}, want: "{}"},
		{
			name:    "keys are sorted",
			variant: Variant{"size": "L", "color": "red"},
			want:    `{"color":"red","size":"L"}`,
		},
		{
			name:    "nested values",
			variant: Variant{"dims": map[string]interface{}{"w": "10", "h": "5"}},
			want:    `{"dims":{"h":"5","w":"10"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.variant.Canonical())
		})
	}
}

func TestVariant_Equal(t *testing.T) {
	a := Variant{"color": "red", "size": "L"}
	b := Variant{"size": "L", "color": "red"}
	c := Variant{"size": "M", "color": "red"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Variant(nil).Equal(Variant{}))
}

func TestVariant_ScanRoundTrip(t *testing.T) {
	original := Variant{"color": "blue", "size": "XL"}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned Variant
	require.NoError(t, scanned.Scan(value))
	assert.True(t, original.Equal(scanned))

	var fromNil Variant
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, "{}", fromNil.Canonical())
}

func TestStringList_RoundTrip(t *testing.T) {
	images := StringList{"a.jpg", "b.jpg"}

	value, err := images.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a.jpg","b.jpg"]`, value)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, images, scanned)

	empty := StringList{}
	value, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}
