package voxel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_RoundTrip(t *testing.T) {
	cells := []IVec3{
		{0, 0, 0}, {1, -1, 2}, {-7, 300, -4096},
		{MinCoord, MinCoord, MinCoord}, {MaxCoord, MaxCoord, MaxCoord},
	}
	for _, c := range cells {
		k, ok := CellKey(c)
		require.True(t, ok, "%v", c)
		assert.Equal(t, c, k.Cell())
	}
}

func TestKeyOf_RoundsBeforeHashing(t *testing.T) {
	a, ok := KeyOf(v(1.0000001, 1.9999999, -0.0000003))
	require.True(t, ok)
	b, _ := CellKey(IVec3{1, 2, 0})
	assert.Equal(t, b, a)
}

func TestKeyOf_Unaddressable(t *testing.T) {
	for _, p := range []Vec3{
		v(math.NaN(), 0, 0),
		v(0, math.Inf(1), 0),
		v(0, 0, MaxCoord+1),
		v(MinCoord-1, 0, 0),
	} {
		_, ok := KeyOf(p)
		assert.False(t, ok, "%v", p)
	}
}

func TestParseHexColor(t *testing.T) {
	rgba, err := ParseHexColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, rgba)

	rgba, err = ParseHexColor("#00ff0080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, rgba[3], 1e-6)

	for _, bad := range []Color{"", "ff0000", "#ff00", "#gg0000"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, "%q", bad)
	}
	for _, c := range Palette {
		_, err := ParseHexColor(c)
		assert.NoError(t, err, "%q", c)
	}
}
