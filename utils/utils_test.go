package utils

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

const tower = `{"cubes":[{"position":{"x":0,"y":0,"z":0},"color":"#ef4444"},{"position":{"x":0,"y":1,"z":0},"color":"#ef4444"}],"currentColor":"#ef4444"}`

func writeState(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestState2STL(t *testing.T) {
	dir := t.TempDir()
	in := writeState(t, dir, tower)
	out := filepath.Join(dir, "tower.stl")
	require.NoError(t, RunState2STL(in, out, config.Default()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "solid CubeModel\n"))
	assert.Equal(t, 24, strings.Count(string(data), "endfacet"))

	cfg := config.Default()
	cfg.UnitSizeMM = 2
	cfg.SolidName = "Tower"
	require.NoError(t, RunState2STL(in, out, cfg))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "solid Tower\n"))
	assert.Contains(t, string(data), "vertex -1.000000 -1.000000 -1.000000")
}

func TestState2GLB(t *testing.T) {
	dir := t.TempDir()
	in := writeState(t, dir, tower)
	out := filepath.Join(dir, "tower.glb")
	require.NoError(t, RunState2GLB(in, out, config.Default()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data[:4]))
}

func TestPackUnpackState(t *testing.T) {
	dir := t.TempDir()
	in := writeState(t, dir, tower)
	packed := filepath.Join(dir, "tower.cubs")
	plain := filepath.Join(dir, "tower.json")

	require.NoError(t, RunPackState(in, packed, "zstd"))
	data, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.True(t, store.IsPacked(data))

	require.NoError(t, RunUnpackState(packed, plain))
	data, err = os.ReadFile(plain)
	require.NoError(t, err)
	assert.JSONEq(t, tower, string(data))

	assert.Error(t, RunPackState(in, packed, "brotli"))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")
	out := filepath.Join(dir, "out")
	assert.Error(t, RunState2STL(missing, out, config.Default()))
	assert.Error(t, RunUnpackState(missing, out))

	bad := writeState(t, dir, `{"cubes":[]}`)
	assert.Error(t, RunState2STL(bad, out, config.Default()))
	assert.Error(t, RunState2GLB(bad, out, config.Default()))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "nothing is written on failure")
}

func TestGrowRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	g := growRandom(50, r)
	require.Equal(t, 50, g.Len())
	for _, c := range g.Snapshot() {
		assert.Contains(t, voxel.Palette[:], c.Color, "placed colors come from the palette")
		if c.Position == g.Anchor() {
			continue
		}
		neighbors := 0
		for _, n := range axisNormals {
			if _, ok := g.At(c.Position.Add(voxel.Round(n)).Vec()); ok {
				neighbors++
			}
		}
		assert.Positive(t, neighbors, "cube %v is attached", c.Position)
	}
}

func TestGenerateRandomStates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, RunGenerateRandomStates(10, 3, dir, config.Default()))
	for _, name := range []string{"0.json", "1.json", "2.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.False(t, store.IsPacked(data))
		s, err := store.Decode(data)
		require.NoError(t, err)
		assert.Len(t, s.Cubes, 10)
	}
}

func TestGenerateRandomStates_ConfiguredDirAndCompression(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "states")
	cfg.Storage.Compression = "zlib"
	require.NoError(t, RunGenerateRandomStates(4, 1, "", cfg))

	data, err := os.ReadFile(filepath.Join(cfg.Storage.Dir, "0.json"))
	require.NoError(t, err)
	require.True(t, store.IsPacked(data))
	raw, err := store.Unpack(data)
	require.NoError(t, err)
	s, err := store.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, s.Cubes, 4)
}
