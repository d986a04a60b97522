//go:build !(js && wasm)

package utils

import (
	"context"
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

// seedSQLite saves a two-cube state under key in a fresh database.
func seedSQLite(t *testing.T, dbPath, key string) {
	t.Helper()
	kv, err := store.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer kv.Close()
	g := voxel.NewGrid()
	_, err = g.PlaceAdjacentTo(voxel.Vec3{}, voxel.Vec3{X: 1}, "#22c55e")
	require.NoError(t, err)
	st := store.NewBlobStore(kv, key).Packed(store.CompZlib)
	require.NoError(t, st.Save(context.Background(), store.FromCubes(g.Snapshot(), "#22c55e")))
}

func TestSQLite2STL(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cubes.db")
	seedSQLite(t, dbPath, store.StorageKey)

	out := filepath.Join(dir, "out.stl")
	require.NoError(t, RunSQLite2STL(dbPath, out, "", config.Default()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 24, strings.Count(string(data), "outer loop"))

	err = RunSQLite2STL(dbPath, out, "other-key", config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"other-key"`)
}

func TestSQLite2STL_ConfiguredDatabaseAndKey(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.SQLite = filepath.Join(dir, "configured.db")
	cfg.Storage.Key = "tower"
	cfg.SolidName = "Tower"
	seedSQLite(t, cfg.Storage.SQLite, "tower")

	out := filepath.Join(dir, "tower.stl")
	require.NoError(t, RunSQLite2STL("", out, "", cfg))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "solid Tower\n"))
}
