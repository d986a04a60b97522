package utils

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

var axisNormals = [6]voxel.Vec3{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// growRandom grows a structure of up to size cubes from the seed by placing
// each new cube on a random face of a random existing cube.
func growRandom(size int, r *rand.Rand) *voxel.Grid {
	g := voxel.NewGrid()
	// Bounded so a saturated grid cannot loop forever.
	for attempts := 0; g.Len() < size && attempts < size*64; attempts++ {
		cubes := g.Snapshot()
		from := cubes[r.Intn(len(cubes))]
		_, _ = g.TryPlace(voxel.PlaceRequest{
			Anchor: from.Position.Vec(),
			Normal: axisNormals[r.Intn(len(axisNormals))],
			Color:  voxel.Palette[r.Intn(len(voxel.Palette))],
		})
	}
	return g
}

// RunGenerateRandomStates writes amount state files named 0.json ..
// (amount-1).json to outDir, each a random structure of size cubes. Files
// are packed with the configured compression; an empty outDir uses the
// configured directory.
func RunGenerateRandomStates(size, amount int, outDir string, cfg *config.Config) error {
	if size < 1 {
		size = 1
	}
	if amount < 0 {
		amount = 0
	}
	if outDir == "" {
		outDir = cfg.Storage.Dir
	}
	kv, err := store.NewFileKV(outDir)
	if err != nil {
		return err
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()
	for i := 0; i < amount; i++ {
		g := growRandom(size, r)
		st := cfg.Store(kv, strconv.Itoa(i))
		if err := st.Save(ctx, store.FromCubes(g.Snapshot(), g.DefaultColor())); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Join(outDir, st.Key()), err)
		}
	}
	return nil
}
