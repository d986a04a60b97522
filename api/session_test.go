package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

var (
	up    = voxel.Vec3{Y: 1}
	east  = voxel.Vec3{X: 1}
	quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type countingStore struct {
	store.Store
	saves   int
	saveErr error
}

func (c *countingStore) Save(ctx context.Context, s *store.State) error {
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.Store.Save(ctx, s)
}

func TestSession_FreshStartAutosaves(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{Store: store.NewMemoryStore()}
	s := NewSession(ctx, st, WithLogger(quiet))
	require.Equal(t, 1, s.Grid().Len())
	assert.Equal(t, 0, st.saves)

	c, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	assert.Equal(t, voxel.IVec3{Y: 1}, c.Position)
	assert.Equal(t, voxel.DefaultColor, c.Color)
	assert.Equal(t, 1, st.saves)

	state, ok, err := st.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, state.Cubes, 2)
	assert.Equal(t, string(voxel.DefaultColor), state.CurrentColor)
}

func TestSession_RejectedPlacementDoesNotSave(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	s := NewSession(context.Background(), st, WithLogger(quiet))
	_, err := s.Place(voxel.Vec3{}, voxel.Vec3{})
	require.ErrorIs(t, err, voxel.ErrDegenerateNormal)
	_, err = s.Remove(voxel.Vec3{})
	require.ErrorIs(t, err, voxel.ErrLastCube)
	assert.Equal(t, 0, st.saves)
}

func TestSession_RestoresSavedState(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	first := NewSession(ctx, st, WithLogger(quiet))
	first.SetCurrentColor("#3b82f6")
	_, err := first.Place(voxel.Vec3{}, east)
	require.NoError(t, err)

	second := NewSession(ctx, st, WithLogger(quiet))
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, voxel.Color("#3b82f6"), second.CurrentColor())
	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t, first.Grid().Digest(), second.Grid().Digest())
}

func TestSession_CorruptStateStartsFresh(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, store.StorageKey, []byte(`{"cubes": "nope"}`)))

	var logs bytes.Buffer
	s := NewSession(ctx, store.NewBlobStore(kv, ""), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	assert.Equal(t, 1, s.Grid().Len())
	assert.Contains(t, logs.String(), "discarding saved state")
	assert.Contains(t, logs.String(), "session="+s.ID().String())
}

func TestSession_NilStore(t *testing.T) {
	s := NewSession(context.Background(), nil, WithLogger(quiet))
	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	assert.NoError(t, s.LastSaveError())
}

func TestSession_SaveFailureIsKept(t *testing.T) {
	boom := errors.New("quota exceeded")
	st := &countingStore{Store: store.NewMemoryStore(), saveErr: boom}
	var logs bytes.Buffer
	s := NewSession(context.Background(), st, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err, "save failures never fail the edit")
	assert.ErrorIs(t, s.LastSaveError(), boom)
	assert.Contains(t, logs.String(), "saving state failed")
	assert.Equal(t, 2, s.Grid().Len())

	st.saveErr = nil
	_, err = s.Place(voxel.Vec3{}, east)
	require.NoError(t, err)
	assert.NoError(t, s.LastSaveError())
}

func TestSession_SetCurrentColor(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	s := NewSession(context.Background(), st, WithLogger(quiet))

	s.SetCurrentColor("#22c55e")
	assert.Equal(t, voxel.Color("#22c55e"), s.Snapshot()[0].Color, "sole cube follows the color")
	assert.Equal(t, 1, st.saves)

	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	s.SetCurrentColor("#a855f7")
	for _, c := range s.Snapshot() {
		assert.Equal(t, voxel.Color("#22c55e"), c.Color)
	}
	assert.Equal(t, 3, st.saves, "color-only change is still saved")

	s.SetCurrentColor("#a855f7")
	s.SetCurrentColor("")
	assert.Equal(t, 3, st.saves)
	assert.Equal(t, voxel.Color("#a855f7"), s.CurrentColor())
}

func TestSession_ClearUsesCurrentColor(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	s := NewSession(context.Background(), st, WithLogger(quiet))
	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	_, err = s.Place(voxel.Vec3{}, east)
	require.NoError(t, err)
	s.SetCurrentColor("#f97316")

	s.Clear()
	require.Equal(t, []voxel.Cube{{Color: "#f97316"}}, s.Snapshot())
	saves := st.saves
	s.Clear()
	assert.Equal(t, saves, st.saves, "clearing a seed-only grid changes nothing")
}

func TestSession_TryPlaceColor(t *testing.T) {
	s := NewSession(context.Background(), nil, WithLogger(quiet))
	c, err := s.TryPlace(voxel.PlaceRequest{Normal: up, Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, voxel.Color("#000000"), c.Color)
	assert.False(t, s.IsValidPlacement(voxel.Vec3{Y: 1}))
	assert.True(t, s.IsValidPlacement(voxel.Vec3{Y: 2}))
}

func TestSession_Subscribe(t *testing.T) {
	s := NewSession(context.Background(), nil, WithLogger(quiet))
	var kinds []voxel.EventKind
	cancel := s.Subscribe(func(e voxel.Event) { kinds = append(kinds, e.Kind) })
	_, _ = s.Place(voxel.Vec3{}, up)
	_, _ = s.Remove(voxel.Vec3{Y: 1})
	cancel()
	_, _ = s.Place(voxel.Vec3{}, up)
	assert.Equal(t, []voxel.EventKind{voxel.EventPlaced, voxel.EventRemoved}, kinds)
}

func TestSession_WithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UnitSizeMM = 2
	cfg.SolidName = "Tower"
	cfg.DefaultColor = "#14b8a6"
	cfg.Anchor = [3]int{0, 5, 0}
	s := NewSession(context.Background(), nil, WithLogger(quiet), WithConfig(cfg))

	require.Equal(t, []voxel.Cube{{Position: voxel.IVec3{Y: 5}, Color: "#14b8a6"}}, s.Snapshot())
	data, _ := s.ExportSTL(time.Now())
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "solid Tower\n"))
	assert.True(t, strings.HasSuffix(text, "\nendsolid Tower"))
	assert.Contains(t, text, "vertex -1.000000 -1.000000 9.000000")
}

func TestSession_WithConfigKeepsDefaultColorWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultColor = ""
	cfg.SolidName = ""
	s := NewSession(context.Background(), nil, WithLogger(quiet), WithConfig(cfg))

	assert.Equal(t, voxel.DefaultColor, s.CurrentColor())
	assert.Equal(t, voxel.DefaultColor, s.Snapshot()[0].Color)
	c, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	assert.Equal(t, voxel.DefaultColor, c.Color)
	data, _ := s.ExportSTL(time.Now())
	assert.True(t, strings.HasPrefix(string(data), "solid CubeModel\n"))
}

func TestSession_Bounds(t *testing.T) {
	s := NewSession(context.Background(), nil, WithLogger(quiet))
	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	_, err = s.Place(voxel.Vec3{}, voxel.Vec3{X: -1})
	require.NoError(t, err)
	lo, hi := s.Bounds()
	assert.Equal(t, voxel.IVec3{X: -1}, lo)
	assert.Equal(t, voxel.IVec3{Y: 1}, hi)
}

func TestSession_Exports(t *testing.T) {
	s := NewSession(context.Background(), nil, WithLogger(quiet))
	_, err := s.Place(voxel.Vec3{}, up)
	require.NoError(t, err)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	stl, name := s.ExportSTL(now)
	assert.Equal(t, "cube-model-2026-10-16.stl", name)
	assert.Equal(t, 24, strings.Count(string(stl), "facet normal"))

	glb, name, err := s.ExportGLB(now)
	require.NoError(t, err)
	assert.Equal(t, "cube-model-2026-10-16.glb", name)
	assert.Equal(t, []byte("glTF"), glb[:4])
}
