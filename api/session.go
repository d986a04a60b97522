package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/export"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

// Session is one editing session: a grid, the color new cubes get, and the
// store the grid is saved to after each change. Like the grid it wraps, it
// is driven from a single goroutine.
type Session struct {
	id    uuid.UUID
	ctx   context.Context
	grid  *voxel.Grid
	store store.Store
	log   *slog.Logger

	currentColor voxel.Color
	unitSizeMM   float64
	solidName    string
	gridOpts     []voxel.Option

	saved      bool
	lastDigest uint64
	lastColor  voxel.Color
	lastErr    error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConfig applies unit size, solid name, anchor and default color.
func WithConfig(cfg *config.Config) SessionOption {
	return func(s *Session) {
		if cfg == nil {
			return
		}
		s.unitSizeMM = cfg.UnitSizeMM
		if cfg.SolidName != "" {
			s.solidName = cfg.SolidName
		}
		if cfg.DefaultColor != "" {
			s.currentColor = voxel.Color(cfg.DefaultColor)
		}
		s.gridOpts = append(s.gridOpts, voxel.WithAnchor(cfg.AnchorCell()))
	}
}

// WithUnitSize sets the voxel edge length used by exports.
func WithUnitSize(mm float64) SessionOption {
	return func(s *Session) { s.unitSizeMM = mm }
}

// NewSession restores the saved state from st, or starts from a single seed
// cube when nothing usable is stored. Load failures are logged, not returned.
func NewSession(ctx context.Context, st store.Store, opts ...SessionOption) *Session {
	s := &Session{
		id:           uuid.New(),
		ctx:          ctx,
		store:        st,
		log:          slog.Default(),
		currentColor: voxel.DefaultColor,
		unitSizeMM:   export.DefaultUnitSizeMM,
		solidName:    export.SolidName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id.String())

	var restored []voxel.Cube
	if st != nil {
		state, ok, err := st.Load(ctx)
		switch {
		case err != nil:
			s.log.Warn("discarding saved state", "err", err)
		case !ok:
			s.log.Debug("no saved state")
		default:
			restored = state.ToCubes()
			if state.CurrentColor != "" {
				s.currentColor = voxel.Color(state.CurrentColor)
			}
		}
	}
	gridOpts := append(s.gridOpts, voxel.WithDefaultColor(s.currentColor))
	if len(restored) > 0 {
		s.grid = voxel.Restore(restored, gridOpts...)
		s.markSaved()
	} else {
		s.grid = voxel.NewGrid(gridOpts...)
	}
	s.grid.Subscribe(func(voxel.Event) { s.autosave() })
	return s
}

// ID identifies the session in log records.
func (s *Session) ID() uuid.UUID { return s.id }

// Grid exposes the underlying grid for read-only queries.
func (s *Session) Grid() *voxel.Grid { return s.grid }

// CurrentColor is the color new cubes are placed with.
func (s *Session) CurrentColor() voxel.Color { return s.currentColor }

// TryPlace places a cube with the request's color, or the current color
// when the request leaves it empty.
func (s *Session) TryPlace(req voxel.PlaceRequest) (voxel.Cube, error) {
	if req.Color == "" {
		req.Color = s.currentColor
	}
	return s.grid.TryPlace(req)
}

// Place puts a current-color cube on the picked face.
func (s *Session) Place(anchor, normal voxel.Vec3) (voxel.Cube, error) {
	return s.TryPlace(voxel.PlaceRequest{Anchor: anchor, Normal: normal})
}

// Remove deletes the cube at position. The last cube is never removed.
func (s *Session) Remove(position voxel.Vec3) (voxel.Cube, error) {
	return s.grid.RemoveAt(position)
}

// IsValidPlacement reports whether a cube could be placed at position.
func (s *Session) IsValidPlacement(position voxel.Vec3) bool {
	return s.grid.IsValidPlacement(position)
}

// SetCurrentColor changes the placement color. It also becomes the color a
// cleared grid is seeded with, and recolors the grid when it holds only the
// seed cube.
func (s *Session) SetCurrentColor(c voxel.Color) {
	if c == "" {
		return
	}
	s.currentColor = c
	s.grid.SetDefaultColor(c)
	s.grid.SetColorOfSoleOccupant(c)
	s.autosave()
}

// Clear resets the grid to a single seed cube.
func (s *Session) Clear() { s.grid.Clear() }

// Bounds returns the inclusive min and max cells of the structure.
func (s *Session) Bounds() (lo, hi voxel.IVec3) { return s.grid.Bounds() }

// Snapshot returns the cubes in stable order.
func (s *Session) Snapshot() []voxel.Cube { return s.grid.Snapshot() }

// Cubes is the persisted form of the current snapshot.
func (s *Session) Cubes() *store.State {
	return store.FromCubes(s.grid.Snapshot(), s.currentColor)
}

// Subscribe registers a listener for grid events.
func (s *Session) Subscribe(l voxel.Listener) (cancel func()) {
	return s.grid.Subscribe(l)
}

// LastSaveError returns the error of the most recent failed save, or nil
// once a later save succeeds.
func (s *Session) LastSaveError() error { return s.lastErr }

// Save writes the state when it changed since the last successful save.
func (s *Session) Save() error {
	if s.store == nil || !s.dirty() {
		return nil
	}
	if err := s.store.Save(s.ctx, s.Cubes()); err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	s.markSaved()
	return nil
}

func (s *Session) autosave() {
	if err := s.Save(); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		s.log.Log(s.ctx, level, "saving state failed", "err", err, "cubes", s.grid.Len())
	}
}

func (s *Session) dirty() bool {
	return !s.saved || s.grid.Digest() != s.lastDigest || s.currentColor != s.lastColor
}

func (s *Session) markSaved() {
	s.saved = true
	s.lastDigest = s.grid.Digest()
	s.lastColor = s.currentColor
}

// ExportSTL renders the grid as an ASCII STL document and suggests a
// download name for it.
func (s *Session) ExportSTL(now time.Time) (data []byte, filename string) {
	doc := export.ExportSnapshot(s.grid.Snapshot(), s.unitSizeMM)
	doc.Name = s.solidName
	return doc.Bytes(), export.SuggestedFilename(now)
}

// ExportGLB renders the visible surface of the grid as a binary glTF.
func (s *Session) ExportGLB(now time.Time) (data []byte, filename string, err error) {
	data, err = export.ExportGLB(s.grid.Snapshot(), s.unitSizeMM)
	if err != nil {
		return nil, "", err
	}
	return data, export.SuggestedGLBFilename(now), nil
}
