package voxel

import (
	"encoding/binary"
	"slices"

	xxhash "github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cube is one occupied grid cell.
type Cube struct {
	Position IVec3
	Color    Color
}

// PlaceRequest asks for a cube next to the picked face of an existing one.
type PlaceRequest struct {
	Anchor Vec3
	Normal Vec3
	Color  Color
}

// Grid owns the set of occupied cells. It always holds at least one cube and
// is not safe for concurrent use; hosts drive it from a single event loop.
type Grid struct {
	cells        map[Key]Cube
	anchor       IVec3
	defaultColor Color

	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// Option configures a Grid.
type Option func(*Grid)

// WithAnchor sets the cell the seed cube is placed at.
func WithAnchor(c IVec3) Option {
	return func(g *Grid) {
		if InBounds(c) {
			g.anchor = c
		}
	}
}

// WithDefaultColor sets the color used for the seed cube.
func WithDefaultColor(c Color) Option {
	return func(g *Grid) {
		if c != "" {
			g.defaultColor = c
		}
	}
}

func newGrid(opts []Option) *Grid {
	g := &Grid{cells: make(map[Key]Cube), defaultColor: DefaultColor}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGrid returns a grid holding a single seed cube at the anchor.
func NewGrid(opts ...Option) *Grid {
	g := newGrid(opts)
	g.seed()
	return g
}

// Restore rebuilds a grid from persisted cubes. Duplicates keep the first
// occurrence and out-of-range cubes are dropped; an empty result is seeded.
func Restore(cubes []Cube, opts ...Option) *Grid {
	g := newGrid(opts)
	for _, c := range cubes {
		k, ok := CellKey(c.Position)
		if !ok {
			continue
		}
		if _, dup := g.cells[k]; dup {
			continue
		}
		if c.Color == "" {
			c.Color = g.defaultColor
		}
		g.cells[k] = c
	}
	if len(g.cells) == 0 {
		g.seed()
	}
	return g
}

func (g *Grid) seed() Cube {
	k, _ := CellKey(g.anchor)
	c := Cube{Position: g.anchor, Color: g.defaultColor}
	g.cells[k] = c
	return c
}

// Len returns the number of cubes.
func (g *Grid) Len() int { return len(g.cells) }

// Anchor returns the seed cell.
func (g *Grid) Anchor() IVec3 { return g.anchor }

// DefaultColor returns the color Clear reseeds with.
func (g *Grid) DefaultColor() Color { return g.defaultColor }

// SetDefaultColor changes the color Clear reseeds with.
func (g *Grid) SetDefaultColor(c Color) {
	if c != "" {
		g.defaultColor = c
	}
}

// At returns the cube occupying the cell that p rounds to.
func (g *Grid) At(p Vec3) (Cube, bool) {
	k, ok := KeyOf(p)
	if !ok {
		return Cube{}, false
	}
	c, ok := g.cells[k]
	return c, ok
}

func (g *Grid) occupied(c IVec3) bool {
	k, ok := CellKey(c)
	if !ok {
		return false
	}
	_, ok = g.cells[k]
	return ok
}

func (g *Grid) supported(c IVec3) bool {
	for _, off := range faceOffsets {
		if g.occupied(c.Add(off)) {
			return true
		}
	}
	return false
}

// check applies the placement rule to a target cell.
func (g *Grid) check(target IVec3) error {
	if !InBounds(target) {
		return ErrOutOfBounds
	}
	if g.occupied(target) {
		return ErrOccupied
	}
	if !g.supported(target) {
		return ErrUnsupported
	}
	return nil
}

// IsValidPlacement reports whether a cube could be placed at position.
func (g *Grid) IsValidPlacement(position Vec3) bool {
	if _, ok := KeyOf(position); !ok {
		return false
	}
	return g.check(Round(position)) == nil
}

// PlaceAdjacentTo places a cube at anchor+normal.
func (g *Grid) PlaceAdjacentTo(anchor, normal Vec3, color Color) (Cube, error) {
	return g.TryPlace(PlaceRequest{Anchor: anchor, Normal: normal, Color: color})
}

// TryPlace places a cube on the face of the anchor cell that normal points
// out of. A rejected request returns a *Rejection and leaves the grid as is.
func (g *Grid) TryPlace(req PlaceRequest) (Cube, error) {
	from := Round(req.Anchor)
	if _, err := axisNormal(req.Normal); err != nil {
		return Cube{}, reject(err, from)
	}
	raw := r3.Add(req.Anchor, req.Normal)
	if _, ok := KeyOf(raw); !ok {
		return Cube{}, reject(ErrOutOfBounds, from)
	}
	target := Round(raw)
	if target == from {
		return Cube{}, reject(ErrDegenerateNormal, target)
	}
	if err := g.check(target); err != nil {
		return Cube{}, reject(err, target)
	}
	color := req.Color
	if color == "" {
		color = g.defaultColor
	}
	k, _ := CellKey(target)
	c := Cube{Position: target, Color: color}
	g.cells[k] = c
	g.emit(Event{Kind: EventPlaced, Cube: c, Count: len(g.cells)})
	return c, nil
}

// RemoveAt deletes the cube at position. The last cube is protected no
// matter which cell is targeted. Remaining cubes are not re-checked for
// connectivity, so a removal may split the structure.
func (g *Grid) RemoveAt(position Vec3) (Cube, error) {
	cell := Round(position)
	if len(g.cells) <= 1 {
		return Cube{}, reject(ErrLastCube, cell)
	}
	k, ok := KeyOf(position)
	if !ok {
		return Cube{}, reject(ErrNotFound, cell)
	}
	c, ok := g.cells[k]
	if !ok {
		return Cube{}, reject(ErrNotFound, cell)
	}
	delete(g.cells, k)
	g.emit(Event{Kind: EventRemoved, Cube: c, Count: len(g.cells)})
	return c, nil
}

// SetColorOfSoleOccupant recolors the only cube, if there is exactly one.
func (g *Grid) SetColorOfSoleOccupant(color Color) bool {
	if len(g.cells) != 1 || color == "" {
		return false
	}
	for k, old := range g.cells {
		c := old
		c.Color = color
		g.cells[k] = c
		if old.Color != color {
			g.emit(Event{Kind: EventRecolored, Cube: c, Previous: old, Count: 1})
		}
	}
	return true
}

// Clear empties the grid and reseeds the anchor with the default color.
func (g *Grid) Clear() {
	clear(g.cells)
	c := g.seed()
	g.emit(Event{Kind: EventCleared, Cube: c, Count: 1})
}

// Snapshot copies every cube, ordered by Key.
func (g *Grid) Snapshot() []Cube {
	keys := g.sortedKeys()
	out := make([]Cube, len(keys))
	for i, k := range keys {
		out[i] = g.cells[k]
	}
	return out
}

func (g *Grid) sortedKeys() []Key {
	keys := make([]Key, 0, len(g.cells))
	for k := range g.cells {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Digest hashes the occupied cells and their colors. Grids holding the same
// cubes produce the same digest.
func (g *Grid) Digest() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, k := range g.sortedKeys() {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(string(g.cells[k].Color))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Bounds returns the inclusive min and max cells of the structure.
func (g *Grid) Bounds() (lo, hi IVec3) {
	return BoundsOf(g.Snapshot())
}

// BoundsOf returns the inclusive min and max cells of cubes, or two zero
// cells when cubes is empty.
func BoundsOf(cubes []Cube) (lo, hi IVec3) {
	for i, c := range cubes {
		p := c.Position
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = IVec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = IVec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Subscribe registers l for events. The returned func unregisters it.
func (g *Grid) Subscribe(l Listener) (cancel func()) {
	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listenerEntry{id: id, fn: l})
	return func() {
		g.listeners = slices.DeleteFunc(g.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

func (g *Grid) emit(e Event) {
	for _, l := range slices.Clone(g.listeners) {
		l.fn(e)
	}
}
