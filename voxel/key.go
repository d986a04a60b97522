package voxel

// Key is the packed identity of a grid cell: each axis is biased into
// [0, 2^21) and the three axes are Morton-interleaved into 63 bits.
type Key uint64

const (
	keyBits = 21
	keyBias = 1 << (keyBits - 1)

	// MinCoord and MaxCoord bound the cells a Key can address.
	MinCoord = -keyBias
	MaxCoord = keyBias - 1
)

// InBounds reports whether every axis of c fits in a Key.
func InBounds(c IVec3) bool {
	return inRange(c.X) && inRange(c.Y) && inRange(c.Z)
}

func inRange(v int) bool { return v >= MinCoord && v <= MaxCoord }

// KeyOf rounds p to its cell and packs it. The second result is false when
// the cell is outside the addressable range.
func KeyOf(p Vec3) (Key, bool) {
	if !addressable(p.X) || !addressable(p.Y) || !addressable(p.Z) {
		return 0, false
	}
	return CellKey(Round(p))
}

// addressable rejects NaN, infinities and magnitudes that would overflow int
// conversion before rounding.
func addressable(v float64) bool {
	return v >= MinCoord-1 && v <= MaxCoord+1
}

// CellKey packs an integer cell.
func CellKey(c IVec3) (Key, bool) {
	if !InBounds(c) {
		return 0, false
	}
	return Key(morton3D64(uint32(c.X+keyBias), uint32(c.Y+keyBias), uint32(c.Z+keyBias))), true
}

// Cell unpacks k back into grid coordinates.
func (k Key) Cell() IVec3 {
	x, y, z := mortonDecode3D64(uint64(k))
	return IVec3{int(x) - keyBias, int(y) - keyBias, int(z) - keyBias}
}

func morton3D64(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

func mortonDecode3D64(index uint64) (x, y, z uint32) {
	x = uint32(compact1By2(index))
	y = uint32(compact1By2(index >> 1))
	z = uint32(compact1By2(index >> 2))
	return
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return x
}
