package voxel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a real-valued world-space vector as reported by the picking layer.
type Vec3 = r3.Vec

// IVec3 is an integer grid cell.
type IVec3 struct {
	X, Y, Z int
}

func (v IVec3) Add(o IVec3) IVec3 { return IVec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v IVec3) Vec() Vec3 { return Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)} }

func (v IVec3) String() string { return fmt.Sprintf("%d,%d,%d", v.X, v.Y, v.Z) }

// Round snaps a world position to the grid cell it belongs to.
func Round(p Vec3) IVec3 {
	return IVec3{int(math.Round(p.X)), int(math.Round(p.Y)), int(math.Round(p.Z))}
}

// faceOffsets lists the six face-adjacent neighbours of a cell.
var faceOffsets = [6]IVec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// axisTolerance bounds how far a picked normal may drift from a unit axis.
const axisTolerance = 1e-6

// axisNormal maps a face normal to its grid offset. It fails for the zero
// vector and for anything that is not one of the six axis unit vectors.
func axisNormal(n Vec3) (IVec3, error) {
	if n.X == 0 && n.Y == 0 && n.Z == 0 {
		return IVec3{}, ErrDegenerateNormal
	}
	off := Round(n)
	nonZero := 0
	for _, c := range [3]int{off.X, off.Y, off.Z} {
		switch c {
		case 0:
		case 1, -1:
			nonZero++
		default:
			return IVec3{}, ErrInvalidNormal
		}
	}
	if nonZero != 1 {
		if nonZero == 0 {
			return IVec3{}, ErrDegenerateNormal
		}
		return IVec3{}, ErrInvalidNormal
	}
	d := r3.Sub(n, off.Vec())
	if r3.Norm(d) > axisTolerance {
		return IVec3{}, ErrInvalidNormal
	}
	return off, nil
}
