package voxel

import (
	"errors"
	"fmt"
)

// Placement and removal rejections. None of them mutate the grid.
var (
	ErrOccupied         = errors.New("target cell is occupied")
	ErrUnsupported      = errors.New("target cell has no occupied face neighbour")
	ErrDegenerateNormal = errors.New("normal does not leave the anchor cell")
	ErrInvalidNormal    = errors.New("normal is not an axis-aligned unit vector")
	ErrOutOfBounds      = errors.New("cell is outside the addressable grid")
	ErrLastCube         = errors.New("the last cube cannot be removed")
	ErrNotFound         = errors.New("no cube at cell")
)

// Rejection reports why a request left the grid unchanged.
type Rejection struct {
	Reason error
	Cell   IVec3
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected at %s: %v", r.Cell, r.Reason)
}

func (r *Rejection) Unwrap() error { return r.Reason }

func reject(reason error, cell IVec3) error {
	return &Rejection{Reason: reason, Cell: cell}
}
