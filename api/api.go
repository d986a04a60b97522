// Package api is the host-facing surface of cubeforge: an editing Session
// for interactive hosts and byte-in/byte-out helpers for tools that only
// convert saved state.
package api

import (
	"fmt"

	"github.com/voxelsplace/cubeforge/export"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

// decodeBlob accepts plain JSON state or a packed blob.
func decodeBlob(blob []byte) (*store.State, error) {
	raw, err := store.Unpack(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack state: %w", err)
	}
	s, err := store.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return s, nil
}

// snapshotOf runs state through a grid so duplicate cells collapse and the
// order matches a live session's snapshot.
func snapshotOf(s *store.State) []voxel.Cube {
	return voxel.Restore(s.ToCubes(), voxel.WithDefaultColor(voxel.Color(s.CurrentColor))).Snapshot()
}

// StateToSTL converts a saved state blob to an ASCII STL document. An empty
// solidName keeps export.SolidName.
func StateToSTL(blob []byte, unitSizeMm float64, solidName string) ([]byte, error) {
	s, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	doc := export.ExportSnapshot(snapshotOf(s), unitSizeMm)
	if solidName != "" {
		doc.Name = solidName
	}
	return doc.Bytes(), nil
}

// StateToGLB converts a saved state blob to a binary glTF of its surface.
func StateToGLB(blob []byte, unitSizeMm float64) ([]byte, error) {
	s, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	return export.ExportGLB(snapshotOf(s), unitSizeMm)
}

// PackState validates a state blob and frames it with comp.
func PackState(blob []byte, comp store.Compression) ([]byte, error) {
	s, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	raw, err := store.Encode(s)
	if err != nil {
		return nil, err
	}
	return store.Pack(raw, comp)
}

// UnpackState returns the plain JSON form of a packed or plain state blob.
func UnpackState(blob []byte) ([]byte, error) {
	s, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	return store.Encode(s)
}
