// Package store persists editing sessions as small JSON state blobs behind
// a key-value port.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/voxelsplace/cubeforge/voxel"
)

// StorageKey is the key the browser build stores its state under.
const StorageKey = "cube-builder-state"

// ErrEmptyState marks a blob that decoded but holds no cubes.
var ErrEmptyState = errors.New("store: state has no cubes")

// Position is a persisted cube position. Values are rounded to cells on load.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CubeRecord is one persisted cube.
type CubeRecord struct {
	Position Position `json:"position"`
	Color    string   `json:"color"`
}

// State is the persisted form of a session.
type State struct {
	Cubes        []CubeRecord `json:"cubes"`
	CurrentColor string       `json:"currentColor"`
}

// FromCubes captures a snapshot and the session's current color.
func FromCubes(cubes []voxel.Cube, current voxel.Color) *State {
	s := &State{Cubes: make([]CubeRecord, len(cubes)), CurrentColor: string(current)}
	for i, c := range cubes {
		s.Cubes[i] = CubeRecord{
			Position: Position{X: float64(c.Position.X), Y: float64(c.Position.Y), Z: float64(c.Position.Z)},
			Color:    string(c.Color),
		}
	}
	return s
}

// ToCubes converts records back into grid cubes. Records whose position
// cannot be addressed are skipped.
func (s *State) ToCubes() []voxel.Cube {
	out := make([]voxel.Cube, 0, len(s.Cubes))
	for _, r := range s.Cubes {
		p := voxel.Vec3{X: r.Position.X, Y: r.Position.Y, Z: r.Position.Z}
		k, ok := voxel.KeyOf(p)
		if !ok {
			continue
		}
		out = append(out, voxel.Cube{Position: k.Cell(), Color: voxel.Color(r.Color)})
	}
	return out
}

const stateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["cubes"],
  "properties": {
    "cubes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["position"],
        "properties": {
          "position": {
            "type": "object",
            "required": ["x", "y", "z"],
            "properties": {
              "x": {"type": "number"},
              "y": {"type": "number"},
              "z": {"type": "number"}
            }
          },
          "color": {"type": "string"}
        }
      }
    },
    "currentColor": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func stateValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("state.schema.json", stateSchema)
	})
	return schema, schemaErr
}

// Decode parses and validates a JSON state blob.
func Decode(data []byte) (*State, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyState
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	sch, err := stateValidator()
	if err != nil {
		return nil, fmt.Errorf("compile state schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate state: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if len(s.Cubes) == 0 {
		return nil, ErrEmptyState
	}
	return &s, nil
}

// Encode marshals s as JSON.
func Encode(s *State) ([]byte, error) {
	return json.Marshal(s)
}
