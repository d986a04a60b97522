package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/cubeforge/voxel"
)

// ErrEmptySnapshot is returned when there is nothing to export.
var ErrEmptySnapshot = errors.New("export: empty snapshot")

// surfaceBuffers holds the vertex streams of a surface mesh in glTF units.
type surfaceBuffers struct {
	positions   [][3]float32
	normals     [][3]float32
	colors      [][4]float32
	translucent bool
}

// vertexColors resolves cube colors to RGBA. Colors that are not hex
// strings are drawn with DefaultColor and reported once each.
type vertexColors struct {
	rgba     map[voxel.Color][4]float32
	fallback [4]float32
}

func newVertexColors() *vertexColors {
	fallback, _ := voxel.ParseHexColor(voxel.DefaultColor)
	return &vertexColors{rgba: make(map[voxel.Color][4]float32), fallback: fallback}
}

func (vc *vertexColors) lookup(c voxel.Color) [4]float32 {
	if rgba, ok := vc.rgba[c]; ok {
		return rgba
	}
	rgba, err := voxel.ParseHexColor(c)
	if err != nil {
		slog.Warn("drawing unknown cube color with the default", "color", string(c), "err", err)
		rgba = vc.fallback
	}
	vc.rgba[c] = rgba
	return rgba
}

func buildBuffers(mesh *voxel.Mesh, scale float32) surfaceBuffers {
	b := surfaceBuffers{
		positions: make([][3]float32, len(mesh.Vertices)),
		normals:   make([][3]float32, len(mesh.Vertices)),
		colors:    make([][4]float32, len(mesh.Vertices)),
	}
	vc := newVertexColors()
	for i, v := range mesh.Vertices {
		b.positions[i] = [3]float32{v.Position[0] * scale, v.Position[1] * scale, v.Position[2] * scale}
		b.normals[i] = v.Normal
		b.colors[i] = vc.lookup(v.Color)
		if b.colors[i][3] < 1 {
			b.translucent = true
		}
	}
	return b
}

// ExportGLB writes a binary glTF preview of the structure's outer surface
// with per-vertex colors. glTF is Y-up and metric, so grid axes are kept and
// positions are in metres. The node's extras carry the cell bounds.
func ExportGLB(cubes []voxel.Cube, unitSizeMm float64) ([]byte, error) {
	if len(cubes) == 0 {
		return nil, ErrEmptySnapshot
	}
	if !(unitSizeMm > 0) || math.IsInf(unitSizeMm, 0) {
		unitSizeMm = DefaultUnitSizeMM
	}
	mesh := voxel.Surface(cubes)
	b := buildBuffers(mesh, float32(unitSizeMm/1000))

	doc := gltf.NewDocument()
	doc.Asset.Generator = "cubeforge"
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, b.positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, b.normals),
			gltf.COLOR_0:  modeler.WriteColor(doc, b.colors),
		},
		Indices:  gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
		Material: gltf.Index(0),
	}
	material := &gltf.Material{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)},
		AlphaMode:            gltf.AlphaOpaque,
	}
	if b.translucent {
		material.AlphaMode = gltf.AlphaBlend
	}
	lo, hi := voxel.BoundsOf(cubes)
	doc.Materials = []*gltf.Material{material}
	doc.Meshes = []*gltf.Mesh{{Name: SolidName, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{
		Name: SolidName,
		Mesh: gltf.Index(0),
		Extras: map[string]any{
			"cubes":   len(cubes),
			"minCell": [3]int{lo.X, lo.Y, lo.Z},
			"maxCell": [3]int{hi.X, hi.Y, hi.Z},
		},
	}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return out.Bytes(), nil
}
