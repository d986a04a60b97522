// Package export turns voxel snapshots into files a slicer or viewer can open.
package export

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxelsplace/cubeforge/voxel"
)

const (
	// SolidName names the solid in every STL document.
	SolidName = "CubeModel"
	// DefaultUnitSizeMM is the edge length of one voxel in millimetres.
	DefaultUnitSizeMM = 10.0
	// ContentType is the media type the browser download is tagged with.
	ContentType = "application/sla"
)

// Facet is one STL triangle.
type Facet struct {
	Normal   voxel.Vec3
	Vertices [3]voxel.Vec3
}

// Document is an ASCII STL solid.
type Document struct {
	Name   string
	Facets []Facet
}

// Corner order: left/right on x, bottom/top on y, back/front on z (STL axes).
var corners = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// Two triangles per face, wound so normals point outward.
var faces = [12][3]int{
	{0, 1, 5}, {0, 5, 4}, // y min
	{3, 7, 6}, {3, 6, 2}, // y max
	{4, 5, 6}, {4, 6, 7}, // z max
	{1, 0, 3}, {1, 3, 2}, // z min
	{5, 1, 2}, {5, 2, 6}, // x max
	{0, 4, 7}, {0, 7, 3}, // x min
}

// ExportSnapshot triangulates every cube as a closed box of 12 facets.
// Adjacent cubes keep their coincident inner faces. Grid Y is the vertical
// axis and becomes STL Z; grid Z becomes STL Y.
func ExportSnapshot(cubes []voxel.Cube, unitSizeMm float64) *Document {
	if !(unitSizeMm > 0) || math.IsInf(unitSizeMm, 0) {
		unitSizeMm = DefaultUnitSizeMM
	}
	half := unitSizeMm / 2
	doc := &Document{Name: SolidName, Facets: make([]Facet, 0, 12*len(cubes))}
	for _, c := range cubes {
		center := voxel.Vec3{
			X: float64(c.Position.X) * unitSizeMm,
			Y: float64(c.Position.Z) * unitSizeMm,
			Z: float64(c.Position.Y) * unitSizeMm,
		}
		var verts [8]voxel.Vec3
		for i, k := range corners {
			verts[i] = r3.Add(center, voxel.Vec3{X: k[0] * half, Y: k[1] * half, Z: k[2] * half})
		}
		for _, f := range faces {
			v1, v2, v3 := verts[f[0]], verts[f[1]], verts[f[2]]
			doc.Facets = append(doc.Facets, Facet{
				Normal:   Normal(v1, v2, v3),
				Vertices: [3]voxel.Vec3{v1, v2, v3},
			})
		}
	}
	return doc
}

// Normal returns the unit normal of a triangle, or the zero vector when the
// triangle is degenerate.
func Normal(v1, v2, v3 voxel.Vec3) voxel.Vec3 {
	n := r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1))
	length := r3.Norm(n)
	if length == 0 || math.IsNaN(length) {
		return voxel.Vec3{}
	}
	return r3.Scale(1/length, n)
}

// WriteTo writes the document. Lines are joined with "\n" and the document
// does not end with a newline.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	buf := make([]byte, 0, 64)

	buf = append(append(buf[:0], "solid "...), d.Name...)
	_, _ = bw.Write(buf)
	for _, f := range d.Facets {
		buf = append(buf[:0], "\n  facet normal "...)
		buf = appendVec(buf, f.Normal)
		buf = append(buf, "\n    outer loop"...)
		for _, v := range f.Vertices {
			buf = append(buf, "\n      vertex "...)
			buf = appendVec(buf, v)
		}
		buf = append(buf, "\n    endloop\n  endfacet"...)
		_, _ = bw.Write(buf)
	}
	buf = append(append(buf[:0], "\nendsolid "...), d.Name...)
	_, _ = bw.Write(buf)
	err := bw.Flush()
	return cw.n, err
}

// Bytes returns the encoded document.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	_, _ = d.WriteTo(&b)
	return b.Bytes()
}

func (d *Document) String() string { return string(d.Bytes()) }

// TriangleCount returns the number of facets.
func (d *Document) TriangleCount() int { return len(d.Facets) }

func appendVec(buf []byte, v voxel.Vec3) []byte {
	buf = appendFixed(buf, v.X)
	buf = append(buf, ' ')
	buf = appendFixed(buf, v.Y)
	buf = append(buf, ' ')
	return appendFixed(buf, v.Z)
}

// appendFixed prints f with six decimals. Negative zero, which cross
// products produce routinely, prints as "0.000000".
func appendFixed(buf []byte, f float64) []byte {
	if f == 0 {
		return append(buf, "0.000000"...)
	}
	return strconv.AppendFloat(buf, f, 'f', 6, 64)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
