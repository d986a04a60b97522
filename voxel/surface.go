package voxel

// Vertex is a mesh corner in grid units with the outward normal of its
// face and the color of its cube.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    Color
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// dirSpec describes one cube face: u x v points along normal.
type dirSpec struct {
	normal IVec3
	axis   int
	u, v   int
}

var directions = []dirSpec{
	{IVec3{1, 0, 0}, 0, 1, 2},
	{IVec3{-1, 0, 0}, 0, 2, 1},
	{IVec3{0, 1, 0}, 1, 2, 0},
	{IVec3{0, -1, 0}, 1, 0, 2},
	{IVec3{0, 0, 1}, 2, 0, 1},
	{IVec3{0, 0, -1}, 2, 1, 0},
}

func (d dirSpec) positive() bool {
	return d.normal.X+d.normal.Y+d.normal.Z > 0
}

// Surface builds the outer shell of a set of cubes: one quad for every face
// that is not shared with another cube in the set. Cubes are centred on
// their cell and one unit wide.
func Surface(cubes []Cube) *Mesh {
	occ := make(map[IVec3]struct{}, len(cubes))
	for _, c := range cubes {
		occ[c.Position] = struct{}{}
	}
	mesh := &Mesh{}
	for _, c := range cubes {
		for _, dir := range directions {
			if _, hidden := occ[c.Position.Add(dir.normal)]; hidden {
				continue
			}
			addQuad(mesh, dir, c)
		}
	}
	return mesh
}

func addQuad(mesh *Mesh, dir dirSpec, c Cube) {
	center := [3]float32{float32(c.Position.X), float32(c.Position.Y), float32(c.Position.Z)}
	base := center
	for i := range base {
		base[i] -= 0.5
	}
	if dir.positive() {
		base[dir.axis] += 1
	}
	normal := [3]float32{float32(dir.normal.X), float32(dir.normal.Y), float32(dir.normal.Z)}
	corner := func(du, dv float32) Vertex {
		p := base
		p[dir.u] += du
		p[dir.v] += dv
		return Vertex{Position: p, Normal: normal, Color: c.Color}
	}
	verts := [4]Vertex{corner(0, 0), corner(1, 0), corner(1, 1), corner(0, 1)}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}
