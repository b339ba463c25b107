package render

import (
	"sort"

	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a triangle in 3D space.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle following the right hand
// rule on its vertex order.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	n := r3.Cross(e1, e2)
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{}
}

// Surface returns the triangles bounding m: every Tria3 cell, every Quad4
// cell split along its 0-2 diagonal and the faces of Tria4 cells not shared
// with another tetrahedron. Edges and isolated points are skipped.
func Surface(m *mesh.Mesh) []Triangle3 {
	model := make([]Triangle3, 0, len(m.Tria3)+2*len(m.Quad4))
	at := func(i, j, k int) Triangle3 {
		return Triangle3{m.Point[i].Coord, m.Point[j].Coord, m.Point[k].Coord}
	}
	for _, c := range m.Tria3 {
		model = append(model, at(c.Index[0], c.Index[1], c.Index[2]))
	}
	for _, c := range m.Quad4 {
		model = append(model,
			at(c.Index[0], c.Index[1], c.Index[2]),
			at(c.Index[0], c.Index[2], c.Index[3]),
		)
	}
	for _, f := range boundaryFaces(m.Tria4) {
		model = append(model, at(f[0], f[1], f[2]))
	}
	return model
}

// boundaryFaces returns tetrahedron faces referenced exactly once, in cell
// order.
func boundaryFaces(tetras []mesh.Tria4) [][3]int {
	if len(tetras) == 0 {
		return nil
	}
	// Faces oriented outward for a positively oriented tetrahedron.
	local := [4][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	count := make(map[[3]int]int, 2*len(tetras))
	key := func(f [3]int) [3]int {
		s := f
		sort.Ints(s[:])
		return s
	}
	for _, c := range tetras {
		for _, l := range local {
			count[key([3]int{c.Index[l[0]], c.Index[l[1]], c.Index[l[2]]})]++
		}
	}
	var faces [][3]int
	for _, c := range tetras {
		for _, l := range local {
			f := [3]int{c.Index[l[0]], c.Index[l[1]], c.Index[l[2]]}
			if count[key(f)] == 1 {
				faces = append(faces, f)
			}
		}
	}
	return faces
}
