package jigsaw

import (
	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bisect uniformly subdivides every cell of m in place. A point is inserted
// at the midpoint of every edge (shared between cells) and at the centroid
// of every quad. Edges split in 2, triangles in 4, quads in 4 and
// tetrahedra in 8. Child cells inherit the parent tag; new points are
// untagged. A value field parallel to the points is interpolated linearly.
func Bisect(m *mesh.Mesh) {
	b := bisector{
		m:      m,
		mid:    make(map[[2]int]int),
		interp: len(m.Value) > 0 && len(m.Value) == len(m.Point),
	}

	edges := make([]mesh.Edge2, 0, 2*len(m.Edge2))
	for _, c := range m.Edge2 {
		v0, v1 := c.Index[0], c.Index[1]
		e01 := b.midpoint(v0, v1)
		edges = append(edges,
			mesh.Edge2{Index: [2]int{v0, e01}, Tag: c.Tag},
			mesh.Edge2{Index: [2]int{e01, v1}, Tag: c.Tag},
		)
	}

	trias := make([]mesh.Tria3, 0, 4*len(m.Tria3))
	for _, c := range m.Tria3 {
		v0, v1, v2 := c.Index[0], c.Index[1], c.Index[2]
		e01 := b.midpoint(v0, v1)
		e12 := b.midpoint(v1, v2)
		e20 := b.midpoint(v2, v0)
		trias = append(trias,
			mesh.Tria3{Index: [3]int{v0, e01, e20}, Tag: c.Tag},
			mesh.Tria3{Index: [3]int{e01, v1, e12}, Tag: c.Tag},
			mesh.Tria3{Index: [3]int{e20, e12, v2}, Tag: c.Tag},
			mesh.Tria3{Index: [3]int{e01, e12, e20}, Tag: c.Tag},
		)
	}

	quads := make([]mesh.Quad4, 0, 4*len(m.Quad4))
	for _, c := range m.Quad4 {
		v0, v1, v2, v3 := c.Index[0], c.Index[1], c.Index[2], c.Index[3]
		e01 := b.midpoint(v0, v1)
		e12 := b.midpoint(v1, v2)
		e23 := b.midpoint(v2, v3)
		e30 := b.midpoint(v3, v0)
		ctr := b.centroid(c.Index[:])
		quads = append(quads,
			mesh.Quad4{Index: [4]int{v0, e01, ctr, e30}, Tag: c.Tag},
			mesh.Quad4{Index: [4]int{e01, v1, e12, ctr}, Tag: c.Tag},
			mesh.Quad4{Index: [4]int{ctr, e12, v2, e23}, Tag: c.Tag},
			mesh.Quad4{Index: [4]int{e30, ctr, e23, v3}, Tag: c.Tag},
		)
	}

	tetras := make([]mesh.Tria4, 0, 8*len(m.Tria4))
	for _, c := range m.Tria4 {
		v0, v1, v2, v3 := c.Index[0], c.Index[1], c.Index[2], c.Index[3]
		e01 := b.midpoint(v0, v1)
		e02 := b.midpoint(v0, v2)
		e03 := b.midpoint(v0, v3)
		e12 := b.midpoint(v1, v2)
		e13 := b.midpoint(v1, v3)
		e23 := b.midpoint(v2, v3)
		tetras = append(tetras,
			// Corner tetrahedra.
			mesh.Tria4{Index: [4]int{v0, e01, e02, e03}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e01, v1, e12, e13}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e02, e12, v2, e23}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e03, e13, e23, v3}, Tag: c.Tag},
			// Inner octahedron split about the e02-e13 diagonal.
			mesh.Tria4{Index: [4]int{e02, e13, e01, e12}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e02, e13, e12, e23}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e02, e13, e23, e03}, Tag: c.Tag},
			mesh.Tria4{Index: [4]int{e02, e13, e03, e01}, Tag: c.Tag},
		)
	}

	m.Edge2 = edges
	m.Tria3 = trias
	m.Quad4 = quads
	m.Tria4 = tetras
}

type bisector struct {
	m      *mesh.Mesh
	mid    map[[2]int]int
	interp bool
}

// midpoint returns the index of the point halfway between a and b, adding
// it on first use.
func (b *bisector) midpoint(i, j int) int {
	if i > j {
		i, j = j, i
	}
	key := [2]int{i, j}
	if n, ok := b.mid[key]; ok {
		return n
	}
	pi, pj := b.m.Point[i].Coord, b.m.Point[j].Coord
	n := b.add(r3.Scale(0.5, r3.Add(pi, pj)))
	if b.interp {
		b.m.Value = append(b.m.Value, 0.5*(b.m.Value[i]+b.m.Value[j]))
	}
	b.mid[key] = n
	return n
}

func (b *bisector) centroid(idx []int) int {
	var sum r3.Vec
	var val float64
	for _, i := range idx {
		sum = r3.Add(sum, b.m.Point[i].Coord)
		if b.interp {
			val += b.m.Value[i]
		}
	}
	w := 1 / float64(len(idx))
	n := b.add(r3.Scale(w, sum))
	if b.interp {
		b.m.Value = append(b.m.Value, w*val)
	}
	return n
}

func (b *bisector) add(v r3.Vec) int {
	b.m.Point = append(b.m.Point, mesh.Point{Coord: v})
	return len(b.m.Point) - 1
}
