package jigsaw

import "github.com/soypat/jigsaw/mesh"

// Attach tags every point of m with the dimension of the highest
// dimensional cell referencing it: curve (edges), surface (triangles and
// quads) or volume (tetrahedra). Unreferenced points keep their tag.
// Coordinates and cells are untouched; Attach is idempotent.
func Attach(m *mesh.Mesh) {
	for _, c := range m.Edge2 {
		for _, i := range c.Index {
			m.Point[i].Tag = mesh.TagCurve
		}
	}
	for _, c := range m.Tria3 {
		for _, i := range c.Index {
			m.Point[i].Tag = mesh.TagSurface
		}
	}
	for _, c := range m.Quad4 {
		for _, i := range c.Index {
			m.Point[i].Tag = mesh.TagSurface
		}
	}
	for _, c := range m.Tria4 {
		for _, i := range c.Index {
			m.Point[i].Tag = mesh.TagVolume
		}
	}
}
