// Package neutral imports unstructured volume meshes written by other
// meshers (Gambit neutral, Gmsh and SU2 files) as JIGSAW meshes. It lives
// apart from package mesh so that only programs importing foreign meshes
// link the reader and its numerical dependencies.
package neutral

import (
	"fmt"

	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Read imports the mesh at path, its format detected by extension, for use
// as a geometry or initial condition. Tetrahedra become Tria4 cells and
// triangles Tria3 cells; other element shapes are not supported by the
// engine and are rejected. Point tags are left unset, run an attachment
// pass to classify them.
func Read(path string) (*mesh.Mesh, error) {
	src, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, err
	}
	m := &mesh.Mesh{Kind: mesh.Euclidean, Dims: 3}
	m.Point = make([]mesh.Point, len(src.Vertices))
	for i, v := range src.Vertices {
		if len(v) < 3 {
			return nil, fmt.Errorf("%s: vertex %d has %d coordinates", path, i, len(v))
		}
		m.Point[i].Coord = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	for k, ev := range src.EtoV {
		switch len(ev) {
		case 3:
			m.Tria3 = append(m.Tria3, mesh.Tria3{Index: [3]int{ev[0], ev[1], ev[2]}})
		case 4:
			m.Tria4 = append(m.Tria4, mesh.Tria4{Index: [4]int{ev[0], ev[1], ev[2], ev[3]}})
		default:
			return nil, fmt.Errorf("%s: element %d has %d vertices, want 3 or 4", path, k, len(ev))
		}
	}
	if err = m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
