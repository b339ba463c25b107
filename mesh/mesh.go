package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies the coordinate system a Mesh is expressed in.
type Kind uint8

const (
	// Euclidean meshes store Cartesian coordinates in 2 or 3 dimensions.
	Euclidean Kind = iota
	// Ellipsoid meshes describe an ellipsoidal surface by its radii.
	Ellipsoid
)

func (k Kind) String() string {
	switch k {
	case Euclidean:
		return "euclidean-mesh"
	case Ellipsoid:
		return "ellipsoid-mesh"
	}
	return "unknown-mesh"
}

// Point boundary tags. A point carries the code of the highest dimensional
// cell that references it.
const (
	TagUnset   = 0
	TagCurve   = 1
	TagSurface = 2
	TagVolume  = 3
)

// Point is a mesh vertex. 2D meshes leave Coord.Z at zero.
type Point struct {
	Coord r3.Vec
	Tag   int
}

// Edge2 is a two-node line cell.
type Edge2 struct {
	Index [2]int
	Tag   int
}

// Tria3 is a three-node triangle cell.
type Tria3 struct {
	Index [3]int
	Tag   int
}

// Quad4 is a four-node quadrilateral cell.
type Quad4 struct {
	Index [4]int
	Tag   int
}

// Tria4 is a four-node tetrahedral cell.
type Tria4 struct {
	Index [4]int
	Tag   int
}

// Mesh is the geometry and topology container passed between the engine and
// the refinement drivers. Cell indices always refer to Point.
type Mesh struct {
	Kind Kind
	// Dims is the number of spatial dimensions of Point coordinates (2 or 3).
	Dims  int
	Point []Point
	Edge2 []Edge2
	Tria3 []Tria3
	Quad4 []Quad4
	Tria4 []Tria4
	// Value is a scalar field parallel to Point. For size functions it holds
	// the target edge length at each point.
	Value []float64
	// Radii of the ellipsoid, only meaningful for Ellipsoid meshes.
	Radii r3.Vec
}

// NumPoints returns the number of points in the mesh. Safe to call on nil.
func (m *Mesh) NumPoints() int {
	if m == nil {
		return 0
	}
	return len(m.Point)
}

// Empty reports whether the mesh has no points and no cells.
func (m *Mesh) Empty() bool {
	return m.NumPoints() == 0 && len(m.Edge2) == 0 && len(m.Tria3) == 0 &&
		len(m.Quad4) == 0 && len(m.Tria4) == 0
}

// Reset clears all contents, keeping allocated capacity.
func (m *Mesh) Reset() {
	*m = Mesh{
		Point: m.Point[:0],
		Edge2: m.Edge2[:0],
		Tria3: m.Tria3[:0],
		Quad4: m.Quad4[:0],
		Tria4: m.Tria4[:0],
		Value: m.Value[:0],
	}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Kind:  m.Kind,
		Dims:  m.Dims,
		Radii: m.Radii,
	}
	c.Point = append([]Point(nil), m.Point...)
	c.Edge2 = append([]Edge2(nil), m.Edge2...)
	c.Tria3 = append([]Tria3(nil), m.Tria3...)
	c.Quad4 = append([]Quad4(nil), m.Quad4...)
	c.Tria4 = append([]Tria4(nil), m.Tria4...)
	c.Value = append([]float64(nil), m.Value...)
	return c
}

// Subset returns a point-only mesh holding the points for which keep is true.
// Connectivity is discarded. Used to build initial conditions for the engine.
func (m *Mesh) Subset(keep []bool) *Mesh {
	if len(keep) != len(m.Point) {
		panic("mesh: keep mask length does not match point count")
	}
	sub := &Mesh{Kind: m.Kind, Dims: m.Dims, Radii: m.Radii}
	for i, ok := range keep {
		if ok {
			sub.Point = append(sub.Point, m.Point[i])
		}
	}
	return sub
}

// Coords returns the coordinates of all points.
func (m *Mesh) Coords() []r3.Vec {
	coords := make([]r3.Vec, len(m.Point))
	for i := range m.Point {
		coords[i] = m.Point[i].Coord
	}
	return coords
}
