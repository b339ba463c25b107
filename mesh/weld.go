package mesh

import (
	"errors"
	"math"

	"github.com/soypat/jigsaw/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// FromTriangles builds an indexed surface mesh from a triangle soup such as
// the contents of an STL file. Vertices closer than vertexTol are merged.
// vertexTol should be of the order of 1/1000th of the smallest triangle
// edge; if zero it is inferred from the soup.
func FromTriangles(soup [][3]r3.Vec, vertexTol float64) (*Mesh, error) {
	if len(soup) == 0 {
		return nil, errors.New("empty triangle soup")
	}
	if vertexTol < 0 {
		return nil, errors.New("negative vertex tolerance")
	}
	if vertexTol == 0 {
		minDist2 := math.MaxFloat64
		for _, t := range soup {
			for j := range t {
				minDist2 = math.Min(minDist2, r3.Norm2(r3.Sub(t[(j+1)%3], t[j])))
			}
		}
		vertexTol = math.Sqrt(minDist2) / 1000
		if vertexTol == 0 {
			bb := d3.BoundsOf(soup[0][:])
			for _, t := range soup[1:] {
				bb = bb.Extend(d3.BoundsOf(t[:]))
			}
			vertexTol = 1e-9 * math.Max(1, d3.Max(bb.Size()))
		}
	}
	m := &Mesh{Kind: Euclidean, Dims: 3}
	w := welder{tol2: vertexTol * vertexTol}
	for _, t := range soup {
		var cell Tria3
		for j, v := range t {
			cell.Index[j] = w.index(v, m)
		}
		if cell.Index[0] == cell.Index[1] || cell.Index[1] == cell.Index[2] || cell.Index[2] == cell.Index[0] {
			// Collapsed by welding.
			continue
		}
		m.Tria3 = append(m.Tria3, cell)
	}
	if len(m.Tria3) == 0 {
		return nil, errors.New("all triangles degenerate after welding")
	}
	return m, nil
}

// Weld merges points of m closer than tol and re-indexes every cell. Cells
// left with a repeated vertex are dropped. Returns the number of points
// removed.
func (m *Mesh) Weld(tol float64) int {
	w := welder{tol2: tol * tol}
	welded := &Mesh{Kind: m.Kind, Dims: m.Dims, Radii: m.Radii}
	remap := make([]int, len(m.Point))
	var values []float64
	for i, p := range m.Point {
		n := len(welded.Point)
		remap[i] = w.index(p.Coord, welded)
		if remap[i] == n {
			welded.Point[n].Tag = p.Tag
			if len(m.Value) == len(m.Point) {
				values = append(values, m.Value[i])
			}
		} else if p.Tag > welded.Point[remap[i]].Tag {
			welded.Point[remap[i]].Tag = p.Tag
		}
	}
	removed := len(m.Point) - len(welded.Point)
	if removed == 0 {
		return 0
	}
	edges := m.Edge2[:0]
	for _, c := range m.Edge2 {
		if reindex(c.Index[:], remap) {
			edges = append(edges, c)
		}
	}
	trias := m.Tria3[:0]
	for _, c := range m.Tria3 {
		if reindex(c.Index[:], remap) {
			trias = append(trias, c)
		}
	}
	quads := m.Quad4[:0]
	for _, c := range m.Quad4 {
		if reindex(c.Index[:], remap) {
			quads = append(quads, c)
		}
	}
	tetras := m.Tria4[:0]
	for _, c := range m.Tria4 {
		if reindex(c.Index[:], remap) {
			tetras = append(tetras, c)
		}
	}
	m.Edge2, m.Tria3, m.Quad4, m.Tria4 = edges, trias, quads, tetras
	m.Point = welded.Point
	if values != nil {
		m.Value = values
	}
	return removed
}

// reindex maps idx through remap in place and reports whether the cell
// still has distinct vertices.
func reindex(idx, remap []int) bool {
	for j := range idx {
		idx[j] = remap[idx[j]]
		for k := 0; k < j; k++ {
			if idx[k] == idx[j] {
				return false
			}
		}
	}
	return true
}

// welder deduplicates vertices with a kd-tree of already accepted points.
type welder struct {
	tree kdtree.Tree
	tol2 float64
}

// index returns the index of a point in m within tolerance of v, appending
// v to m if none exists.
func (w *welder) index(v r3.Vec, m *Mesh) int {
	if w.tree.Root != nil {
		got, dist2 := w.tree.Nearest(weldVertex{v: v})
		if got != nil && dist2 <= w.tol2 {
			return got.(weldVertex).idx
		}
	}
	idx := len(m.Point)
	m.Point = append(m.Point, Point{Coord: v})
	w.tree.Insert(weldVertex{v: v, idx: idx}, false)
	return idx
}

type weldVertex struct {
	v   r3.Vec
	idx int
}

var _ kdtree.Comparable = weldVertex{}

func (p weldVertex) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(weldVertex)
	switch d {
	case 0:
		return p.v.X - q.v.X
	case 1:
		return p.v.Y - q.v.Y
	case 2:
		return p.v.Z - q.v.Z
	}
	panic("illegal dimension")
}

func (p weldVertex) Dims() int { return 3 }

func (p weldVertex) Distance(c kdtree.Comparable) float64 {
	q := c.(weldVertex)
	return r3.Norm2(r3.Sub(p.v, q.v))
}
