package jigsaw

import "github.com/soypat/jigsaw/mesh"

// RegularValence is the triangle count around an ideal interior vertex of a
// planar or spherical triangulation.
const RegularValence = 6

// Valence returns the number of distinct triangles incident to each point
// of m. Only Tria3 cells are counted.
func Valence(m *mesh.Mesh) []int {
	deg := make([]int, len(m.Point))
	for _, t := range m.Tria3 {
		a, b, c := t.Index[0], t.Index[1], t.Index[2]
		deg[a]++
		if b != a {
			deg[b]++
		}
		if c != a && c != b {
			deg[c]++
		}
	}
	return deg
}

// Irregularity scores the deviation of a vertex valence from the regular
// value. Over-valent vertices count double since local edge operations
// repair them less easily.
func Irregularity(valence int) int {
	if valence > RegularValence {
		return 2 * (valence - RegularValence)
	}
	return RegularValence - valence
}

// TriangleScores returns, for every Tria3 cell of m, the sum of the
// irregularity of its three vertices. The result is empty when m has no
// triangles.
func TriangleScores(m *mesh.Mesh) []int {
	if len(m.Tria3) == 0 {
		return nil
	}
	deg := Valence(m)
	scores := make([]int, len(m.Tria3))
	for i, t := range m.Tria3 {
		for _, v := range t.Index {
			scores[i] += Irregularity(deg[v])
		}
	}
	return scores
}

// KeepMask decides which points of m survive into the next initial
// condition. Points of triangles scoring at least badness are dropped,
// points on edges are always kept, and if floor or fewer points would
// remain every point is kept.
func KeepMask(m *mesh.Mesh, badness, floor int) []bool {
	keep := make([]bool, len(m.Point))
	for i := range keep {
		keep[i] = true
	}
	for i, score := range TriangleScores(m) {
		if score >= badness {
			for _, v := range m.Tria3[i].Index {
				keep[v] = false
			}
		}
	}
	// Edges mark feature curves.
	for _, e := range m.Edge2 {
		keep[e.Index[0]] = true
		keep[e.Index[1]] = true
	}
	if countTrue(keep) <= floor {
		for i := range keep {
			keep[i] = true
		}
	}
	return keep
}

func countTrue(mask []bool) (n int) {
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n
}
