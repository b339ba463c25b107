package jigsaw

import (
	"context"
	"fmt"
	"math"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// S2ToR3 maps a longitude and latitude in radians to the Cartesian point
// on the ellipsoid with the given semi-axes.
func S2ToR3(radii r3.Vec, lon, lat float64) r3.Vec {
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)
	return r3.Vec{
		X: radii.X * cosLon * cosLat,
		Y: radii.Y * sinLon * cosLat,
		Z: radii.Z * sinLat,
	}
}

// icosahedron vertices as (longitude, latitude): the poles and two
// pentagonal rings at ±atan(1/2), offset by a tenth of a turn.
var icosahedronLonLat = func() [12][2]float64 {
	la := math.Atan(1. / 2.)
	lo := 2. / 10. * math.Pi
	return [12][2]float64{
		{0, -0.5 * math.Pi},
		{0, +0.5 * math.Pi},
		{0 * lo, +la},
		{1 * lo, -la},
		{2 * lo, +la},
		{3 * lo, -la},
		{4 * lo, +la},
		{5 * lo, -la},
		{6 * lo, +la},
		{7 * lo, -la},
		{8 * lo, +la},
		{9 * lo, -la},
	}
}()

var icosahedronTria = [20][3]int{
	{0, 3, 5}, {0, 5, 7}, {0, 7, 9}, {0, 9, 11}, {0, 11, 3},
	{1, 2, 4}, {1, 4, 6}, {1, 6, 8}, {1, 8, 10}, {1, 10, 2},
	{3, 2, 4}, {5, 4, 6}, {7, 6, 8}, {9, 8, 10}, {11, 10, 2},
	{4, 3, 5}, {6, 5, 7}, {8, 7, 9}, {10, 9, 11}, {2, 11, 3},
}

// cubedSphereLat is the latitude of the cube corners' rings.
const cubedSphereLat = 0.19592 * math.Pi

var cubedSphereLonLat = [8][2]float64{
	{+0.25 * math.Pi, -cubedSphereLat},
	{+0.75 * math.Pi, -cubedSphereLat},
	{-0.75 * math.Pi, -cubedSphereLat},
	{-0.25 * math.Pi, -cubedSphereLat},
	{+0.25 * math.Pi, +cubedSphereLat},
	{+0.75 * math.Pi, +cubedSphereLat},
	{-0.75 * math.Pi, +cubedSphereLat},
	{-0.25 * math.Pi, +cubedSphereLat},
}

var cubedSphereQuad = [6][4]int{
	{0, 1, 2, 3},
	{0, 1, 5, 4},
	{1, 2, 6, 5},
	{2, 3, 7, 6},
	{3, 0, 4, 7},
	{4, 5, 6, 7},
}

// NewIcosahedron returns the 12 point, 20 triangle icosahedron inscribed
// in the ellipsoid with the given radii. All points are surface tagged.
func NewIcosahedron(radii r3.Vec) *mesh.Mesh {
	m := &mesh.Mesh{Kind: mesh.Euclidean, Dims: 3}
	m.Point = make([]mesh.Point, len(icosahedronLonLat))
	for i, ll := range icosahedronLonLat {
		m.Point[i] = mesh.Point{Coord: S2ToR3(radii, ll[0], ll[1]), Tag: mesh.TagSurface}
	}
	m.Tria3 = make([]mesh.Tria3, len(icosahedronTria))
	for i, t := range icosahedronTria {
		m.Tria3[i] = mesh.Tria3{Index: t}
	}
	return m
}

// NewCubedSphere returns the 8 point, 6 quadrilateral cube inscribed in the
// ellipsoid with the given radii. All points are surface tagged.
func NewCubedSphere(radii r3.Vec) *mesh.Mesh {
	m := &mesh.Mesh{Kind: mesh.Euclidean, Dims: 3}
	m.Point = make([]mesh.Point, len(cubedSphereLonLat))
	for i, ll := range cubedSphereLonLat {
		m.Point[i] = mesh.Point{Coord: S2ToR3(radii, ll[0], ll[1]), Tag: mesh.TagSurface}
	}
	m.Quad4 = make([]mesh.Quad4, len(cubedSphereQuad))
	for i, q := range cubedSphereQuad {
		m.Quad4[i] = mesh.Quad4{Index: q}
	}
	return m
}

// Icosahedron meshes the ellipsoid in opts.GeomFile starting from an
// icosahedron refined over nlev levels with Refine. The seed is persisted
// to opts.MeshFile, which becomes the initial condition.
func (d *Driver) Icosahedron(ctx context.Context, opts *jig.Options, nlev int, m *mesh.Mesh) error {
	if d.Engine == nil {
		return ErrNoEngine
	}
	o, radii, err := baseMesh(opts, nlev, m)
	if err != nil {
		return err
	}
	*m = *NewIcosahedron(radii)
	if err = mesh.Save(o.InitFile, m); err != nil {
		return err
	}
	return d.Refine(ctx, o, nlev, m)
}

// CubedSphere builds the cubed-sphere seed of the ellipsoid in
// opts.GeomFile and persists it to opts.MeshFile. Level refinement of
// quadrilateral seeds is not performed yet, so nlev is only validated.
func (d *Driver) CubedSphere(ctx context.Context, opts *jig.Options, nlev int, m *mesh.Mesh) error {
	o, radii, err := baseMesh(opts, nlev, m)
	if err != nil {
		return err
	}
	*m = *NewCubedSphere(radii)
	return mesh.Save(o.InitFile, m)
}

// baseMesh validates arguments and reads the ellipsoid radii. The returned
// options are a copy whose InitFile is the mesh file.
func baseMesh(opts *jig.Options, nlev int, m *mesh.Mesh) (*jig.Options, r3.Vec, error) {
	switch {
	case opts == nil:
		return nil, r3.Vec{}, ErrNilOptions
	case m == nil:
		return nil, r3.Vec{}, ErrNilMesh
	case opts.MeshFile == "":
		return nil, r3.Vec{}, ErrMissingMeshFile
	case nlev < 0:
		return nil, r3.Vec{}, ErrNegativeLevels
	case opts.GeomFile == "":
		return nil, r3.Vec{}, ErrMissingGeomFile
	}
	var geom mesh.Mesh
	if err := mesh.Load(opts.GeomFile, &geom); err != nil {
		return nil, r3.Vec{}, err
	}
	if geom.Kind != mesh.Ellipsoid {
		return nil, r3.Vec{}, fmt.Errorf("geometry %s is a %s, want %s", opts.GeomFile, geom.Kind, mesh.Ellipsoid)
	}
	o := opts.Clone()
	o.InitFile = o.MeshFile
	return o, geom.Radii, nil
}
