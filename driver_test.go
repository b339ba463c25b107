package jigsaw

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// fakeEngine records the options and input files of every call. It outputs
// a copy of output, or echoes the initial condition when output is nil.
type fakeEngine struct {
	output *mesh.Mesh
	err    error

	calls []*jig.Options
	seeds []*mesh.Mesh // nil when the call had no initial condition
	hfuns [][]float64
}

func (f *fakeEngine) Run(_ context.Context, opts *jig.Options, m *mesh.Mesh) error {
	f.calls = append(f.calls, opts.Clone())
	var seed *mesh.Mesh
	if opts.InitFile != "" {
		seed = new(mesh.Mesh)
		if err := mesh.Load(opts.InitFile, seed); err != nil {
			return err
		}
	}
	f.seeds = append(f.seeds, seed)
	if opts.HfunFile != "" {
		var h mesh.Mesh
		if err := mesh.Load(opts.HfunFile, &h); err != nil {
			return err
		}
		f.hfuns = append(f.hfuns, h.Value)
	}
	if f.err != nil {
		return f.err
	}
	out := f.output
	if out == nil {
		out = seed
	}
	if out == nil {
		out = new(mesh.Mesh)
	}
	if m != nil {
		*m = *out.Clone()
	}
	return nil
}

func testOptions(t *testing.T) *jig.Options {
	dir := t.TempDir()
	return &jig.Options{
		JcfgFile: filepath.Join(dir, "run.jig"),
		MeshFile: filepath.Join(dir, "run.msh"),
	}
}

func TestParamsBudget(t *testing.T) {
	p := DefaultParams()
	want := []int{3, 7, 12, 17, 22}
	for lev, n := range want {
		assert.Equal(t, n, p.Budget(lev), "level %d", lev)
	}
	d := Driver{}
	assert.Equal(t, DefaultParams(), d.params(), "zero params select defaults")
}

func TestJitterConverges(t *testing.T) {
	opts := testOptions(t)
	eng := &fakeEngine{output: bisectedIcosahedron(1)}
	d := NewDriver(eng)
	var m mesh.Mesh
	require.NoError(t, d.Jitter(context.Background(), opts, 10, 2, &m))

	require.Len(t, eng.calls, 2)
	assert.Empty(t, eng.calls[0].InitFile, "empty mesh has no initial condition")
	assert.Equal(t, ScopedPath(opts.MeshFile, SuffixInit), eng.calls[1].InitFile)
	assert.Equal(t, 42, eng.seeds[1].NumPoints())
	assert.Equal(t, []Step{
		{Level: -1, Iteration: 0},
		{Level: -1, Iteration: 1, Points: 42, Kept: 42, Converged: true},
	}, d.Trace)
	assert.Len(t, m.Point, 42)
	assert.Empty(t, opts.InitFile, "caller options modified")
}

func TestJitterExhaustsBudget(t *testing.T) {
	opts := testOptions(t)
	eng := &fakeEngine{output: bisectedIcosahedron(2)}
	d := NewDriver(eng)
	var m mesh.Mesh
	require.NoError(t, d.Jitter(context.Background(), opts, 4, 1, &m))

	require.Len(t, eng.calls, 4)
	for i := 1; i < 4; i++ {
		assert.Equal(t, 90, eng.seeds[i].NumPoints(), "call %d", i)
		assert.False(t, d.Trace[i].Converged)
	}
	assert.Len(t, m.Point, 162, "last engine output is kept")
}

func TestJitterSafetyFloor(t *testing.T) {
	opts := testOptions(t)
	eng := &fakeEngine{output: bisectedIcosahedron(1)}
	d := NewDriver(eng)
	var m mesh.Mesh
	// Badness 1 prunes every point of the once bisected icosahedron.
	require.NoError(t, d.Jitter(context.Background(), opts, 5, 1, &m))
	require.Len(t, eng.calls, 2)
	assert.Equal(t, 42, eng.seeds[1].NumPoints())
	assert.True(t, d.Trace[1].Converged)
}

func TestJitterKeepsSeed(t *testing.T) {
	opts := testOptions(t)
	eng := &fakeEngine{}
	d := NewDriver(eng)
	m := bisectedIcosahedron(2)
	require.NoError(t, d.Jitter(context.Background(), opts, 3, 1, m))
	// The echoed seed has no triangles left to score.
	require.Len(t, eng.calls, 2)
	assert.Equal(t, 90, eng.seeds[0].NumPoints())
	assert.Equal(t, 90, eng.seeds[1].NumPoints())
	assert.True(t, d.Trace[1].Converged)
}

func TestTetris(t *testing.T) {
	opts := testOptions(t)
	dir := filepath.Dir(opts.MeshFile)
	hfun := &mesh.Mesh{
		Point: []mesh.Point{{}, {Coord: r3.Vec{X: 1}}, {Coord: r3.Vec{Y: 1}}, {Coord: r3.Vec{Z: 1}}},
		Value: []float64{1, 0.5, 0.3, 3.7},
	}
	opts.HfunFile = filepath.Join(dir, "spacing.msh")
	require.NoError(t, mesh.Save(opts.HfunFile, hfun))
	opts.HfunHmax = jig.Float(0.1)
	opts.HfunHmin = jig.Float(0.01)
	opts.OptmDual = jig.Bool(false)

	var logbuf bytes.Buffer
	eng := &fakeEngine{output: bisectedIcosahedron(1)}
	d := NewDriver(eng)
	d.Log = log.New(&logbuf, "", 0)
	var m mesh.Mesh
	const nlev = 2
	require.NoError(t, d.Tetris(context.Background(), opts, nlev, &m))

	// Level 2 needs a call to produce a first mesh and one more to converge.
	// Bisected seeds are regular enough to converge at once.
	wantLevel := []int{2, 2, 1, 0}
	require.Len(t, eng.calls, len(wantLevel))
	for i, call := range eng.calls {
		lev := wantLevel[i]
		scal := float64(int(1) << lev)
		assert.Equal(t, lev, d.Trace[i].Level)
		assert.Equal(t, 0.1*scal, *call.HfunHmax, "call %d", i)
		assert.Equal(t, 0.01*scal, *call.HfunHmin, "call %d", i)
		assert.Equal(t, lev == 0, *call.OptmDual, "call %d", i)
		assert.Equal(t, ScopedPath(opts.HfunFile, SuffixIter), call.HfunFile)
		want := append([]float64(nil), hfun.Value...)
		floats.Scale(scal, want)
		assert.Equal(t, want, eng.hfuns[i], "call %d", i)
	}
	assert.Empty(t, eng.calls[0].InitFile)
	for i := 1; i < len(eng.calls); i++ {
		assert.Equal(t, ScopedPath(opts.MeshFile, SuffixInit), eng.calls[i].InitFile)
	}
	assert.Equal(t, 162, eng.seeds[2].NumPoints(), "bisected seed at level 1")

	var iter mesh.Mesh
	require.NoError(t, mesh.Load(ScopedPath(opts.MeshFile, SuffixIter), &iter))
	assert.Len(t, iter.Point, 162)
	for _, p := range iter.Point {
		assert.Equal(t, mesh.TagSurface, p.Tag)
	}

	// Caller options are untouched.
	assert.Equal(t, 0.1, *opts.HfunHmax)
	assert.False(t, *opts.OptmDual)
	assert.Equal(t, filepath.Join(dir, "spacing.msh"), opts.HfunFile)
	assert.Contains(t, logbuf.String(), "level 0 iteration 0")
}

func TestTetrisUnsetOptions(t *testing.T) {
	opts := testOptions(t)
	eng := &fakeEngine{output: bisectedIcosahedron(1)}
	d := NewDriver(eng)
	require.NoError(t, d.Tetris(context.Background(), opts, 1, new(mesh.Mesh)))
	for _, call := range eng.calls {
		assert.Nil(t, call.HfunHmax)
		assert.Nil(t, call.HfunHmin)
		assert.Nil(t, call.OptmDual)
		assert.Empty(t, call.HfunFile)
	}
}

func TestTetrisInitFileBase(t *testing.T) {
	opts := testOptions(t)
	init := filepath.Join(filepath.Dir(opts.MeshFile), "seed.msh")
	require.NoError(t, mesh.Save(init, bisectedIcosahedron(1)))
	opts.InitFile = init
	eng := &fakeEngine{output: bisectedIcosahedron(1)}
	d := NewDriver(eng)
	require.NoError(t, d.Tetris(context.Background(), opts, 1, new(mesh.Mesh)))
	assert.FileExists(t, ScopedPath(init, SuffixIter))
	assert.NoFileExists(t, ScopedPath(opts.MeshFile, SuffixIter))
	assert.Equal(t, init, eng.calls[0].InitFile, "first call starts from the caller's seed")
}

func TestRefine(t *testing.T) {
	opts := testOptions(t)
	opts.InitFile = filepath.Join(filepath.Dir(opts.MeshFile), "seed.msh")
	require.NoError(t, mesh.Save(opts.InitFile, NewIcosahedron(unitRadii)))
	opts.OptmZip = jig.Bool(true)

	eng := &fakeEngine{}
	d := NewDriver(eng)
	var m mesh.Mesh
	require.NoError(t, d.Refine(context.Background(), opts, 1, &m))
	require.Len(t, eng.calls, 2)
	assert.Equal(t, opts.InitFile, eng.calls[0].InitFile)
	assert.Equal(t, ScopedPath(opts.MeshFile, SuffixIter), eng.calls[1].InitFile)
	for _, call := range eng.calls {
		assert.False(t, *call.OptmZip)
		assert.False(t, *call.OptmDiv)
		assert.Equal(t, 0, *call.MeshIter)
		assert.Nil(t, call.OptmDual)
	}
	assert.Len(t, m.Point, 42)
	assert.True(t, *opts.OptmZip, "caller options modified")
	assert.Nil(t, opts.MeshIter, "caller options modified")
}

func TestDriverEngineFailure(t *testing.T) {
	boom := errors.New("boom")
	for name, run := range map[string]func(d *Driver, opts *jig.Options) error{
		"jitter": func(d *Driver, opts *jig.Options) error {
			return d.Jitter(context.Background(), opts, 5, 2, new(mesh.Mesh))
		},
		"tetris": func(d *Driver, opts *jig.Options) error {
			return d.Tetris(context.Background(), opts, 2, new(mesh.Mesh))
		},
		"refine": func(d *Driver, opts *jig.Options) error {
			return d.Refine(context.Background(), opts, 2, new(mesh.Mesh))
		},
	} {
		t.Run(name, func(t *testing.T) {
			eng := &fakeEngine{err: boom}
			d := NewDriver(eng)
			err := run(d, testOptions(t))
			assert.ErrorIs(t, err, boom)
			assert.Len(t, eng.calls, 1, "engine called again after failing")
		})
	}
}

func TestDriverValidation(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()
	d := NewDriver(&fakeEngine{})
	assert.ErrorIs(t, d.Tetris(ctx, nil, 1, new(mesh.Mesh)), ErrNilOptions)
	assert.ErrorIs(t, d.Tetris(ctx, opts, 1, nil), ErrNilMesh)
	assert.ErrorIs(t, d.Tetris(ctx, opts, -1, new(mesh.Mesh)), ErrNegativeLevels)
	assert.ErrorIs(t, d.Refine(ctx, opts, -2, new(mesh.Mesh)), ErrNegativeLevels)
	assert.ErrorIs(t, d.Jitter(ctx, &jig.Options{}, 1, 2, new(mesh.Mesh)), ErrMissingMeshFile)

	var noEngine Driver
	assert.ErrorIs(t, noEngine.Jitter(ctx, opts, 1, 2, new(mesh.Mesh)), ErrNoEngine)
	assert.ErrorIs(t, noEngine.Refine(ctx, opts, 0, new(mesh.Mesh)), ErrNoEngine)
}

// bisectedOctahedron returns the octahedron bisected n times. For n >= 2
// its 6 corners have valence 4, so the triangles around them score exactly
// 2 and every other triangle scores 0.
func bisectedOctahedron(n int) *mesh.Mesh {
	m := &mesh.Mesh{Kind: mesh.Euclidean, Dims: 3, Point: []mesh.Point{
		{Coord: r3.Vec{X: 1}}, {Coord: r3.Vec{X: -1}},
		{Coord: r3.Vec{Y: 1}}, {Coord: r3.Vec{Y: -1}},
		{Coord: r3.Vec{Z: 1}}, {Coord: r3.Vec{Z: -1}},
	}}
	ring := [4][2]int{{0, 2}, {2, 1}, {1, 3}, {3, 0}}
	for _, e := range ring {
		m.Tria3 = append(m.Tria3,
			mesh.Tria3{Index: [3]int{e[0], e[1], 4}},
			mesh.Tria3{Index: [3]int{e[1], e[0], 5}},
		)
	}
	for i := 0; i < n; i++ {
		Bisect(m)
	}
	Attach(m)
	return m
}

func stepsPerLevel(trace []Step) map[int]int {
	n := make(map[int]int)
	for _, s := range trace {
		n[s.Level]++
	}
	return n
}

func TestTetrisBadnessByLevel(t *testing.T) {
	out := bisectedOctahedron(2)
	require.Len(t, out.Point, 66)
	eng := &fakeEngine{output: out}
	d := NewDriver(eng)
	p := d.Params
	require.NoError(t, d.Tetris(context.Background(), testOptions(t), 1, new(mesh.Mesh)))

	// Score 2 triangles are pruned with the coarse badness only: level 1
	// never converges, level 0 keeps the bisected seed whole.
	assert.Equal(t, map[int]int{1: p.Budget(1), 0: 1}, stepsPerLevel(d.Trace))
	for _, s := range d.Trace {
		switch {
		case s.Level == 0:
			assert.Equal(t, Step{Level: 0, Points: 258, Kept: 258, Converged: true}, s)
		case s.Iteration > 0:
			assert.Equal(t, 66, s.Points)
			assert.Equal(t, 66-6*5, s.Kept, "corners and their four neighbours pruned")
			assert.False(t, s.Converged)
		}
	}
}

func TestTetrisBudgetPerLevel(t *testing.T) {
	eng := &fakeEngine{output: bisectedOctahedron(2)}
	d := NewDriver(eng)
	d.Params.FineBadness = d.Params.CoarseBadness
	const nlev = 2
	require.NoError(t, d.Tetris(context.Background(), testOptions(t), nlev, new(mesh.Mesh)))

	want := map[int]int{}
	for lev := 0; lev <= nlev; lev++ {
		want[lev] = d.Params.Budget(lev)
	}
	assert.Equal(t, map[int]int{2: 12, 1: 7, 0: 3}, want)
	assert.Equal(t, want, stepsPerLevel(d.Trace))
	assert.Len(t, eng.calls, 12+7+3)
	for _, s := range d.Trace {
		assert.False(t, s.Converged, "level %d iteration %d", s.Level, s.Iteration)
	}
}
