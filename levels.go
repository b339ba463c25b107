package jigsaw

import (
	"context"
	"fmt"
	"math"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/floats"
)

// Tetris generates a mesh by incremental bisection over nlev+1 levels,
// coarsest first. At level l the size bounds and the size function file are
// scaled by 2^l and the engine is called through a jitter loop. Between
// levels the mesh is bisected, re-attached and written as the next initial
// condition. opts is not modified.
func (d *Driver) Tetris(ctx context.Context, opts *jig.Options, nlev int, m *mesh.Mesh) error {
	if err := d.check(opts, m); err != nil {
		return err
	}
	if nlev < 0 {
		return ErrNegativeLevels
	}
	var hfun *mesh.Mesh
	if opts.HfunFile != "" {
		hfun = new(mesh.Mesh)
		if err := mesh.Load(opts.HfunFile, hfun); err != nil {
			return err
		}
	}
	p := d.params()
	o := opts.Clone()
	for lev := nlev; lev >= 0; lev-- {
		scal := math.Ldexp(1, lev)
		if opts.OptmDual != nil {
			o.OptmDual = jig.Bool(lev == 0)
		}
		if opts.HfunHmax != nil {
			o.HfunHmax = jig.Float(*opts.HfunHmax * scal)
		}
		if opts.HfunHmin != nil {
			o.HfunHmin = jig.Float(*opts.HfunHmin * scal)
		}
		if hfun != nil {
			o.HfunFile = ScopedPath(opts.HfunFile, SuffixIter)
			scaled := hfun.Clone()
			floats.Scale(scal, scaled.Value)
			if err := mesh.Save(o.HfunFile, scaled); err != nil {
				return err
			}
		}

		badness := p.FineBadness
		if lev >= nlev {
			badness = p.CoarseBadness
		}
		if err := d.jitter(ctx, o, p.Budget(lev), badness, lev, m); err != nil {
			return fmt.Errorf("tetris level %d: %w", lev, err)
		}
		if lev == 0 {
			break
		}

		base := opts.InitFile
		if base == "" {
			base = opts.MeshFile
		}
		o.InitFile = ScopedPath(base, SuffixIter)
		if err := d.seedNextLevel(o.InitFile, m); err != nil {
			return err
		}
	}
	return nil
}

// Refine generates a mesh by incremental bisection over nlev+1 levels with a
// single engine call per level and no size function rescaling. Mesh
// iterations, divide and zip operations are disabled so the engine only
// optimises the bisected seed. opts is not modified.
func (d *Driver) Refine(ctx context.Context, opts *jig.Options, nlev int, m *mesh.Mesh) error {
	if err := d.check(opts, m); err != nil {
		return err
	}
	if nlev < 0 {
		return ErrNegativeLevels
	}
	o := opts.Clone()
	o.MeshIter = jig.Int(0)
	o.OptmDiv = jig.Bool(false)
	o.OptmZip = jig.Bool(false)
	for lev := nlev; lev >= 0; lev-- {
		if opts.OptmDual != nil {
			o.OptmDual = jig.Bool(lev == 0)
		}
		np := m.NumPoints()
		step := Step{Level: lev, Points: np, Kept: np}
		if err := d.run(ctx, o, m, step); err != nil {
			return fmt.Errorf("refine level %d: %w", lev, err)
		}
		if lev == 0 {
			break
		}
		o.InitFile = ScopedPath(opts.MeshFile, SuffixIter)
		if err := d.seedNextLevel(o.InitFile, m); err != nil {
			return err
		}
	}
	return nil
}

// seedNextLevel bisects m, re-tags its points and persists it as the
// initial condition at path.
func (d *Driver) seedNextLevel(path string, m *mesh.Mesh) error {
	Bisect(m)
	Attach(m)
	if d.Log != nil {
		d.Log.Printf("bisected to %d points, seed %s", m.NumPoints(), path)
	}
	return mesh.Save(path, m)
}
