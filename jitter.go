package jigsaw

import (
	"context"
	"fmt"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
)

// Jitter calls the engine up to imax times, pruning the seed between calls
// to repair topological defects. Before each call on a non-empty mesh the
// points of triangles scoring badness or worse (see TriangleScores) are
// dropped and the survivors are written as the initial condition. The loop
// stops after the first call made with an unpruned seed. Running out of
// iterations is not an error; m holds the last engine output.
func (d *Driver) Jitter(ctx context.Context, opts *jig.Options, imax, badness int, m *mesh.Mesh) error {
	if err := d.check(opts, m); err != nil {
		return err
	}
	return d.jitter(ctx, opts, imax, badness, -1, m)
}

func (d *Driver) jitter(ctx context.Context, opts *jig.Options, imax, badness, level int, m *mesh.Mesh) error {
	p := d.params()
	o := opts.Clone()
	for iter := 0; iter < imax; iter++ {
		step := Step{Level: level, Iteration: iter}
		if np := m.NumPoints(); np > 0 {
			keep := KeepMask(m, badness, p.SafetyFloor)
			step.Points = np
			step.Kept = countTrue(keep)
			step.Converged = step.Kept == np

			o.InitFile = ScopedPath(opts.MeshFile, SuffixInit)
			if err := mesh.Save(o.InitFile, m.Subset(keep)); err != nil {
				return err
			}
		}
		if err := d.run(ctx, o, m, step); err != nil {
			return fmt.Errorf("jitter iteration %d: %w", iter, err)
		}
		if step.Converged {
			return nil
		}
	}
	return nil
}
