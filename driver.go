// Package jigsaw drives the JIGSAW mesh generator through hierarchical
// refinement: bisection levels, topology-guided pruning of the seed between
// engine calls and spherical base meshes.
package jigsaw

import (
	"context"
	"log"
	"math"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
)

// Params holds the empirically chosen constants of the refinement
// heuristics.
type Params struct {
	// SafetyFloor is the largest seed size that is never pruned. A keep
	// mask retaining SafetyFloor or fewer points is discarded.
	SafetyFloor int
	// CoarseBadness is the triangle score threshold at the first level of
	// Tetris, where the seed is expected to be irregular.
	CoarseBadness int
	// FineBadness is the threshold at every subsequent level.
	FineBadness int
	// BudgetScale and BudgetExponent give the jitter iteration budget of a
	// level: round(BudgetScale * (level+1)^BudgetExponent).
	BudgetScale    float64
	BudgetExponent float64
}

// DefaultParams returns the parameters the heuristics were tuned with.
func DefaultParams() Params {
	return Params{
		SafetyFloor:    8,
		CoarseBadness:  2,
		FineBadness:    3,
		BudgetScale:    3,
		BudgetExponent: 5. / 4.,
	}
}

// Budget returns the jitter iteration budget at level.
func (p Params) Budget(level int) int {
	return int(math.Round(p.BudgetScale * math.Pow(float64(level+1), p.BudgetExponent)))
}

// Step records one engine call made by a Driver.
type Step struct {
	// Level is the resolution level, or -1 outside a level driver.
	Level int
	// Iteration within the jitter loop; 0 for single-call levels.
	Iteration int
	// Points in the mesh before the call and Kept in the seed handed to
	// the engine. Kept equals Points when nothing was pruned.
	Points int
	Kept   int
	// Converged is set on the final call of a converged jitter loop.
	Converged bool
}

// Driver runs the hierarchical refinement strategies on top of an Engine.
// A Driver must not be used concurrently; each run exclusively owns the mesh
// it is given until it returns.
type Driver struct {
	Engine Engine
	// Params tunes the heuristics. The zero value selects DefaultParams.
	Params Params
	// Log receives one line per engine call when not nil.
	Log *log.Logger
	// Trace accumulates a record of every engine call.
	Trace []Step
}

// NewDriver returns a Driver with default parameters.
func NewDriver(e Engine) *Driver {
	return &Driver{Engine: e, Params: DefaultParams()}
}

func (d *Driver) params() Params {
	if d.Params == (Params{}) {
		return DefaultParams()
	}
	return d.Params
}

// check validates the arguments common to every run.
func (d *Driver) check(opts *jig.Options, m *mesh.Mesh) error {
	switch {
	case d.Engine == nil:
		return ErrNoEngine
	case opts == nil:
		return ErrNilOptions
	case m == nil:
		return ErrNilMesh
	case opts.MeshFile == "":
		return ErrMissingMeshFile
	}
	return nil
}

func (d *Driver) run(ctx context.Context, opts *jig.Options, m *mesh.Mesh, step Step) error {
	d.Trace = append(d.Trace, step)
	if d.Log != nil {
		d.Log.Printf("level %d iteration %d: %d/%d points kept, converged=%v",
			step.Level, step.Iteration, step.Kept, step.Points, step.Converged)
	}
	return d.Engine.Run(ctx, opts, m)
}
