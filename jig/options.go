// Package jig holds the engine configuration and its .jig file codec.
package jig

// Options configures one engine invocation. File fields are paths; empty
// means unset. Optional settings are pointers so an unset value is omitted
// from the persisted configuration and the engine applies its default.
type Options struct {
	// JcfgFile is where the configuration is persisted before invocation.
	JcfgFile string
	// LogFile receives the engine's own log output.
	LogFile string
	// GeomFile describes the geometry to be meshed.
	GeomFile string
	// MeshFile is the engine output path.
	MeshFile string
	// HfunFile holds the mesh size function.
	HfunFile string
	// InitFile holds the initial condition (seed points or mesh).
	InitFile string
	// TriaFile and BndsFile are inputs to tripod.
	TriaFile string
	BndsFile string

	Verbosity *int

	GeomSeed *int
	GeomFeat *bool
	GeomEta1 *float64
	GeomEta2 *float64
	// GeomPhi1 and GeomPhi2 are the feature angle thresholds in degrees.
	GeomPhi1 *float64
	GeomPhi2 *float64

	InitNear *float64

	// HfunScal is "relative" or "absolute".
	HfunScal string
	HfunHmax *float64
	HfunHmin *float64

	// MeshKern is "delfront" or "delaunay".
	MeshKern string
	MeshDims *int
	MeshIter *int
	// MeshSiz1..3 scale the size function for edges, faces and cells.
	MeshSiz1 *float64
	MeshSiz2 *float64
	MeshSiz3 *float64
	// MeshOff2 and MeshOff3 are the off-centre thresholds of faces and cells.
	MeshOff2 *float64
	MeshOff3 *float64
	MeshTop1 *bool
	MeshTop2 *bool
	MeshRad2 *float64
	MeshRad3 *float64
	MeshEps1 *float64
	MeshEps2 *float64

	// OptmKern is "odt+dqdx" or "cvt+dqdx".
	OptmKern string
	// OptmCost is "area-len" or "skew-cos".
	OptmCost string
	OptmIter *int
	OptmQtol *float64
	OptmQlim *float64
	OptmZip  *bool
	OptmDiv  *bool
	OptmTria *bool
	OptmDual *bool
}

// Clone returns a deep copy of o; no pointer is shared with o.
func (o *Options) Clone() *Options {
	c := *o
	c.Verbosity = cloneInt(o.Verbosity)
	c.GeomSeed = cloneInt(o.GeomSeed)
	c.GeomFeat = cloneBool(o.GeomFeat)
	c.GeomEta1 = cloneFloat(o.GeomEta1)
	c.GeomEta2 = cloneFloat(o.GeomEta2)
	c.GeomPhi1 = cloneFloat(o.GeomPhi1)
	c.GeomPhi2 = cloneFloat(o.GeomPhi2)
	c.InitNear = cloneFloat(o.InitNear)
	c.HfunHmax = cloneFloat(o.HfunHmax)
	c.HfunHmin = cloneFloat(o.HfunHmin)
	c.MeshDims = cloneInt(o.MeshDims)
	c.MeshIter = cloneInt(o.MeshIter)
	c.MeshSiz1 = cloneFloat(o.MeshSiz1)
	c.MeshSiz2 = cloneFloat(o.MeshSiz2)
	c.MeshSiz3 = cloneFloat(o.MeshSiz3)
	c.MeshOff2 = cloneFloat(o.MeshOff2)
	c.MeshOff3 = cloneFloat(o.MeshOff3)
	c.MeshTop1 = cloneBool(o.MeshTop1)
	c.MeshTop2 = cloneBool(o.MeshTop2)
	c.MeshRad2 = cloneFloat(o.MeshRad2)
	c.MeshRad3 = cloneFloat(o.MeshRad3)
	c.MeshEps1 = cloneFloat(o.MeshEps1)
	c.MeshEps2 = cloneFloat(o.MeshEps2)
	c.OptmIter = cloneInt(o.OptmIter)
	c.OptmQtol = cloneFloat(o.OptmQtol)
	c.OptmQlim = cloneFloat(o.OptmQlim)
	c.OptmZip = cloneBool(o.OptmZip)
	c.OptmDiv = cloneBool(o.OptmDiv)
	c.OptmTria = cloneBool(o.OptmTria)
	c.OptmDual = cloneBool(o.OptmDual)
	return &c
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	return Bool(*p)
}
