package jig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// field binds one .jig key to its Options member.
type field struct {
	key string
	str func(o *Options) *string
	i   func(o *Options) **int
	f   func(o *Options) **float64
	b   func(o *Options) **bool
}

var fields = []field{
	{key: "LOG_FILE", str: func(o *Options) *string { return &o.LogFile }},
	{key: "GEOM_FILE", str: func(o *Options) *string { return &o.GeomFile }},
	{key: "MESH_FILE", str: func(o *Options) *string { return &o.MeshFile }},
	{key: "HFUN_FILE", str: func(o *Options) *string { return &o.HfunFile }},
	{key: "INIT_FILE", str: func(o *Options) *string { return &o.InitFile }},
	{key: "TRIA_FILE", str: func(o *Options) *string { return &o.TriaFile }},
	{key: "BNDS_FILE", str: func(o *Options) *string { return &o.BndsFile }},
	{key: "VERBOSITY", i: func(o *Options) **int { return &o.Verbosity }},

	{key: "GEOM_SEED", i: func(o *Options) **int { return &o.GeomSeed }},
	{key: "GEOM_FEAT", b: func(o *Options) **bool { return &o.GeomFeat }},
	{key: "GEOM_ETA1", f: func(o *Options) **float64 { return &o.GeomEta1 }},
	{key: "GEOM_ETA2", f: func(o *Options) **float64 { return &o.GeomEta2 }},
	{key: "GEOM_PHI1", f: func(o *Options) **float64 { return &o.GeomPhi1 }},
	{key: "GEOM_PHI2", f: func(o *Options) **float64 { return &o.GeomPhi2 }},

	{key: "INIT_NEAR", f: func(o *Options) **float64 { return &o.InitNear }},

	{key: "HFUN_SCAL", str: func(o *Options) *string { return &o.HfunScal }},
	{key: "HFUN_HMAX", f: func(o *Options) **float64 { return &o.HfunHmax }},
	{key: "HFUN_HMIN", f: func(o *Options) **float64 { return &o.HfunHmin }},

	{key: "MESH_KERN", str: func(o *Options) *string { return &o.MeshKern }},
	{key: "MESH_DIMS", i: func(o *Options) **int { return &o.MeshDims }},
	{key: "MESH_ITER", i: func(o *Options) **int { return &o.MeshIter }},
	{key: "MESH_SIZ1", f: func(o *Options) **float64 { return &o.MeshSiz1 }},
	{key: "MESH_SIZ2", f: func(o *Options) **float64 { return &o.MeshSiz2 }},
	{key: "MESH_SIZ3", f: func(o *Options) **float64 { return &o.MeshSiz3 }},
	{key: "MESH_OFF2", f: func(o *Options) **float64 { return &o.MeshOff2 }},
	{key: "MESH_OFF3", f: func(o *Options) **float64 { return &o.MeshOff3 }},
	{key: "MESH_TOP1", b: func(o *Options) **bool { return &o.MeshTop1 }},
	{key: "MESH_TOP2", b: func(o *Options) **bool { return &o.MeshTop2 }},
	{key: "MESH_RAD2", f: func(o *Options) **float64 { return &o.MeshRad2 }},
	{key: "MESH_RAD3", f: func(o *Options) **float64 { return &o.MeshRad3 }},
	{key: "MESH_EPS1", f: func(o *Options) **float64 { return &o.MeshEps1 }},
	{key: "MESH_EPS2", f: func(o *Options) **float64 { return &o.MeshEps2 }},

	{key: "OPTM_KERN", str: func(o *Options) *string { return &o.OptmKern }},
	{key: "OPTM_COST", str: func(o *Options) *string { return &o.OptmCost }},
	{key: "OPTM_ITER", i: func(o *Options) **int { return &o.OptmIter }},
	{key: "OPTM_QTOL", f: func(o *Options) **float64 { return &o.OptmQtol }},
	{key: "OPTM_QLIM", f: func(o *Options) **float64 { return &o.OptmQlim }},
	{key: "OPTM_ZIP_", b: func(o *Options) **bool { return &o.OptmZip }},
	{key: "OPTM_DIV_", b: func(o *Options) **bool { return &o.OptmDiv }},
	{key: "OPTM_TRIA", b: func(o *Options) **bool { return &o.OptmTria }},
	{key: "OPTM_DUAL", b: func(o *Options) **bool { return &o.OptmDual }},
}

// Save persists o to path in .jig format.
func Save(path string, o *Options) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	fmt.Fprintf(fp, "# %s; created by jigsaw-go\n", path)
	if err = Write(fp, o); err != nil {
		return err
	}
	return fp.Close()
}

// Load reads the .jig file at path. JcfgFile of the result is set to path.
func Load(path string) (*Options, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	o, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	o.JcfgFile = path
	return o, nil
}

// Write encodes every set field of o as a "KEY = value" line.
func Write(w io.Writer, o *Options) error {
	var sb strings.Builder
	for _, fd := range fields {
		var val string
		switch {
		case fd.str != nil:
			val = *fd.str(o)
		case fd.i != nil:
			if p := *fd.i(o); p != nil {
				val = strconv.Itoa(*p)
			}
		case fd.f != nil:
			if p := *fd.f(o); p != nil {
				val = strconv.FormatFloat(*p, 'g', -1, 64)
			}
		case fd.b != nil:
			if p := *fd.b(o); p != nil {
				val = strings.ToUpper(strconv.FormatBool(*p))
			}
		}
		if val == "" {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(fd.key)
		sb.WriteString(" = ")
		sb.WriteString(val)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Read decodes a .jig stream. Keys are case insensitive. A key with no
// Options member is an error rather than being dropped silently.
func Read(r io.Reader) (*Options, error) {
	o := new(Options)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' {
			continue
		}
		key, val, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("jig: line %d: expected KEY = value, got %q", line, s)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if err := o.set(key, val); err != nil {
			return nil, fmt.Errorf("jig: line %d: %w", line, err)
		}
	}
	return o, sc.Err()
}

func (o *Options) set(key, val string) error {
	for _, fd := range fields {
		if fd.key != key {
			continue
		}
		switch {
		case fd.str != nil:
			*fd.str(o) = val
		case fd.i != nil:
			v, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*fd.i(o) = Int(v)
		case fd.f != nil:
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*fd.f(o) = Float(v)
		case fd.b != nil:
			v, err := strconv.ParseBool(strings.ToLower(val))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*fd.b(o) = Bool(v)
		}
		return nil
	}
	return fmt.Errorf("unknown key %q", key)
}
