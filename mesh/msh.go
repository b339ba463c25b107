package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const mshVersion = 3

// maxPrealloc bounds the capacity reserved from a section count before its
// records have been read.
const maxPrealloc = 1 << 16

// Save writes m to the file at path in the engine's .msh text format.
func Save(path string, m *Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	fmt.Fprintf(w, "# %s; created by jigsaw-go\n", path)
	if err = Write(w, m); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return fp.Close()
}

// Load reads the .msh file at path into m, replacing its contents.
func Load(path string, m *Mesh) error {
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err = Read(fp, m); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Write encodes m in .msh format. Floats are written with the shortest
// representation that round-trips exactly.
func Write(w io.Writer, m *Mesh) error {
	if m == nil {
		return errors.New("msh: nil mesh")
	}
	dims := m.Dims
	if dims == 0 {
		dims = 3
	}
	if dims != 2 && dims != 3 {
		return fmt.Errorf("msh: unsupported dimension %d", dims)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MSHID=%d;%s\n", mshVersion, strings.ToUpper(m.Kind.String()))
	fmt.Fprintf(&b, "NDIMS=%d\n", dims)
	if m.Kind == Ellipsoid {
		fmt.Fprintf(&b, "RADII=%s;%s;%s\n", ftoa(m.Radii.X), ftoa(m.Radii.Y), ftoa(m.Radii.Z))
	}
	if len(m.Point) > 0 {
		fmt.Fprintf(&b, "POINT=%d\n", len(m.Point))
		for _, p := range m.Point {
			if dims == 2 {
				fmt.Fprintf(&b, "%s;%s;%d\n", ftoa(p.Coord.X), ftoa(p.Coord.Y), p.Tag)
			} else {
				fmt.Fprintf(&b, "%s;%s;%s;%d\n", ftoa(p.Coord.X), ftoa(p.Coord.Y), ftoa(p.Coord.Z), p.Tag)
			}
		}
	}
	if len(m.Value) > 0 {
		fmt.Fprintf(&b, "VALUE=%d;1\n", len(m.Value))
		for _, v := range m.Value {
			b.WriteString(ftoa(v))
			b.WriteByte('\n')
		}
	}
	if len(m.Edge2) > 0 {
		fmt.Fprintf(&b, "EDGE2=%d\n", len(m.Edge2))
		for _, c := range m.Edge2 {
			fmt.Fprintf(&b, "%d;%d;%d\n", c.Index[0], c.Index[1], c.Tag)
		}
	}
	if len(m.Tria3) > 0 {
		fmt.Fprintf(&b, "TRIA3=%d\n", len(m.Tria3))
		for _, c := range m.Tria3 {
			fmt.Fprintf(&b, "%d;%d;%d;%d\n", c.Index[0], c.Index[1], c.Index[2], c.Tag)
		}
	}
	if len(m.Quad4) > 0 {
		fmt.Fprintf(&b, "QUAD4=%d\n", len(m.Quad4))
		for _, c := range m.Quad4 {
			fmt.Fprintf(&b, "%d;%d;%d;%d;%d\n", c.Index[0], c.Index[1], c.Index[2], c.Index[3], c.Tag)
		}
	}
	if len(m.Tria4) > 0 {
		fmt.Fprintf(&b, "TRIA4=%d\n", len(m.Tria4))
		for _, c := range m.Tria4 {
			fmt.Fprintf(&b, "%d;%d;%d;%d;%d\n", c.Index[0], c.Index[1], c.Index[2], c.Index[3], c.Tag)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Read decodes a .msh stream into m, replacing its contents. The decoded
// mesh is validated before returning.
func Read(r io.Reader, m *Mesh) error {
	if m == nil {
		return errors.New("msh: nil mesh")
	}
	m.Reset()
	m.Dims = 3
	sc := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			s := strings.TrimSpace(sc.Text())
			if s == "" || s[0] == '#' {
				continue
			}
			return s, true
		}
		return "", false
	}
	lineErr := func(format string, args ...interface{}) error {
		return fmt.Errorf("msh: line %d: %s", line, fmt.Sprintf(format, args...))
	}
	for {
		s, ok := next()
		if !ok {
			break
		}
		key, val, found := strings.Cut(s, "=")
		if !found {
			return lineErr("expected KEY=value, got %q", s)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		fields := splitFields(val)
		switch key {
		case "MSHID":
			if len(fields) > 1 {
				switch strings.ToLower(fields[1]) {
				case "euclidean-mesh":
					m.Kind = Euclidean
				case "ellipsoid-mesh":
					m.Kind = Ellipsoid
				default:
					return lineErr("unsupported mesh kind %q", fields[1])
				}
			}
		case "NDIMS":
			n, err := strconv.Atoi(fields[0])
			if err != nil || (n != 2 && n != 3) {
				return lineErr("bad NDIMS %q", val)
			}
			m.Dims = n
		case "RADII":
			v, err := parseFloats(fields, 3)
			if err != nil {
				return lineErr("RADII: %v", err)
			}
			m.Radii = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
		case "POINT":
			n, err := count(fields)
			if err != nil {
				return lineErr("POINT: %v", err)
			}
			m.Point = make([]Point, 0, min(n, maxPrealloc))
			for i := 0; i < n; i++ {
				s, ok := next()
				if !ok {
					return lineErr("POINT: unexpected end of file after %d/%d", i, n)
				}
				v, err := parseFloats(splitFields(s), m.Dims+1)
				if err != nil {
					return lineErr("POINT: %v", err)
				}
				p := Point{Tag: int(v[m.Dims])}
				p.Coord.X, p.Coord.Y = v[0], v[1]
				if m.Dims == 3 {
					p.Coord.Z = v[2]
				}
				m.Point = append(m.Point, p)
			}
		case "VALUE":
			n, err := count(fields)
			if err != nil {
				return lineErr("VALUE: %v", err)
			}
			m.Value = make([]float64, 0, min(n, maxPrealloc))
			for i := 0; i < n; i++ {
				s, ok := next()
				if !ok {
					return lineErr("VALUE: unexpected end of file after %d/%d", i, n)
				}
				v, err := strconv.ParseFloat(splitFields(s)[0], 64)
				if err != nil {
					return lineErr("VALUE: %v", err)
				}
				m.Value = append(m.Value, v)
			}
		case "EDGE2", "TRIA3", "QUAD4", "TRIA4":
			n, err := count(fields)
			if err != nil {
				return lineErr("%s: %v", key, err)
			}
			for i := 0; i < n; i++ {
				s, ok := next()
				if !ok {
					return lineErr("%s: unexpected end of file after %d/%d", key, i, n)
				}
				if err = m.appendCell(key, splitFields(s)); err != nil {
					return lineErr("%s: %v", key, err)
				}
			}
		default:
			// Grid sections and unsupported cell kinds are not part of the
			// meshes this package handles.
			return lineErr("unsupported section %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *Mesh) appendCell(key string, fields []string) error {
	var nidx int
	switch key {
	case "EDGE2":
		nidx = 2
	case "TRIA3":
		nidx = 3
	default:
		nidx = 4
	}
	if len(fields) < nidx+1 {
		return fmt.Errorf("want %d fields, got %d", nidx+1, len(fields))
	}
	var idx [5]int
	for i := 0; i <= nidx; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return err
		}
		idx[i] = v
	}
	switch key {
	case "EDGE2":
		m.Edge2 = append(m.Edge2, Edge2{Index: [2]int{idx[0], idx[1]}, Tag: idx[2]})
	case "TRIA3":
		m.Tria3 = append(m.Tria3, Tria3{Index: [3]int{idx[0], idx[1], idx[2]}, Tag: idx[3]})
	case "QUAD4":
		m.Quad4 = append(m.Quad4, Quad4{Index: [4]int{idx[0], idx[1], idx[2], idx[3]}, Tag: idx[4]})
	case "TRIA4":
		m.Tria4 = append(m.Tria4, Tria4{Index: [4]int{idx[0], idx[1], idx[2], idx[3]}, Tag: idx[4]})
	}
	return nil
}

// Validate checks every cell index refers to an existing point and that a
// point-parallel value field has the right length.
func (m *Mesh) Validate() error {
	np := len(m.Point)
	check := func(kind string, cell int, idx []int) error {
		for _, i := range idx {
			if i < 0 || i >= np {
				return fmt.Errorf("msh: %s %d references point %d, have %d points", kind, cell, i, np)
			}
		}
		return nil
	}
	for i, c := range m.Edge2 {
		if err := check("EDGE2", i, c.Index[:]); err != nil {
			return err
		}
	}
	for i, c := range m.Tria3 {
		if err := check("TRIA3", i, c.Index[:]); err != nil {
			return err
		}
	}
	for i, c := range m.Quad4 {
		if err := check("QUAD4", i, c.Index[:]); err != nil {
			return err
		}
	}
	for i, c := range m.Tria4 {
		if err := check("TRIA4", i, c.Index[:]); err != nil {
			return err
		}
	}
	if len(m.Value) != 0 && np != 0 && len(m.Value) != np {
		return fmt.Errorf("msh: %d values for %d points", len(m.Value), np)
	}
	return nil
}

func splitFields(s string) []string {
	fields := strings.Split(s, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func count(fields []string) (int, error) {
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(fields))
	}
	v := make([]float64, n)
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
