package jigsaw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
)

var (
	ErrNilOptions         = errors.New("nil options")
	ErrNilMesh            = errors.New("nil mesh")
	ErrNoEngine           = errors.New("no engine configured")
	ErrNegativeLevels     = errors.New("negative number of levels")
	ErrMissingMeshFile    = errors.New("options have no mesh file")
	ErrMissingGeomFile    = errors.New("options have no geometry file")
	ErrMissingJcfgFile    = errors.New("options have no configuration file")
	ErrExecutableNotFound = errors.New("executable not found")
)

// Engine generates a mesh from the files named by a set of options. Run
// blocks until the engine finishes. On success, if m is not nil, its
// contents are replaced with the engine output.
type Engine interface {
	Run(ctx context.Context, opts *jig.Options, m *mesh.Mesh) error
}

// Program names one of the engine executables.
type Program string

const (
	// Jigsaw generates meshes and writes MeshFile.
	Jigsaw Program = "jigsaw"
	// Tripod builds restricted tessellations and writes MeshFile.
	Tripod Program = "tripod"
	// Marche gradient-limits a size function and writes HfunFile.
	Marche Program = "marche"
)

// Executable runs an engine program as a subprocess. The options are
// persisted to their JcfgFile and the program is called with that path as
// its only argument.
type Executable struct {
	Program Program
	// Path to the program. If empty the program is looked up with
	// FindExecutable on every Run.
	Path string
	// Stdout and Stderr receive the program output. If both are nil the
	// combined output is captured and attached to errors.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecutable returns an Executable for program, resolving its path.
func NewExecutable(program Program) (*Executable, error) {
	path, err := FindExecutable(string(program))
	if err != nil {
		return nil, err
	}
	return &Executable{Program: program, Path: path}, nil
}

// FindExecutable looks for name in a _bin directory next to the running
// executable and then in the directories of the PATH variable.
func FindExecutable(name string) (string, error) {
	file := name
	if runtime.GOOS == "windows" {
		file += ".exe"
	}
	if self, err := os.Executable(); err == nil {
		local := filepath.Join(filepath.Dir(self), "_bin", file)
		if info, err := os.Stat(local); err == nil && info.Mode().IsRegular() {
			return local, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}
	return path, nil
}

// Run implements Engine.
func (e *Executable) Run(ctx context.Context, opts *jig.Options, m *mesh.Mesh) error {
	if opts == nil {
		return ErrNilOptions
	}
	if opts.JcfgFile == "" {
		return ErrMissingJcfgFile
	}
	program := e.Program
	if program == "" {
		program = Jigsaw
	}
	if err := jig.Save(opts.JcfgFile, opts); err != nil {
		return err
	}
	path := e.Path
	if path == "" {
		var err error
		path, err = FindExecutable(string(program))
		if err != nil {
			return err
		}
	}
	cmd := exec.CommandContext(ctx, path, opts.JcfgFile)
	if e.Stdout == nil && e.Stderr == nil {
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s %s: %w\n%s", program, opts.JcfgFile, err, tail(out.Bytes(), 2048))
		}
	} else {
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s %s: %w", program, opts.JcfgFile, err)
		}
	}
	if m == nil {
		return nil
	}
	output := opts.MeshFile
	if program == Marche {
		output = opts.HfunFile
	}
	return mesh.Load(output, m)
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}
