package jigsaw

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/soypat/jigsaw/jig"
	"github.com/soypat/jigsaw/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyScript stands in for the mesher: it copies the initial condition to
// the output mesh file.
const copyScript = `#!/bin/sh
init=$(sed -n 's/^ *INIT_FILE = //p' "$1")
out=$(sed -n 's/^ *MESH_FILE = //p' "$1")
echo "meshing $out"
cp "$init" "$out"
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "mesher")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestExecutableRun(t *testing.T) {
	exe := &Executable{Program: Jigsaw, Path: writeScript(t, copyScript)}
	opts := testOptions(t)
	opts.InitFile = filepath.Join(filepath.Dir(opts.MeshFile), "seed.msh")
	opts.MeshIter = jig.Int(20)
	require.NoError(t, mesh.Save(opts.InitFile, NewIcosahedron(unitRadii)))

	var m mesh.Mesh
	require.NoError(t, exe.Run(context.Background(), opts, &m))
	assert.Len(t, m.Point, 12)
	assert.Len(t, m.Tria3, 20)

	cfg, err := jig.Load(opts.JcfgFile)
	require.NoError(t, err)
	assert.Equal(t, opts.MeshFile, cfg.MeshFile)
	assert.Equal(t, 20, *cfg.MeshIter)

	// Driven through Refine the subprocess behaves like the fake engine.
	d := NewDriver(exe)
	require.NoError(t, d.Refine(context.Background(), opts, 1, &m))
	assert.Len(t, m.Point, 42)
}

func TestExecutableFailure(t *testing.T) {
	exe := &Executable{Path: writeScript(t, "#!/bin/sh\necho 'no geometry' >&2\nexit 3\n")}
	err := exe.Run(context.Background(), testOptions(t), nil)
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "no geometry")

	var out strings.Builder
	exe.Stderr = &out
	err = exe.Run(context.Background(), testOptions(t), nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "no geometry")
	assert.Equal(t, "no geometry\n", out.String())
}

func TestExecutableCancel(t *testing.T) {
	exe := &Executable{Path: writeScript(t, "#!/bin/sh\nexec sleep 10\n")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, exe.Run(ctx, testOptions(t), nil))
}

func TestExecutableOptions(t *testing.T) {
	var exe Executable
	assert.ErrorIs(t, exe.Run(context.Background(), nil, nil), ErrNilOptions)
	assert.ErrorIs(t, exe.Run(context.Background(), &jig.Options{MeshFile: "x.msh"}, nil), ErrMissingJcfgFile)
}

func TestFindExecutable(t *testing.T) {
	_, err := FindExecutable("jigsaw-mesher-that-does-not-exist")
	assert.ErrorIs(t, err, ErrExecutableNotFound)
	_, err = NewExecutable("jigsaw-mesher-that-does-not-exist")
	assert.ErrorIs(t, err, ErrExecutableNotFound)

	dir := filepath.Dir(writeScript(t, copyScript))
	t.Setenv("PATH", dir)
	path, err := FindExecutable("mesher")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mesher"), path)
}
