package jigsaw

import (
	"path/filepath"
	"strings"
)

// File name tags inserted between stem and extension of derived files.
const (
	// SuffixInit marks the pruned seed written by the jitter loop.
	SuffixInit = "-INIT"
	// SuffixIter marks per-level files written by the level drivers.
	SuffixIter = "-ITER"
)

// ScopedPath derives a sibling of base with suffix inserted before the
// extension: ScopedPath("out/mesh.msh", SuffixIter) is "out/mesh-ITER.msh".
// It does not touch the filesystem.
func ScopedPath(base, suffix string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ext
}
