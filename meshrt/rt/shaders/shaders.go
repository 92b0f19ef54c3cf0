package shaders

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

//go:embed mesh.wgsl
var MeshWGSL string

//go:embed triangle.wgsl
var TriangleWGSL string

// Default library paths relative to the repository root, with their entry
// points.
const (
	MeshLibrary      = "meshrt/rt/shaders/mesh.wgsl"
	MeshVertex       = "mesh_vertex"
	MeshFragment     = "mesh_fragment"
	TriangleLibrary  = "meshrt/rt/shaders/triangle.wgsl"
	TriangleVertex   = "triangle_vertex"
	TriangleFragment = "triangle_fragment"
)

var embedded = map[string]string{
	MeshLibrary:     MeshWGSL,
	TriangleLibrary: TriangleWGSL,
}

// Resolve returns a readable path for library. A default library missing
// from disk, as when running outside the repository, is written from the
// embedded copy into dir.
func Resolve(library, dir string) (string, error) {
	if _, err := os.Stat(library); err == nil {
		return library, nil
	}
	src, ok := embedded[library]
	if !ok {
		return library, nil
	}
	path := filepath.Join(dir, filepath.Base(library))
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return "", errors.Wrapf(err, "write embedded shader %s", library)
	}
	return path, nil
}
