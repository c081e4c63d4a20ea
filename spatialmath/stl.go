package spatialmath

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// NewMeshFromSTL decodes an ASCII or binary STL stream into a mesh.
func NewMeshFromSTL(label string, r io.ReadSeeker) (*Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode STL %q", label)
	}
	if len(solid.Triangles) == 0 {
		return nil, errors.Errorf("STL %q contains no triangles", label)
	}
	triangles := make([]*Triangle, 0, len(solid.Triangles))
	for _, t := range solid.Triangles {
		triangles = append(triangles, NewTriangle(stlVec(t.Vertices[0]), stlVec(t.Vertices[1]), stlVec(t.Vertices[2])))
	}
	return NewMesh(label, triangles), nil
}

// NewMeshFromSTLBytes decodes STL data held in memory.
func NewMeshFromSTLBytes(label string, data []byte) (*Mesh, error) {
	return NewMeshFromSTL(label, bytes.NewReader(data))
}

// NewMeshFromSTLFile reads and decodes an STL file, labelling the mesh with its base name.
func NewMeshFromSTLFile(path string) (*Mesh, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read STL file")
	}
	return NewMeshFromSTLBytes(filepath.Base(path), data)
}

func stlVec(v stl.Vec3) r3.Vector {
	return r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}
