package spatialmath

import "github.com/golang/geo/r3"

// Mesh is triangle soup loaded from a mesh asset.
type Mesh struct {
	label     string
	triangles []*Triangle
	scale     r3.Vector
}

// NewMesh creates a mesh from its triangles.
func NewMesh(label string, triangles []*Triangle) *Mesh {
	return &Mesh{label: label, triangles: triangles, scale: r3.Vector{X: 1, Y: 1, Z: 1}}
}

// Label is the name of the asset the mesh was loaded from.
func (m *Mesh) Label() string {
	return m.label
}

// Scaling is the per-axis scale applied to the asset's vertices.
func (m *Mesh) Scaling() r3.Vector {
	return m.scale
}

// Triangles returns the faces of the mesh.
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// Kind implements Shape.
func (m *Mesh) Kind() ShapeKind { return MeshKind }

// Bounds implements Shape.
func (m *Mesh) Bounds() Bounds {
	b := EmptyBounds()
	for _, t := range m.triangles {
		b = b.ExpandByPoint(t.p0).ExpandByPoint(t.p1).ExpandByPoint(t.p2)
	}
	return b
}

// Clone returns a deep copy of the mesh that shares no triangles with the original.
func (m *Mesh) Clone() *Mesh {
	triangles := make([]*Triangle, len(m.triangles))
	for i, t := range m.triangles {
		tri := *t
		triangles[i] = &tri
	}
	return &Mesh{label: m.label, triangles: triangles, scale: m.scale}
}

// Scale multiplies every vertex by the given per-axis factors in place and returns the mesh.
func (m *Mesh) Scale(s r3.Vector) *Mesh {
	if s == (r3.Vector{X: 1, Y: 1, Z: 1}) {
		return m
	}
	for i, t := range m.triangles {
		m.triangles[i] = NewTriangle(scaleVec(t.p0, s), scaleVec(t.p1, s), scaleVec(t.p2, s))
	}
	m.scale = scaleVec(m.scale, s)
	return m
}

func scaleVec(v, s r3.Vector) r3.Vector {
	return r3.Vector{X: v.X * s.X, Y: v.Y * s.Y, Z: v.Z * s.Z}
}
