package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ShapeKind names the kind of a renderable shape.
type ShapeKind string

// The supported shape kinds.
const (
	BoxKind      = ShapeKind("box")
	CylinderKind = ShapeKind("cylinder")
	SphereKind   = ShapeKind("sphere")
	MeshKind     = ShapeKind("mesh")
)

// Shape is renderable visual geometry expressed in its own local frame.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the local axis-aligned bounds of the shape.
	Bounds() Bounds
}

// Box is a cuboid centred on its frame origin.
type Box struct {
	Size r3.Vector
}

// NewBox creates a box with the given full extents.
func NewBox(size r3.Vector) (*Box, error) {
	if !validDim(size.X) || !validDim(size.Y) || !validDim(size.Z) {
		return nil, newBadGeometryDimensionsError(BoxKind)
	}
	return &Box{Size: size}, nil
}

// Kind implements Shape.
func (b *Box) Kind() ShapeKind { return BoxKind }

// Bounds implements Shape.
func (b *Box) Bounds() Bounds {
	half := b.Size.Mul(0.5)
	return Bounds{Min: half.Mul(-1), Max: half}
}

// Cylinder is a circular cylinder centred on its frame origin with its axis along the
// renderer's native cylinder axis, local +Y.
type Cylinder struct {
	Radius float64
	Length float64
}

// NewCylinder creates a cylinder.
func NewCylinder(radius, length float64) (*Cylinder, error) {
	if !validDim(radius) || !validDim(length) {
		return nil, newBadGeometryDimensionsError(CylinderKind)
	}
	return &Cylinder{Radius: radius, Length: length}, nil
}

// Kind implements Shape.
func (c *Cylinder) Kind() ShapeKind { return CylinderKind }

// Bounds implements Shape.
func (c *Cylinder) Bounds() Bounds {
	half := r3.Vector{X: c.Radius, Y: c.Length / 2, Z: c.Radius}
	return Bounds{Min: half.Mul(-1), Max: half}
}

// Sphere is a sphere centred on its frame origin.
type Sphere struct {
	Radius float64
}

// NewSphere creates a sphere.
func NewSphere(radius float64) (*Sphere, error) {
	if !validDim(radius) {
		return nil, newBadGeometryDimensionsError(SphereKind)
	}
	return &Sphere{Radius: radius}, nil
}

// Kind implements Shape.
func (s *Sphere) Kind() ShapeKind { return SphereKind }

// Bounds implements Shape.
func (s *Sphere) Bounds() Bounds {
	r := r3.Vector{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return Bounds{Min: r.Mul(-1), Max: r}
}

// ShapeConfig is the serializable description of a shape handed to renderers.
type ShapeConfig struct {
	Type ShapeKind `json:"type"`

	// box extents
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	// sphere and cylinder radius, cylinder length
	R float64 `json:"r,omitempty"`
	L float64 `json:"l,omitempty"`

	// meshes are referenced by label and drawn at Scale; vertex data is not inlined
	Label     string  `json:"label,omitempty"`
	Scale     *Vector `json:"scale,omitempty"`
	Triangles int     `json:"triangles,omitempty"`
	Bounds    Bounds  `json:"bounds"`
}

// NewShapeConfig describes a shape for serialization.
func NewShapeConfig(s Shape) (*ShapeConfig, error) {
	cfg := &ShapeConfig{Type: s.Kind(), Bounds: s.Bounds()}
	switch shape := s.(type) {
	case *Box:
		cfg.X, cfg.Y, cfg.Z = shape.Size.X, shape.Size.Y, shape.Size.Z
	case *Cylinder:
		cfg.R, cfg.L = shape.Radius, shape.Length
	case *Sphere:
		cfg.R = shape.Radius
	case *Mesh:
		cfg.Label = shape.Label()
		scale := NewVector(shape.Scaling())
		cfg.Scale = &scale
		cfg.Triangles = len(shape.Triangles())
	default:
		return nil, errors.Errorf("unsupported shape type %T", s)
	}
	return cfg, nil
}

func validDim(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func newBadGeometryDimensionsError(kind ShapeKind) error {
	return errors.Errorf("invalid dimensions for %s: must be finite and non-negative", kind)
}
