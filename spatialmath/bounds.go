package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r3"
)

// Bounds is an axis-aligned bounding box. The zero value is not empty; use EmptyBounds.
type Bounds struct {
	Min r3.Vector
	Max r3.Vector
}

type boundsJSON struct {
	Min Vector `json:"min"`
	Max Vector `json:"max"`
}

// MarshalJSON writes the corners with lowercase keys. Empty bounds are written as null.
func (b Bounds) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(boundsJSON{Min: NewVector(b.Min), Max: NewVector(b.Max)})
}

// UnmarshalJSON reads bounds written by MarshalJSON.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = EmptyBounds()
		return nil
	}
	var raw boundsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Bounds{Min: raw.Min.R3(), Max: raw.Max.R3()}
	return nil
}

// EmptyBounds returns bounds that contain nothing and expand to fit the first point added.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewBoundsFromPoints returns the smallest bounds containing every point.
func NewBoundsFromPoints(points ...r3.Vector) Bounds {
	b := EmptyBounds()
	for _, pt := range points {
		b = b.ExpandByPoint(pt)
	}
	return b
}

// IsEmpty is true when no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint returns bounds grown to include pt.
func (b Bounds) ExpandByPoint(pt r3.Vector) Bounds {
	return Bounds{
		Min: r3.Vector{X: math.Min(b.Min.X, pt.X), Y: math.Min(b.Min.Y, pt.Y), Z: math.Min(b.Min.Z, pt.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, pt.X), Y: math.Max(b.Max.Y, pt.Y), Z: math.Max(b.Max.Z, pt.Z)},
	}
}

// Union returns bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if other.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(other.Min).ExpandByPoint(other.Max)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() []r3.Vector {
	corners := make([]r3.Vector, 0, 8)
	for _, x := range []float64{b.Min.X, b.Max.X} {
		for _, y := range []float64{b.Min.Y, b.Max.Y} {
			for _, z := range []float64{b.Min.Z, b.Max.Z} {
				corners = append(corners, r3.Vector{X: x, Y: y, Z: z})
			}
		}
	}
	return corners
}

// Transform returns the axis-aligned bounds of this box after moving it by pose.
func (b Bounds) Transform(pose Pose) Bounds {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(pose.TransformPoint(c))
	}
	return out
}
