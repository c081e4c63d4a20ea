package spatialmath

import "github.com/golang/geo/r3"

// Vector is the serialized form of an r3.Vector.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector converts v for serialization.
func NewVector(v r3.Vector) Vector {
	return Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// R3 converts back to an r3.Vector.
func (v Vector) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
