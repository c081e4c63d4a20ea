package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// The rotation is composed as Rz(Yaw)·Ry(Pitch)·Rx(Roll), which is the roll-pitch-yaw convention of URDF origins.
type EulerAngles struct {
	Roll  float64 `json:"roll"`  // phi, about X
	Pitch float64 `json:"pitch"` // theta, about Y
	Yaw   float64 `json:"yaw"`   // psi, about Z
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{Roll: 0, Pitch: 0, Yaw: 0}
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// Quaternion composes elementary rotations about X, Y and Z in fixed Z·Y·X order.
func (ea *EulerAngles) Quaternion() quat.Number {
	qx := (&R4AA{Theta: ea.Roll, RX: 1}).ToQuat()
	qy := (&R4AA{Theta: ea.Pitch, RY: 1}).ToQuat()
	qz := (&R4AA{Theta: ea.Yaw, RZ: 1}).ToQuat()
	return quat.Mul(quat.Mul(qz, qy), qx)
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	return QuatToR4AA(ea.Quaternion())
}

// QuatToEulerAngles converts a quaternion to the Z·Y·X euler angle representation.
// See: https://en.wikipedia.org/wiki/Conversion_between_quaternions_and_Euler_angles
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinp := 2 * (w*y - z*x)
	// clamp to handle numerical drift at gimbal lock
	sinp = math.Max(-1, math.Min(1, sinp))

	return &EulerAngles{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(sinp),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}
