package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform: a rotation followed by a translation.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// NewPose builds a pose from a translation and an orientation.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return Pose{Point: point, Orientation: o.Quaternion()}
}

// Compose returns the pose equivalent to applying b in the frame of a (a·b).
func Compose(a, b Pose) Pose {
	return Pose{
		Point:       a.Point.Add(RotateVector(a.Orientation, b.Point)),
		Orientation: quat.Mul(a.Orientation, b.Orientation),
	}
}

// TransformPoint maps a point expressed in the pose's frame into the parent frame.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.Point.Add(RotateVector(p.Orientation, pt))
}

// PoseAlmostEqual compares translation and rotation within a small tolerance.
func PoseAlmostEqual(a, b Pose) bool {
	return a.Point.Sub(b.Point).Norm() < 1e-6 && QuaternionAlmostEqual(a.Orientation, b.Orientation, 1e-6)
}
