package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)}
	aa45x = &R4AA{th, 1., 0., 0.}
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero.AxisAngles(), test.ShouldResemble, NewR4AA())
	test.That(t, zero.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, zero.EulerAngles(), test.ShouldResemble, NewEulerAngles())
}

func TestRepresentationsAgree(t *testing.T) {
	for _, o := range []Orientation{QuatToOrientation(q45x), aa45x, ea45x} {
		q := o.Quaternion()
		test.That(t, q.Real, test.ShouldAlmostEqual, q45x.Real)
		test.That(t, q.Imag, test.ShouldAlmostEqual, q45x.Imag)
		test.That(t, q.Jmag, test.ShouldAlmostEqual, 0.)
		test.That(t, q.Kmag, test.ShouldAlmostEqual, 0.)

		aa := o.AxisAngles()
		test.That(t, aa.Theta, test.ShouldAlmostEqual, th)
		test.That(t, aa.RX, test.ShouldAlmostEqual, 1.)

		ea := o.EulerAngles()
		test.That(t, ea.Roll, test.ShouldAlmostEqual, th)
		test.That(t, ea.Pitch, test.ShouldAlmostEqual, 0.)
		test.That(t, ea.Yaw, test.ShouldAlmostEqual, 0.)
	}
}

func TestEulerCompositionOrder(t *testing.T) {
	half := math.Pi / 2

	// a single non-zero angle is the elementary rotation alone
	rollOnly := (&EulerAngles{Roll: half}).Quaternion()
	test.That(t, QuaternionAlmostEqual(rollOnly, (&R4AA{Theta: half, RX: 1}).ToQuat(), 1e-9), test.ShouldBeTrue)

	// with two angles the result is Rz·Ry·Rx, not any other order
	ea := &EulerAngles{Roll: half, Pitch: half}
	qx := (&R4AA{Theta: half, RX: 1}).ToQuat()
	qy := (&R4AA{Theta: half, RY: 1}).ToQuat()
	test.That(t, QuaternionAlmostEqual(ea.Quaternion(), quat.Mul(qy, qx), 1e-9), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(ea.Quaternion(), quat.Mul(qx, qy), 1e-9), test.ShouldBeFalse)

	// Ry(90)·Rx(90) sends +Y to +X
	v := RotateVector(ea.Quaternion(), r3.Vector{Y: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, v.Y, test.ShouldAlmostEqual, 0., 1e-9)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0., 1e-9)
}

func TestEulerRoundTrip(t *testing.T) {
	ea := &EulerAngles{Roll: 0.3, Pitch: -0.7, Yaw: 2.1}
	back := QuatToEulerAngles(ea.Quaternion())
	test.That(t, back.Roll, test.ShouldAlmostEqual, ea.Roll, 1e-9)
	test.That(t, back.Pitch, test.ShouldAlmostEqual, ea.Pitch, 1e-9)
	test.That(t, back.Yaw, test.ShouldAlmostEqual, ea.Yaw, 1e-9)
}

func TestZeroAxisIsIdentity(t *testing.T) {
	q := (&R4AA{Theta: 1}).ToQuat()
	test.That(t, q, test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, (&R4AA{RZ: 2}).Normalize(), test.ShouldBeTrue)
}

func TestQuaternionAlmostEqualSign(t *testing.T) {
	test.That(t, QuaternionAlmostEqual(q45x, quat.Scale(-1, q45x), 1e-9), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(aa45x, ea45x), test.ShouldBeTrue)
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, quat.Number{Real: 1})
}
