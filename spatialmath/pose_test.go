package spatialmath

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 1}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	b := NewPose(r3.Vector{X: 1}, nil)

	c := Compose(a, b)
	test.That(t, c.Point.X, test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, c.Point.Y, test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, QuaternionAlmostEqual(c.Orientation, a.Orientation, 1e-9), test.ShouldBeTrue)

	test.That(t, PoseAlmostEqual(Compose(NewZeroPose(), a), a), test.ShouldBeTrue)
	pt := a.TransformPoint(r3.Vector{Y: 2})
	test.That(t, pt.X, test.ShouldAlmostEqual, -1., 1e-9)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0., 1e-9)
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	test.That(t, b.IsEmpty(), test.ShouldBeTrue)
	test.That(t, b.Transform(NewZeroPose()).IsEmpty(), test.ShouldBeTrue)

	b = NewBoundsFromPoints(r3.Vector{X: -1, Y: 0, Z: 2}, r3.Vector{X: 3, Y: 4, Z: 2})
	test.That(t, b.IsEmpty(), test.ShouldBeFalse)
	test.That(t, b.Center(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 2})
	test.That(t, b.Size(), test.ShouldResemble, r3.Vector{X: 4, Y: 4, Z: 0})
	test.That(t, b.Corners(), test.ShouldHaveLength, 8)
	test.That(t, EmptyBounds().Union(b), test.ShouldResemble, b)
	test.That(t, b.Union(EmptyBounds()), test.ShouldResemble, b)

	moved := b.Transform(NewPose(r3.Vector{Z: 1}, &R4AA{Theta: math.Pi, RZ: 1}))
	test.That(t, moved.Min.X, test.ShouldAlmostEqual, -3., 1e-9)
	test.That(t, moved.Max.X, test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, moved.Min.Z, test.ShouldAlmostEqual, 3., 1e-9)
}

func TestBoundsJSON(t *testing.T) {
	b := NewBoundsFromPoints(r3.Vector{X: -1, Y: 0, Z: 2}, r3.Vector{X: 1, Y: 3, Z: 4})
	data, err := json.Marshal(b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `{"min":{"x":-1,"y":0,"z":2},"max":{"x":1,"y":3,"z":4}}`)

	var decoded Bounds
	test.That(t, json.Unmarshal(data, &decoded), test.ShouldBeNil)
	test.That(t, decoded, test.ShouldResemble, b)

	data, err = json.Marshal(EmptyBounds())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "null")
	test.That(t, json.Unmarshal(data, &decoded), test.ShouldBeNil)
	test.That(t, decoded.IsEmpty(), test.ShouldBeTrue)
}
