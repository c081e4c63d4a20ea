package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/ggldnl/hexviz/spatialmath"
)

func TestNodeAdd(t *testing.T) {
	a := NewNode("a", LinkNode, spatialmath.NewZeroPose())
	b := NewNode("b", LinkNode, spatialmath.NewZeroPose())
	c := NewNode("c", LinkNode, spatialmath.NewZeroPose())

	test.That(t, a.Add(b), test.ShouldBeNil)
	test.That(t, b.Add(c), test.ShouldBeNil)

	err := c.Add(b)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "already has parent")

	err = c.Add(a)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cycle")

	test.That(t, a.Add(nil), test.ShouldNotBeNil)

	test.That(t, a.Remove(c), test.ShouldBeFalse)
	test.That(t, b.Remove(c), test.ShouldBeTrue)
	test.That(t, c.Parent(), test.ShouldBeNil)
	test.That(t, a.Add(c), test.ShouldBeNil)
	test.That(t, a.Children(), test.ShouldHaveLength, 2)
}

func TestNodeWorldPose(t *testing.T) {
	rz := spatialmath.NewR4AAFromVector(r3.Vector{Z: 1}, math.Pi/2)
	a := NewNode("a", JointNode, spatialmath.NewPose(r3.Vector{X: 1}, rz))
	b := NewNode("b", LinkNode, spatialmath.NewPose(r3.Vector{X: 1}, nil))
	test.That(t, a.Add(b), test.ShouldBeNil)

	p := b.WorldPose().Point
	test.That(t, p.X, test.ShouldAlmostEqual, 1)
	test.That(t, p.Y, test.ShouldAlmostEqual, 1)

	var visited []string
	a.Walk(func(n *Node, world spatialmath.Pose) bool {
		visited = append(visited, n.Name())
		if n == b {
			test.That(t, spatialmath.PoseAlmostEqual(world, b.WorldPose()), test.ShouldBeTrue)
		}
		return true
	})
	test.That(t, visited, test.ShouldResemble, []string{"a", "b"})
}

func TestNodeBounds(t *testing.T) {
	box, err := spatialmath.NewBox(r3.Vector{X: 2, Y: 2, Z: 2})
	test.That(t, err, test.ShouldBeNil)
	root := NewNode("root", RootNode, spatialmath.NewPose(r3.Vector{Z: 5}, nil))
	shape := NewNode("shape", ShapeNode, spatialmath.NewPose(r3.Vector{X: 3}, nil))
	shape.SetShape(box)
	test.That(t, root.Add(shape), test.ShouldBeNil)

	b := root.Bounds()
	test.That(t, b.Min, test.ShouldResemble, r3.Vector{X: 2, Y: -1, Z: 4})
	test.That(t, b.Max, test.ShouldResemble, r3.Vector{X: 4, Y: 1, Z: 6})
}

func TestNodeDestroy(t *testing.T) {
	root := NewNode("root", RootNode, spatialmath.NewZeroPose())
	child := NewNode("child", LinkNode, spatialmath.NewZeroPose())
	grandchild := NewNode("grandchild", LinkNode, spatialmath.NewZeroPose())
	test.That(t, root.Add(child), test.ShouldBeNil)
	test.That(t, child.Add(grandchild), test.ShouldBeNil)

	child.Destroy()
	test.That(t, root.Children(), test.ShouldHaveLength, 0)
	test.That(t, root.Destroyed(), test.ShouldBeFalse)
	test.That(t, child.Destroyed(), test.ShouldBeTrue)
	test.That(t, grandchild.Destroyed(), test.ShouldBeTrue)
	test.That(t, grandchild.Parent(), test.ShouldBeNil)
	test.That(t, root.Add(grandchild), test.ShouldNotBeNil)
}
