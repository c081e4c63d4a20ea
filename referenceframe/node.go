package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
)

// NodeKind is the role a node plays in the hierarchy.
type NodeKind string

// The node kinds produced by the tree builder.
const (
	RootNode   = NodeKind("root")
	LinkNode   = NodeKind("link")
	JointNode  = NodeKind("joint")
	VisualNode = NodeKind("visual")
	ShapeNode  = NodeKind("shape")
)

// Node is one frame of the scene hierarchy. Each node has at most one parent and owns its
// children; destroying a node releases its whole subtree.
type Node struct {
	name        string
	kind        NodeKind
	position    r3.Vector
	orientation quat.Number
	shape       spatialmath.Shape

	parent    *Node
	children  []*Node
	destroyed bool
}

// NewNode creates a detached node with the given local transform.
func NewNode(name string, kind NodeKind, local spatialmath.Pose) *Node {
	n := &Node{name: name, kind: kind}
	n.SetLocalPose(local)
	return n
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Parent returns the parent node, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node { return n.children }

// Shape returns the renderable shape held by the node, if any.
func (n *Node) Shape() spatialmath.Shape { return n.shape }

// SetShape attaches renderable geometry to the node.
func (n *Node) SetShape(s spatialmath.Shape) { n.shape = s }

// Position returns the local translation.
func (n *Node) Position() r3.Vector { return n.position }

// SetPosition sets the local translation.
func (n *Node) SetPosition(p r3.Vector) { n.position = p }

// Orientation returns the local rotation.
func (n *Node) Orientation() quat.Number { return n.orientation }

// SetOrientation sets the local rotation.
func (n *Node) SetOrientation(q quat.Number) { n.orientation = q }

// LocalPose returns the transform of the node relative to its parent.
func (n *Node) LocalPose() spatialmath.Pose {
	return spatialmath.Pose{Point: n.position, Orientation: n.orientation}
}

// SetLocalPose replaces the node's local transform.
func (n *Node) SetLocalPose(p spatialmath.Pose) {
	n.position = p.Point
	n.orientation = p.Orientation
	if n.orientation == (quat.Number{}) {
		n.orientation = quat.Number{Real: 1}
	}
}

// Destroyed is true once the node has been released.
func (n *Node) Destroyed() bool { return n.destroyed }

// Add attaches child under n. A child that already has a parent, or one that would create
// a cycle, is rejected.
func (n *Node) Add(child *Node) error {
	if child == nil {
		return errors.New("cannot add nil node")
	}
	if n.destroyed || child.destroyed {
		return errors.Errorf("cannot add %q to %q: node destroyed", child.name, n.name)
	}
	if child.parent != nil {
		return errors.Errorf("node %q already has parent %q", child.name, child.parent.name)
	}
	for anc := n; anc != nil; anc = anc.parent {
		if anc == child {
			return errors.Errorf("adding %q under %q would create a cycle", child.name, n.name)
		}
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Remove detaches child from n. It returns false if child is not a direct child of n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// WorldPose returns the node transform relative to the hierarchy root.
func (n *Node) WorldPose() spatialmath.Pose {
	pose := n.LocalPose()
	for p := n.parent; p != nil; p = p.parent {
		pose = spatialmath.Compose(p.LocalPose(), pose)
	}
	return pose
}

// Walk visits n and its descendants depth first, passing each node's world pose. Returning
// false from fn skips the node's subtree.
func (n *Node) Walk(fn func(node *Node, world spatialmath.Pose) bool) {
	var parentPose spatialmath.Pose
	if n.parent != nil {
		parentPose = n.parent.WorldPose()
	} else {
		parentPose = spatialmath.NewZeroPose()
	}
	n.walk(parentPose, fn)
}

func (n *Node) walk(parentPose spatialmath.Pose, fn func(*Node, spatialmath.Pose) bool) {
	world := spatialmath.Compose(parentPose, n.LocalPose())
	if !fn(n, world) {
		return
	}
	for _, c := range n.children {
		c.walk(world, fn)
	}
}

// Bounds returns the world-space bounds of every shape in the subtree.
func (n *Node) Bounds() spatialmath.Bounds {
	b := spatialmath.EmptyBounds()
	n.Walk(func(node *Node, world spatialmath.Pose) bool {
		if node.shape != nil {
			b = b.Union(node.shape.Bounds().Transform(world))
		}
		return true
	})
	return b
}

// Destroy detaches n from its parent and releases the whole subtree.
func (n *Node) Destroy() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
	n.release()
}

func (n *Node) release() {
	for _, c := range n.children {
		c.parent = nil
		c.release()
	}
	n.children = nil
	n.shape = nil
	n.destroyed = true
}
