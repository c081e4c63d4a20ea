package referenceframe

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// JointRuntime is the live state of one revolute or continuous joint.
type JointRuntime struct {
	Name            string
	Type            JointType
	Axis            r3.Vector
	CurrentAngleDeg float64
	// Node is the joint frame. It is only valid while the owning model is loaded.
	Node *Node
	// RestOrientation is the joint frame orientation captured at build time, before any
	// angle was applied.
	RestOrientation quat.Number
}

func (jr *JointRuntime) setAngle(deg float64) {
	delta := spatialmath.NewR4AAFromVector(jr.Axis, utils.DegToRad(deg)).ToQuat()
	jr.Node.SetOrientation(quat.Mul(jr.RestOrientation, delta))
	jr.CurrentAngleDeg = deg
}

// Model is a built kinematic tree with its joint runtime table.
type Model struct {
	name       string
	root       *Node
	links      map[string]*Node
	joints     map[string]*JointRuntime
	jointOrder []string
}

// Name returns the robot name from the description.
func (m *Model) Name() string { return m.name }

// Root returns the model root node.
func (m *Model) Root() *Node { return m.root }

// Link returns the frame node of the named link.
func (m *Model) Link(name string) (*Node, bool) {
	n, ok := m.links[name]
	return n, ok
}

// Joint returns the runtime of the named revolute or continuous joint.
func (m *Model) Joint(name string) (*JointRuntime, bool) {
	jr, ok := m.joints[name]
	return jr, ok
}

// Joints returns the joint runtimes in declaration order.
func (m *Model) Joints() []*JointRuntime {
	out := make([]*JointRuntime, 0, len(m.jointOrder))
	for _, name := range m.jointOrder {
		out = append(out, m.joints[name])
	}
	return out
}

// JointNames returns the names of the rotational joints in declaration order.
func (m *Model) JointNames() []string {
	return append([]string(nil), m.jointOrder...)
}

// Angles returns the current angle of every rotational joint in degrees.
func (m *Model) Angles() map[string]float64 {
	out := make(map[string]float64, len(m.joints))
	for name, jr := range m.joints {
		out[name] = jr.CurrentAngleDeg
	}
	return out
}

// ApplyPose sets each named joint to the given angle in degrees. The joint frame is set to
// its rest orientation followed by a rotation about the joint's own axis, so poses are
// absolute and never accumulate. Unknown names and non-finite angles are ignored.
func (m *Model) ApplyPose(angles map[string]float64) {
	for name, deg := range angles {
		jr, ok := m.joints[name]
		if !ok || jr.Node == nil || jr.Node.Destroyed() || !utils.IsFinite(deg) {
			continue
		}
		jr.setAngle(deg)
	}
}

// Bounds returns the world-space bounds of every visual in the model.
func (m *Model) Bounds() spatialmath.Bounds {
	if m.root == nil {
		return spatialmath.EmptyBounds()
	}
	return m.root.Bounds()
}

// Destroy releases the whole tree and invalidates every joint runtime.
func (m *Model) Destroy() {
	if m.root != nil {
		m.root.Destroy()
	}
	for _, jr := range m.joints {
		jr.Node = nil
	}
}

// Destroyed is true once the model has been torn down.
func (m *Model) Destroyed() bool {
	return m.root == nil || m.root.Destroyed()
}
