package referenceframe

import (
	"github.com/golang/geo/r3"

	"github.com/ggldnl/hexviz/spatialmath"
)

// World is the name of the model root node.
const World = "world"

// JointType is the kind of a declared joint.
type JointType string

// Joint types with special handling. Any other declared type (prismatic, floating,
// planar, ...) is kept verbatim and treated as a static transform.
const (
	RevoluteJoint   = JointType("revolute")
	ContinuousJoint = JointType("continuous")
	FixedJoint      = JointType("fixed")
)

// Rotational is true for joint types that are driven by an angle.
func (t JointType) Rotational() bool {
	return t == RevoluteJoint || t == ContinuousJoint
}

// JointSpec is one declared joint, immutable once parsed.
type JointSpec struct {
	Name              string
	Type              JointType
	ParentLink        string
	ChildLink         string
	OriginTranslation r3.Vector
	OriginRPY         spatialmath.EulerAngles
	// Axis is the unit rotation axis; meaningful for rotational joints only.
	Axis r3.Vector
}

// OriginPose is the joint frame's rest transform relative to its parent link.
func (j JointSpec) OriginPose() spatialmath.Pose {
	return spatialmath.NewPose(j.OriginTranslation, &j.OriginRPY)
}

// GeometryType is the kind of visual geometry attached to a link.
type GeometryType string

// The geometry variants a link visual can declare.
const (
	NoGeometry       = GeometryType("")
	BoxGeometry      = GeometryType("box")
	CylinderGeometry = GeometryType("cylinder")
	SphereGeometry   = GeometryType("sphere")
	MeshGeometry     = GeometryType("mesh")
)

// Geometry is the visual geometry of a link. Only the fields of the declared Type are set.
type Geometry struct {
	Type GeometryType

	// Size is the full extent of a box.
	Size r3.Vector
	// Radius of a cylinder or sphere.
	Radius float64
	// Length of a cylinder.
	Length float64
	// AssetPath is the mesh filename as written in the description.
	AssetPath string
	// Scale is the per-axis mesh scale.
	Scale r3.Vector
}

// LinkSpec is one declared link, immutable once parsed.
type LinkSpec struct {
	Name              string
	Geometry          Geometry
	VisualTranslation r3.Vector
	VisualRPY         spatialmath.EulerAngles
}

// HasVisual is true when the link declares renderable geometry.
func (l LinkSpec) HasVisual() bool {
	return l.Geometry.Type != NoGeometry
}

// VisualPose is the visual frame's transform relative to the link frame.
func (l LinkSpec) VisualPose() spatialmath.Pose {
	return spatialmath.NewPose(l.VisualTranslation, &l.VisualRPY)
}

// Description is a parsed robot description.
type Description struct {
	Name   string
	Joints []JointSpec
	Links  []LinkSpec
}

// RotationalJoints returns the revolute and continuous joints in declaration order.
func (d *Description) RotationalJoints() []JointSpec {
	var out []JointSpec
	for _, j := range d.Joints {
		if j.Type.Rotational() {
			out = append(out, j)
		}
	}
	return out
}
