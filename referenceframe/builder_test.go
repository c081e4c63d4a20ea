package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
)

// armDescription is a small chain: base -shoulder-> upper -elbow-> lower -weld-> tool.
func armDescription() *Description {
	return &Description{
		Name: "arm",
		Links: []LinkSpec{
			{Name: "base", Geometry: Geometry{Type: BoxGeometry, Size: r3.Vector{X: 0.2, Y: 0.2, Z: 0.1}}},
			{Name: "upper", Geometry: Geometry{Type: CylinderGeometry, Radius: 0.02, Length: 0.2}},
			{Name: "lower"},
			{Name: "tool", Geometry: Geometry{Type: SphereGeometry, Radius: 0.01}},
		},
		Joints: []JointSpec{
			{
				Name: "shoulder", Type: RevoluteJoint, ParentLink: "base", ChildLink: "upper",
				OriginTranslation: r3.Vector{Z: 0.1},
				OriginRPY:         spatialmath.EulerAngles{Yaw: math.Pi / 2},
				Axis:              r3.Vector{Z: 1},
			},
			{
				Name: "elbow", Type: ContinuousJoint, ParentLink: "upper", ChildLink: "lower",
				OriginTranslation: r3.Vector{X: 0.2},
				Axis:              r3.Vector{Y: 1},
			},
			{Name: "weld", Type: FixedJoint, ParentLink: "lower", ChildLink: "tool", OriginTranslation: r3.Vector{X: 0.1}},
		},
	}
}

func armVisuals() map[string]*Visual {
	box, _ := spatialmath.NewBox(r3.Vector{X: 0.2, Y: 0.2, Z: 0.1})
	cyl, _ := spatialmath.NewCylinder(0.02, 0.2)
	return map[string]*Visual{
		"base": {Shape: box, Origin: spatialmath.NewZeroPose()},
		"upper": {
			Shape:      cyl,
			Origin:     spatialmath.NewPose(r3.Vector{X: 0.1}, nil),
			Correction: (&spatialmath.R4AA{Theta: math.Pi / 2, RX: 1}).ToQuat(),
		},
	}
}

func TestBuildModelRuntimes(t *testing.T) {
	m, err := BuildModel(armDescription(), armVisuals())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "arm")

	// fixed joints get no runtime
	test.That(t, m.Joints(), test.ShouldHaveLength, 2)
	test.That(t, m.JointNames(), test.ShouldResemble, []string{"shoulder", "elbow"})
	for _, name := range []string{"shoulder", "elbow"} {
		jr, ok := m.Joint(name)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, jr.Name, test.ShouldEqual, name)
		test.That(t, jr.Node.Name(), test.ShouldEqual, name)
		test.That(t, jr.Node.Kind(), test.ShouldEqual, JointNode)
		test.That(t, jr.CurrentAngleDeg, test.ShouldEqual, 0.)
	}
	_, ok := m.Joint("weld")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestBuildModelStructure(t *testing.T) {
	m, err := BuildModel(armDescription(), armVisuals())
	test.That(t, err, test.ShouldBeNil)

	root := m.Root()
	test.That(t, root.Name(), test.ShouldEqual, World)
	test.That(t, root.Children(), test.ShouldHaveLength, 1)

	base, ok := m.Link("base")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, base.Parent(), test.ShouldEqual, root)

	upper, _ := m.Link("upper")
	shoulder, _ := m.Joint("shoulder")
	test.That(t, upper.Parent(), test.ShouldEqual, shoulder.Node)
	test.That(t, shoulder.Node.Parent(), test.ShouldEqual, base)
	test.That(t, shoulder.Node.Position(), test.ShouldResemble, r3.Vector{Z: 0.1})

	// link frame -> visual frame (origin) -> shape node (correction)
	var visual *Node
	for _, c := range upper.Children() {
		if c.Kind() == VisualNode {
			visual = c
		}
	}
	test.That(t, visual, test.ShouldNotBeNil)
	test.That(t, visual.Position(), test.ShouldResemble, r3.Vector{X: 0.1})
	test.That(t, visual.Children(), test.ShouldHaveLength, 1)
	shape := visual.Children()[0]
	test.That(t, shape.Kind(), test.ShouldEqual, ShapeNode)
	test.That(t, shape.Shape().Kind(), test.ShouldEqual, spatialmath.CylinderKind)
	test.That(t, spatialmath.QuaternionAlmostEqual(shape.Orientation(),
		(&spatialmath.R4AA{Theta: math.Pi / 2, RX: 1}).ToQuat(), 1e-12), test.ShouldBeTrue)

	// links without a resolved visual still carry the chain
	lower, _ := m.Link("lower")
	test.That(t, lower.Children(), test.ShouldHaveLength, 1)
	test.That(t, lower.Children()[0].Name(), test.ShouldEqual, "weld")
	tool, _ := m.Link("tool")
	test.That(t, tool.Children(), test.ShouldHaveLength, 0)
	test.That(t, tool.WorldPose().Point.X, test.ShouldAlmostEqual, 0)
	test.That(t, tool.WorldPose().Point.Y, test.ShouldAlmostEqual, 0.3)
	test.That(t, tool.WorldPose().Point.Z, test.ShouldAlmostEqual, 0.1)
}

func TestBuildModelMultipleRoots(t *testing.T) {
	desc := &Description{Links: []LinkSpec{{Name: "a"}, {Name: "b"}}}
	m, err := BuildModel(desc, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Root().Children(), test.ShouldHaveLength, 2)
	test.That(t, m.Joints(), test.ShouldHaveLength, 0)
	test.That(t, m.Bounds().IsEmpty(), test.ShouldBeTrue)
}

func TestBuildModelWorldParent(t *testing.T) {
	desc := &Description{
		Links:  []LinkSpec{{Name: "base"}},
		Joints: []JointSpec{{Name: "mount", Type: FixedJoint, ParentLink: World, ChildLink: "base", OriginTranslation: r3.Vector{Z: 1}}},
	}
	m, err := BuildModel(desc, nil)
	test.That(t, err, test.ShouldBeNil)
	base, _ := m.Link("base")
	test.That(t, base.Parent().Name(), test.ShouldEqual, "mount")
	test.That(t, base.Parent().Parent(), test.ShouldEqual, m.Root())
	test.That(t, base.WorldPose().Point, test.ShouldResemble, r3.Vector{Z: 1})
}

func TestBuildModelErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(d *Description)
		msg    string
	}{
		{
			"undeclared parent",
			func(d *Description) { d.Joints[1].ParentLink = "forearm" },
			"unresolved parent",
		},
		{
			"cycle",
			func(d *Description) {
				d.Links = append(d.Links, LinkSpec{Name: "x"}, LinkSpec{Name: "y"})
				d.Joints = append(d.Joints,
					JointSpec{Name: "xy", Type: FixedJoint, ParentLink: "x", ChildLink: "y"},
					JointSpec{Name: "yx", Type: FixedJoint, ParentLink: "y", ChildLink: "x"},
				)
			},
			"unresolved parent",
		},
		{
			"multiple parents",
			func(d *Description) {
				d.Joints = append(d.Joints, JointSpec{Name: "extra", Type: FixedJoint, ParentLink: "base", ChildLink: "tool"})
			},
			"multiple parents",
		},
		{
			"unknown child",
			func(d *Description) { d.Joints[2].ChildLink = "gripper" },
			"unknown child link",
		},
		{
			"duplicate joint",
			func(d *Description) { d.Joints[1].Name = "shoulder" },
			"duplicate joint name",
		},
		{
			"duplicate link",
			func(d *Description) { d.Links[2].Name = "upper" },
			"duplicate link name",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			desc := armDescription()
			tc.mutate(desc)
			test.That(t, CheckTopology(desc), test.ShouldNotBeNil)
			m, err := BuildModel(desc, armVisuals())
			test.That(t, m, test.ShouldBeNil)
			test.That(t, IsParseError(err), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}

	_, err := BuildModel(nil, nil)
	test.That(t, IsParseError(err), test.ShouldBeTrue)
}

func TestRestOrientationComposition(t *testing.T) {
	build := func(rpy spatialmath.EulerAngles) quat.Number {
		desc := &Description{
			Links:  []LinkSpec{{Name: "a"}, {Name: "b"}},
			Joints: []JointSpec{{Name: "j", Type: RevoluteJoint, ParentLink: "a", ChildLink: "b", OriginRPY: rpy, Axis: r3.Vector{Z: 1}}},
		}
		m, err := BuildModel(desc, nil)
		test.That(t, err, test.ShouldBeNil)
		jr, _ := m.Joint("j")
		return jr.RestOrientation
	}
	rx := (&spatialmath.R4AA{Theta: math.Pi / 2, RX: 1}).ToQuat()
	ry := (&spatialmath.R4AA{Theta: math.Pi / 2, RY: 1}).ToQuat()

	test.That(t, spatialmath.QuaternionAlmostEqual(build(spatialmath.EulerAngles{Roll: math.Pi / 2}), rx, 1e-12), test.ShouldBeTrue)

	both := build(spatialmath.EulerAngles{Roll: math.Pi / 2, Pitch: math.Pi / 2})
	test.That(t, spatialmath.QuaternionAlmostEqual(both, quat.Mul(ry, rx), 1e-12), test.ShouldBeTrue)
	test.That(t, spatialmath.QuaternionAlmostEqual(both, quat.Mul(rx, ry), 1e-6), test.ShouldBeFalse)
}
