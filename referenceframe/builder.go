package referenceframe

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// Visual is the resolved renderable geometry of one link.
type Visual struct {
	Shape spatialmath.Shape
	// Origin places the visual relative to its link frame.
	Origin spatialmath.Pose
	// Correction is a shape-local rotation applied beneath the origin, used to align a
	// primitive's native axis with the description's convention.
	Correction quat.Number
}

// topology is the pre-indexed structure of a description: name lookups plus the order in
// which joints can be attached so that every parent exists before its children.
type topology struct {
	links     map[string]*LinkSpec
	linkOrder []string
	roots     []string
	attach    []*JointSpec
	// worldParent is set when joints hang off an undeclared "world" link, which is then
	// taken to be the model root.
	worldParent bool
}

func indexDescription(desc *Description) (*topology, error) {
	if desc == nil {
		return nil, NewParseError("no description", nil)
	}
	topo := &topology{links: make(map[string]*LinkSpec, len(desc.Links))}
	for i := range desc.Links {
		l := &desc.Links[i]
		if l.Name == "" {
			return nil, NewInvalidElementError("link", "missing name")
		}
		if _, ok := topo.links[l.Name]; ok {
			return nil, NewDuplicateNameError("link", l.Name)
		}
		topo.links[l.Name] = l
		topo.linkOrder = append(topo.linkOrder, l.Name)
	}
	_, worldDeclared := topo.links[World]

	seen := make(map[string]struct{}, len(desc.Joints))
	incoming := make(map[string]*JointSpec, len(desc.Joints))
	children := make(map[string][]*JointSpec)
	for i := range desc.Joints {
		j := &desc.Joints[i]
		if j.Name == "" {
			return nil, NewInvalidElementError("joint", "missing name")
		}
		if _, ok := seen[j.Name]; ok {
			return nil, NewDuplicateNameError("joint", j.Name)
		}
		seen[j.Name] = struct{}{}
		if _, ok := topo.links[j.ChildLink]; !ok {
			return nil, NewUnknownChildLinkError(j.Name, j.ChildLink)
		}
		if prev, ok := incoming[j.ChildLink]; ok {
			return nil, NewMultipleParentsError(j.ChildLink, prev.Name, j.Name)
		}
		incoming[j.ChildLink] = j
		children[j.ParentLink] = append(children[j.ParentLink], j)
	}

	for _, name := range topo.linkOrder {
		if _, ok := incoming[name]; !ok {
			topo.roots = append(topo.roots, name)
		}
	}

	// breadth first from the base links; anything left over hangs off a missing link or
	// sits on a cycle
	queue := append([]string(nil), topo.roots...)
	if !worldDeclared && len(children[World]) > 0 {
		topo.worldParent = true
		queue = append([]string{World}, queue...)
	}
	attached := make(map[string]struct{}, len(desc.Joints))
	for len(queue) > 0 {
		link := queue[0]
		queue = queue[1:]
		for _, j := range children[link] {
			topo.attach = append(topo.attach, j)
			attached[j.Name] = struct{}{}
			queue = append(queue, j.ChildLink)
		}
	}
	for i := range desc.Joints {
		j := &desc.Joints[i]
		if _, ok := attached[j.Name]; !ok {
			return nil, NewUnresolvedParentError(j.Name, j.ParentLink)
		}
	}
	return topo, nil
}

// CheckTopology validates that a description forms a single tree of links without
// building any nodes. It returns the same ParseError BuildModel would.
func CheckTopology(desc *Description) error {
	_, err := indexDescription(desc)
	return err
}

// BuildModel assembles a description and its resolved visuals into one rooted hierarchy.
// Links missing from visuals are built without a visual. Nothing is returned on failure.
func BuildModel(desc *Description, visuals map[string]*Visual) (*Model, error) {
	topo, err := indexDescription(desc)
	if err != nil {
		return nil, err
	}

	root := NewNode(World, RootNode, spatialmath.NewZeroPose())
	m := &Model{
		name:   desc.Name,
		root:   root,
		links:  make(map[string]*Node, len(topo.linkOrder)),
		joints: make(map[string]*JointRuntime),
	}
	guard := utils.NewGuard(root.Destroy)
	defer guard.OnFail()

	for _, name := range topo.linkOrder {
		frame := NewNode(name, LinkNode, spatialmath.NewZeroPose())
		if v := visuals[name]; v != nil && v.Shape != nil {
			if err := attachVisual(frame, name, v); err != nil {
				return nil, err
			}
		}
		m.links[name] = frame
	}
	for _, name := range topo.roots {
		if err := root.Add(m.links[name]); err != nil {
			return nil, err
		}
	}

	runtimes := make(map[string]*JointRuntime)
	for _, j := range topo.attach {
		frame := NewNode(j.Name, JointNode, j.OriginPose())
		parent := m.links[j.ParentLink]
		if parent == nil && topo.worldParent && j.ParentLink == World {
			parent = root
		}
		if parent == nil {
			return nil, NewUnresolvedParentError(j.Name, j.ParentLink)
		}
		if err := parent.Add(frame); err != nil {
			return nil, err
		}
		if err := frame.Add(m.links[j.ChildLink]); err != nil {
			return nil, err
		}
		if j.Type.Rotational() {
			runtimes[j.Name] = &JointRuntime{
				Name:            j.Name,
				Type:            j.Type,
				Axis:            j.Axis,
				Node:            frame,
				RestOrientation: frame.Orientation(),
			}
		}
	}

	// keep declaration order for listings
	for _, j := range desc.Joints {
		if jr, ok := runtimes[j.Name]; ok {
			m.joints[j.Name] = jr
			m.jointOrder = append(m.jointOrder, j.Name)
		}
	}
	guard.Success()
	return m, nil
}

func attachVisual(frame *Node, link string, v *Visual) error {
	visual := NewNode(link+"_visual", VisualNode, v.Origin)
	correction := spatialmath.NewZeroPose()
	if v.Correction != (quat.Number{}) {
		correction.Orientation = v.Correction
	}
	shape := NewNode(link+"_shape", ShapeNode, correction)
	shape.SetShape(v.Shape)
	if err := visual.Add(shape); err != nil {
		return err
	}
	return frame.Add(visual)
}
