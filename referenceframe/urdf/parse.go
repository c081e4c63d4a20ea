package urdf

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/spatialmath"
)

var (
	zeroVec   = r3.Vector{}
	defaultAx = r3.Vector{Z: 1}
	unitScale = r3.Vector{X: 1, Y: 1, Z: 1}
)

// Parse reads a URDF document into a description. It performs no I/O and returns a
// *referenceframe.ParseError for anything that is not a well formed robot description.
func Parse(doc []byte) (*referenceframe.Description, error) {
	var r robot
	if err := xml.Unmarshal(doc, &r); err != nil {
		return nil, referenceframe.NewParseError("malformed robot description", err)
	}

	desc := &referenceframe.Description{
		Name:   r.Name,
		Joints: make([]referenceframe.JointSpec, 0, len(r.Joints)),
		Links:  make([]referenceframe.LinkSpec, 0, len(r.Links)),
	}

	linkNames := make(map[string]struct{}, len(r.Links))
	for _, l := range r.Links {
		spec, err := l.toSpec()
		if err != nil {
			return nil, err
		}
		if _, ok := linkNames[spec.Name]; ok {
			return nil, referenceframe.NewDuplicateNameError("link", spec.Name)
		}
		linkNames[spec.Name] = struct{}{}
		desc.Links = append(desc.Links, spec)
	}

	jointNames := make(map[string]struct{}, len(r.Joints))
	for _, j := range r.Joints {
		spec, err := j.toSpec()
		if err != nil {
			return nil, err
		}
		if _, ok := jointNames[spec.Name]; ok {
			return nil, referenceframe.NewDuplicateNameError("joint", spec.Name)
		}
		jointNames[spec.Name] = struct{}{}
		desc.Joints = append(desc.Joints, spec)
	}
	return desc, nil
}

// ParseFile reads and parses the URDF file at path.
func ParseFile(path string) (*referenceframe.Description, error) {
	//nolint:gosec
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return Parse(doc)
}

func (j *joint) toSpec() (referenceframe.JointSpec, error) {
	if j.Name == "" {
		return referenceframe.JointSpec{}, referenceframe.NewInvalidElementError("joint", "missing name")
	}
	if j.Type == "" {
		return referenceframe.JointSpec{}, referenceframe.NewInvalidElementError(j.Name, "missing joint type")
	}
	if j.Parent == nil || j.Parent.Link == "" {
		return referenceframe.JointSpec{}, referenceframe.NewInvalidElementError(j.Name, "missing parent link")
	}
	if j.Child == nil || j.Child.Link == "" {
		return referenceframe.JointSpec{}, referenceframe.NewInvalidElementError(j.Name, "missing child link")
	}
	spec := referenceframe.JointSpec{
		Name:       j.Name,
		Type:       referenceframe.JointType(j.Type),
		ParentLink: j.Parent.Link,
		ChildLink:  j.Child.Link,
		Axis:       defaultAx,
	}
	var err error
	spec.OriginTranslation, spec.OriginRPY, err = j.Origin.parse(j.Name)
	if err != nil {
		return referenceframe.JointSpec{}, err
	}
	if j.Axis != nil {
		ax, err := parseVec(j.Name, "axis", j.Axis.XYZ, defaultAx)
		if err != nil {
			return referenceframe.JointSpec{}, err
		}
		spec.Axis = ax
	}
	if spec.Type.Rotational() {
		if spec.Axis.Norm() == 0 {
			return referenceframe.JointSpec{}, referenceframe.NewInvalidElementError(j.Name, "zero length rotation axis")
		}
		spec.Axis = spec.Axis.Normalize()
	}
	return spec, nil
}

func (l *link) toSpec() (referenceframe.LinkSpec, error) {
	if l.Name == "" {
		return referenceframe.LinkSpec{}, referenceframe.NewInvalidElementError("link", "missing name")
	}
	spec := referenceframe.LinkSpec{Name: l.Name}
	if len(l.Visuals) == 0 {
		return spec, nil
	}
	// the first visual is the one displayed
	v := l.Visuals[0]
	var err error
	spec.VisualTranslation, spec.VisualRPY, err = v.Origin.parse(l.Name)
	if err != nil {
		return referenceframe.LinkSpec{}, err
	}
	if v.Geometry != nil {
		spec.Geometry, err = v.Geometry.toSpec(l.Name)
		if err != nil {
			return referenceframe.LinkSpec{}, err
		}
	}
	return spec, nil
}

func (g *geometry) toSpec(owner string) (referenceframe.Geometry, error) {
	switch {
	case g.Box != nil:
		if g.Box.Size == nil {
			return referenceframe.Geometry{}, referenceframe.NewInvalidElementError(owner, "box missing size")
		}
		size, err := parseVec(owner, "box size", g.Box.Size, zeroVec)
		if err != nil {
			return referenceframe.Geometry{}, err
		}
		if _, err := spatialmath.NewBox(size); err != nil {
			return referenceframe.Geometry{}, referenceframe.NewParseError("invalid box on "+owner, err)
		}
		return referenceframe.Geometry{Type: referenceframe.BoxGeometry, Size: size}, nil
	case g.Cylinder != nil:
		radius, err := parseRequiredFloat(owner, "cylinder radius", g.Cylinder.Radius)
		if err != nil {
			return referenceframe.Geometry{}, err
		}
		length, err := parseRequiredFloat(owner, "cylinder length", g.Cylinder.Length)
		if err != nil {
			return referenceframe.Geometry{}, err
		}
		if _, err := spatialmath.NewCylinder(radius, length); err != nil {
			return referenceframe.Geometry{}, referenceframe.NewParseError("invalid cylinder on "+owner, err)
		}
		return referenceframe.Geometry{Type: referenceframe.CylinderGeometry, Radius: radius, Length: length}, nil
	case g.Sphere != nil:
		radius, err := parseRequiredFloat(owner, "sphere radius", g.Sphere.Radius)
		if err != nil {
			return referenceframe.Geometry{}, err
		}
		if _, err := spatialmath.NewSphere(radius); err != nil {
			return referenceframe.Geometry{}, referenceframe.NewParseError("invalid sphere on "+owner, err)
		}
		return referenceframe.Geometry{Type: referenceframe.SphereGeometry, Radius: radius}, nil
	case g.Mesh != nil:
		if strings.TrimSpace(g.Mesh.Filename) == "" {
			return referenceframe.Geometry{}, referenceframe.NewInvalidElementError(owner, "mesh missing filename")
		}
		scale, err := parseVec(owner, "mesh scale", g.Mesh.Scale, unitScale)
		if err != nil {
			return referenceframe.Geometry{}, err
		}
		return referenceframe.Geometry{
			Type:      referenceframe.MeshGeometry,
			AssetPath: strings.TrimSpace(g.Mesh.Filename),
			Scale:     scale,
		}, nil
	default:
		return referenceframe.Geometry{}, nil
	}
}

func (p *pose) parse(owner string) (r3.Vector, spatialmath.EulerAngles, error) {
	if p == nil {
		return zeroVec, spatialmath.EulerAngles{}, nil
	}
	xyz, err := parseVec(owner, "origin xyz", p.XYZ, zeroVec)
	if err != nil {
		return zeroVec, spatialmath.EulerAngles{}, err
	}
	rpy, err := parseVec(owner, "origin rpy", p.RPY, zeroVec)
	if err != nil {
		return zeroVec, spatialmath.EulerAngles{}, err
	}
	return xyz, spatialmath.EulerAngles{Roll: rpy.X, Pitch: rpy.Y, Yaw: rpy.Z}, nil
}

// parseVec reads a space delimited "x y z" attribute, returning def when it is absent.
func parseVec(owner, attr string, s *string, def r3.Vector) (r3.Vector, error) {
	if s == nil {
		return def, nil
	}
	fields := strings.Fields(*s)
	if len(fields) != 3 {
		return zeroVec, referenceframe.NewInvalidElementError(owner, attr+" must have three values, got "+strconv.Quote(*s))
	}
	var out [3]float64
	for i, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			return zeroVec, referenceframe.NewInvalidElementError(owner, attr+" has malformed value "+strconv.Quote(f))
		}
		out[i] = v
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}, nil
}

func parseRequiredFloat(owner, attr string, s *string) (float64, error) {
	if s == nil {
		return 0, referenceframe.NewInvalidElementError(owner, attr+" is required")
	}
	v, err := parseFloat(strings.TrimSpace(*s))
	if err != nil {
		return 0, referenceframe.NewInvalidElementError(owner, attr+" has malformed value "+strconv.Quote(*s))
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("non-finite value %q", s)
	}
	return v, nil
}
