package referenceframe

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
)

// Quaternion is the serialized form of a rotation.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func newQuaternion(q quat.Number) Quaternion {
	return Quaternion{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// Vector is the serialized form of a translation or axis.
type Vector = spatialmath.Vector

func newVector(v r3.Vector) Vector {
	return spatialmath.NewVector(v)
}

// NodeSnapshot is one node of a flattened scene, with both local and world transforms so
// a renderer can rebuild the graph or draw it directly.
type NodeSnapshot struct {
	Name             string                   `json:"name"`
	Kind             NodeKind                 `json:"kind"`
	Parent           string                   `json:"parent,omitempty"`
	Position         Vector                   `json:"position"`
	Orientation      Quaternion               `json:"orientation"`
	WorldPosition    Vector                   `json:"world_position"`
	WorldOrientation Quaternion               `json:"world_orientation"`
	Shape            *spatialmath.ShapeConfig `json:"shape,omitempty"`
}

// Scene is a flattened snapshot of a model.
type Scene struct {
	Name   string              `json:"name"`
	Nodes  []NodeSnapshot      `json:"nodes"`
	Bounds *spatialmath.Bounds `json:"bounds,omitempty"`
	Angles map[string]float64  `json:"angles"`
}

// Snapshot flattens the model depth first, parents before children.
func (m *Model) Snapshot() Scene {
	scene := Scene{Name: m.name, Angles: m.Angles()}
	if m.Destroyed() {
		return scene
	}
	m.root.Walk(func(n *Node, world spatialmath.Pose) bool {
		snap := NodeSnapshot{
			Name:             n.name,
			Kind:             n.kind,
			Position:         newVector(n.position),
			Orientation:      newQuaternion(n.orientation),
			WorldPosition:    newVector(world.Point),
			WorldOrientation: newQuaternion(world.Orientation),
		}
		if n.parent != nil {
			snap.Parent = n.parent.name
		}
		if n.shape != nil {
			if cfg, err := spatialmath.NewShapeConfig(n.shape); err == nil {
				cfg.Bounds = n.shape.Bounds()
				snap.Shape = cfg
			}
		}
		scene.Nodes = append(scene.Nodes, snap)
		return true
	})
	if b := m.root.Bounds(); !b.IsEmpty() {
		scene.Bounds = &b
	}
	return scene
}
