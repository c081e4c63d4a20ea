package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// Placement positions a built model for display. It only moves the model root and is not
// part of the kinematic tree.
type Placement struct {
	// ZUpToYUp rotates a Z-up description into a Y-up scene.
	ZUpToYUp bool `json:"z_up_to_y_up"`
	// YawDegrees turns the model about the vertical axis so its front faces the viewer.
	YawDegrees float64 `json:"yaw_degrees"`
	// SnapToGround moves the lowest point of the model onto the ground plane.
	SnapToGround bool `json:"snap_to_ground"`
	// CenterFootprint centres the model's horizontal extent on the origin.
	CenterFootprint bool `json:"center_footprint"`
}

// DefaultPlacement is the hexapod dashboard placement: Y-up scene, front turned 180°,
// centred and standing on the ground.
func DefaultPlacement() Placement {
	return Placement{ZUpToYUp: true, YawDegrees: 180, SnapToGround: true, CenterFootprint: true}
}

// Up returns the scene's vertical axis under this placement.
func (p Placement) Up() r3.Vector {
	if p.ZUpToYUp {
		return r3.Vector{Y: 1}
	}
	return r3.Vector{Z: 1}
}

// Apply sets the model root transform. Rotation is applied first so that centring and
// ground snapping see the final orientation.
func (p Placement) Apply(m *Model) {
	if m == nil || m.Destroyed() {
		return
	}
	up := p.Up()
	base := quat.Number{Real: 1}
	if p.ZUpToYUp {
		base = (&spatialmath.R4AA{Theta: -math.Pi / 2, RX: 1}).ToQuat()
	}
	yaw := spatialmath.NewR4AAFromVector(up, utils.DegToRad(p.YawDegrees)).ToQuat()
	m.root.SetLocalPose(spatialmath.Pose{Orientation: quat.Mul(yaw, base)})

	b := m.root.Bounds()
	if b.IsEmpty() {
		return
	}
	var offset r3.Vector
	if p.CenterFootprint {
		c := b.Center()
		offset = c.Sub(up.Mul(c.Dot(up)))
	}
	if p.SnapToGround {
		offset = offset.Add(up.Mul(b.Min.Dot(up)))
	}
	m.root.SetPosition(offset.Mul(-1))
}
