package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/referenceframe/urdf"
	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// InspectAction prints the joints and links of a URDF file.
func InspectAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("inspect requires a URDF file")
	}
	desc, err := urdf.ParseFile(path)
	if err != nil {
		return err
	}
	if err := referenceframe.CheckTopology(desc); err != nil {
		return err
	}
	printf(c.App.Writer, "robot %q: %d links, %d joints, %d movable",
		desc.Name, len(desc.Links), len(desc.Joints), len(desc.RotationalJoints()))
	printf(c.App.Writer, "%s", jointTable(desc))
	printf(c.App.Writer, "%s", linkTable(desc))
	if c.Bool(flagTree) {
		// geometry is not loaded; the tree shows frames only
		model, err := referenceframe.BuildModel(desc, nil)
		if err != nil {
			return err
		}
		defer model.Destroy()
		printf(c.App.Writer, "%s", frameTable(model))
	}
	return nil
}

func jointTable(desc *referenceframe.Description) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Joint", "Type", "Parent", "Child", "Translation", "Orientation", "Axis"})
	for i, j := range desc.Joints {
		axis := ""
		if j.Type.Rotational() {
			axis = formatVector(j.Axis.X, j.Axis.Y, j.Axis.Z, 2)
		}
		t.AppendRow(table.Row{
			i + 1,
			j.Name,
			string(j.Type),
			j.ParentLink,
			j.ChildLink,
			formatVector(j.OriginTranslation.X, j.OriginTranslation.Y, j.OriginTranslation.Z, 3),
			formatRPY(j.OriginRPY),
			axis,
		})
	}
	return t.Render()
}

func linkTable(desc *referenceframe.Description) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Link", "Geometry", "Details"})
	for i, l := range desc.Links {
		t.AppendRow(table.Row{i + 1, l.Name, geometryKind(l.Geometry), geometryDetails(l.Geometry)})
	}
	return t.Render()
}

func frameTable(model *referenceframe.Model) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Frame", "Kind", "Parent", "World Position"})
	for _, n := range model.Snapshot().Nodes {
		t.AppendRow(table.Row{
			n.Name,
			string(n.Kind),
			n.Parent,
			formatVector(n.WorldPosition.X, n.WorldPosition.Y, n.WorldPosition.Z, 3),
		})
	}
	return t.Render()
}

func geometryKind(g referenceframe.Geometry) string {
	if g.Type == referenceframe.NoGeometry {
		return "-"
	}
	return string(g.Type)
}

func geometryDetails(g referenceframe.Geometry) string {
	switch g.Type {
	case referenceframe.BoxGeometry:
		return "size " + formatVector(g.Size.X, g.Size.Y, g.Size.Z, 3)
	case referenceframe.CylinderGeometry:
		return fmt.Sprintf("radius %.3f, length %.3f", g.Radius, g.Length)
	case referenceframe.SphereGeometry:
		return fmt.Sprintf("radius %.3f", g.Radius)
	case referenceframe.MeshGeometry:
		return fmt.Sprintf("%s, scale %s", g.AssetPath, formatVector(g.Scale.X, g.Scale.Y, g.Scale.Z, 3))
	default:
		return ""
	}
}

func formatVector(x, y, z float64, prec int) string {
	return fmt.Sprintf("X:%.*f, Y:%.*f, Z:%.*f", prec, x, prec, y, prec, z)
}

func formatRPY(rpy spatialmath.EulerAngles) string {
	return fmt.Sprintf(
		"Roll:%.2f, Pitch:%.2f, Yaw:%.2f",
		utils.RadToDeg(rpy.Roll),
		utils.RadToDeg(rpy.Pitch),
		utils.RadToDeg(rpy.Yaw),
	)
}
