package assets

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/spatialmath"
)

// DefaultMaxConcurrent bounds simultaneous mesh resolutions in ResolveAll.
const DefaultMaxConcurrent = 8

// cylinderCorrection turns the renderer's native +Y cylinder axis onto the description's
// +Z axis.
var cylinderCorrection = (&spatialmath.R4AA{Theta: math.Pi / 2, RX: 1}).ToQuat()

// Resolver turns link geometry into renderable visuals.
type Resolver struct {
	cache         *Cache
	logger        logging.Logger
	maxConcurrent int
}

// NewResolver returns a resolver that loads meshes through cache.
func NewResolver(cache *Cache, maxConcurrent int, logger logging.Logger) *Resolver {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Resolver{cache: cache, logger: logger, maxConcurrent: maxConcurrent}
}

// Resolve builds the visual for one link. Links without geometry resolve to nil. A mesh
// that cannot be loaded is reported as a *referenceframe.AssetLoadError.
func (r *Resolver) Resolve(ctx context.Context, link referenceframe.LinkSpec) (*referenceframe.Visual, error) {
	g := link.Geometry
	var (
		shape      spatialmath.Shape
		correction quat.Number
		err        error
	)
	switch g.Type {
	case referenceframe.NoGeometry:
		return nil, nil
	case referenceframe.BoxGeometry:
		shape, err = spatialmath.NewBox(g.Size)
	case referenceframe.CylinderGeometry:
		shape, err = spatialmath.NewCylinder(g.Radius, g.Length)
		correction = cylinderCorrection
	case referenceframe.SphereGeometry:
		shape, err = spatialmath.NewSphere(g.Radius)
	case referenceframe.MeshGeometry:
		m, loadErr := r.cache.Get(ctx, g.AssetPath)
		if loadErr != nil {
			return nil, referenceframe.NewAssetLoadError(link.Name, Key(g.AssetPath), loadErr)
		}
		// an unset scale is unit scale; zero on a single axis is kept
		scale := g.Scale
		if scale == (r3.Vector{}) {
			scale = r3.Vector{X: 1, Y: 1, Z: 1}
		}
		shape = m.Scale(scale)
	default:
		return nil, referenceframe.NewInvalidElementError(link.Name, "unsupported geometry type "+string(g.Type))
	}
	if err != nil {
		return nil, referenceframe.NewParseError("invalid geometry on "+link.Name, err)
	}
	return &referenceframe.Visual{Shape: shape, Origin: link.VisualPose(), Correction: correction}, nil
}

// ResolveAll resolves every link concurrently. Links that fail are left out of the
// returned map and their errors are combined; the rest of the visuals are still returned.
// Only cancellation of ctx discards the whole result.
func (r *Resolver) ResolveAll(ctx context.Context, links []referenceframe.LinkSpec) (map[string]*referenceframe.Visual, error) {
	var (
		mu      sync.Mutex
		visuals = make(map[string]*referenceframe.Visual, len(links))
		errs    error
	)
	withGeometry := lo.Filter(links, func(l referenceframe.LinkSpec, _ int) bool { return l.HasVisual() })

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)
	for _, link := range withGeometry {
		g.Go(func() error {
			v, err := r.Resolve(ctx, link)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warnw("link visual skipped", "link", link.Name, "error", err)
				errs = multierr.Append(errs, err)
				return nil
			}
			if v != nil {
				visuals[link.Name] = v
			}
			return nil
		})
	}
	//nolint:errcheck
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return visuals, errs
}
