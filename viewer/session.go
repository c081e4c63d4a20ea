// Package viewer holds a robot model session: it builds the kinematic tree from a
// description, keeps it posed from direct commands or live telemetry, and exposes the
// flattened scene for rendering.
package viewer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/ggldnl/hexviz/assets"
	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/referenceframe/urdf"
	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/telemetry"
	"github.com/ggldnl/hexviz/utils"
)

// maxDescriptionSize bounds a description downloaded over HTTP.
const maxDescriptionSize = 32 << 20

var (
	// ErrNoModel is returned by operations that need a loaded model.
	ErrNoModel = errors.New("no robot model loaded")
	// ErrSuperseded is returned by a load that finished after a newer load started. Its
	// model is discarded.
	ErrSuperseded = errors.New("description load superseded by a newer one")
	// ErrClosed is returned once the session is closed.
	ErrClosed = errors.New("session closed")
)

// Options configures a Session.
type Options struct {
	// Loader fetches meshes. A nil loader fails every mesh, leaving those links without
	// a visual.
	Loader assets.Loader
	// MaxConcurrent bounds concurrent geometry resolution.
	MaxConcurrent int
	// DefaultPose is applied to every freshly built model. Nil selects the hexapod
	// standing pose.
	DefaultPose map[string]float64
	// Placement, when set, orients and grounds every freshly built model.
	Placement *referenceframe.Placement
	// HTTPClient downloads descriptions for LoadDescriptionURL.
	HTTPClient *http.Client
	// Clock timestamps status and telemetry. Nil uses the wall clock.
	Clock clock.Clock
	// WatchDebounce delays reloads triggered by WatchDescription. Zero selects
	// DefaultWatchDebounce.
	WatchDebounce time.Duration
}

// JointState describes one movable joint of the loaded model.
type JointState struct {
	Name     string                   `json:"name"`
	Type     referenceframe.JointType `json:"type"`
	Axis     referenceframe.Vector    `json:"axis"`
	AngleDeg float64                  `json:"angle_deg"`
}

// Session owns at most one model at a time. All methods are safe for concurrent use.
type Session struct {
	id          string
	logger      logging.Logger
	clk         clock.Clock
	cache       *assets.Cache
	resolver    *assets.Resolver
	httpClient  *http.Client
	defaultPose map[string]float64
	placement   *referenceframe.Placement
	status      *statusBoard
	workers     utils.StoppableWorkers

	// watchDebounce is the quiet period before a watched file is reloaded.
	watchDebounce time.Duration

	// generation increments on every load; only the newest load may install.
	generation atomic.Uint64

	mu        sync.Mutex
	closed    bool
	model     *referenceframe.Model
	desc      *referenceframe.Description
	client    *telemetry.Client
	telemetry TelemetryState
	power     powerHistory
}

// NewSession returns an empty session.
func NewSession(opts Options, logger logging.Logger) *Session {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	loader := opts.Loader
	if loader == nil {
		loader = assets.LoaderFunc(func(context.Context, string) (*spatialmath.Mesh, error) {
			return nil, errors.New("no mesh loader configured")
		})
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: assets.DefaultTimeout}
	}
	defaultPose := opts.DefaultPose
	if defaultPose == nil {
		defaultPose = telemetry.StandingPose()
	}
	watchDebounce := opts.WatchDebounce
	if watchDebounce <= 0 {
		watchDebounce = DefaultWatchDebounce
	}
	cache := assets.NewCache(loader, logger)
	s := &Session{
		id:          uuid.NewString(),
		logger:      logger,
		clk:         clk,
		cache:       cache,
		resolver:    assets.NewResolver(cache, opts.MaxConcurrent, logger),
		httpClient:  httpClient,
		defaultPose: defaultPose,
		placement:   opts.Placement,
		status:      newStatusBoard(clk),
		workers:     utils.NewStoppableWorkers(),

		watchDebounce: watchDebounce,
	}
	logger.Debugw("session created", "id", s.id)
	return s
}

// ID identifies the session in logs and API responses.
func (s *Session) ID() string {
	return s.id
}

// LoadDescription parses a URDF document and installs the model built from it.
func (s *Session) LoadDescription(ctx context.Context, doc []byte) error {
	gen := s.beginLoad()
	desc, err := urdf.Parse(doc)
	if err != nil {
		return s.loadFailed(gen, err)
	}
	return s.build(ctx, gen, desc)
}

// LoadDescriptionFile reads and loads a URDF file.
func (s *Session) LoadDescriptionFile(ctx context.Context, path string) error {
	gen := s.beginLoad()
	desc, err := urdf.ParseFile(path)
	if err != nil {
		return s.loadFailed(gen, err)
	}
	return s.build(ctx, gen, desc)
}

// LoadDescriptionURL downloads and loads a URDF document.
func (s *Session) LoadDescriptionURL(ctx context.Context, url string) error {
	gen := s.beginLoad()
	doc, err := s.download(ctx, url)
	if err != nil {
		return s.loadFailed(gen, err)
	}
	desc, err := urdf.Parse(doc)
	if err != nil {
		return s.loadFailed(gen, err)
	}
	return s.build(ctx, gen, desc)
}

func (s *Session) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid description url %q", url)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch description from %s", url)
	}
	defer goutils.UncheckedErrorFunc(resp.Body.Close)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	doc, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptionSize))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read description from %s", url)
	}
	return doc, nil
}

func (s *Session) beginLoad() uint64 {
	gen := s.generation.Inc()
	s.status.post(StatusLoading, "Loading robot model...")
	return gen
}

func (s *Session) loadFailed(gen uint64, err error) error {
	if s.generation.Load() == gen {
		s.status.post(StatusError, "Error loading URDF: "+err.Error())
	}
	s.logger.Warnw("description load failed", "generation", gen, "error", err)
	return err
}

// build runs the pipeline after parsing: topology check, concurrent visual resolution,
// tree construction, default pose and placement. The result is installed only if no
// newer load started meanwhile.
func (s *Session) build(ctx context.Context, gen uint64, desc *referenceframe.Description) error {
	if err := referenceframe.CheckTopology(desc); err != nil {
		return s.loadFailed(gen, err)
	}
	start := s.clk.Now()
	stopSlowLog := utils.SlowLogger(ctx, s.clk, "robot model still loading", s.logger, "name", desc.Name, "generation", gen)
	visuals, visualErr := s.resolver.ResolveAll(ctx, desc.Links)
	stopSlowLog()
	if err := ctx.Err(); err != nil {
		return s.loadFailed(gen, err)
	}
	model, err := referenceframe.BuildModel(desc, visuals)
	if err != nil {
		return s.loadFailed(gen, err)
	}
	model.ApplyPose(s.defaultPose)
	if s.placement != nil {
		s.placement.Apply(model)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		model.Destroy()
		return ErrClosed
	}
	if s.generation.Load() != gen {
		s.mu.Unlock()
		model.Destroy()
		s.logger.Debugw("discarding stale model", "generation", gen)
		return ErrSuperseded
	}
	if s.model != nil {
		s.model.Destroy()
	}
	s.model = model
	s.desc = desc
	s.mu.Unlock()

	skipped := len(multierr.Errors(visualErr))
	msg := fmt.Sprintf("Robot loaded: %d joints", len(model.Joints()))
	if skipped > 0 {
		msg += fmt.Sprintf(", %d visuals skipped", skipped)
	}
	s.status.post(StatusSuccess, msg)
	s.logger.Infow("robot model loaded",
		"name", desc.Name,
		"links", len(desc.Links),
		"joints", len(model.Joints()),
		"visuals", len(visuals),
		"skipped", skipped,
		"duration", s.clk.Since(start),
	)
	return nil
}

// Description returns the description of the installed model.
func (s *Session) Description() (*referenceframe.Description, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, ErrNoModel
	}
	return s.desc, nil
}

// ApplyPose sets joint angles in degrees. Unknown joints and non-finite angles are
// ignored.
func (s *Session) ApplyPose(angles map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return ErrNoModel
	}
	s.model.ApplyPose(angles)
	return nil
}

// HandleTelemetry applies the joints of a telemetry message to the model and records it
// for display. Messages arriving before a model is loaded are only recorded.
func (s *Session) HandleTelemetry(msg *telemetry.Message) {
	if msg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil && len(msg.Joints) > 0 {
		s.model.ApplyPose(msg.Joints)
	}
	now := s.clk.Now()
	s.telemetry.Joints = msg.Joints
	s.telemetry.Voltage = msg.Voltage
	s.telemetry.Current = msg.Current
	s.telemetry.UpdatedAt = &now
	s.power.add(msg)
}

// Joints lists the movable joints of the loaded model in declaration order.
func (s *Session) Joints() ([]JointState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, ErrNoModel
	}
	return lo.Map(s.model.Joints(), func(jr *referenceframe.JointRuntime, _ int) JointState {
		return JointState{
			Name:     jr.Name,
			Type:     jr.Type,
			Axis:     referenceframe.Vector{X: jr.Axis.X, Y: jr.Axis.Y, Z: jr.Axis.Z},
			AngleDeg: jr.CurrentAngleDeg,
		}
	}), nil
}

// Snapshot returns the flattened scene of the loaded model.
func (s *Session) Snapshot() (referenceframe.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return referenceframe.Scene{}, ErrNoModel
	}
	return s.model.Snapshot(), nil
}

// Telemetry returns the connection state and the last telemetry received.
func (s *Session) Telemetry() TelemetryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.telemetry
	if s.client != nil {
		state.Stats = s.client.Stats()
	}
	state.Power = s.power.summary()
	return state
}

// Status returns the current status message and the recent history.
func (s *Session) Status() StatusReport {
	return s.status.report()
}

// Connect opens a telemetry connection, replacing any existing one. Received joint
// angles drive the model until Disconnect or until the connection drops.
func (s *Session) Connect(ctx context.Context, cfg telemetry.ClientConfig) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()
	s.Disconnect()

	var client *telemetry.Client
	ready := make(chan struct{})
	onClose := func(err error) {
		<-ready
		s.connectionLost(client, err)
	}
	client, err := telemetry.Dial(ctx, cfg, s.HandleTelemetry, onClose, s.clk, s.logger)
	if err != nil {
		close(ready)
		s.status.post(StatusError, "Connection error: "+err.Error())
		return err
	}

	s.mu.Lock()
	installed := !s.closed && s.client == nil
	if installed {
		s.client = client
		s.power.reset()
		s.telemetry = TelemetryState{Connected: true, URL: cfg.URL()}
	}
	closed := s.closed
	s.mu.Unlock()

	if !installed {
		close(ready)
		goutils.UncheckedError(client.Close())
		if closed {
			return ErrClosed
		}
		return errors.New("another connection was opened concurrently")
	}
	// posted before onClose may run so a lost connection is always the latest status
	s.status.post(StatusSuccess, "Connected to "+cfg.URL())
	close(ready)
	return nil
}

// Disconnect closes the telemetry connection, if any, and clears the telemetry display.
func (s *Session) Disconnect() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.telemetry = TelemetryState{}
	s.power.reset()
	s.mu.Unlock()
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		s.logger.Debugw("error closing telemetry connection", "error", err)
	}
}

func (s *Session) connectionLost(client *telemetry.Client, err error) {
	s.mu.Lock()
	if client == nil || s.client != client {
		s.mu.Unlock()
		return
	}
	s.client = nil
	s.telemetry = TelemetryState{}
	s.power.reset()
	s.mu.Unlock()
	if err != nil {
		s.status.post(StatusError, "Connection error: "+err.Error())
		return
	}
	s.status.post(StatusSuccess, "Disconnected")
}

// Close disconnects, stops any description watcher and releases the model.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.workers.Stop()
	s.Disconnect()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		s.model.Destroy()
		s.model = nil
		s.desc = nil
	}
	s.cache.Purge()
	return nil
}
