package telemetry

import (
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/ggldnl/hexviz/logging"
)

// Nominal power readings of the simulated robot.
const (
	NominalVoltage = 6.1
	NominalCurrent = 3.0

	fluctuationChance = 0.01
	maxVoltageDip     = 0.5
	maxCurrentDip     = 1.0
	recoveryStep      = 0.1
	settleEpsilon     = 0.01
)

// PowerState is the simulated battery reading of one connection. Readings occasionally
// dip and then climb back to nominal one step per request.
type PowerState struct {
	Voltage float64
	Current float64
}

// NewPowerState starts at nominal readings.
func NewPowerState() PowerState {
	return PowerState{Voltage: NominalVoltage, Current: NominalCurrent}
}

// Step advances the readings by one request, drawing randomness from rnd.
func (p *PowerState) Step(rnd func() float64) {
	if rnd() < fluctuationChance {
		if rnd() < 0.5 {
			p.Voltage = NominalVoltage - rnd()*maxVoltageDip
		} else {
			p.Current = NominalCurrent - rnd()*maxCurrentDip
		}
	}
	p.Voltage = settle(p.Voltage, NominalVoltage)
	p.Current = settle(p.Current, NominalCurrent)
}

func settle(value, nominal float64) float64 {
	if math.Abs(nominal-value) > settleEpsilon && value+recoveryStep < nominal {
		return value + recoveryStep
	}
	return nominal
}

// Simulator is a websocket endpoint that behaves like the robot's telemetry server: every
// get_telemetry command is answered with the standing pose and simulated power readings.
type Simulator struct {
	logger   logging.Logger
	upgrader ws.Upgrader

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator returns a simulator seeded with seed.
func NewSimulator(seed int64, logger logging.Logger) *Simulator {
	return &Simulator{
		logger:   logger,
		upgrader: ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		//nolint:gosec
		rnd: rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) randFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// Snapshot builds the next message for a connection's power state.
func (s *Simulator) Snapshot(power *PowerState) *Message {
	power.Step(s.randFloat)
	v, c := power.Voltage, power.Current
	return &Message{Joints: StandingPose(), Voltage: &v, Current: &c}
}

// ServeHTTP upgrades the request and serves telemetry until the client goes away.
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		//nolint:errcheck
		conn.Close()
	}()
	s.logger.Infow("client connected", "remote", r.RemoteAddr)
	defer s.logger.Infow("client disconnected", "remote", r.RemoteAddr)

	power := NewPowerState()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil || req.Command != CommandGetTelemetry {
			continue
		}
		payload, err := json.Marshal(s.Snapshot(&power))
		if err != nil {
			s.logger.Errorw("failed to encode telemetry", "error", err)
			return
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteMessage(ws.TextMessage, payload); err != nil {
			return
		}
	}
}
