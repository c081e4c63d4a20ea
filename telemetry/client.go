package telemetry

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	ws "github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/utils"
)

const (
	// DefaultPort is the robot's telemetry port.
	DefaultPort = 8765
	// DefaultUpdateRateHz is how often telemetry is requested.
	DefaultUpdateRateHz = 10.0

	handshakeTimeout = 10 * time.Second
	writeWait        = 5 * time.Second
)

// ClientConfig describes how to reach the robot.
type ClientConfig struct {
	Address      string  `json:"address"`
	Port         int     `json:"port"`
	UpdateRateHz float64 `json:"update_rate_hz"`
	// Secure selects wss:// instead of ws://.
	Secure bool `json:"secure"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ClientConfig) Validate(path string) error {
	if cfg.Address == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "address")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return goutils.NewConfigValidationError(path, errors.Errorf("port %d out of range", cfg.Port))
	}
	if cfg.UpdateRateHz < 0 || !utils.IsFinite(cfg.UpdateRateHz) {
		return goutils.NewConfigValidationError(path, errors.Errorf("update rate %v must be positive", cfg.UpdateRateHz))
	}
	return nil
}

// URL returns the websocket address of the robot.
func (cfg *ClientConfig) URL() string {
	scheme := "ws"
	if cfg.Secure {
		scheme = "wss"
	}
	return scheme + "://" + net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
}

// Interval is the period between telemetry requests.
func (cfg *ClientConfig) Interval() time.Duration {
	rate := cfg.UpdateRateHz
	if rate <= 0 {
		rate = DefaultUpdateRateHz
	}
	return time.Duration(float64(time.Second) / rate)
}

// Handler receives every decoded telemetry message, in order, on the client's read
// goroutine.
type Handler func(msg *Message)

// Stats counts traffic on a connection.
type Stats struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
	Dropped  int64 `json:"dropped"`
}

// Client is a live telemetry connection. It polls the robot at the configured rate and
// hands decoded messages to its handler until closed. A transport failure closes the
// client and reports the cause to onClose; there is no automatic reconnect.
type Client struct {
	cfg     ClientConfig
	conn    *ws.Conn
	logger  logging.Logger
	clk     clock.Clock
	handler Handler
	onClose func(error)

	writeMu   sync.Mutex
	workers   utils.StoppableWorkers
	closeOnce sync.Once
	closed    atomic.Bool

	sent     atomic.Int64
	received atomic.Int64
	dropped  atomic.Int64
}

// Dial connects to the robot and starts polling. clk may be nil to use the wall clock.
func Dial(
	ctx context.Context,
	cfg ClientConfig,
	handler Handler,
	onClose func(error),
	clk clock.Clock,
	logger logging.Logger,
) (*Client, error) {
	if err := cfg.Validate("telemetry"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	dialer := *ws.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout
	conn, resp, err := dialer.DialContext(ctx, cfg.URL(), nil)
	if resp != nil && resp.Body != nil {
		//nolint:errcheck
		resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg.URL())
	}

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		logger:  logger,
		clk:     clk,
		handler: handler,
		onClose: onClose,
	}
	c.workers = utils.NewStoppableWorkers()
	c.workers.AddWorkers(c.pollLoop, c.readLoop)
	logger.Infow("telemetry connected", "url", cfg.URL(), "interval", cfg.Interval())
	return c, nil
}

// Config returns the configuration the client was dialed with.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// Stats returns traffic counters.
func (c *Client) Stats() Stats {
	return Stats{Sent: c.sent.Load(), Received: c.received.Load(), Dropped: c.dropped.Load()}
}

// Closed is true once the client has stopped.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// RequestTelemetry sends one get_telemetry command.
func (c *Client) RequestTelemetry() error {
	data, err := json.Marshal(Request{Command: CommandGetTelemetry})
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed.Load() {
		return errors.New("telemetry client closed")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
		return err
	}
	c.sent.Inc()
	return nil
}

func (c *Client) pollLoop(ctx context.Context) {
	ticker := c.clk.Ticker(c.cfg.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := c.RequestTelemetry(); err != nil {
			if ctx.Err() == nil && !c.closed.Load() {
				c.failAsync(errors.Wrap(err, "telemetry write failed"))
			}
			return
		}
	}
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !c.closed.Load() {
				c.failAsync(err)
			}
			return
		}
		msg, err := Decode(data)
		if err != nil {
			c.dropped.Inc()
			c.logger.Warnw("dropping telemetry message", "error", err)
			continue
		}
		c.received.Inc()
		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// failAsync tears the client down from outside the worker that noticed the failure, since
// stopping the workers waits for that worker to return.
func (c *Client) failAsync(cause error) {
	goutils.PanicCapturingGo(func() {
		c.closeOnce.Do(func() {
			c.logger.Warnw("telemetry connection lost", "error", cause)
			if err := c.shutdown(false); err != nil {
				c.logger.Debugw("error closing telemetry connection", "error", err)
			}
			if c.onClose != nil {
				c.onClose(cause)
			}
		})
	})
}

// Close stops polling and closes the connection. It is safe to call more than once and
// does not invoke onClose.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.shutdown(true)
		c.logger.Infow("telemetry disconnected", "url", c.cfg.URL())
	})
	return err
}

func (c *Client) shutdown(graceful bool) error {
	c.writeMu.Lock()
	c.closed.Store(true)
	if graceful {
		//nolint:errcheck
		c.conn.WriteControl(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
	}
	c.writeMu.Unlock()
	err := c.conn.Close()
	c.workers.Stop()
	return err
}
