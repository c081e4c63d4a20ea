package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/telemetry"
)

// SimulateAction serves simulated telemetry until interrupted.
func SimulateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg.Log)
	if err != nil {
		return err
	}
	seed := c.Int64(flagSeed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx, stop := signalContext(c)
	defer stop()

	bind := c.String(flagBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", bind)
	}
	return simulate(ctx, listener, seed, logger)
}

// simulate serves a telemetry simulator on listener until ctx is done.
func simulate(ctx context.Context, listener net.Listener, seed int64, logger logging.Logger) error {
	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           telemetry.NewSimulator(seed, logger),
	}
	done := make(chan struct{})
	defer close(done)
	goutils.PanicCapturingGo(func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		if err := httpServer.Close(); err != nil {
			logger.Errorw("error stopping simulator", "error", err)
		}
	})

	logger.Infow("telemetry simulator listening", "url", "ws://"+listener.Addr().String(), "seed", seed)
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
