package cli

import (
	"context"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/ggldnl/hexviz/config"
	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/viewer"
	"github.com/ggldnl/hexviz/web"
)

// ServeAction loads the configured robot and serves the dashboard API until interrupted.
func ServeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyServeFlags(c, cfg); err != nil {
		return err
	}
	logger, err := newLogger(c, cfg.Log)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(c)
	defer stop()

	listener, err := net.Listen("tcp", cfg.Web.BindAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", cfg.Web.BindAddress)
	}
	return serve(ctx, cfg, listener, logger)
}

// applyServeFlags lets command line flags override the config file.
func applyServeFlags(c *cli.Context, cfg *config.Config) error {
	if bind := c.String(flagBind); bind != "" {
		cfg.Web.BindAddress = bind
	}
	if file := c.Path(flagURDF); file != "" {
		cfg.Description = config.DescriptionConfig{File: file, Watch: cfg.Description.Watch}
	}
	if addr := c.String(flagConnect); addr != "" {
		host, port, err := splitHostPort(addr, cfg.Telemetry.Port)
		if err != nil {
			return err
		}
		cfg.Telemetry.Address = host
		cfg.Telemetry.Port = port
		cfg.Telemetry.AutoConnect = true
	}
	return cfg.Validate("")
}

// splitHostPort accepts "host" or "host:port".
func splitHostPort(addr string, defaultPort int) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// no port given
		return addr, defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid port in %q", addr)
	}
	return host, port, nil
}

// serve runs a session for cfg behind the web API on listener until ctx is done. A
// description or connection that fails at startup is logged and the server still runs,
// so the dashboard can upload a model or reconnect.
func serve(ctx context.Context, cfg *config.Config, listener net.Listener, logger logging.Logger) error {
	session, err := viewer.NewSessionFromConfig(cfg, logger)
	if err != nil {
		goutils.UncheckedError(listener.Close())
		return err
	}
	defer goutils.UncheckedErrorFunc(session.Close)

	if err := session.Start(ctx, cfg); err != nil {
		logger.Warnw("startup incomplete", "error", err)
	}
	return web.Serve(ctx, listener, session, web.Options{
		BindAddress: cfg.Web.BindAddress,
		StaticDir:   cfg.Web.StaticDir,
	}, logger)
}
