package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ggldnl/hexviz/config"
	"github.com/ggldnl/hexviz/logging"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// loadConfig reads the --config file or falls back to defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.Path(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}

// newLogger builds the logger from the config, with --debug taking precedence.
func newLogger(c *cli.Context, cfg logging.Config) (logging.Logger, error) {
	if c.Bool(flagDebug) {
		cfg.Level = "debug"
	}
	return logging.NewLoggerFromConfig("hexviz", cfg)
}

// signalContext is cancelled on interrupt or termination.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}
