package viewer

import (
	"context"

	"go.uber.org/multierr"

	"github.com/ggldnl/hexviz/config"
	"github.com/ggldnl/hexviz/logging"
)

// OptionsFromConfig derives session options from a viewer config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loader, err := cfg.AssetLoader()
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Loader:        loader,
		MaxConcurrent: cfg.Assets.MaxConcurrent,
		DefaultPose:   cfg.DefaultPose,
	}
	if cfg.Placement.Enabled {
		placement := cfg.Placement.Placement
		opts.Placement = &placement
	}
	return opts, nil
}

// NewSessionFromConfig creates a session configured by cfg. It does not load the
// description or connect; see Start.
func NewSessionFromConfig(cfg *config.Config, logger logging.Logger) (*Session, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewSession(opts, logger), nil
}

// Start loads the configured description, starts watching it when asked, and connects
// to the robot when auto_connect is set. Each step runs even if an earlier one failed;
// the failures are combined.
func (s *Session) Start(ctx context.Context, cfg *config.Config) error {
	var errs error
	switch {
	case cfg.Description.File != "":
		errs = multierr.Append(errs, s.LoadDescriptionFile(ctx, cfg.Description.File))
		if cfg.Description.Watch {
			errs = multierr.Append(errs, s.WatchDescription(ctx, cfg.Description.File))
		}
	case cfg.Description.URL != "":
		errs = multierr.Append(errs, s.LoadDescriptionURL(ctx, cfg.Description.URL))
	}
	if cfg.Telemetry.AutoConnect {
		errs = multierr.Append(errs, s.Connect(ctx, cfg.Telemetry.ClientConfig))
	}
	return errs
}
