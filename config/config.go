// Package config defines the structures to configure the viewer: where the robot
// description and its meshes come from, how to reach the robot, and how to serve the
// dashboard.
package config

import (
	"math"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/ggldnl/hexviz/assets"
	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/telemetry"
)

// DefaultBindAddress is where the web API listens unless configured otherwise.
const DefaultBindAddress = "localhost:8080"

// Config is the top level viewer configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Description DescriptionConfig `json:"description"`
	Assets      AssetsConfig      `json:"assets"`
	Telemetry   TelemetryConfig   `json:"telemetry"`
	// DefaultPose is applied after every model build, in degrees. When empty the
	// hexapod standing pose is used.
	DefaultPose map[string]float64 `json:"default_pose,omitempty"`
	Placement   PlacementConfig    `json:"placement"`
	Web         WebConfig          `json:"web"`
	Log         logging.Config     `json:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			Timeout:       assets.DefaultTimeout.String(),
			MaxConcurrent: assets.DefaultMaxConcurrent,
		},
		Telemetry: TelemetryConfig{
			ClientConfig: telemetry.ClientConfig{
				Port:         telemetry.DefaultPort,
				UpdateRateHz: telemetry.DefaultUpdateRateHz,
			},
		},
		Placement: PlacementConfig{Enabled: true, Placement: referenceframe.DefaultPlacement()},
		Web:       WebConfig{BindAddress: DefaultBindAddress},
		Log:       logging.Config{Level: "info"},
	}
}

// Validate ensures all parts of the config are valid. path prefixes the field names in
// errors and is empty for a top level config.
func (cfg *Config) Validate(path string) error {
	if err := cfg.Description.Validate(joinPath(path, "description")); err != nil {
		return err
	}
	if err := cfg.Assets.Validate(joinPath(path, "assets")); err != nil {
		return err
	}
	if err := cfg.Telemetry.Validate(joinPath(path, "telemetry")); err != nil {
		return err
	}
	for name, deg := range cfg.DefaultPose {
		if name == "" {
			return utils.NewConfigValidationError(joinPath(path, "default_pose"), errors.New("joint name cannot be empty"))
		}
		if math.IsNaN(deg) || math.IsInf(deg, 0) {
			return utils.NewConfigValidationError(joinPath(path, "default_pose"), errors.Errorf("angle for %q must be finite", name))
		}
	}
	if cfg.Log.Level != "" {
		if _, err := logging.LevelFromString(cfg.Log.Level); err != nil {
			return utils.NewConfigValidationError(joinPath(path, "log"), err)
		}
	}
	return nil
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// AssetLoader picks the mesh loader: an explicit base URL or directory, or else the
// meshes/ directory next to the description.
func (cfg *Config) AssetLoader() (assets.Loader, error) {
	timeout, err := cfg.Assets.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.Assets.BaseURL != "":
		return assets.NewHTTPLoader(cfg.Assets.BaseURL, timeout)
	case cfg.Assets.Dir != "":
		return assets.DirLoader{Dir: cfg.Assets.Dir}, nil
	case cfg.Description.URL != "":
		u, err := url.Parse(cfg.Description.URL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid description url")
		}
		u.Path = path.Join(path.Dir(u.Path), "meshes") + "/"
		u.RawQuery = ""
		return assets.NewHTTPLoader(u.String(), timeout)
	case cfg.Description.File != "":
		return assets.DirLoader{Dir: filepath.Join(filepath.Dir(cfg.Description.File), "meshes")}, nil
	default:
		return assets.DirLoader{Dir: "meshes"}, nil
	}
}

// resolvePaths makes relative file paths relative to the config file.
func (cfg *Config) resolvePaths() {
	if cfg.ConfigFilePath == "" {
		return
	}
	base := filepath.Dir(cfg.ConfigFilePath)
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	resolve(&cfg.Description.File)
	resolve(&cfg.Assets.Dir)
	resolve(&cfg.Web.StaticDir)
	resolve(&cfg.Log.File)
}

// DescriptionConfig says where to load the robot description from.
type DescriptionConfig struct {
	URL  string `json:"url,omitempty"`
	File string `json:"file,omitempty"`
	// Watch reloads the description when the file changes.
	Watch bool `json:"watch,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *DescriptionConfig) Validate(path string) error {
	if cfg.URL != "" && cfg.File != "" {
		return utils.NewConfigValidationError(path, errors.New("only one of url and file may be set"))
	}
	if cfg.URL != "" {
		if err := validateHTTPURL(cfg.URL); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if cfg.Watch && cfg.File == "" {
		return utils.NewConfigValidationError(path, errors.New("watch requires a file"))
	}
	return nil
}

// AssetsConfig says where meshes are fetched from.
type AssetsConfig struct {
	BaseURL       string `json:"base_url,omitempty"`
	Dir           string `json:"dir,omitempty"`
	Timeout       string `json:"timeout,omitempty"`
	MaxConcurrent int    `json:"max_concurrent,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *AssetsConfig) Validate(path string) error {
	if cfg.BaseURL != "" && cfg.Dir != "" {
		return utils.NewConfigValidationError(path, errors.New("only one of base_url and dir may be set"))
	}
	if cfg.BaseURL != "" {
		if err := validateHTTPURL(cfg.BaseURL); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if cfg.MaxConcurrent < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_concurrent cannot be negative"))
	}
	return nil
}

// TimeoutDuration parses Timeout, defaulting when unset.
func (cfg *AssetsConfig) TimeoutDuration() (time.Duration, error) {
	if cfg.Timeout == "" {
		return assets.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return 0, errors.Wrap(err, "invalid timeout")
	}
	if d <= 0 {
		return 0, errors.Errorf("timeout %s must be positive", d)
	}
	return d, nil
}

// TelemetryConfig is the robot connection plus whether to open it at startup.
type TelemetryConfig struct {
	telemetry.ClientConfig
	AutoConnect bool `json:"auto_connect,omitempty"`
}

// Validate ensures all parts of the config are valid. The address is only required when
// connecting at startup.
func (cfg *TelemetryConfig) Validate(path string) error {
	if !cfg.AutoConnect && cfg.Address == "" {
		return nil
	}
	return cfg.ClientConfig.Validate(path)
}

// PlacementConfig controls how the model is placed for display.
type PlacementConfig struct {
	Enabled bool `json:"enabled"`
	referenceframe.Placement
}

// WebConfig configures the HTTP API.
type WebConfig struct {
	BindAddress string `json:"bind_address,omitempty"`
	// StaticDir, when set, is served at / for the browser dashboard.
	StaticDir string `json:"static_dir,omitempty"`
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return errors.Errorf("url %q must be http or https", raw)
	}
	if u.Host == "" {
		return errors.Errorf("url %q has no host", raw)
	}
	return nil
}
