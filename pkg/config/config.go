// Package config loads forcegraph settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML or YAML file, chosen by extension
//  3. FORCEGRAPH_* environment variables, with "__" separating sections:
//     FORCEGRAPH_SIMULATION__LINK_DISTANCE=80 sets simulation.link_distance
//
// The default file lives at ~/.config/forcegraph/config.toml and is
// optional.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORCEGRAPH_"

// Config is the complete application configuration.
type Config struct {
	Simulation  force.Params      `toml:"simulation"`
	Viewport    ViewportConfig    `toml:"viewport"`
	Interaction InteractionConfig `toml:"interaction"`
	Output      OutputConfig      `toml:"output"`
	Server      ServerConfig      `toml:"server"`
}

// ViewportConfig controls fitting and zoom limits.
type ViewportConfig struct {
	Padding  float64 `toml:"padding"`
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
}

// InteractionConfig controls pointer handling.
type InteractionConfig struct {
	HitSlop          float64 `toml:"hit_slop"`
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
}

// OutputConfig controls rendered artifacts.
type OutputConfig struct {
	Labels     bool   `toml:"labels"`
	Background string `toml:"background"`
	// FrameRate is the tick rate of interactive hosts, in frames per second.
	FrameRate int `toml:"frame_rate"`
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SessionTTL     Duration `toml:"session_ttl"`
	MaxSessions    int      `toml:"max_sessions"`
	RequestTimeout Duration `toml:"request_timeout"`
	// MaxTicksPerRequest caps the n parameter of tick requests.
	MaxTicksPerRequest int `toml:"max_ticks_per_request"`
}

// Duration is a time.Duration written as a string such as "30m".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Simulation: force.DefaultParams(),
		Viewport: ViewportConfig{
			Padding:  40,
			MinScale: viewport.DefaultMinScale,
			MaxScale: viewport.DefaultMaxScale,
		},
		Interaction: InteractionConfig{
			HitSlop:          interaction.DefaultHitSlop,
			WheelSensitivity: interaction.DefaultWheelSensitivity,
		},
		Output: OutputConfig{
			Labels:    true,
			FrameRate: 30,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			AllowedOrigins:     []string{"*"},
			SessionTTL:         Duration(30 * time.Minute),
			MaxSessions:        64,
			RequestTimeout:     Duration(30 * time.Second),
			MaxTicksPerRequest: 1000,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate config dir")
	}
	return filepath.Join(dir, "forcegraph", "config.toml"), nil
}

// Load reads the configuration from path, then overlays environment
// overrides. An empty path skips the file layer; a named file that does
// not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "access config %s", path)
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load env overrides")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "toml"}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the default config file when it exists, and only the
// defaults plus environment overrides otherwise.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Load("")
	}
	if _, err := os.Stat(path); err != nil {
		return Load("")
	}
	return Load(path)
}

// envKey maps FORCEGRAPH_SERVER__SESSION_TTL to server.session_ttl.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return TOML{}
	}
}

// Save writes c to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write config %s", path)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(buf *bytes.Buffer) error {
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return nil
}

// Validate checks ranges that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Viewport.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "viewport.padding must be non-negative")
	}
	if c.Viewport.MinScale <= 0 || c.Viewport.MaxScale < c.Viewport.MinScale {
		return errors.New(errors.ErrCodeInvalidInput, "viewport scale bounds must satisfy 0 < min_scale <= max_scale")
	}
	if c.Output.FrameRate <= 0 || c.Output.FrameRate > 240 {
		return errors.New(errors.ErrCodeInvalidInput, "output.frame_rate must be in 1..240")
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_sessions must be positive")
	}
	if c.Server.MaxTicksPerRequest <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_ticks_per_request must be positive")
	}
	return nil
}

// Params returns the simulation parameters with defaults applied.
func (c *Config) Params() force.Params {
	return c.Simulation.WithDefaults()
}

// Bounds returns the zoom scale bounds.
func (c *Config) Bounds() viewport.Bounds {
	return viewport.Bounds{Min: c.Viewport.MinScale, Max: c.Viewport.MaxScale}.WithDefaults()
}

// InteractionOptions returns the controller options.
func (c *Config) InteractionOptions() interaction.Options {
	return interaction.Options{
		HitSlop:          c.Interaction.HitSlop,
		WheelSensitivity: c.Interaction.WheelSensitivity,
		Bounds:           c.Bounds(),
		Padding:          c.Viewport.Padding,
	}
}

// FrameInterval returns the duration of one interactive frame.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(max(c.Output.FrameRate, 1))
}
