package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/wardwatch/internal/core"
	"github.com/agenthands/wardwatch/internal/core/model"
)

const DefaultPath = "config/config.toml"

// MaxWindowDays bounds the risk window to ten years, well inside the range
// time.Duration can hold.
const MaxWindowDays = 3650

type RiskConfig struct {
	WindowDays     int    `toml:"window_days" env:"WINDOW_DAYS"`
	PositiveMarker string `toml:"positive_marker" env:"POSITIVE_MARKER"`
}

type ServerConfig struct {
	Port           string   `toml:"port" env:"PORT"`
	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout int      `toml:"request_timeout" env:"REQUEST_TIMEOUT"` // seconds
	MaxUploadMB    int64    `toml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

type MemgraphConfig struct {
	Enabled  bool   `toml:"enabled" env:"ENABLED"`
	URI      string `toml:"uri" env:"URI"`
	User     string `toml:"user" env:"USER"`
	Password string `toml:"password" env:"PASSWORD"`
}

type ConcurrencyConfig struct {
	DetectWorkers int `toml:"detect_workers" env:"DETECT_WORKERS"`
}

type Config struct {
	Risk        RiskConfig        `toml:"risk" envPrefix:"RISK_"`
	Server      ServerConfig      `toml:"server" envPrefix:"SERVER_"`
	Log         LogConfig         `toml:"log" envPrefix:"LOG_"`
	Memgraph    MemgraphConfig    `toml:"memgraph" envPrefix:"MEMGRAPH_"`
	Concurrency ConcurrencyConfig `toml:"concurrency" envPrefix:"CONCURRENCY_"`
}

// Default mirrors config/config.toml.
func Default() *Config {
	return &Config{
		Risk: RiskConfig{
			WindowDays:     14,
			PositiveMarker: model.DefaultPositiveMarker,
		},
		Server: ServerConfig{
			Port: "8080",
			AllowedOrigins: []string{
				"http://localhost",
				"http://localhost:4200",
				"http://127.0.0.1:4200",
			},
			RequestTimeout: 60,
			MaxUploadMB:    64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Concurrency: ConcurrencyConfig{
			DetectWorkers: 4,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error; the defaults are used. Environment variables are applied
// last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) Validate() error {
	if err := CheckWindowDays(c.Risk.WindowDays); err != nil {
		return fmt.Errorf("risk.window_days: %w", err)
	}
	if c.Risk.PositiveMarker == "" {
		return errors.New("risk.positive_marker must not be empty")
	}
	if c.Concurrency.DetectWorkers <= 0 {
		return fmt.Errorf("concurrency.detect_workers must be positive, got %d", c.Concurrency.DetectWorkers)
	}
	if c.Memgraph.Enabled && c.Memgraph.URI == "" {
		return errors.New("memgraph.uri is required when memgraph export is enabled")
	}
	return nil
}

// Core returns the pipeline options described by the config.
func (c *Config) Core() core.Options {
	return core.Options{
		Window:         Days(c.Risk.WindowDays),
		PositiveMarker: c.Risk.PositiveMarker,
		Workers:        c.Concurrency.DetectWorkers,
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

var ErrWindowDays = fmt.Errorf("window must be between 1 and %d days", MaxWindowDays)

// CheckWindowDays rejects risk windows that are not positive or exceed
// MaxWindowDays.
func CheckWindowDays(n int) error {
	if n <= 0 || n > MaxWindowDays {
		return fmt.Errorf("%w, got %d", ErrWindowDays, n)
	}
	return nil
}

// Days converts a whole number of days to a duration. Callers check n with
// CheckWindowDays first.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
