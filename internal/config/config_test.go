package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[risk]
window_days = 21
positive_marker = "POS"

[server]
port = "9090"

[concurrency]
detect_workers = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Risk.WindowDays)
	assert.Equal(t, "POS", cfg.Risk.PositiveMarker)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")

	opts := cfg.Core()
	assert.Equal(t, 21*24*time.Hour, opts.Window)
	assert.Equal(t, "POS", opts.PositiveMarker)
	assert.Equal(t, 2, opts.Workers)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RISK_WINDOW_DAYS", "7")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("MEMGRAPH_ENABLED", "true")

	path := writeConfig(t, "[risk]\nwindow_days = 21\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Risk.WindowDays)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Memgraph.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[risk]\nwindow_days = 0\n"))
	assert.ErrorContains(t, err, "window_days")

	_, err = Load(writeConfig(t, "[risk\n"))
	assert.ErrorContains(t, err, "failed to parse TOML")
}

func TestValidate_WindowDays(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		wantErr bool
	}{
		{"one day", 1, false},
		{"default", 14, false},
		{"upper bound", MaxWindowDays, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"above bound", MaxWindowDays + 1, true},
		{"wraps to negative duration", 106752, true},
		{"wraps to tiny duration", 213504, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Risk.WindowDays = tt.days
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWindowDays)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Duration(tt.days)*24*time.Hour, cfg.Core().Window)
			assert.Positive(t, cfg.Core().Window)
		})
	}
}

func TestLoad_WindowDaysFromEnvOutOfRange(t *testing.T) {
	t.Setenv("RISK_WINDOW_DAYS", "213504")
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, ErrWindowDays)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv("CONFIG_PATH", "/etc/wardwatch.toml")
	assert.Equal(t, "/etc/wardwatch.toml", Path())
}
