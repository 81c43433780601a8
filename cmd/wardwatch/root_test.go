package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/wardwatch/internal/config"
)

func TestRoot_ConfigPathFromDotEnv(t *testing.T) {
	transfers, err := filepath.Abs(sampleTransfers)
	require.NoError(t, err)
	micro, err := filepath.Abs(sampleMicro)
	require.NoError(t, err)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wardwatch.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[risk]\nwindow_days = 0\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CONFIG_PATH="+cfgPath+"\n"), 0o600))

	t.Setenv("CONFIG_PATH", "")
	require.NoError(t, os.Unsetenv("CONFIG_PATH"))
	t.Chdir(dir)

	// Built before .env is loaded, as in main.
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"cluster", "--transfers", transfers, "--micro", micro})

	err = cmd.Execute()
	assert.ErrorIs(t, err, config.ErrWindowDays, "the file named in .env is loaded")
}

func TestRoot_ConfigFlagWins(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "ignored.toml"))
	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[risk]\nwindow_days = 0\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"cluster", "--transfers", sampleTransfers, "--micro", sampleMicro, "--config", bad})

	assert.ErrorIs(t, cmd.Execute(), config.ErrWindowDays)
}
