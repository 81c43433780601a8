package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/wardwatch/internal/config"
	"github.com/agenthands/wardwatch/internal/core/cluster"
)

const (
	sampleTransfers = "../../testdata/transfers.csv"
	sampleMicro     = "../../testdata/microbiology.csv"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.toml")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClusterCmd_Stdout(t *testing.T) {
	stdout, _, err := execute(t, "cluster", "--transfers", sampleTransfers, "--micro", sampleMicro)
	require.NoError(t, err)

	var doc cluster.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Clusters, 1)
	assert.ElementsMatch(t, []string{"P001", "P002", "P003", "P004"}, doc.Clusters[0].Nodes)
}

func TestClusterCmd_Files(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "graph.json")
	pairs := filepath.Join(dir, "pairs.csv")

	stdout, stderr, err := execute(t, "cluster",
		"--transfers", sampleTransfers,
		"--micro", sampleMicro,
		"--out", out,
		"--pairs", pairs,
		"--summary",
	)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Cluster 1: [P001, P002, P003, P004] (size: 4)")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"clusters"`)

	csvData, err := os.ReadFile(pairs)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	assert.Equal(t, "patient_id_1,patient_id_2,organism,location", lines[0])
	assert.Contains(t, lines, "P003,P004,MRSA,ICU")
}

func TestClusterCmd_NarrowWindow(t *testing.T) {
	stdout, _, err := execute(t, "cluster", "--transfers", sampleTransfers, "--micro", sampleMicro, "--window-days", "1")
	require.NoError(t, err)

	var doc cluster.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	for _, c := range doc.Clusters {
		assert.GreaterOrEqual(t, c.Size, 2)
	}
}

func TestClusterCmd_WindowDaysRange(t *testing.T) {
	tests := []struct {
		name    string
		days    string
		wantErr bool
	}{
		{"unset uses config", "0", false},
		{"upper bound", "3650", false},
		{"negative", "-1", true},
		{"above bound", "3651", true},
		{"wraps to negative duration", "106752", true},
		{"wraps to tiny duration", "213504", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "cluster", "--transfers", sampleTransfers, "--micro", sampleMicro, "--window-days", tt.days)
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrWindowDays)
				assert.Equal(t, exitError, exitCode(err))
				return
			}
			require.NoError(t, err)
			var doc cluster.Document
			require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
			assert.NotEmpty(t, doc.Clusters)
		})
	}
}

func TestClusterCmd_MissingInput(t *testing.T) {
	_, _, err := execute(t, "cluster", "--transfers", sampleTransfers)
	assert.ErrorIs(t, err, errNoInput)
	assert.Equal(t, exitError, exitCode(err))
}

func TestClusterCmd_Malformed(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "transfers.csv")
	require.NoError(t, os.WriteFile(bad, []byte("patient_id,location,ward_in_time,ward_out_time\nP1,A,2024-01-05,2024-01-01\n"), 0o600))

	_, _, err := execute(t, "cluster", "--transfers", bad, "--micro", sampleMicro)
	require.Error(t, err)
	assert.Equal(t, exitMalformed, exitCode(err))
}
