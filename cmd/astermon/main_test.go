package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playok/astermon/internal/config"
)

func TestPidFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astermon.pid")
	require.NoError(t, writePidFile(path, 4242))

	pid, err := readPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
}

func TestReadPidFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astermon.pid")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))

	_, err := readPidFile(path)
	assert.Error(t, err)

	_, err = readPidFile(filepath.Join(t.TempDir(), "missing.pid"))
	assert.Error(t, err)
}

func TestBuildForwardFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ConfigPath = filepath.Join(t.TempDir(), "does-not-exist.yaml")
	cfg.Calls.Enabled = false
	cfg.History.Database = "history.db"

	args := buildForwardFlags(cfg)

	assert.NotContains(t, args, "-config")
	assert.NotContains(t, args, "-calls-listen")
	assert.Contains(t, args, "-process-listen")
	assert.Contains(t, args, "127.0.0.1:8050")

	idx := indexOf(args, "-db")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, filepath.IsAbs(args[idx+1]))
}

func TestBuildDashboards_RespectsEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Process.Enabled = false

	ds := buildDashboards(cfg, nil, nil)
	require.Len(t, ds, 1)
	assert.Equal(t, "calls", ds[0].name)
	assert.Equal(t, "0.0.0.0:8051", ds[0].srv.Addr)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
