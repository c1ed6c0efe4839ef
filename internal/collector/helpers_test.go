package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playok/astermon/internal/execx"
	"github.com/stretchr/testify/require"
)

func writeTempLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "full")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func osRunner() execx.Runner {
	return execx.NewOSRunner(5 * time.Second)
}
