package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/config"
)

const sample = `
scheduler:
  freq_hz: 1000000000
  open_loop_target: 500000
backends:
  - std: clock
    kind: local
  - std: custom
    kind: proxy
    address: 127.0.0.1:9000
save:
  dir: /tmp/cascade-saves
  catalog: /tmp/cascade-saves/catalog.db
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cascade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	root, err := config.Load(writeSample(t))
	require.NoError(t, err)
	require.Equal(t, float64(1e9), root.Scheduler.FreqHz)
	require.Equal(t, uint64(500000), root.Scheduler.OpenLoopTarget)
	require.Len(t, root.Backends, 2)
	require.Equal(t, "/tmp/cascade-saves", root.Save.Dir)
}

func TestBackendForFindsMatch(t *testing.T) {
	root, err := config.Load(writeSample(t))
	require.NoError(t, err)

	b, ok := root.BackendFor("custom")
	require.True(t, ok)
	require.Equal(t, "proxy", b.Kind)
	require.Equal(t, "127.0.0.1:9000", b.Address)
}

func TestBackendForMissingReturnsFalse(t *testing.T) {
	root, err := config.Load(writeSample(t))
	require.NoError(t, err)

	_, ok := root.BackendFor("gpio")
	require.False(t, ok)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load("/nonexistent/path.yaml")
	require.Error(t, err)
}
