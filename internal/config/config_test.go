package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weave.yaml")
	content := `
log_level: debug
demo:
  workers: 2
  tick: 10ms
metrics:
  namespace: app
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, []string{"demo.workers=6", "redis.addr=localhost:6379", "redis.db=3"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 6, cfg.Demo.Workers)
	assert.Equal(t, 10*time.Millisecond, cfg.Demo.Tick)
	assert.Equal(t, 1000, cfg.Demo.Dispatches, "unset keys keep defaults")
	assert.Equal(t, "app", cfg.Metrics.Namespace)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load("", []string{"demo.workers"})
	assert.ErrorContains(t, err, "key=value")

	_, err = Load("", []string{"demo.unknown=1"})
	assert.Error(t, err)

	_, err = Load("", []string{"demo.workers=0"})
	assert.ErrorContains(t, err, "workers")

	for _, o := range []string{"demo.fetches=-1", "demo.ticks=-2", "demo.history=-1", "demo.dispatches=-5"} {
		key, _, _ := strings.Cut(o, "=")
		_, err = Load("", []string{o})
		assert.ErrorContains(t, err, key, o)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("demo: [1, 2"), 0o644))
	_, err = Load(path, nil)
	assert.Error(t, err)
}
