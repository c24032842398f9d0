package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/engine/remote"
	"github.com/specialistvlad/dmngrid/internal/inmemorystore"
	"github.com/specialistvlad/dmngrid/internal/resultstore"
	"github.com/specialistvlad/dmngrid/internal/resultstore/redisstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file then environment", func(t *testing.T) {
		// --- Arrange ---
		path := filepath.Join(t.TempDir(), "dmngrid.yaml")
		content := `
logLevel: debug
engine: remoteService
concurrency: 8
engines:
  remoteService:
    baseUrl: http://file:1
    timeout: 5s
store:
  type: redis
  redisAddr: localhost:6379
  ttl: 1h
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		environ := map[string]string{
			"DMNGRID_LOG_FORMAT":  "json",
			"DMNGRID_CONCURRENCY": "2",
			"DMNGRID_REMOTE_URL":  "http://env:2",
			"DMNGRID_RESULT_TTL":  "30m",
		}

		// --- Act ---
		cfg, err := LoadConfig(path, environ)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, engine.RemoteServiceID, cfg.Engine)
		assert.Equal(t, 2, cfg.Concurrency)
		assert.Equal(t, "http://env:2", cfg.Engines[engine.RemoteServiceID]["baseUrl"])
		assert.Equal(t, "5s", cfg.Engines[engine.RemoteServiceID]["timeout"])
		assert.Equal(t, StoreRedis, cfg.Store.Type)
		assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), map[string]string{})
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("bad environment value", func(t *testing.T) {
		_, err := LoadConfig("", map[string]string{"DMNGRID_CONCURRENCY": "many"})
		assert.ErrorContains(t, err, "failed to read environment")
	})
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log-format"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log-level"},
		{"engine", func(c *Config) { c.Engine = "camunda" }, "invalid engine"},
		{"engine options", func(c *Config) { c.Engines["camunda"] = map[string]any{} }, "unknown engine"},
		{"concurrency", func(c *Config) { c.Concurrency = -1 }, "cannot be negative"},
		{"store", func(c *Config) { c.Store.Type = "disk" }, "invalid store"},
		{"redis address", func(c *Config) { c.Store.Type = StoreRedis }, "requires a redis address"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, cfg, *got)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewApp(t *testing.T) {
	t.Run("engines from options", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Engines[engine.RemoteServiceID] = map[string]any{"baseUrl": "http://svc:9/", "timeout": "2s"}
		a, _, _ := SetupAppTest(t, cfg)

		infos := a.Registry().All()
		require.Len(t, infos, 2)
		assert.Equal(t, engine.LocalInterpreterID, infos[0].ID)

		e, err := a.Engine(engine.RemoteServiceID)
		require.NoError(t, err)
		assert.Equal(t, "http://svc:9", e.(*remote.Engine).BaseURL())

		def, err := a.Engine("")
		require.NoError(t, err)
		assert.Equal(t, engine.LocalInterpreterID, def.Info().ID)

		_, err = a.Engine("nope")
		assert.ErrorIs(t, err, engine.ErrUnknownEngine)

		assert.IsType(t, &inmemorystore.Store{}, a.Store())
	})

	t.Run("invalid engine options", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "debug"
		cfg.Engines[engine.RemoteServiceID] = map[string]any{"basUrl": "http://typo"}
		valid, err := NewConfig(cfg)
		require.NoError(t, err)

		_, err = NewApp(&bytes.Buffer{}, &bytes.Buffer{}, valid)
		assert.ErrorContains(t, err, "invalid remoteService options")
	})

	t.Run("redis store shared by runners", func(t *testing.T) {
		// --- Arrange ---
		mr := miniredis.RunT(t)
		cfg := DefaultConfig()
		cfg.Store = StoreConfig{Type: StoreRedis, RedisAddr: mr.Addr(), Prefix: "t:"}
		a, _, _ := SetupAppTest(t, cfg)
		require.IsType(t, &redisstore.Store{}, a.Store())

		// --- Act ---
		r, err := a.Runner("")
		require.NoError(t, err)
		err = r.Store().SetStatus(context.Background(), "tc", resultstore.StatusRunning)

		// --- Assert ---
		require.NoError(t, err)
		got, err := a.Store().GetStatus(context.Background(), "tc")
		require.NoError(t, err)
		assert.Equal(t, resultstore.StatusRunning, got)
		assert.True(t, mr.Exists("t:status:tc"))
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":1`)
}
