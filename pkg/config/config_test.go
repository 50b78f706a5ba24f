package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.Backend.CacheTTL())
	assert.Equal(t, 300*time.Millisecond, cfg.Suggest.Debounce())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max input", func(c *Config) { c.Server.MaxInput = 0 }},
		{"default above max", func(c *Config) { c.Server.DefaultLimit = 50 }},
		{"zero max limit", func(c *Config) { c.Server.MaxLimit = 0 }},
		{"empty endpoint", func(c *Config) { c.Backend.Endpoint = "" }},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutMs = 0 }},
		{"negative ttl", func(c *Config) { c.Backend.CacheTTLs = -1 }},
		{"negative debounce", func(c *Config) { c.Suggest.DebounceMs = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
[server]
max_input = 64

[backend]
cache_ttl_s = 0

[suggest]
debounce_ms = 150
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxInput)
	assert.Equal(t, 6, cfg.Server.DefaultLimit, "missing keys keep defaults")
	assert.Equal(t, 0, cfg.Backend.CacheTTLs)
	assert.Equal(t, 150, cfg.Suggest.DebounceMs)
	assert.Equal(t, "zh-t-i0-pinyin", cfg.Backend.InputTool)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	// max_input has the wrong type; the rest of the file is still usable
	writeFile(t, path, `
[server]
max_input = "lots"
max_limit = 10

[cli]
limit = 3
show_trace = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Server.MaxInput)
	assert.Equal(t, 10, cfg.Server.MaxLimit)
	assert.Equal(t, 3, cfg.CLI.Limit)
	assert.False(t, cfg.CLI.ShowTrace)
}

func TestLoadConfigBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[server\nmax_input = ")
	_, err := LoadConfig(path)
	assert.Error(t, err)

	// startup still comes up, on defaults
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[server]\ndefault_limit = 99\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[cli]\nlimit = 2\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 2, cfg.CLI.Limit)
}

func TestRebuildConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[server]\nmax_input = 9\n")
	got, err := RebuildConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Server.MaxInput)
}

func TestGetActiveConfigPath(t *testing.T) {
	assert.Equal(t, "builtin", GetActiveConfigPath(""))
	assert.True(t, filepath.IsAbs(GetActiveConfigPath("config.toml")))
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[server]\nmax_input = 100\n")
	initial, err := LoadConfig(path)
	require.NoError(t, err)

	w := NewWatcher(path, initial)
	var calls atomic.Int32
	w.OnChange(func(c *Config) { calls.Add(1) })

	writeFile(t, path, "[server]\nmax_input = 200\n")
	require.NoError(t, w.Reload())
	assert.Equal(t, 200, w.Config().Server.MaxInput)
	assert.Equal(t, int32(1), calls.Load())

	// an invalid file keeps the previous config
	writeFile(t, path, "[server]\nmax_input = -1\n")
	assert.Error(t, w.Reload())
	assert.Equal(t, 200, w.Config().Server.MaxInput)
	assert.Equal(t, int32(1), calls.Load())

	// so does a half-typed save that is not TOML at all
	writeFile(t, path, "[server\nmax_input = ")
	assert.Error(t, w.Reload())
	assert.Equal(t, 200, w.Config().Server.MaxInput)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherPicksUpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[suggest]\ndebounce_ms = 100\n")
	initial, err := LoadConfig(path)
	require.NoError(t, err)

	w := NewWatcher(path, initial)
	changed := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, w.Start())
	defer w.Close()

	writeFile(t, path, "[suggest]\ndebounce_ms = 50\n")
	select {
	case c := <-changed:
		assert.Equal(t, 50, c.Suggest.DebounceMs)
	case <-time.After(3 * time.Second):
		t.Fatal("config change not picked up")
	}
}

func TestWatcherWithoutFile(t *testing.T) {
	w := NewWatcher("", nil)
	require.NoError(t, w.Start())
	assert.Equal(t, DefaultConfig(), w.Config())
	assert.Error(t, w.Reload())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
