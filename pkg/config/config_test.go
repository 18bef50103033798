package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tilecalc/pkg/cache"
	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/notify"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, tile.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, tile.DefaultEstimator(), cfg.Estimate)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, cache.TTLRecord, cfg.Cache.TTL)
	assert.False(t, cfg.MQTT.Enabled())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "tilecalc.toml", `
[policy]
brick_waste = 1.08

[estimate]
unit_cost = 7.5

[server]
addr = ":9090"

[cache]
backend = "none"
ttl = "12h"

[store]
backend = "memory"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.08, cfg.Policy.BrickWaste)
	assert.Equal(t, tile.DefaultHerringboneWaste, cfg.Policy.HerringboneWaste, "unset fields keep defaults")
	assert.Equal(t, 7.5, cfg.Estimate.UnitCost)
	assert.Equal(t, tile.DefaultTilesPerHour, cfg.Estimate.TilesPerHour)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, DefaultMaxCells, cfg.Server.MaxCells)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "tilecalc.yaml", `
estimate:
  tiles_per_hour: 20
render:
  shading: true
  palette:
    whole: "#fafafa"
mqtt:
  broker: tcp://localhost:1883
  topic_prefix: house
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Estimate.TilesPerHour)
	assert.True(t, cfg.Render.Shading)
	assert.Equal(t, "#fafafa", cfg.Render.Palette.Whole)
	assert.Equal(t, "#ffffcc", cfg.Render.Palette.Edge)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "house", cfg.MQTT.TopicPrefix)
	assert.Equal(t, notify.DefaultClientID, cfg.MQTT.ClientID)
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
}

func TestLoadDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, appName), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, appName, "config.toml"), []byte("[server]\nmax_cells = 10\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Server.MaxCells)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"bad toml", "c.toml", "[policy\n", errors.ErrCodeInvalidInput},
		{"bad yaml", "c.yaml", "policy: [1, 2", errors.ErrCodeInvalidInput},
		{"unknown extension", "c.json", "{}", errors.ErrCodeInvalidFormat},
		{"policy range", "c.toml", "[policy]\ndiagonal_whole_ratio = 1.5\n", errors.ErrCodeInvalidInput},
		{"negative cost", "c.toml", "[estimate]\nunit_cost = -1\n", errors.ErrCodeInvalidInput},
		{"bad color", "c.toml", "[render.palette]\nedge = \"yellowish\"\n", errors.ErrCodeInvalidInput},
		{"cache backend", "c.toml", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "c.toml", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"store backend", "c.toml", "[store]\nbackend = \"sqlite\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "c.toml", "[store]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"qos", "c.toml", "[mqtt]\nqos = 3\n", errors.ErrCodeInvalidInput},
		{"max cells", "c.toml", "[server]\nmax_cells = -1\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TILECALC_UNIT_COST", "2.25")
	t.Setenv("TILECALC_MAX_CELLS", "500")
	t.Setenv("TILECALC_CACHE_BACKEND", "REDIS")
	t.Setenv("TILECALC_REDIS_ADDR", "localhost:6379")
	t.Setenv("TILECALC_CACHE_TTL", "90m")
	t.Setenv("TILECALC_RENDER_SHADING", "true")
	t.Setenv("TILECALC_TILES_PER_HOUR", "fast")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 2.25, cfg.Estimate.UnitCost)
	assert.Equal(t, 500, cfg.Server.MaxCells)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Render.Shading)
	assert.Equal(t, tile.DefaultTilesPerHour, cfg.Estimate.TilesPerHour, "unparsable values are ignored")
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TILECALC_ADDR", ":7000")
	path := writeFile(t, "c.toml", "[server]\naddr = \":9090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "TILECALC_MQTT_TOPIC_PREFIX=fromdotenv\n")
	t.Setenv("TILECALC_MQTT_TOPIC_PREFIX", "")
	os.Unsetenv("TILECALC_MQTT_TOPIC_PREFIX")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "fromdotenv", os.Getenv("TILECALC_MQTT_TOPIC_PREFIX"))

	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Backend: BackendNone}.Open(ctx, false)
	require.NoError(t, err)
	assert.IsType(t, cache.NullCache{}, c)

	dir := t.TempDir()
	c, err = CacheConfig{Backend: BackendFile, Dir: dir}.Open(ctx, false)
	require.NoError(t, err)
	fc, ok := c.(*cache.FileCache)
	require.True(t, ok)
	assert.Equal(t, dir, fc.Dir())

	c, err = CacheConfig{Backend: BackendFile, Dir: dir}.Open(ctx, true)
	require.NoError(t, err)
	assert.IsType(t, cache.NullCache{}, c)

	s, err := StoreConfig{Backend: BackendMemory}.Open(ctx)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	storeDir := t.TempDir()
	s, err = StoreConfig{Backend: BackendFile, Dir: storeDir}.Open(ctx)
	require.NoError(t, err)
	fs, ok := s.(*store.FileStore)
	require.True(t, ok)
	assert.Equal(t, storeDir, fs.Path())

	n, err := MQTTConfig{}.Open(nil)
	require.NoError(t, err)
	assert.IsType(t, notify.Nop{}, n)
}

func TestRenderOptions(t *testing.T) {
	r := Default().Render
	assert.Len(t, r.RenderOptions(), 3)
	r.Shading = true
	assert.Len(t, r.RenderOptions(), 4)
}
