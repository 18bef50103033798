// Package config loads tilecalc settings from a TOML or YAML file, an
// optional .env file and TILECALC_* environment variables.
//
// Precedence, lowest first: built-in defaults, config file, environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tilecalc/pkg/cache"
	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/notify"
	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

const appName = "tilecalc"

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Server defaults.
const (
	DefaultAddr     = ":8080"
	DefaultMaxCells = 250_000
)

// =============================================================================
// Config Sections
// =============================================================================

// Config is the full tilecalc configuration.
type Config struct {
	Policy   tile.Policy    `toml:"policy" yaml:"policy"`
	Estimate tile.Estimator `toml:"estimate" yaml:"estimate"`
	Render   RenderConfig   `toml:"render" yaml:"render"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	MQTT     MQTTConfig     `toml:"mqtt" yaml:"mqtt"`
}

// RenderConfig controls layout drawings.
type RenderConfig struct {
	Scale   float64        `toml:"scale" yaml:"scale"`
	DPI     float64        `toml:"dpi" yaml:"dpi"`
	Shading bool           `toml:"shading" yaml:"shading"`
	Palette render.Palette `toml:"palette" yaml:"palette"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	MaxCells int    `toml:"max_cells" yaml:"max_cells"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" yaml:"backend"`
	Dir           string        `toml:"dir" yaml:"dir"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl"`
}

// StoreConfig selects where saved calculations live.
type StoreConfig struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Dir      string `toml:"dir" yaml:"dir"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database string `toml:"database" yaml:"database"`
}

// MQTTConfig enables event publication when Broker is set.
type MQTTConfig struct {
	Broker      string `toml:"broker" yaml:"broker"`
	ClientID    string `toml:"client_id" yaml:"client_id"`
	Username    string `toml:"username" yaml:"username"`
	Password    string `toml:"password" yaml:"password"`
	TopicPrefix string `toml:"topic_prefix" yaml:"topic_prefix"`
	QoS         int    `toml:"qos" yaml:"qos"`
}

// Default returns the built-in configuration. Directories are left empty and
// resolved to XDG locations when the backends are opened.
func Default() Config {
	return Config{
		Policy:   tile.DefaultPolicy(),
		Estimate: tile.DefaultEstimator(),
		Render: RenderConfig{
			Scale:   render.DefaultScale,
			DPI:     render.DefaultDPI,
			Palette: render.DefaultPalette(),
		},
		Server: ServerConfig{Addr: DefaultAddr, MaxCells: DefaultMaxCells},
		Cache:  CacheConfig{Backend: BackendFile, TTL: cache.TTLRecord},
		Store:  StoreConfig{Backend: BackendFile, Database: store.DefaultDatabase},
		MQTT:   MQTTConfig{ClientID: notify.DefaultClientID, TopicPrefix: notify.DefaultTopicPrefix},
	}
}

// =============================================================================
// Loading
// =============================================================================

// DefaultPath returns ~/.config/tilecalc/config.toml (or under XDG_CONFIG_HOME).
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the file at path on top of the defaults, then applies environment
// overrides and validates the result. An empty path falls back to DefaultPath
// and tolerates it being absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml", "":
		err = toml.Unmarshal(data, c)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Estimate.Validate(); err != nil {
		return err
	}
	if err := c.Render.Palette.Validate(); err != nil {
		return err
	}
	if !(c.Render.Scale > 0 && c.Render.Scale <= render.MaxScale) || !(c.Render.DPI > 0 && c.Render.DPI <= render.MaxDPI) {
		return errors.New(errors.ErrCodeInvalidInput,
			"render scale must be in (0, %g] and dpi in (0, %g]", render.MaxScale, render.MaxDPI)
	}
	if c.Server.MaxCells <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server max_cells must be positive")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return errors.New(errors.ErrCodeInvalidInput, "mqtt qos must be 0, 1 or 2")
	}
	return nil
}

// =============================================================================
// Backends
// =============================================================================

// RenderOptions converts the render section into render options.
func (r RenderConfig) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithScale(r.Scale),
		render.WithDPI(r.DPI),
		render.WithPalette(r.Palette),
	}
	if r.Shading {
		opts = append(opts, render.WithCoverageShading())
	}
	return opts
}

// Open builds the configured cache. noCache forces a NullCache.
func (c CacheConfig) Open(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	default:
		dir, err := c.ResolvedDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// ResolvedDir returns Dir or ~/.cache/tilecalc.
func (c CacheConfig) ResolvedDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return cacheDir()
}

// Open builds the configured store.
func (s StoreConfig) Open(ctx context.Context) (store.Store, error) {
	switch s.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{URI: s.MongoURI, Database: s.Database})
	default:
		return store.NewFileStore(s.Dir)
	}
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// Open connects to the broker, or returns a no-op notifier when disabled.
func (m MQTTConfig) Open(logger *log.Logger) (notify.Notifier, error) {
	if !m.Enabled() {
		return notify.Nop{}, nil
	}
	return notify.NewMQTT(notify.MQTTConfig{
		Broker:      m.Broker,
		ClientID:    m.ClientID,
		Username:    m.Username,
		Password:    m.Password,
		TopicPrefix: m.TopicPrefix,
		QoS:         byte(m.QoS),
	}, logger)
}

// =============================================================================
// Paths
// =============================================================================

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
