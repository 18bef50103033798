// Package cli implements the tilecalc command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/buildinfo"
	"github.com/matzehuels/tilecalc/pkg/config"
	"github.com/matzehuels/tilecalc/pkg/observability"
	"github.com/matzehuels/tilecalc/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tilecalc"

	// defaultBase is the output base name when --output is not given.
	defaultBase = "tile-layout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline, cache,
// store and HTTP events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.UseLogger(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tilecalc estimates the tiles needed to cover a room",
		Long: `Tilecalc computes how many tiles cover a rectangular room for a laying
pattern, draws the layout and keeps a history of saved calculations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/tilecalc/config.toml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load environment overrides from this file (default .env)")

	// Register all subcommands
	root.AddCommand(c.calcCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the env file and the config file once per invocation.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	if err := config.LoadEnvFile(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	c.cfg = cfg
	return nil
}

// settings returns the loaded configuration, or the defaults when commands run
// without the root pre-run hook.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache, store
// and notifier.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()

	cc, err := cfg.Cache.Open(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	st, err := cfg.Store.Open(ctx)
	if err != nil {
		_ = cc.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.Store = st

	// Publishing is best effort.
	if notifier, err := cfg.MQTT.Open(c.Logger); err != nil {
		c.Logger.Warn("mqtt disabled", "broker", cfg.MQTT.Broker, "error", err)
	} else {
		runner.Notifier = notifier
	}
	return runner, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options carrying the configured policy,
// estimator and drawing settings.
func (c *CLI) baseOptions() pipeline.Options {
	cfg := c.settings()
	policy := cfg.Policy
	est := cfg.Estimate
	palette := cfg.Render.Palette
	return pipeline.Options{
		Policy:    &policy,
		Estimator: &est,
		MaxCells:  cfg.Server.MaxCells,
		Scale:     cfg.Render.Scale,
		DPI:       cfg.Render.DPI,
		Shading:   cfg.Render.Shading,
		Palette:   &palette,
		Logger:    c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
