package main

import (
	"fmt"
	"time"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/internal/config"
	"github.com/leofalp/geniusengine/providers/observability"
)

// CLI is the root command structure for geniusengine.
type CLI struct {
	// Global flags (shared across all subcommands)
	Config    string   `short:"c" help:"Path to YAML config file" type:"path" env:"GENIUSENGINE_CONFIG"`
	EnvFiles  []string `name:"env-file" help:"Dotenv files loaded before reading the environment" default:".env.local,.env" env:"GENIUSENGINE_ENV_FILES"`
	LogLevel  string   `help:"Log level (trace, debug, info, warn, error); defaults to GENIUSENGINE_LOG_LEVEL"`
	LogFormat string   `help:"Log format (compact, pretty, json); defaults to GENIUSENGINE_LOG_FORMAT"`
	LogColors bool     `help:"Colorize compact and pretty logs"`

	Timeout TimeoutFlags `embed:"" prefix:"timeout-"`

	// Subcommands
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API"`
	Generate GenerateCmd `cmd:"" help:"Optimize one prompt from the terminal"`
}

// TimeoutFlags override the config file timeouts when set.
type TimeoutFlags struct {
	Request time.Duration `help:"Bound on a blocking call" env:"GENIUSENGINE_REQUEST_TIMEOUT"`
	Stream  time.Duration `help:"Bound on a whole stream" env:"GENIUSENGINE_STREAM_TIMEOUT"`
	Stall   time.Duration `help:"Bound on the silence between two stream chunks" env:"GENIUSENGINE_STALL_TIMEOUT"`
}

// loadConfig reads the environment and config file, then applies the
// timeout flags.
func (cli *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(
		config.WithFile(cli.Config),
		config.WithEnvFiles(cli.EnvFiles...),
	)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cli.Timeout.Request > 0 {
		cfg.RequestTimeout = cli.Timeout.Request
	}
	if cli.Timeout.Stream > 0 {
		cfg.StreamTimeout = cli.Timeout.Stream
	}
	if cli.Timeout.Stall > 0 {
		cfg.StallTimeout = cli.Timeout.Stall
	}
	return cfg, nil
}

// newDispatcher builds the registry from cfg. Adapters keep their own HTTP
// clients; every call is bounded by the dispatcher's context deadlines.
func newDispatcher(cfg *config.Config, observer observability.Provider) *dispatch.Dispatcher {
	registry := dispatch.DefaultRegistry(cfg.Providers, nil)
	options := append(cfg.DispatchOptions(), dispatch.WithObserver(observer))
	return dispatch.New(registry, options...)
}
