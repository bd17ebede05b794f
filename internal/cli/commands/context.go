// Package commands implements the pipedash subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vathes-labs/pipedash/internal/adapter"
	"github.com/vathes-labs/pipedash/internal/config"
)

type configKey struct{}
type configPathKey struct{}
type loggerKey struct{}

// NewContext stores the loaded configuration, its source path, and the
// logger for subcommands to pick up.
func NewContext(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	ctx = context.WithValue(ctx, configPathKey{}, path)
	ctx = context.WithValue(ctx, loggerKey{}, logger)
	return ctx
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{}
}

// GetConfigPath retrieves the config file path from the command context.
func GetConfigPath(ctx context.Context) string {
	if p, ok := ctx.Value(configPathKey{}).(string); ok {
		return p
	}
	return ""
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// connect creates and connects the configured database adapter.
func connect(ctx context.Context, cfg *config.Config) (adapter.Adapter, error) {
	ad, err := adapter.New(cfg.Target.Type)
	if err != nil {
		return nil, err
	}
	if err := ad.Connect(ctx, cfg.Target); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Target.Type, err)
	}
	return ad, nil
}
