// Package commands implements the habistat subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/habistat-labs/habistat/internal/config"
	"github.com/habistat-labs/habistat/internal/store"
)

type configKey struct{}
type loggerKey struct{}

// WithRuntime stores the loaded config and logger in the command context.
func WithRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{
		Store:     store.Config{Type: config.DefaultStoreType, Database: config.DefaultDatabase},
		BatchSize: config.DefaultBatchSize,
		Output:    config.DefaultOutput,
	}
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// openStore connects the configured storage backend.
func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, getConfig(ctx).Store, getLogger(ctx))
}
