// Package app wires the pipeline together: configuration, upstream fetch,
// graph construction, variant linking, resolution, and output projection.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mozjay/osrs-clog-dependencies/internal/config"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	appConfig *Config
	pipeline  *config.Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded
// pipeline configuration.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	pipeline, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Pipeline configuration loaded.", "config_path", appConfig.ConfigPath)

	return &App{
		outW:      outW,
		logger:    logger,
		appConfig: appConfig,
		pipeline:  pipeline,
	}
}

// Pipeline returns the loaded pipeline configuration. This is primarily for
// testing.
func (a *App) Pipeline() *config.Config {
	return a.pipeline
}
