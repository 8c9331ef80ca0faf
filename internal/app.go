// Package internal provides the App struct that wires all components of
// eventcheck together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/telemetrylint/eventcheck/internal/cli"
	"github.com/telemetrylint/eventcheck/internal/core"
	"github.com/telemetrylint/eventcheck/internal/observability"
	"github.com/telemetrylint/eventcheck/pkg/models"
)

// App holds all service dependencies for eventcheck.
type App struct {
	BasePath string

	// Configuration
	ConfigLoader core.ConfigLoader
	Config       *models.CheckConfig

	// Core services
	Extractor core.Extractor
	Scanner   core.Scanner

	// Observability
	RunLog observability.RunLog
}

// NewApp creates and wires all components of eventcheck. basePath is the
// directory containing .eventcheckrc (or the current directory when no
// config file exists); relative source roots resolve against it.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigLoader = core.NewConfigLoader(basePath)
	cfg, err := app.ConfigLoader.Load()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Core services ---
	app.Extractor = core.NewExtractor(cfg.DroppedEventType)
	app.Scanner = core.NewScanner(*cfg, app.Extractor)

	// --- Observability ---
	if cfg.RunLogPath != "" {
		runLogPath := cfg.RunLogPath
		if !filepath.IsAbs(runLogPath) {
			runLogPath = filepath.Join(basePath, runLogPath)
		}
		app.RunLog, err = observability.NewJSONLRunLog(runLogPath)
		if err != nil {
			// Non-fatal: disable run logging if the log can't be created.
			app.RunLog = nil
		}
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Scanner = app.Scanner
	cli.RunLog = app.RunLog

	return app, nil
}

// Close releases resources held by the App, such as the run log file
// handle. It is safe to call Close on an App whose RunLog is nil.
func (a *App) Close() error {
	if a.RunLog != nil {
		return a.RunLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for eventcheck. It checks the
// EVENTCHECK_HOME env var, then walks up from the current directory looking
// for a .eventcheckrc file, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("EVENTCHECK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".eventcheckrc")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
