// Package internal provides the App struct that wires all components of
// staffplan together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/staffplan/internal/cli"
	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/observability"
	"github.com/valter-silva-au/staffplan/internal/solver"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// HomeEnv names the environment variable that overrides base path discovery.
const HomeEnv = "STAFFPLAN_HOME"

// App holds all service dependencies for staffplan.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Solving
	Engine  solver.Engine
	Params  solver.Params
	Planner core.Planner

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of staffplan. basePath is the
// directory holding .staffplan.yaml and, by default, the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.Events.Enabled {
		eventLogPath := cfg.Events.Path
		if !filepath.IsAbs(eventLogPath) {
			eventLogPath = filepath.Join(basePath, eventLogPath)
		}
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: solving works without the event log.
			app.EventLog = nil
		}
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Solving ---
	app.Params, err = solver.ParamsFromConfig(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver configuration: %w", err)
	}
	app.Engine = solver.NewCPSATEngine()
	app.Planner = core.NewPlanner(app.Engine, app.Params, evtAdapter)

	// --- Wire CLI ---
	cli.BasePath = basePath
	cli.Planner = app.Planner
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.NewEvent(eventType, data))
}

// ResolveBasePath determines the staffplan base directory. It checks
// STAFFPLAN_HOME first, then walks up from the working directory looking for
// .staffplan.yaml, and falls back to the working directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	configFile := core.ConfigFileName + ".yaml"
	for {
		if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
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
