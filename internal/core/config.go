// Package core contains the business logic of staffplan: configuration
// loading and validation, and the Planner that turns a problem and a choice
// of objectives into a solved, identified run.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/staffplan/internal/solver"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ConfigFileName is the base name of the configuration file, without extension.
const ConfigFileName = ".staffplan"

// DefaultEventsPath is the event log location relative to the base path.
const DefaultEventsPath = ".staffplan_events.jsonl"

// ConfigurationManager defines the interface for loading and validating
// configuration from the .staffplan.yaml file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .staffplan.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Solver: models.SolverConfig{
			MaxTimeSeconds: solver.DefaultMaxTime.Seconds(),
		},
		Events: models.EventsConfig{
			Enabled: true,
			Path:    DefaultEventsPath,
		},
	}
}

// LoadGlobalConfig reads .staffplan.yaml from the base path using Viper.
// If the file does not exist, sensible defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("solver.max_time_seconds", cfg.Solver.MaxTimeSeconds)
	v.SetDefault("solver.solution_limit", 0)
	v.SetDefault("solver.num_search_workers", 0)
	v.SetDefault("solver.log_search_progress", false)
	v.SetDefault("solver.random_seed", 0)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("events.path", cfg.Events.Path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
	}

	cfg.Solver.MaxTimeSeconds = v.GetFloat64("solver.max_time_seconds")
	cfg.Solver.SolutionLimit = v.GetInt("solver.solution_limit")
	cfg.Solver.NumSearchWorkers = v.GetInt("solver.num_search_workers")
	cfg.Solver.LogSearchProgress = v.GetBool("solver.log_search_progress")
	cfg.Solver.RandomSeed = v.GetInt("solver.random_seed")
	cfg.Events.Enabled = v.GetBool("events.enabled")
	cfg.Events.Path = v.GetString("events.path")

	buckets, err := parseBuckets(v.GetStringMap("solver.max_time_by_task_count"))
	if err != nil {
		return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
	}
	cfg.Solver.MaxTimeByTaskCount = buckets

	return cfg, nil
}

// parseBuckets converts the raw bucket map, whose values YAML may decode as
// integers or floats.
func parseBuckets(raw map[string]any) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	for k, val := range raw {
		switch n := val.(type) {
		case int:
			out[k] = float64(n)
		case int64:
			out[k] = float64(n)
		case float64:
			out[k] = n
		default:
			return nil, fmt.Errorf("solver.max_time_by_task_count[%q] must be a number, got %v", k, val)
		}
	}
	return out, nil
}

// ValidateConfig checks the provided configuration for invalid values and
// returns a clear error message identifying every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if _, err := solver.ParamsFromConfig(cfg.Solver); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Events.Enabled && strings.TrimSpace(cfg.Events.Path) == "" {
		errs = append(errs, "events.path must not be empty when events are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
