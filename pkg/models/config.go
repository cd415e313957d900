package models

// SolverConfig holds the pass-through settings for the solving engine, read
// from the solver section of .staffplan.yaml via Viper.
type SolverConfig struct {
	// MaxTimeSeconds is the wall-clock budget of each individual solve.
	MaxTimeSeconds float64 `yaml:"max_time_seconds" mapstructure:"max_time_seconds"`
	// MaxTimeByTaskCount overrides MaxTimeSeconds by task-count bucket.
	// Keys are inclusive "lo-hi" ranges or "default".
	MaxTimeByTaskCount map[string]float64 `yaml:"max_time_by_task_count,omitempty" mapstructure:"max_time_by_task_count"`
	// SolutionLimit caps the number of improving solutions; 0 means no cap.
	SolutionLimit int `yaml:"solution_limit" mapstructure:"solution_limit"`
	// NumSearchWorkers is the engine's internal thread count; 0 lets it decide.
	NumSearchWorkers  int  `yaml:"num_search_workers" mapstructure:"num_search_workers"`
	LogSearchProgress bool `yaml:"log_search_progress" mapstructure:"log_search_progress"`
	RandomSeed        int  `yaml:"random_seed" mapstructure:"random_seed"`
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// GlobalConfig holds system-wide settings read from .staffplan.yaml.
type GlobalConfig struct {
	Solver SolverConfig `yaml:"solver" mapstructure:"solver"`
	Events EventsConfig `yaml:"events" mapstructure:"events"`
}
