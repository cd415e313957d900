package solver

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DefaultMaxTime is the per-solve budget used when none is configured.
const DefaultMaxTime = 600 * time.Second

const defaultBucketKey = "default"

// Bucket overrides the time budget for task counts in [Low, High].
type Bucket struct {
	Low, High int
	MaxTime   time.Duration
}

// Params are the solver settings shared by every solve of a run.
type Params struct {
	MaxTime time.Duration
	// Buckets are sorted by Low.
	Buckets []Bucket
	// DefaultBucket applies when Buckets is non-empty and none matches.
	DefaultBucket     time.Duration
	SolutionLimit     int
	NumSearchWorkers  int
	LogSearchProgress bool
	RandomSeed        int
}

// DefaultParams returns the settings used when no configuration is present.
func DefaultParams() Params {
	return Params{MaxTime: DefaultMaxTime}
}

// ParamsFromConfig converts and validates the solver section of the config.
func ParamsFromConfig(cfg models.SolverConfig) (Params, error) {
	p := DefaultParams()

	if cfg.MaxTimeSeconds < 0 {
		return Params{}, fmt.Errorf("%w: max_time_seconds must not be negative", ErrInvalidConfiguration)
	}
	if cfg.MaxTimeSeconds > 0 {
		p.MaxTime = seconds(cfg.MaxTimeSeconds)
	}
	if cfg.SolutionLimit < 0 {
		return Params{}, fmt.Errorf("%w: solution_limit must not be negative", ErrInvalidConfiguration)
	}
	if cfg.NumSearchWorkers < 0 {
		return Params{}, fmt.Errorf("%w: num_search_workers must not be negative", ErrInvalidConfiguration)
	}
	p.SolutionLimit = cfg.SolutionLimit
	p.NumSearchWorkers = cfg.NumSearchWorkers
	p.LogSearchProgress = cfg.LogSearchProgress
	p.RandomSeed = cfg.RandomSeed

	for key, secs := range cfg.MaxTimeByTaskCount {
		if secs <= 0 {
			return Params{}, fmt.Errorf("%w: max_time_by_task_count[%q] must be positive", ErrInvalidConfiguration, key)
		}
		if strings.TrimSpace(key) == defaultBucketKey {
			p.DefaultBucket = seconds(secs)
			continue
		}
		low, high, err := parseRange(key)
		if err != nil {
			return Params{}, fmt.Errorf("%w: max_time_by_task_count: %s", ErrInvalidConfiguration, err)
		}
		p.Buckets = append(p.Buckets, Bucket{Low: low, High: high, MaxTime: seconds(secs)})
	}
	sort.Slice(p.Buckets, func(i, j int) bool {
		if p.Buckets[i].Low != p.Buckets[j].Low {
			return p.Buckets[i].Low < p.Buckets[j].Low
		}
		return p.Buckets[i].High < p.Buckets[j].High
	})

	return p, nil
}

// TimeBudgetFor returns the budget of one solve over numTasks tasks: the
// first matching bucket, else the default bucket, else MaxTime.
func (p Params) TimeBudgetFor(numTasks int) time.Duration {
	for _, b := range p.Buckets {
		if b.Low <= numTasks && numTasks <= b.High {
			return b.MaxTime
		}
	}
	if p.DefaultBucket > 0 {
		return p.DefaultBucket
	}
	if p.MaxTime > 0 {
		return p.MaxTime
	}
	return DefaultMaxTime
}

// parseRange parses an inclusive "lo-hi" task-count range.
func parseRange(key string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range %q must look like lo-hi", key)
	}
	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: invalid low bound", key)
	}
	high, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: invalid high bound", key)
	}
	if low < 0 || high < low {
		return 0, 0, fmt.Errorf("range %q is empty", key)
	}
	return low, high, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
