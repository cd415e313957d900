package cli

import (
	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Planner  core.Planner

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
