package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/staffplan/internal/storage"
)

const (
	cellFree = " □"
	cellBusy = " ■"
)

// workerGlyphs mark which task a worker is on; they repeat after the last one.
var workerGlyphs = []string{
	" ♥", " ♦", " ♣", " ♠", " ▲", " ▼", " ©", " *",
	" 0", " 1", " 2", " 3", " 4", " 5", " 6", " 7", " 8", " 9",
}

var (
	ganttHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	ganttSummaryStyle = lipgloss.NewStyle().Bold(true)
	ganttBusyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	ganttMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func glyphFor(i int) string {
	return workerGlyphs[i%len(workerGlyphs)]
}

// leafOrder maps each scheduled leaf task ID to its position among leaves.
func leafOrder(s *storage.ScheduleFile) map[string]int {
	order := make(map[string]int)
	for _, t := range s.Tasks {
		if !t.Summary {
			order[t.ID] = len(order)
		}
	}
	return order
}

// depth returns how many summary ancestors a task has.
func depth(s *storage.ScheduleFile, t storage.ScheduledTask) int {
	parents := make(map[string]string, len(s.Tasks))
	for _, row := range s.Tasks {
		parents[row.ID] = row.Parent
	}
	d := 0
	for p := t.Parent; p != "" && d < len(s.Tasks); p = parents[p] {
		d++
	}
	return d
}

func taskLabel(t storage.ScheduledTask) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// RenderSummary renders the headline figures of a schedule.
func RenderSummary(s *storage.ScheduleFile) string {
	var b strings.Builder
	title := s.Plan
	if title == "" {
		title = "schedule"
	}
	b.WriteString(ganttHeaderStyle.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-12s %s\n", "Status:", s.Status)
	if s.Mode != "" {
		fmt.Fprintf(&b, "  %-12s %s %s\n", "Mode:", s.Mode, strings.Join(s.Objectives, ","))
	}
	fmt.Fprintf(&b, "  %-12s %s\n", "Start:", s.StartDate)
	fmt.Fprintf(&b, "  %-12s %d days\n", "Duration:", s.Totals.Duration)
	fmt.Fprintf(&b, "  %-12s %d\n", "Cost:", s.Totals.Cost)
	fmt.Fprintf(&b, "  %-12s %d\n", "Resources:", s.Totals.Resources)
	for _, p := range s.Phases {
		fmt.Fprintf(&b, "  phase %d  %-10s %-10s %d\n", p.Index, p.Objective, p.Status, p.Value)
	}
	return b.String()
}

// RenderTasks renders one row per task with a day cell for every day of the
// schedule. Compact mode lists assignees only.
func RenderTasks(s *storage.ScheduleFile, compact bool) string {
	var b strings.Builder

	if compact {
		for _, t := range s.Tasks {
			if t.Summary {
				continue
			}
			fmt.Fprintf(&b, "Task %q is performed by %q (%s .. %s)\n", taskLabel(t), t.Resource, t.Start, t.Finish)
		}
		return b.String()
	}

	var days int64
	width := 0
	for _, t := range s.Tasks {
		days = max(days, t.FinishDay)
		width = max(width, len(taskLabel(t))+2*depth(s, t))
	}

	for _, t := range s.Tasks {
		label := strings.Repeat("  ", depth(s, t)) + taskLabel(t)
		cells := make([]string, days)
		for d := range cells {
			cells[d] = cellFree
		}
		for d := t.StartDay; d < t.FinishDay; d++ {
			cells[d] = cellBusy
		}
		row := fmt.Sprintf("%-*s :%s :", width, label, strings.Join(cells, ""))
		if t.Summary {
			b.WriteString(ganttSummaryStyle.Render(row))
		} else {
			b.WriteString(row + " " + ganttBusyStyle.Render(t.Resource))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderWorkers renders one row per resource, marking each working day with
// the glyph of its task, followed by a legend of the glyphs.
func RenderWorkers(s *storage.ScheduleFile, compact bool) string {
	var b strings.Builder

	if compact {
		for _, r := range s.Resources {
			parts := make([]string, len(r.Days))
			for i, d := range r.Days {
				parts[i] = fmt.Sprintf("%s@%d", d.Task, d.Day)
			}
			fmt.Fprintf(&b, "Worker %q is assigned following tasks: [%s]\n", r.Resource, strings.Join(parts, " "))
		}
		return b.String()
	}

	order := leafOrder(s)
	var last int64 = -1
	width := 0
	for _, r := range s.Resources {
		width = max(width, len(r.Resource))
		for _, d := range r.Days {
			last = max(last, d.Day)
		}
	}

	for _, r := range s.Resources {
		cells := make([]string, last+1)
		for d := range cells {
			cells[d] = cellFree
		}
		for _, d := range r.Days {
			cells[d.Day] = glyphFor(order[d.Task])
		}
		fmt.Fprintf(&b, "%-*s :%s\n", width, r.Resource, strings.Join(cells, ""))
	}

	b.WriteString("\n")
	b.WriteString(ganttMutedStyle.Render("--- Legend ---"))
	b.WriteString("\n")
	for _, t := range s.Tasks {
		if t.Summary {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", glyphFor(order[t.ID]), taskLabel(t))
	}
	return b.String()
}
