package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/storage"
)

// Viewer pane indices.
const (
	paneTasks = iota
	paneWorkers
	paneCount
)

var (
	viewTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	viewTabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	viewActiveTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	viewHelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type viewerModel struct {
	schedule *storage.ScheduleFile
	pane     int
	compact  bool
	offset   int
	width    int
	height   int
}

func newViewerModel(s *storage.ScheduleFile) viewerModel {
	return viewerModel{schedule: s, pane: paneTasks}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.pane = (m.pane + 1) % paneCount
			m.offset = 0
		case "shift+tab":
			m.pane = (m.pane - 1 + paneCount) % paneCount
			m.offset = 0
		case "c":
			m.compact = !m.compact
			m.offset = 0
		case "down", "j":
			if m.offset < len(m.bodyLines())-1 {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m viewerModel) bodyLines() []string {
	var body string
	if m.pane == paneTasks {
		body = RenderTasks(m.schedule, m.compact)
	} else {
		body = RenderWorkers(m.schedule, m.compact)
	}
	return strings.Split(strings.TrimRight(body, "\n"), "\n")
}

func (m viewerModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := m.schedule
	title := viewTitleStyle.Render(" " + s.Plan + " ")
	stats := fmt.Sprintf("%s  %d days  cost %d  %d resources", s.Status, s.Totals.Duration, s.Totals.Cost, s.Totals.Resources)

	tabs := make([]string, paneCount)
	for i, name := range []string{"Tasks", "Workers"} {
		style := viewTabStyle
		if i == m.pane {
			style = viewActiveTabStyle
		}
		tabs[i] = style.Render(name)
	}

	lines := m.bodyLines()
	// Title, stats, tabs, help and the blank lines between them.
	if visible := m.height - 7; visible > 0 && len(lines) > visible {
		end := min(m.offset+visible, len(lines))
		lines = lines[m.offset:end]
	} else if m.offset < len(lines) {
		lines = lines[m.offset:]
	}

	help := viewHelpStyle.Render("tab: switch view | c: compact | ↑/↓: scroll | q: quit")

	return fmt.Sprintf("%s  %s\n\n%s\n\n%s\n\n%s",
		title, stats,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		strings.Join(lines, "\n"),
		help)
}

var (
	viewInput    string
	viewSchedule string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a saved schedule interactively",
	Long: `Open a schedule in an interactive terminal viewer.

Tab switches between the task and worker views, c toggles compact output,
arrow keys scroll, q quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := storage.LoadPlan(viewInput)
		if err != nil {
			return err
		}
		sched, err := storage.LoadSchedule(viewSchedule)
		if err != nil {
			return err
		}
		if _, err := sched.Solution(plan); err != nil {
			return fmt.Errorf("schedule %s does not match plan %s: %w", viewSchedule, viewInput, err)
		}

		p := tea.NewProgram(newViewerModel(sched), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	viewCmd.Flags().StringVarP(&viewInput, "input", "i", "", "Plan file")
	viewCmd.Flags().StringVarP(&viewSchedule, "schedule", "s", "", "Schedule file to view")
	_ = viewCmd.MarkFlagRequired("input")
	_ = viewCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(viewCmd)
}
