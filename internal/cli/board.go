package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// boardStatusFilters is the cycle of status filters; the empty status shows
// every task.
var boardStatusFilters = append([]models.TaskStatus{""}, models.AllStatuses()...)

// boardSortKeys is the cycle of sort keys; the empty key keeps collection
// order.
var boardSortKeys = []core.SortKey{"", core.SortByDueDate, core.SortByPriority, core.SortByCreationDate, core.SortByTitle}

// boardModel is the interactive task board. Engine calls happen only in
// Update, never in commands, so they stay on the program's event loop.
type boardModel struct {
	width  int
	height int

	tasks  []models.Task
	cursor int

	filterIdx int
	sortIdx   int
	reverse   bool

	stats   core.Stats
	metrics *metricsSnapshot
	alerts  []alertSnapshot

	message string
	err     error
}

type metricsSnapshot struct {
	tasksCreated   int
	tasksCompleted int
	tasksDeleted   int
	eventCount     int
}

type alertSnapshot struct {
	severity string
	message  string
}

// refreshMsg asks the model to reload from the engine.
type refreshMsg struct{}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("237"))

	statusNotStarted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusPostponed  = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueSoonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func newBoardModel() boardModel {
	return boardModel{}
}

func (m boardModel) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case " ", "space", "s":
			m = m.cycleSelectedStatus()
		case "c":
			m = m.setSelectedStatus(models.StatusCompleted)
		case "x", "delete":
			m = m.deleteSelected()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(boardStatusFilters)
			m.cursor = 0
			m = m.refresh()
		case "o":
			m.sortIdx = (m.sortIdx + 1) % len(boardSortKeys)
			m = m.refresh()
		case "v":
			m.reverse = !m.reverse
			m = m.refresh()
		case "r":
			m = m.refresh()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m.refresh(), nil
	}

	return m, nil
}

// refresh reloads the view, counts, metrics and alerts.
func (m boardModel) refresh() boardModel {
	if TaskMgr == nil {
		m.err = fmt.Errorf("task manager not initialized")
		return m
	}
	m.err = nil

	tasks := TaskMgr.ApplyFilters(core.FilterCriteria{Status: boardStatusFilters[m.filterIdx]})
	if key := boardSortKeys[m.sortIdx]; key != "" {
		tasks = TaskMgr.SortView(key, m.reverse)
	}
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.stats = TaskMgr.Stats()

	m.metrics = nil
	if MetricsCalc != nil {
		metrics, err := MetricsCalc.Calculate(now().UTC().AddDate(0, 0, -7))
		if err != nil {
			m.err = fmt.Errorf("loading metrics: %w", err)
			return m
		}
		m.metrics = &metricsSnapshot{
			tasksCreated:   metrics.TasksCreated,
			tasksCompleted: metrics.TasksCompleted,
			tasksDeleted:   metrics.TasksDeleted,
			eventCount:     metrics.EventCount,
		}
	}

	m.alerts = nil
	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			m.err = fmt.Errorf("loading alerts: %w", err)
			return m
		}
		for _, a := range alerts {
			m.alerts = append(m.alerts, alertSnapshot{severity: string(a.Severity), message: a.Message})
		}
	}
	return m
}

func (m boardModel) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// cycleSelectedStatus advances the selected task to the next status in
// declaration order, wrapping around.
func (m boardModel) cycleSelectedStatus() boardModel {
	task, ok := m.selected()
	if !ok {
		return m
	}
	statuses := models.AllStatuses()
	next := statuses[0]
	for i, s := range statuses {
		if s == task.Status {
			next = statuses[(i+1)%len(statuses)]
			break
		}
	}
	return m.setSelectedStatus(next)
}

func (m boardModel) setSelectedStatus(status models.TaskStatus) boardModel {
	task, ok := m.selected()
	if !ok {
		return m
	}
	_, changed, err := TaskMgr.ChangeStatus(task.ID, status)
	switch {
	case err != nil:
		m.message = err.Error()
	case !changed:
		m.message = fmt.Sprintf("Task %d is already %s.", task.ID, status.Label())
	default:
		m.message = fmt.Sprintf("Task %d is now %s.", task.ID, status.Label())
	}
	return m.refresh()
}

func (m boardModel) deleteSelected() boardModel {
	task, ok := m.selected()
	if !ok {
		return m
	}
	if TaskMgr.Delete(task.ID) {
		m.message = fmt.Sprintf("Deleted task %d.", task.ID)
	}
	return m.refresh()
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" todo ")
	help := helpStyle.Render("j/k: move | space: next status | c: complete | x: delete | f: filter | o: sort | v: reverse | r: refresh | q: quit")

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	availableWidth := m.width - 2
	var body string
	if availableWidth > 100 {
		sideWidth := availableWidth / 3
		tasksPanel := panelStyle.Width(availableWidth - sideWidth - 4).Render(m.renderTasksPanel())
		sidePanel := panelStyle.Width(sideWidth - 4).Render(m.renderMetricsPanel() + "\n\n" + m.renderAlertsPanel())
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasksPanel, sidePanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			panelStyle.Width(panelWidth).Render(m.renderTasksPanel()),
			panelStyle.Width(panelWidth).Render(m.renderMetricsPanel()+"\n\n"+m.renderAlertsPanel()),
		)
	}

	status := m.statusBar()
	if m.message != "" {
		status += "\n" + m.message
	}
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, body, status, help)
}

func (m boardModel) renderTasksPanel() string {
	var b strings.Builder

	filter := "all"
	if s := boardStatusFilters[m.filterIdx]; s != "" {
		filter = s.Label()
	}
	sortLabel := "created"
	if key := boardSortKeys[m.sortIdx]; key != "" {
		sortLabel = string(key)
	}
	if m.reverse {
		sortLabel += " (reversed)"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Tasks  filter: %s  sort: %s", filter, sortLabel)))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString("  No tasks found.")
		return b.String()
	}

	today := models.DateOf(now())
	for i, t := range m.tasks {
		due := t.DueDate.String()
		switch {
		case t.IsOverdue(today):
			due = overdueStyle.Render(due + " !")
		case t.IsDueSoon(today):
			due = dueSoonStyle.Render(due)
		}
		line := fmt.Sprintf("%3d %-11s %-6s %s", t.ID, t.Status.Label(), t.Priority.Label(), t.Title)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = styleForStatus(t.Status).Render("  " + line)
		}
		if due != "" {
			line += "  " + due
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m boardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Activity (7d)"))
	b.WriteString("\n")

	if m.metrics == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metrics
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.eventCount},
		{"Created", md.tasksCreated},
		{"Completed", md.tasksCompleted},
		{"Deleted", md.tasksDeleted},
	}

	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-12s %d\n", l.label, l.value))
	}

	return b.String()
}

func (m boardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	return b.String()
}

// statusBar summarizes the collection the way the list footer does.
func (m boardModel) statusBar() string {
	s := m.stats
	bar := fmt.Sprintf(" Total: %d | Shown: %d | Completed: %d | Overdue: %d | Due soon: %d",
		s.Total, len(m.tasks), s.Completed, s.Overdue, s.DueSoon)
	if s.Overdue > 0 {
		return errStyle.Render(bar)
	}
	return helpStyle.Render(bar)
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusNotStarted:
		return statusNotStarted
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusCompleted:
		return statusCompleted
	case models.StatusPostponed:
		return statusPostponed
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"dashboard"},
	Short:   "Interactive task board",
	Long: `Launch an interactive terminal board showing the task list, recent
activity and alerts.

Move with j/k or the arrow keys. Space advances the selected task's status,
c completes it and x deletes it. f cycles the status filter, o cycles the
sort order and v reverses it. q quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		p := tea.NewProgram(newBoardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
