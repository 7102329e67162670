package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aio/internal/adapters/tui/styles"
	"aio/internal/domain"
	"aio/internal/ports"
)

// BrowserKeyMap defines key bindings for the task browser
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Filter   key.Binding
	All      key.Binding
	New      key.Binding
	Complete key.Binding
	Start    key.Binding
	Defer    key.Binding
	Delegate key.Binding
	Copy     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Filter: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next status"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "active"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Complete: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "complete"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Defer: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "defer"),
	),
	Delegate: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "delegate"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// filterCycle is the tab order of the status filter. The empty status
// means the active view (everything except someday and completed).
var filterCycle = []domain.TaskStatus{
	"",
	domain.StatusInbox,
	domain.StatusNext,
	domain.StatusWaiting,
	domain.StatusScheduled,
	domain.StatusSomeday,
	domain.StatusCompleted,
}

// BrowserModel is the model for the task list view
type BrowserModel struct {
	pane

	repo   ports.TaskRepository
	tasks  []domain.Task
	cursor int
	filter domain.TaskStatus // "" means active view
	now    func() time.Time
}

// NewBrowserModel creates a new task browser model
func NewBrowserModel(repo ports.TaskRepository) *BrowserModel {
	return &BrowserModel{
		repo: repo,
		now:  time.Now,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTasks
}

func (m *BrowserModel) loadTasks() tea.Msg {
	var status *domain.TaskStatus
	includeCompleted := false
	if m.filter != "" {
		s := m.filter
		status = &s
		includeCompleted = s == domain.StatusCompleted
	}
	tasks, err := m.repo.List(status, includeCompleted)
	if err != nil {
		return errMsg{err}
	}
	domain.SortTasks(tasks)
	return tasksLoadedMsg{tasks}
}

type tasksLoadedMsg struct {
	tasks []domain.Task
}

type errMsg struct {
	err error
}

type actionDoneMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = len(m.tasks) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case errMsg:
		m.FlashError(msg.err.Error())
		return m, nil

	case actionDoneMsg:
		m.Flash(msg.message)
		return m, m.loadTasks

	case tea.KeyMsg:
		m.ClearFlash()

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Filter):
			m.filter = nextFilter(m.filter)
			m.cursor = 0
			return m, m.loadTasks

		case key.Matches(msg, BrowserKeys.All):
			m.filter = ""
			m.cursor = 0
			return m, m.loadTasks

		case key.Matches(msg, BrowserKeys.New):
			return m, func() tea.Msg {
				return SwitchToCreateMsg{}
			}

		case key.Matches(msg, BrowserKeys.Complete):
			if task := m.selectedTask(); task != nil {
				return m, m.transition(task.ID, "Completed", m.repo.Complete)
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Start):
			if task := m.selectedTask(); task != nil {
				return m, m.transition(task.ID, "Started", m.repo.Start)
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Defer):
			if task := m.selectedTask(); task != nil {
				return m, m.transition(task.ID, "Deferred", m.repo.Defer)
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Delegate):
			if task := m.selectedTask(); task != nil {
				id, title := task.ID, task.Title
				return m, func() tea.Msg {
					return SwitchToDelegateMsg{TaskID: id, Title: title}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Copy):
			if task := m.selectedTask(); task != nil {
				if err := clipboard.WriteAll(task.ID); err != nil {
					m.FlashError(fmt.Sprintf("clipboard: %v", err))
				} else {
					m.Flash(fmt.Sprintf("Copied %s", task.ID))
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Reload):
			return m, m.loadTasks

		case key.Matches(msg, BrowserKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	return m, nil
}

func (m *BrowserModel) transition(id, verb string, op func(string) (*domain.Task, error)) tea.Cmd {
	return func() tea.Msg {
		task, err := op(id)
		if err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{fmt.Sprintf("%s %s: %s", verb, task.ID, task.Title)}
	}
}

func (m *BrowserModel) selectedTask() *domain.Task {
	if m.cursor >= 0 && m.cursor < len(m.tasks) {
		return &m.tasks[m.cursor]
	}
	return nil
}

// nextFilter advances the status filter one step in the tab cycle.
func nextFilter(current domain.TaskStatus) domain.TaskStatus {
	for i, s := range filterCycle {
		if s == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return ""
}

// View renders the browser
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("AIO"))
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(styles.MutedText.Render("No tasks."))
		b.WriteString("\n")
	}
	for i, task := range m.tasks {
		b.WriteString(m.renderTask(task, i == m.cursor))
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n")
		if m.flashErr {
			b.WriteString(styles.ErrorMsg.Render(m.flash))
		} else {
			b.WriteString(styles.Success.Render(m.flash))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderFilterBar() string {
	var parts []string
	for _, s := range filterCycle {
		label := string(s)
		if label == "" {
			label = "active"
		}
		if s == m.filter {
			parts = append(parts, styles.FilterActive.Render(label))
		} else {
			parts = append(parts, styles.FilterInactive.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m *BrowserModel) renderTask(task domain.Task, selected bool) string {
	today := m.now()
	line := taskLine(task, today)

	if selected {
		return styles.RowSelected.Render(line)
	}

	var style lipgloss.Style
	switch {
	case task.IsOverdue(today):
		style = styles.RowOverdue
	case task.IsDueToday(today):
		style = styles.RowDueToday
	default:
		style = styles.RowTitle.Foreground(styles.StatusColor(task.Status))
	}
	return style.Render(line)
}

// taskLine formats one list row: ID, status, title, optional due note.
func taskLine(task domain.Task, today time.Time) string {
	line := fmt.Sprintf("%s  %-9s  %s", task.ID, task.Status, task.Title)
	if task.Due != nil {
		line += fmt.Sprintf("  (due %s)", domain.FormatRelative(*task.Due, today))
	}
	if task.IsOverdue(today) {
		line += "  !"
	}
	return line
}

func (m *BrowserModel) renderHelpLine() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"j/k", "navigate"},
		{"tab", "status"},
		{"n", "new"},
		{"c", "complete"},
		{"s", "start"},
		{"d", "defer"},
		{"?", "help"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(k.key),
			styles.HelpDesc.Render(k.desc),
		))
	}

	return strings.Join(parts, styles.HelpSeparator.String())
}

// Reload reloads the task list from the vault
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadTasks
}

// Messages for view switching
type SwitchToCreateMsg struct{}

type SwitchToDelegateMsg struct {
	TaskID string
	Title  string
}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}
