package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"aio/internal/adapters/tui/styles"
	"aio/internal/application"
	"aio/internal/domain"
	"aio/internal/ports"
)

// Field indices of the create form.
const (
	createFieldTitle = iota
	createFieldDue
	createFieldProject
	createFieldTags
)

// CreateModel is the model for the new-task form
type CreateModel struct {
	pane

	repo ports.TaskRepository
	form *InputForm
}

// NewCreateModel creates a new task form model
func NewCreateModel(repo ports.TaskRepository) *CreateModel {
	form := NewInputForm(
		NewInputField("Title:", "Review Q4 goals", 200),
		NewInputField("Due (optional):", "tomorrow, +3d, 2026-01-15", 30),
		NewInputField("Project (optional):", "Q4 Migration", 100),
		NewInputField("Tags (optional, comma-separated):", "quarterly, review", 100),
	)
	return &CreateModel{
		repo: repo,
		form: form,
	}
}

// Reset clears the form for a fresh task
func (m *CreateModel) Reset() {
	m.form.Reset()
	m.ClearFlash()
}

// Init initializes the create view
func (m *CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the create view
func (m *CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}

		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.create()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *CreateModel) create() tea.Cmd {
	return func() tea.Msg {
		title := m.form.Value(createFieldTitle)
		if title == "" {
			return CreateErrMsg{Err: fmt.Errorf("title is required")}
		}

		var due *time.Time
		if v := m.form.Value(createFieldDue); v != "" {
			d, err := application.ParseDate(v, time.Now())
			if err != nil {
				return CreateErrMsg{Err: err}
			}
			due = &d
		}

		var tags []string
		for _, t := range strings.Split(m.form.Value(createFieldTags), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}

		task, err := m.repo.Create(title, due, m.form.Value(createFieldProject), domain.StatusInbox, tags)
		if err != nil {
			return CreateErrMsg{Err: err}
		}
		return CreateSuccessMsg{Message: fmt.Sprintf("Added %s: %s", task.ID, task.Title)}
	}
}

// CreateSuccessMsg indicates successful creation
type CreateSuccessMsg struct {
	Message string
}

// CreateErrMsg indicates an error during creation
type CreateErrMsg struct {
	Err error
}

// View renders the create view
func (m *CreateModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Task"))
	b.WriteString("\n\n")
	b.WriteString(styles.Subtitle.Render("New tasks land in the Inbox."))
	b.WriteString("\n\n")

	for i := range m.form.Fields {
		b.WriteString(m.form.RenderField(i))
		b.WriteString("\n\n")
	}

	if m.flash != "" {
		if m.flashErr {
			b.WriteString(styles.ErrorMsg.Render(m.flash))
		} else {
			b.WriteString(styles.Success.Render(m.flash))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.form.RenderHelp("add task"))

	return styles.App.Render(b.String())
}
