package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"aio/internal/adapters/tui/styles"
	"aio/internal/ports"
)

// DelegateModel is the model for the delegate-task prompt
type DelegateModel struct {
	pane

	repo      ports.TaskRepository
	taskID    string
	taskTitle string
	form      *InputForm
}

// NewDelegateModel creates a new delegate prompt model
func NewDelegateModel(repo ports.TaskRepository) *DelegateModel {
	return &DelegateModel{
		repo: repo,
		form: NewInputForm(NewInputField("Delegate to:", "Sarah Chen", 100)),
	}
}

// SetTask sets the task being delegated
func (m *DelegateModel) SetTask(id, title string) {
	m.taskID = id
	m.taskTitle = title
	m.form.Reset()
	m.ClearFlash()
}

// Init initializes the delegate prompt
func (m *DelegateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the delegate prompt
func (m *DelegateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			return m, m.delegate()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *DelegateModel) delegate() tea.Cmd {
	return func() tea.Msg {
		person := m.form.Value(0)
		if person == "" {
			return CreateErrMsg{Err: fmt.Errorf("person is required")}
		}
		task, err := m.repo.Wait(m.taskID, person)
		if err != nil {
			return CreateErrMsg{Err: err}
		}
		return CreateSuccessMsg{Message: fmt.Sprintf("Delegated %s to %s", task.ID, person)}
	}
}

// View renders the delegate prompt
func (m *DelegateModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Delegate Task"))
	b.WriteString("\n\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s: %s", m.taskID, m.taskTitle)))
	b.WriteString("\n\n")

	b.WriteString(m.form.RenderField(0))
	b.WriteString("\n\n")

	if m.flash != "" && m.flashErr {
		b.WriteString(styles.ErrorMsg.Render(m.flash))
		b.WriteString("\n\n")
	}

	b.WriteString(m.form.RenderHelp("delegate"))

	return styles.App.Render(b.String())
}
