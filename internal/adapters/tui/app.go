// Package tui provides an interactive terminal browser over the vault's
// task files.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"aio/internal/adapters/tui/views"
	"aio/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewCreate
	ViewDelegate
	ViewHelp
)

// App is the main TUI application model
type App struct {
	tasks ports.TaskRepository

	state    ViewState
	browser  *views.BrowserModel
	create   *views.CreateModel
	delegate *views.DelegateModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(tasks ports.TaskRepository) *App {
	return &App{
		tasks:    tasks,
		state:    ViewBrowser,
		browser:  views.NewBrowserModel(tasks),
		create:   views.NewCreateModel(tasks),
		delegate: views.NewDelegateModel(tasks),
		help:     views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.create.SetSize(msg.Width, msg.Height)
		a.delegate.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToCreateMsg:
		a.state = ViewCreate
		a.create.Reset()
		return a, a.create.Init()

	case views.SwitchToDelegateMsg:
		a.state = ViewDelegate
		a.delegate.SetTask(msg.TaskID, msg.Title)
		return a, a.delegate.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	// Form results
	case views.CreateSuccessMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	case views.CreateErrMsg:
		switch a.state {
		case ViewDelegate:
			a.delegate.FlashError(msg.Err.Error())
		default:
			a.create.FlashError(msg.Err.Error())
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewCreate:
		_, cmd = a.create.Update(msg)
	case ViewDelegate:
		_, cmd = a.delegate.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCreate:
		return a.create.View()
	case ViewDelegate:
		return a.delegate.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
