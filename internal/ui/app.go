package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/ui/keys"
	"github.com/tgienger/taskdash/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewDashboard
)

type App struct {
	auth   api.AuthService
	tasks  api.TaskService
	store  views.TokenStore
	logger log.Logger
	keys   keys.KeyMap

	// token is the in-memory session token passed to the dashboard
	token string

	currentView View
	login       *views.LoginView
	register    *views.RegisterView
	dashboard   *views.DashboardView
	width       int
	height      int
}

// Creates a new application
func NewApp(auth api.AuthService, tasks api.TaskService, store views.TokenStore, logger log.Logger) *App {
	return &App{
		auth:   auth,
		tasks:  tasks,
		store:  store,
		logger: logger,
		keys:   keys.DefaultKeyMap(),
	}
}

// CurrentView returns the active screen
func (a *App) CurrentView() View {
	return a.currentView
}

// Token returns the in-memory session token
func (a *App) Token() string {
	return a.token
}

func (a *App) Init() tea.Cmd {
	// Resume a stored session
	token, err := a.store.Token()
	if err != nil {
		level.Error(a.logger).Log("msg", "read stored token", "err", err)
	}
	if err == nil && token != "" {
		a.token = token
		return a.openDashboard()
	}

	return a.openLogin()
}

// resize replays the last known window size to a newly opened view
func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) openLogin() tea.Cmd {
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.auth, a.logger)
	return tea.Batch(a.login.Init(), a.resize)
}

func (a *App) openRegister() tea.Cmd {
	a.currentView = ViewRegister
	a.register = views.NewRegisterView(a.auth, a.logger)
	return tea.Batch(a.register.Init(), a.resize)
}

func (a *App) openDashboard() tea.Cmd {
	a.currentView = ViewDashboard
	a.dashboard = views.NewDashboardView(a.tasks, a.auth, a.store, a.token, a.logger)
	return tea.Batch(a.dashboard.Init(), a.resize)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}

	case views.Result:
		// Deliver to the issuing screen, even if another one is showing.
		// Results from screens that have since been replaced are dropped.
		target := msg.Target()
		switch target {
		case a.login, a.register, a.dashboard:
			_, cmd := target.Update(msg)
			return a, cmd
		}
		level.Debug(a.logger).Log("msg", "dropped stale result", "type", fmt.Sprintf("%T", msg))
		return a, nil

	case views.LoggedIn:
		a.token = msg.Token
		if err := a.store.SetToken(msg.Token); err != nil {
			level.Error(a.logger).Log("msg", "store token", "err", err)
		}
		return a, a.openDashboard()

	case views.Registered:
		// Registration does not sign in; the dashboard keeps whatever token is in memory
		return a, a.openDashboard()

	case views.ShowRegister:
		return a, a.openRegister()

	case views.ShowLogin:
		return a, a.openLogin()

	case views.LoggedOut:
		a.token = ""
		return a, a.openLogin()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ViewRegister:
		if a.register != nil {
			_, cmd = a.register.Update(msg)
		}
	case ViewDashboard:
		if a.dashboard != nil {
			_, cmd = a.dashboard.Update(msg)
		}
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewRegister:
		if a.register != nil {
			return a.register.View()
		}
	case ViewDashboard:
		if a.dashboard != nil {
			return a.dashboard.View()
		}
	}
	if a.login != nil {
		return a.login.View()
	}
	return ""
}
