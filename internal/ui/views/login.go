package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/ui/keys"
	"github.com/tgienger/taskdash/internal/ui/styles"
)

// Login failure messages
const (
	MsgNotRegistered = "User not registered. Please register first."
	MsgLoginFailed   = "Login failed. Please try again."
)

// LoginView is the sign-in screen
type LoginView struct {
	auth   api.AuthService
	logger log.Logger
	styles *styles.Styles
	keys   keys.KeyMap
	form   credentialForm

	width  int
	height int
}

// NewLoginView creates a new login view
func NewLoginView(auth api.AuthService, logger log.Logger) *LoginView {
	return &LoginView{
		auth:   auth,
		logger: log.With(logger, "view", "login"),
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		form:   newCredentialForm(),
	}
}

type loginResultMsg struct {
	view  *LoginView
	token string
	err   error
}

func (m loginResultMsg) Target() tea.Model { return m.view }

// Init initializes the view
func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// Err returns the message currently shown in the error box
func (v *LoginView) Err() string {
	return v.form.err
}

// Update handles messages
func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if r, ok := msg.(Result); ok && r.Target() != tea.Model(v) {
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.form.submitting = false
		if msg.err != nil {
			level.Error(v.logger).Log("msg", "login failed", "err", msg.err)
			if api.IsUnauthorized(msg.err) {
				v.form.err = MsgNotRegistered
				v.form.focusIdx = credFocusLink
				v.form.updateFocus()
			} else {
				v.form.err = MsgLoginFailed
			}
			return v, nil
		}
		v.form.err = ""
		return v, emit(LoggedIn{Token: msg.token})

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *LoginView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Register):
		return v, emit(ShowRegister{})

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Down) && v.form.focusIdx >= credFocusSubmit:
		v.form.cycle(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab), key.Matches(msg, v.keys.Up) && v.form.focusIdx >= credFocusSubmit:
		v.form.cycle(-1)
		return v, nil

	case key.Matches(msg, v.keys.Submit):
		return v, v.submit()

	case key.Matches(msg, v.keys.Enter):
		switch v.form.focusIdx {
		case credFocusEmail:
			v.form.cycle(1)
			return v, nil
		case credFocusLink:
			return v, emit(ShowRegister{})
		}
		return v, v.submit()
	}

	return v, v.form.updateInput(msg)
}

// submit starts a login request unless the form is invalid or one is already running
func (v *LoginView) submit() tea.Cmd {
	if v.form.submitting || !v.form.validate() {
		return nil
	}
	v.form.submitting = true
	creds := v.form.credentials()
	auth := v.auth
	return func() tea.Msg {
		token, err := auth.Login(context.Background(), creds)
		return loginResultMsg{view: v, token: token, err: err}
	}
}

// View renders the view
func (v *LoginView) View() string {
	errLink := ""
	if v.form.err == MsgNotRegistered {
		errLink = "Register Here"
	}
	return v.form.render(v.styles, v.width, v.height,
		"Login", "Login",
		"Don't have an account?", "Register Here",
		errLink,
	)
}
