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

// MsgRegisterFailed is shown for any registration failure
const MsgRegisterFailed = "Registration failed. Please try again."

// RegisterView is the account creation screen
type RegisterView struct {
	auth   api.AuthService
	logger log.Logger
	styles *styles.Styles
	keys   keys.KeyMap
	form   credentialForm

	width  int
	height int
}

// NewRegisterView creates a new registration view
func NewRegisterView(auth api.AuthService, logger log.Logger) *RegisterView {
	return &RegisterView{
		auth:   auth,
		logger: log.With(logger, "view", "register"),
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		form:   newCredentialForm(),
	}
}

type registerResultMsg struct {
	view *RegisterView
	err  error
}

func (m registerResultMsg) Target() tea.Model { return m.view }

// Init initializes the view
func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

// Err returns the message currently shown in the error box
func (v *RegisterView) Err() string {
	return v.form.err
}

// Update handles messages
func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if r, ok := msg.(Result); ok && r.Target() != tea.Model(v) {
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case registerResultMsg:
		v.form.submitting = false
		if msg.err != nil {
			level.Error(v.logger).Log("msg", "registration failed", "err", msg.err)
			v.form.err = MsgRegisterFailed
			return v, nil
		}
		v.form.err = ""
		return v, emit(Registered{})

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *RegisterView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Login):
		return v, emit(ShowLogin{})

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
			return v, emit(ShowLogin{})
		}
		return v, v.submit()
	}

	return v, v.form.updateInput(msg)
}

func (v *RegisterView) submit() tea.Cmd {
	if v.form.submitting || !v.form.validate() {
		return nil
	}
	v.form.submitting = true
	creds := v.form.credentials()
	auth := v.auth
	return func() tea.Msg {
		return registerResultMsg{view: v, err: auth.Register(context.Background(), creds)}
	}
}

// View renders the view
func (v *RegisterView) View() string {
	return v.form.render(v.styles, v.width, v.height,
		"Register", "Register",
		"Already have an account?", "Login Here",
		"",
	)
}
