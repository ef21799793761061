package views

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages handled by the app.

// LoggedIn is sent when the login screen receives a token
type LoggedIn struct {
	Token string
}

// Registered is sent after a successful registration
type Registered struct{}

// ShowRegister asks the app to open the registration screen
type ShowRegister struct{}

// ShowLogin asks the app to open the login screen
type ShowLogin struct{}

// LoggedOut is sent once logout has cleared the stored token
type LoggedOut struct{}

// Result is implemented by the messages carrying an async call's outcome.
// Target is the screen that issued the call; results are only delivered there.
type Result interface {
	Target() tea.Model
}

// TokenStore is the durable storage the dashboard reads on logout
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	RemoveToken() error
}

// emit wraps msg in a command
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
