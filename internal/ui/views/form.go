package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdash/internal/models"
	"github.com/tgienger/taskdash/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Focus positions on the login and register screens
const (
	credFocusEmail = iota
	credFocusPassword
	credFocusSubmit
	credFocusLink
	credFocusCount
)

// credentialForm is the email/password form shared by login and register
type credentialForm struct {
	email      textinput.Model
	password   textinput.Model
	focusIdx   int
	submitting bool

	// err is a server failure shown in the error box, hint a local validation message
	err  string
	hint string
}

func newCredentialForm() credentialForm {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := credentialForm{email: email, password: password}
	f.updateFocus()
	return f
}

func (f *credentialForm) credentials() models.Credentials {
	return models.Credentials{
		Email:    strings.TrimSpace(f.email.Value()),
		Password: f.password.Value(),
	}
}

func (f *credentialForm) cycle(dir int) {
	f.focusIdx = (f.focusIdx + dir + credFocusCount) % credFocusCount
	f.updateFocus()
}

func (f *credentialForm) updateFocus() {
	f.email.Blur()
	f.password.Blur()
	switch f.focusIdx {
	case credFocusEmail:
		f.email.Focus()
	case credFocusPassword:
		f.password.Focus()
	}
}

// updateInput forwards a key to the focused text field
func (f *credentialForm) updateInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focusIdx {
	case credFocusEmail:
		f.email, cmd = f.email.Update(msg)
	case credFocusPassword:
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

// validate reports whether the form may be submitted, setting hint otherwise
func (f *credentialForm) validate() bool {
	if err := f.credentials().Validate(); err != nil {
		f.hint = "Enter a valid email address and a password."
		if f.credentials().Email == "" || !strings.Contains(f.credentials().Email, "@") {
			f.focusIdx = credFocusEmail
		} else {
			f.focusIdx = credFocusPassword
		}
		f.updateFocus()
		return false
	}
	f.hint = ""
	return true
}

// render draws the form; linkPrompt and linkText describe the screen-switch link.
// A non-empty errLink repeats that link inside the error box.
func (f *credentialForm) render(s *styles.Styles, width, height int, heading, button, linkPrompt, linkText string, errLink string) string {
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-8, 20, 46)

	emailStyle, passStyle, btnStyle, linkStyle := s.Input, s.Input, s.Button, s.Link
	switch f.focusIdx {
	case credFocusEmail:
		emailStyle = s.InputFocused
	case credFocusPassword:
		passStyle = s.InputFocused
	case credFocusSubmit:
		btnStyle = s.ButtonFocused
	case credFocusLink:
		linkStyle = s.LinkFocused
	}

	label := button
	if f.submitting {
		label = button + "…"
	}

	parts := []string{s.Title.Render(heading), ""}
	if f.err != "" {
		box := f.err
		if errLink != "" {
			// Same focus target as the footer link
			box = lipgloss.JoinVertical(lipgloss.Center, f.err, linkStyle.Render(errLink))
		}
		parts = append(parts, s.ErrorBox.Width(inputWidth).Render(box), "")
	}
	parts = append(parts,
		emailStyle.Width(inputWidth).Render(f.email.View()),
		passStyle.Width(inputWidth).Render(f.password.View()),
	)
	if f.hint != "" {
		parts = append(parts, s.Hint.Render(f.hint))
	}
	parts = append(parts,
		"",
		btnStyle.Render(" "+label+" "),
		"",
		s.TitleMuted.Render(linkPrompt)+" "+linkStyle.Render(linkText),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(form),
	)
	return styles.CenterView(centered, width, height)
}
