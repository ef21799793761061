package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// drive runs cmd, feeds result messages back into m and returns the
// navigation messages meant for the app.
func drive(t *testing.T, m tea.Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	var run func(cmd tea.Cmd, depth int)
	run = func(cmd tea.Cmd, depth int) {
		if cmd == nil {
			return
		}
		if depth > 20 {
			t.Fatal("command chain too deep")
		}
		switch msg := cmd().(type) {
		case tea.BatchMsg:
			for _, c := range msg {
				run(c, depth+1)
			}
		case loginResultMsg, registerResultMsg, tasksLoadedMsg, taskSavedMsg, taskDeletedMsg, logoutDoneMsg:
			_, next := m.Update(msg)
			run(next, depth+1)
		case LoggedIn, Registered, ShowRegister, ShowLogin, LoggedOut, tea.QuitMsg:
			out = append(out, msg)
		}
	}
	run(cmd, 0)
	return out
}

// press sends a key and returns the resulting command
func press(m tea.Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

// pressRune sends a single character key
func pressRune(m tea.Model, r rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return cmd
}

// typeText sends s as one rune key message, discarding the cursor command
func typeText(m tea.Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func sized(m tea.Model) {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 80})
}
