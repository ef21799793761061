package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log"

	"github.com/tgienger/taskdash/internal/models"
	"github.com/tgienger/taskdash/internal/testutil"
	"github.com/tgienger/taskdash/internal/ui/views"
)

// drive runs cmd and feeds every resulting message back into the app.
// It reports whether a quit was requested.
func drive(t *testing.T, a *App, cmd tea.Cmd) bool {
	t.Helper()
	quit := false
	var run func(cmd tea.Cmd, depth int)
	run = func(cmd tea.Cmd, depth int) {
		if cmd == nil {
			return
		}
		if depth > 30 {
			t.Fatal("command chain too deep")
		}
		switch msg := cmd().(type) {
		case nil:
		case tea.BatchMsg:
			for _, c := range msg {
				run(c, depth+1)
			}
		case tea.QuitMsg:
			quit = true
		default:
			_, next := a.Update(msg)
			run(next, depth+1)
		}
	}
	run(cmd, 0)
	return quit
}

func send(t *testing.T, a *App, msg tea.Msg) bool {
	t.Helper()
	_, cmd := a.Update(msg)
	return drive(t, a, cmd)
}

func newApp(t *testing.T, store *testutil.MemStore) (*App, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI()
	a := NewApp(fake, fake, store, log.NewNopLogger())
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 80})
	return a, fake
}

func TestApp_StartsOnLogin(t *testing.T) {
	a, fake := newApp(t, &testutil.MemStore{})
	drive(t, a, a.Init())

	if a.CurrentView() != ViewLogin {
		t.Errorf("expected login view, got %v", a.CurrentView())
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("expected no server calls, got %d", n)
	}
}

func TestApp_ResumesStoredSession(t *testing.T) {
	store := &testutil.MemStore{}
	store.SetToken("saved")
	a, fake := newApp(t, store)
	fake.AddTask(models.Task{Title: "a", Category: models.CategoryWork, Status: models.StatusToDo})

	drive(t, a, a.Init())

	if a.CurrentView() != ViewDashboard {
		t.Fatalf("expected dashboard, got %v", a.CurrentView())
	}
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Method != "ListTasks" || calls[0].Token != "saved" {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestApp_StoreReadFailureFallsBackToLogin(t *testing.T) {
	a, _ := newApp(t, &testutil.MemStore{TokenErr: testutil.ErrStore})
	drive(t, a, a.Init())

	if a.CurrentView() != ViewLogin {
		t.Errorf("expected login view, got %v", a.CurrentView())
	}
}

func TestApp_LoginPersistsToken(t *testing.T) {
	store := &testutil.MemStore{}
	a, fake := newApp(t, store)
	fake.AddUser("ann@example.com", "secret")
	drive(t, a, a.Init())

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ann@example.com")})
	send(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("secret")})
	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})

	if a.CurrentView() != ViewDashboard {
		t.Fatalf("expected dashboard, got %v", a.CurrentView())
	}
	if a.Token() != "token-ann@example.com" {
		t.Errorf("expected in-memory token, got %q", a.Token())
	}
	if tok, _ := store.Token(); tok != "token-ann@example.com" {
		t.Errorf("expected stored token, got %q", tok)
	}
	if n := fake.CallCount("ListTasks"); n != 1 {
		t.Errorf("expected dashboard to fetch tasks once, got %d", n)
	}
}

func TestApp_TokenStoreFailureStillOpensDashboard(t *testing.T) {
	store := &testutil.MemStore{SetErr: errors.New("disk full")}
	a, _ := newApp(t, store)

	send(t, a, views.LoggedIn{Token: "abc"})

	if a.CurrentView() != ViewDashboard || a.Token() != "abc" {
		t.Errorf("expected dashboard with in-memory token, got view=%v token=%q", a.CurrentView(), a.Token())
	}
}

func TestApp_Navigation(t *testing.T) {
	a, _ := newApp(t, &testutil.MemStore{})
	drive(t, a, a.Init())

	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlR})
	if a.CurrentView() != ViewRegister {
		t.Fatalf("expected register view, got %v", a.CurrentView())
	}

	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlL})
	if a.CurrentView() != ViewLogin {
		t.Fatalf("expected login view, got %v", a.CurrentView())
	}

	send(t, a, views.Registered{})
	if a.CurrentView() != ViewDashboard {
		t.Errorf("expected dashboard after registration, got %v", a.CurrentView())
	}
	if a.Token() != "" {
		t.Errorf("registration must not capture a token, got %q", a.Token())
	}
}

func TestApp_LogoutReturnsToLogin(t *testing.T) {
	store := &testutil.MemStore{}
	store.SetToken("saved")
	a, fake := newApp(t, store)
	fake.LogoutErr = errors.New("connection refused")
	drive(t, a, a.Init())

	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlX})

	if a.CurrentView() != ViewLogin {
		t.Errorf("expected login view, got %v", a.CurrentView())
	}
	if a.Token() != "" {
		t.Errorf("expected in-memory token cleared, got %q", a.Token())
	}
	if tok, _ := store.Token(); tok != "" {
		t.Errorf("expected stored token removed, got %q", tok)
	}
}

func TestApp_Quit(t *testing.T) {
	a, _ := newApp(t, &testutil.MemStore{})
	drive(t, a, a.Init())

	if !send(t, a, tea.KeyMsg{Type: tea.KeyCtrlC}) {
		t.Error("expected ctrl+c to quit")
	}
}

func TestApp_ResultFromPreviousSessionDropped(t *testing.T) {
	store := &testutil.MemStore{}
	store.SetToken("alice")
	a, fake := newApp(t, store)

	// alice's initial fetch has not completed yet
	held := a.Init()

	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlX})
	send(t, a, views.LoggedIn{Token: "bob"})
	if a.CurrentView() != ViewDashboard {
		t.Fatalf("expected dashboard, got %v", a.CurrentView())
	}

	fake.AddTask(models.Task{Title: "owned by alice", Category: models.CategoryWork, Status: models.StatusToDo})
	drive(t, a, held)

	if got := a.dashboard.Tasks(); len(got) != 0 {
		t.Errorf("expected bob's dashboard to stay empty, got %+v", got)
	}
}

func TestApp_LoginResultDeliveredAfterSwitchingScreens(t *testing.T) {
	store := &testutil.MemStore{}
	a, fake := newApp(t, store)
	fake.AddUser("ann@example.com", "secret")
	drive(t, a, a.Init())

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ann@example.com")})
	send(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("secret")})
	_, held := a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	send(t, a, tea.KeyMsg{Type: tea.KeyCtrlR})
	if a.CurrentView() != ViewRegister {
		t.Fatalf("expected register view, got %v", a.CurrentView())
	}

	drive(t, a, held)

	if a.CurrentView() != ViewDashboard {
		t.Errorf("expected dashboard once login completes, got %v", a.CurrentView())
	}
	if tok, _ := store.Token(); tok != "token-ann@example.com" {
		t.Errorf("expected stored token, got %q", tok)
	}
}
