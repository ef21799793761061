package views

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log"

	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/testutil"
)

func newLogin(t *testing.T) (*LoginView, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI()
	v := NewLoginView(fake, log.NewNopLogger())
	sized(v)
	return v, fake
}

func fillCredentials(v tea.Model, email, password string) {
	typeText(v, email)
	press(v, tea.KeyTab)
	typeText(v, password)
}

func TestLogin_SuccessEmitsToken(t *testing.T) {
	v, fake := newLogin(t)
	fake.AddUser("ann@example.com", "secret")

	fillCredentials(v, "ann@example.com", "secret")
	out := drive(t, v, press(v, tea.KeyEnter))

	if len(out) != 1 {
		t.Fatalf("expected one message, got %v", out)
	}
	got, ok := out[0].(LoggedIn)
	if !ok {
		t.Fatalf("expected LoggedIn, got %T", out[0])
	}
	if got.Token != "token-ann@example.com" {
		t.Errorf("expected %q, got %q", "token-ann@example.com", got.Token)
	}
	if v.Err() != "" {
		t.Errorf("expected no error, got %q", v.Err())
	}
}

func TestLogin_UnauthorizedShowsRegisterPrompt(t *testing.T) {
	v, _ := newLogin(t)

	fillCredentials(v, "nobody@example.com", "secret")
	out := drive(t, v, press(v, tea.KeyCtrlS))

	if len(out) != 0 {
		t.Errorf("expected no navigation, got %v", out)
	}
	if v.Err() != "User not registered. Please register first." {
		t.Errorf("unexpected error %q", v.Err())
	}
	if n := strings.Count(v.View(), "Register Here"); n < 2 {
		t.Errorf("expected a register link in the error box, found %d links", n)
	}
}

func TestLogin_UnauthorizedFocusesRegisterLink(t *testing.T) {
	v, _ := newLogin(t)

	fillCredentials(v, "nobody@example.com", "secret")
	drive(t, v, press(v, tea.KeyCtrlS))

	out := drive(t, v, press(v, tea.KeyEnter))
	if len(out) != 1 || out[0] != (ShowRegister{}) {
		t.Fatalf("expected ShowRegister from the error box link, got %v", out)
	}

	// tab leaves the link and returns to the email field
	press(v, tea.KeyTab)
	typeText(v, "x")
	if got := v.form.email.Value(); got != "nobody@example.comx" {
		t.Errorf("expected email field focused after tab, got %q", got)
	}
}

func TestLogin_DisplayNameEmailNotSubmitted(t *testing.T) {
	v, fake := newLogin(t)
	fake.AddUser("ann@example.com", "secret")

	fillCredentials(v, "Ann <ann@example.com>", "secret")
	if cmd := press(v, tea.KeyCtrlS); cmd != nil {
		drive(t, v, cmd)
	}
	if n := fake.CallCount("Login"); n != 0 {
		t.Errorf("expected no login call, got %d", n)
	}
}

func TestLogin_OtherFailure(t *testing.T) {
	v, fake := newLogin(t)
	fake.LoginErr = &api.StatusError{Code: http.StatusInternalServerError}

	fillCredentials(v, "ann@example.com", "secret")
	drive(t, v, press(v, tea.KeyCtrlS))

	if v.Err() != "Login failed. Please try again." {
		t.Errorf("unexpected error %q", v.Err())
	}
	if strings.Count(v.View(), "Register Here") != 1 {
		t.Error("only the footer link should be shown for non-401 failures")
	}
}

func TestLogin_InvalidFormNotSubmitted(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty", "", ""},
		{"bad email", "not-an-email", "secret"},
		{"no password", "ann@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, fake := newLogin(t)
			fillCredentials(v, tt.email, tt.password)

			if cmd := press(v, tea.KeyCtrlS); cmd != nil {
				drive(t, v, cmd)
			}
			if n := fake.CallCount("Login"); n != 0 {
				t.Errorf("expected no login call, got %d", n)
			}
		})
	}
}

func TestLogin_SecondSubmitIgnoredWhileInFlight(t *testing.T) {
	v, fake := newLogin(t)
	fake.AddUser("ann@example.com", "secret")
	fillCredentials(v, "ann@example.com", "secret")

	first := press(v, tea.KeyCtrlS)
	if second := press(v, tea.KeyCtrlS); second != nil {
		t.Fatal("expected second submit to be ignored")
	}
	drive(t, v, first)

	if n := fake.CallCount("Login"); n != 1 {
		t.Errorf("expected 1 login call, got %d", n)
	}
}

func TestLogin_SwitchToRegister(t *testing.T) {
	v, _ := newLogin(t)

	out := drive(t, v, press(v, tea.KeyCtrlR))
	if len(out) != 1 || out[0] != (ShowRegister{}) {
		t.Errorf("expected ShowRegister from ctrl+r, got %v", out)
	}

	// email -> password -> button -> link
	for i := 0; i < 3; i++ {
		press(v, tea.KeyTab)
	}
	out = drive(t, v, press(v, tea.KeyEnter))
	if len(out) != 1 || out[0] != (ShowRegister{}) {
		t.Errorf("expected ShowRegister from link, got %v", out)
	}
}
