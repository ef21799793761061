package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/models"
)

// ErrNotFound is returned when a task ID is unknown.
var ErrNotFound = &api.StatusError{Code: http.StatusNotFound, Message: "task not found"}

// ErrUnauthorized is returned for bad credentials or tokens.
var ErrUnauthorized = &api.StatusError{Code: http.StatusUnauthorized, Message: "unauthorized"}

// Call records one method invocation on FakeAPI.
type Call struct {
	Method string
	Token  string
	ID     string
	Task   models.Task
}

// FakeAPI is an in-memory implementation of api.AuthService and
// api.TaskService for testing.
type FakeAPI struct {
	mu     sync.RWMutex
	users  map[string]string
	tasks  []models.Task
	nextID int
	calls  []Call

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	LogoutErr   error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

var (
	_ api.AuthService = (*FakeAPI)(nil)
	_ api.TaskService = (*FakeAPI)(nil)
)

// NewFakeAPI creates an empty FakeAPI.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{users: make(map[string]string)}
}

// AddUser adds an account.
func (f *FakeAPI) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// AddTask stores a task and returns it with its assigned ID.
func (f *FakeAPI) AddTask(t models.Task) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(t)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeAPI) Tasks() []models.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Task(nil), f.tasks...)
}

// Calls returns the recorded invocations.
func (f *FakeAPI) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts invocations of method.
func (f *FakeAPI) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *FakeAPI) insert(t models.Task) models.Task {
	f.nextID++
	t.ID = fmt.Sprintf("id-%d", f.nextID)
	f.tasks = append(f.tasks, t)
	return t
}

func (f *FakeAPI) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// Login implements api.AuthService.
func (f *FakeAPI) Login(ctx context.Context, creds models.Credentials) (string, error) {
	f.record(Call{Method: "Login"})
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pw, ok := f.users[creds.Email]; !ok || pw != creds.Password {
		return "", ErrUnauthorized
	}
	return "token-" + creds.Email, nil
}

// Register implements api.AuthService.
func (f *FakeAPI) Register(ctx context.Context, creds models.Credentials) error {
	f.record(Call{Method: "Register"})
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[creds.Email]; ok {
		return &api.StatusError{Code: http.StatusConflict}
	}
	f.users[creds.Email] = creds.Password
	return nil
}

// Logout implements api.AuthService.
func (f *FakeAPI) Logout(ctx context.Context, token string) error {
	f.record(Call{Method: "Logout", Token: token})
	return f.LogoutErr
}

// ListTasks implements api.TaskService.
func (f *FakeAPI) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	f.record(Call{Method: "ListTasks", Token: token})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// CreateTask implements api.TaskService.
func (f *FakeAPI) CreateTask(ctx context.Context, token string, task models.Task) (models.Task, error) {
	f.record(Call{Method: "CreateTask", Token: token, Task: task})
	if f.CreateErr != nil {
		return models.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(task), nil
}

// UpdateTask implements api.TaskService.
func (f *FakeAPI) UpdateTask(ctx context.Context, token, id string, task models.Task) (models.Task, error) {
	f.record(Call{Method: "UpdateTask", Token: token, ID: id, Task: task})
	if f.UpdateErr != nil {
		return models.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			task.ID = id
			f.tasks[i] = task
			return task, nil
		}
	}
	return models.Task{}, ErrNotFound
}

// DeleteTask implements api.TaskService.
func (f *FakeAPI) DeleteTask(ctx context.Context, token, id string) error {
	f.record(Call{Method: "DeleteTask", Token: token, ID: id})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ErrStore is a generic storage failure for injection.
var ErrStore = errors.New("store unavailable")

// MemStore is an in-memory token store.
type MemStore struct {
	mu    sync.Mutex
	token string

	TokenErr  error
	SetErr    error
	RemoveErr error
}

// Token returns the stored token.
func (m *MemStore) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TokenErr != nil {
		return "", m.TokenErr
	}
	return m.token, nil
}

// SetToken stores token.
func (m *MemStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.token = token
	return nil
}

// RemoveToken clears the stored token.
func (m *MemStore) RemoveToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.token = ""
	return nil
}
