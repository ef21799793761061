// Package testutil provides fakes of the backend and the session store.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"

	"github.com/tgienger/taskdash/internal/models"
)

// Request records one call received by FakeServer.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// FakeServer is an in-memory backend speaking the task API over HTTP.
// Users must register before they can log in; tokens are "token-<email>".
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string // email -> password
	tokens   map[string]bool
	tasks    []models.Task
	nextID   int
	requests []Request
	failWith int
}

// NewFakeServer starts a server. Close it when done.
func NewFakeServer() *FakeServer {
	f := &FakeServer{
		users:  make(map[string]string),
		tokens: make(map[string]bool),
	}

	r := mux.NewRouter()
	r.Use(f.record)
	r.Methods("POST").Path("/api/auth/login").HandlerFunc(f.login)
	r.Methods("POST").Path("/api/auth/register").HandlerFunc(f.register)
	r.Methods("POST").Path("/api/auth/logout").HandlerFunc(f.authed(f.logout))
	r.Methods("GET").Path("/api/tasks").HandlerFunc(f.authed(f.listTasks))
	r.Methods("POST").Path("/api/tasks").HandlerFunc(f.authed(f.createTask))
	r.Methods("PUT").Path("/api/tasks/{id}").HandlerFunc(f.authed(f.updateTask))
	r.Methods("DELETE").Path("/api/tasks/{id}").HandlerFunc(f.authed(f.deleteTask))

	f.Server = httptest.NewServer(r)
	return f
}

// AddUser registers an account directly and returns its token.
func (f *FakeServer) AddUser(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
	token := "token-" + email
	f.tokens[token] = true
	return token
}

// Fail forces every following response to status code. Zero restores normal
// behavior.
func (f *FakeServer) Fail(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = code
}

// AddTask stores a task and returns it with its assigned ID.
func (f *FakeServer) AddTask(t models.Task) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(t)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeServer) Tasks() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...)
}

// Requests returns a copy of the calls received so far.
func (f *FakeServer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// TokenValid reports whether token is currently accepted.
func (f *FakeServer) TokenValid(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[token]
}

func (f *FakeServer) insert(t models.Task) models.Task {
	f.nextID++
	t.ID = fmt.Sprintf("t%03d", f.nextID)
	f.tasks = append(f.tasks, t)
	return t
}

func (f *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		fail := f.failWith
		f.mu.Unlock()

		if fail != 0 {
			writeError(w, fail, "forced failure")
			return
		}
		if len(body) > 0 {
			r = r.Clone(r.Context())
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeServer) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.tokens[r.Header.Get("Authorization")]
		f.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		h(w, r)
	}
}

func (f *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	var c models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.users[c.Email]; !ok || pw != c.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := "token-" + c.Email
	f.tokens[token] = true
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (f *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	var c models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[c.Email]; exists {
		writeError(w, http.StatusConflict, "user exists")
		return
	}
	f.users[c.Email] = c.Password
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

func (f *FakeServer) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delete(f.tokens, r.Header.Get("Authorization"))
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (f *FakeServer) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.Tasks())
}

func (f *FakeServer) createTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil || t.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	f.mu.Lock()
	created := f.insert(t)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (f *FakeServer) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "bad body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			t.ID = id
			f.tasks[i] = t
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (f *FakeServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
