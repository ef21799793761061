// Package api is the HTTP client for the task-management backend. Each call
// is a go-kit client endpoint; Set adapts them to the AuthService and
// TaskService interfaces consumed by the UI.
package api

import (
	"context"

	"github.com/tgienger/taskdash/internal/models"
)

// AuthService covers the account endpoints.
type AuthService interface {
	// Login exchanges credentials for an opaque token.
	Login(ctx context.Context, creds models.Credentials) (string, error)

	// Register creates an account. No token is returned.
	Register(ctx context.Context, creds models.Credentials) error

	// Logout invalidates token on the server.
	Logout(ctx context.Context, token string) error
}

// TaskService covers the task endpoints. Every call carries the token as the
// raw Authorization header value.
type TaskService interface {
	// ListTasks returns all tasks in server order.
	ListTasks(ctx context.Context, token string) ([]models.Task, error)

	// CreateTask creates a task; the server assigns its ID.
	CreateTask(ctx context.Context, token string, task models.Task) (models.Task, error)

	// UpdateTask replaces the task with the given ID.
	UpdateTask(ctx context.Context, token, id string, task models.Task) (models.Task, error)

	// DeleteTask removes the task with the given ID.
	DeleteTask(ctx context.Context, token, id string) error
}
