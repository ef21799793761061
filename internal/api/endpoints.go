package api

import (
	"context"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/tgienger/taskdash/internal/models"
)

// Set collects the client endpoints. It implements AuthService and TaskService.
type Set struct {
	LoginEndpoint      endpoint.Endpoint
	RegisterEndpoint   endpoint.Endpoint
	LogoutEndpoint     endpoint.Endpoint
	TasksEndpoint      endpoint.Endpoint
	CreateTaskEndpoint endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

var (
	_ AuthService = Set{}
	_ TaskService = Set{}
)

func (s Set) Login(ctx context.Context, creds models.Credentials) (string, error) {
	resp, err := s.LoginEndpoint(ctx, LoginRequest{Credentials: creds})
	if err != nil {
		return "", err
	}
	return resp.(LoginResponse).Token, nil
}

func (s Set) Register(ctx context.Context, creds models.Credentials) error {
	_, err := s.RegisterEndpoint(ctx, RegisterRequest{Credentials: creds})
	return err
}

func (s Set) Logout(ctx context.Context, token string) error {
	_, err := s.LogoutEndpoint(ctx, LogoutRequest{Token: token})
	return err
}

func (s Set) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	resp, err := s.TasksEndpoint(ctx, TasksRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return resp.(TasksResponse).Tasks, nil
}

func (s Set) CreateTask(ctx context.Context, token string, task models.Task) (models.Task, error) {
	resp, err := s.CreateTaskEndpoint(ctx, CreateTaskRequest{Token: token, Task: task})
	if err != nil {
		return models.Task{}, err
	}
	return resp.(TaskResponse).Task, nil
}

func (s Set) UpdateTask(ctx context.Context, token, id string, task models.Task) (models.Task, error) {
	resp, err := s.UpdateTaskEndpoint(ctx, UpdateTaskRequest{Token: token, TaskID: id, Task: task})
	if err != nil {
		return models.Task{}, err
	}
	return resp.(TaskResponse).Task, nil
}

func (s Set) DeleteTask(ctx context.Context, token, id string) error {
	_, err := s.DeleteTaskEndpoint(ctx, DeleteTaskRequest{Token: token, TaskID: id})
	return err
}

// LoggingMiddleware logs every call with its duration and error.
func LoggingMiddleware(logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				level.Debug(logger).Log("took", time.Since(begin), "err", err)
			}(time.Now())
			return next(ctx, request)
		}
	}
}

type LoginRequest struct {
	Credentials models.Credentials
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Credentials models.Credentials
}

type LogoutRequest struct {
	Token string
}

type TasksRequest struct {
	Token string
}

type TasksResponse struct {
	Tasks []models.Task
}

type CreateTaskRequest struct {
	Token string
	Task  models.Task
}

type UpdateTaskRequest struct {
	Token  string
	TaskID string
	Task   models.Task
}

type DeleteTaskRequest struct {
	Token  string
	TaskID string
}

// TaskResponse is returned by create and update.
type TaskResponse struct {
	Task models.Task
}

// emptyResponse is returned by calls whose success body is ignored.
type emptyResponse struct{}
