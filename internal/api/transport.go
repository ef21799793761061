package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	httptransport "github.com/go-kit/kit/transport/http"

	"github.com/tgienger/taskdash/internal/models"
)

// Paths served by the backend.
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	LogoutPath   = "/api/auth/logout"
	TasksPath    = "/api/tasks"
)

// maxErrorBody caps how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Options configure NewClient.
type Options struct {
	// APIURL is the base address of the task endpoints.
	APIURL string

	// AuthURL is the base address of the auth endpoints. Defaults to APIURL.
	AuthURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewClient builds the endpoint Set for a backend.
func NewClient(opts Options, logger log.Logger) (Set, error) {
	if opts.AuthURL == "" {
		opts.AuthURL = opts.APIURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	target := func(base, path string) (*url.URL, error) {
		u, err := url.Parse(strings.TrimRight(base, "/") + path)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", base, err)
		}
		return u, nil
	}

	var set Set
	for _, e := range []struct {
		dst    *endpoint.Endpoint
		name   string
		method string
		base   string
		path   string
		enc    httptransport.EncodeRequestFunc
		dec    httptransport.DecodeResponseFunc
	}{
		{&set.LoginEndpoint, "Login", http.MethodPost, opts.AuthURL, LoginPath, encodeLoginRequest, decodeLoginResponse},
		{&set.RegisterEndpoint, "Register", http.MethodPost, opts.AuthURL, RegisterPath, encodeRegisterRequest, decodeEmptyResponse},
		{&set.LogoutEndpoint, "Logout", http.MethodPost, opts.AuthURL, LogoutPath, encodeLogoutRequest, decodeEmptyResponse},
		{&set.TasksEndpoint, "Tasks", http.MethodGet, opts.APIURL, TasksPath, encodeTasksRequest, decodeTasksResponse},
		{&set.CreateTaskEndpoint, "CreateTask", http.MethodPost, opts.APIURL, TasksPath, encodeCreateTaskRequest, decodeTaskResponse},
		{&set.UpdateTaskEndpoint, "UpdateTask", http.MethodPut, opts.APIURL, TasksPath, encodeUpdateTaskRequest, decodeTaskResponse},
		{&set.DeleteTaskEndpoint, "DeleteTask", http.MethodDelete, opts.APIURL, TasksPath, encodeDeleteTaskRequest, decodeEmptyResponse},
	} {
		tgt, err := target(e.base, e.path)
		if err != nil {
			return Set{}, err
		}
		var ep endpoint.Endpoint
		{
			ep = httptransport.NewClient(e.method, tgt, e.enc, e.dec, httptransport.SetClient(opts.HTTPClient)).Endpoint()
			ep = LoggingMiddleware(log.With(logger, "method", e.name))(ep)
		}
		*e.dst = ep
	}
	return set, nil
}

// setAuth sends the token as the raw Authorization value, without a scheme.
func setAuth(r *http.Request, token string) {
	if token != "" {
		r.Header.Set("Authorization", token)
	}
}

// appendID extends the request path with a task ID.
func appendID(r *http.Request, id string) error {
	if id == "" {
		return errors.New("api: missing task id")
	}
	r.URL.Path = strings.TrimRight(r.URL.Path, "/") + "/" + id
	r.URL.RawPath = ""
	return nil
}

func encodeLoginRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(LoginRequest)
	return httptransport.EncodeJSONRequest(ctx, r, req.Credentials)
}

func encodeRegisterRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(RegisterRequest)
	return httptransport.EncodeJSONRequest(ctx, r, req.Credentials)
}

func encodeLogoutRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(LogoutRequest)
	setAuth(r, req.Token)
	return nil
}

func encodeTasksRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(TasksRequest)
	setAuth(r, req.Token)
	return nil
}

func encodeCreateTaskRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(CreateTaskRequest)
	setAuth(r, req.Token)
	return httptransport.EncodeJSONRequest(ctx, r, req.Task)
}

func encodeUpdateTaskRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(UpdateTaskRequest)
	setAuth(r, req.Token)
	if err := appendID(r, req.TaskID); err != nil {
		return err
	}
	return httptransport.EncodeJSONRequest(ctx, r, req.Task)
}

func encodeDeleteTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(DeleteTaskRequest)
	setAuth(r, req.Token)
	return appendID(r, req.TaskID)
}

// checkStatus turns non-2xx responses into a StatusError.
func checkStatus(r *http.Response) error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
	return &StatusError{Code: r.StatusCode, Message: errorMessage(body)}
}

// errorMessage prefers a JSON "error" or "message" field over the raw body.
func errorMessage(body []byte) string {
	var wrapper struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wrapper) == nil {
		if wrapper.Error != "" {
			return wrapper.Error
		}
		if wrapper.Message != "" {
			return wrapper.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func decodeLoginResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("api: login response has no token")
	}
	return resp, nil
}

func decodeTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := json.NewDecoder(r.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return TasksResponse{Tasks: tasks}, nil
}

func decodeTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return TaskResponse{Task: task}, nil
}

func decodeEmptyResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	return emptyResponse{}, nil
}
