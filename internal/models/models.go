package models

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	// ErrTitleRequired is returned when a draft is submitted without a title
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidCredentials is returned when an email or password is missing or malformed
	ErrInvalidCredentials = errors.New("a valid email and a password are required")
)

// Category groups tasks
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryUrgent   Category = "Urgent"
)

// Categories returns the selectable categories in display order
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryUrgent}
}

func (c Category) Valid() bool {
	return indexOf(Categories(), c) >= 0
}

// Next returns the following category, wrapping around
func (c Category) Next() Category { return step(Categories(), c, 1) }

// Prev returns the preceding category, wrapping around
func (c Category) Prev() Category { return step(Categories(), c, -1) }

// Status is the progress state of a task
type Status string

const (
	StatusToDo       Status = "To-Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses returns the selectable statuses in display order
func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	return indexOf(Statuses(), s) >= 0
}

// Next returns the following status, wrapping around
func (s Status) Next() Status { return step(Statuses(), s, 1) }

// Prev returns the preceding status, wrapping around
func (s Status) Prev() Status { return step(Statuses(), s, -1) }

func indexOf[T comparable](opts []T, v T) int {
	for i, o := range opts {
		if o == v {
			return i
		}
	}
	return -1
}

// step moves dir places through opts. Unknown values land on the first option.
func step[T comparable](opts []T, v T, dir int) T {
	i := indexOf(opts, v)
	if i < 0 {
		return opts[0]
	}
	n := len(opts)
	return opts[((i+dir)%n+n)%n]
}

// Task is a server-owned to-do item. ID is assigned by the server.
type Task struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
}

// Draft is the unsaved form state for creating or editing one task.
// EditID is empty unless Editing is set.
type Draft struct {
	Title       string
	Description string
	Category    Category
	Status      Status

	Editing bool
	EditID  string
}

// NewDraft returns a draft in create mode with default values
func NewDraft() Draft {
	return Draft{
		Category: CategoryWork,
		Status:   StatusToDo,
	}
}

// DraftFromTask copies a task's fields into a draft in edit mode
func DraftFromTask(t Task) Draft {
	d := Draft{
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		Editing:     true,
		EditID:      t.ID,
	}
	// Values the form cannot select fall back to the defaults
	if !d.Category.Valid() {
		d.Category = CategoryWork
	}
	if !d.Status.Valid() {
		d.Status = StatusToDo
	}
	return d
}

// Reset puts the draft back into create mode with default values
func (d *Draft) Reset() {
	*d = NewDraft()
}

// Validate reports whether the draft can be submitted
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Task returns the request body for a create or update call
func (d Draft) Task() Task {
	return Task{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      d.Status,
	}
}

// Credentials are submitted by the login and registration screens
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the fields a form would refuse to submit
func (c Credentials) Validate() error {
	if c.Email == "" || c.Password == "" {
		return ErrInvalidCredentials
	}
	// Bare addresses only; display names and angle brackets are rejected
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return ErrInvalidCredentials
	}
	return nil
}
