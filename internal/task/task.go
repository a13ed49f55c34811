// Package task defines the task model, its validation rules and list helpers.
package task

import (
	"time"

	"github.com/google/uuid"
)

// IDPrefix prefixes every generated task ID.
const IDPrefix = "task_"

// Task is a single to-do item.
// Title and Description hold HTML-escaped text (see Sanitize).
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft is the user-supplied data for a new task.
type Draft struct {
	Title       string
	Description string
}

// Fields holds a partial update. Nil fields are left unchanged.
type Fields struct {
	Title       *string
	Description *string
	Completed   *bool
}

// NewID returns a fresh, unique task ID.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// New creates a task from an already sanitized draft.
func New(id string, d Draft, now time.Time) Task {
	return Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ShortID returns the first eight characters of the ID after the prefix.
func (t Task) ShortID() string {
	id := t.ID
	if len(id) > len(IDPrefix) && id[:len(IDPrefix)] == IDPrefix {
		id = id[len(IDPrefix):]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Draft returns the task's free text as raw (unescaped) draft data.
func (t Task) Draft() Draft {
	return Draft{
		Title:       UnescapeHTML(t.Title),
		Description: UnescapeHTML(t.Description),
	}
}

// Clone returns a copy of the slice. A nil input yields an empty, non-nil slice.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
