// Package service holds the task state manager and the interfaces the
// command layer talks to.
package service

import (
	"context"

	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// Service defines the task operations available to front ends.
// Commands depend on this interface, never on a concrete store.
type Service interface {
	// List returns a copy of all tasks in insertion order.
	List() []task.Task

	// Get returns the task with the given ID.
	Get(id string) (task.Task, bool)

	// Add validates, sanitizes and appends a new task.
	// Returns *task.ValidationError if the draft is invalid.
	Add(ctx context.Context, d task.Draft) (task.Task, error)

	// Update applies the non-nil fields to an existing task.
	// Returns ErrNotFound or *task.ValidationError.
	Update(ctx context.Context, id string, f task.Fields) (task.Task, error)

	// Delete removes a task. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Toggle flips a task's completion state. Returns ErrNotFound if absent.
	Toggle(ctx context.Context, id string) (task.Task, error)

	// ClearAll removes every task.
	ClearAll(ctx context.Context)

	// Subscribe registers fn to receive the full list after every change.
	// The returned function unsubscribes.
	Subscribe(fn Subscriber) (unsubscribe func())

	// StorageErr returns the last persistence failure, or nil.
	StorageErr() error

	// StorageInfo reports backend usage.
	StorageInfo(ctx context.Context) storage.Info
}

// Mirror pushes the local task list to a remote task service.
type Mirror interface {
	// Mirror makes the remote list named listName reflect tasks.
	// An empty listName selects the remote default list.
	Mirror(ctx context.Context, listName string, tasks []task.Task) (MirrorResult, error)

	// Lists returns the remote task lists in API order.
	Lists(ctx context.Context) ([]TaskList, error)
}
