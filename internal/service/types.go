package service

import (
	"context"
	"errors"

	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// ErrNotFound is returned when no task has the requested ID.
var ErrNotFound = errors.New("task not found")

// ErrUnauthorized is returned by a Mirror whose credentials were rejected.
var ErrUnauthorized = errors.New("token expired or revoked (run: tasktrack login)")

// Subscriber receives a snapshot of the full task list after each change.
type Subscriber func(tasks []task.Task)

// Store is the persistence the Manager needs. *storage.Adapter implements it.
type Store interface {
	Load(ctx context.Context) []task.Task
	Save(ctx context.Context, tasks []task.Task) (storage.SaveResult, error)
}

// infoStore is implemented by stores that can report usage.
type infoStore interface {
	Info(ctx context.Context) storage.Info
}

// MirrorResult counts what a Mirror call changed remotely.
type MirrorResult struct {
	ListTitle string
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
}

// TaskList is a remote task list a Mirror can target.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
