// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tasktrack/internal/service"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// BaseTime is the creation time of the first task made by NewService.
var BaseTime = time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)

// NewService returns a Manager over a fresh MemoryBackend with sequential IDs
// (task_1, task_2, ...) and a clock that advances one minute per call.
func NewService() (*service.Manager, *storage.MemoryBackend) {
	backend := storage.NewMemoryBackend(0)
	return NewServiceWithBackend(backend), backend
}

// NewServiceWithBackend is like NewService but uses backend.
func NewServiceWithBackend(backend storage.Backend) *service.Manager {
	var mu sync.Mutex
	n := 0
	clock := BaseTime.Add(-time.Minute)

	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("task_%d", n)
	}
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	return service.New(context.Background(), storage.NewAdapter(backend),
		service.WithIDGenerator(ids), service.WithClock(now))
}

// AddTasks adds tasks with the given titles, failing loudly on invalid input.
func AddTasks(svc service.Service, titles ...string) []task.Task {
	out := make([]task.Task, 0, len(titles))
	for _, title := range titles {
		t, err := svc.Add(context.Background(), task.Draft{Title: title})
		if err != nil {
			panic(fmt.Sprintf("testutil: add %q: %v", title, err))
		}
		out = append(out, t)
	}
	return out
}

// FakeMirror is an in-memory implementation of service.Mirror for testing.
type FakeMirror struct {
	mu      sync.Mutex
	lists   []service.TaskList
	remote  map[string]map[string]task.Task // list title (lower) -> local ID -> task
	calls   int
	lastLst string

	// Error injection for testing
	MirrorErr error
	ListsErr  error
}

// NewFakeMirror creates a FakeMirror with a default list.
func NewFakeMirror() *FakeMirror {
	return &FakeMirror{
		lists:  []service.TaskList{{ID: "@default", Title: "My Tasks", IsDefault: true}},
		remote: make(map[string]map[string]task.Task),
	}
}

// AddList adds a remote list.
func (f *FakeMirror) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
}

// Calls returns the number of Mirror calls and the last list name requested.
func (f *FakeMirror) Calls() (int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.lastLst
}

// Remote returns a copy of the mirrored tasks for a list title.
func (f *FakeMirror) Remote(listTitle string) map[string]task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]task.Task)
	for id, t := range f.remote[strings.ToLower(listTitle)] {
		out[id] = t
	}
	return out
}

// Mirror implements service.Mirror.
func (f *FakeMirror) Mirror(ctx context.Context, listName string, tasks []task.Task) (service.MirrorResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastLst = listName
	if f.MirrorErr != nil {
		return service.MirrorResult{}, f.MirrorErr
	}

	title := f.resolveLocked(strings.TrimSpace(listName))
	key := strings.ToLower(title)
	existing := f.remote[key]
	next := make(map[string]task.Task, len(tasks))
	res := service.MirrorResult{ListTitle: title}

	for _, t := range tasks {
		next[t.ID] = t
		old, ok := existing[t.ID]
		switch {
		case !ok:
			res.Created++
		case old.Title != t.Title || old.Description != t.Description || old.Completed != t.Completed:
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	for id := range existing {
		if _, ok := next[id]; !ok {
			res.Deleted++
		}
	}
	f.remote[key] = next
	return res, nil
}

// Lists implements service.Mirror.
func (f *FakeMirror) Lists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.TaskList, len(f.lists))
	copy(out, f.lists)
	return out, nil
}

// resolveLocked returns the title of the list named name, creating it when
// missing. An empty name selects the default list.
func (f *FakeMirror) resolveLocked(name string) string {
	for _, l := range f.lists {
		if (name == "" && l.IsDefault) || (name != "" && strings.EqualFold(l.Title, name)) {
			return l.Title
		}
	}
	f.lists = append(f.lists, service.TaskList{ID: strings.ToLower(name), Title: name})
	return name
}
