package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tasktrack/internal/config"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for persistence and subscriber failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides task ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

type subscription struct {
	id int
	fn Subscriber
}

// Manager owns the in-memory task list. Every mutation is validated,
// sanitized, applied, persisted and then broadcast to subscribers.
// Persistence failures never fail a mutation; the manager keeps working in
// memory and reports the failure through StorageErr.
type Manager struct {
	mu         sync.Mutex
	store      Store
	tasks      []task.Task
	subs       []subscription
	nextSubID  int
	storageErr error

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

var _ Service = (*Manager)(nil)

// New creates a Manager and loads the stored tasks.
func New(ctx context.Context, store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		newID:  task.NewID,
		logger: config.DiscardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.Reload(ctx)
	return m
}

// Reload replaces the in-memory list with the stored one and notifies.
func (m *Manager) Reload(ctx context.Context) {
	m.mu.Lock()
	m.tasks = task.Clone(m.store.Load(ctx))
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
}

// List implements Service.
func (m *Manager) List() []task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return task.Clone(m.tasks)
}

// Get implements Service.
func (m *Manager) Get(id string) (task.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return task.Task{}, false
	}
	return m.tasks[i], true
}

// Add implements Service.
func (m *Manager) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := task.Validate(d); err != nil {
		return task.Task{}, err
	}
	t := task.New(m.newID(), task.Sanitize(d), m.now())

	m.mu.Lock()
	m.tasks = append(m.tasks, t)
	m.commitLocked(ctx, "add", t.ID)
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
	return t, nil
}

// Update implements Service.
// Free text that is not being changed is validated in its unescaped form so
// stored text is never escaped twice.
func (m *Manager) Update(ctx context.Context, id string, f task.Fields) (task.Task, error) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return task.Task{}, ErrNotFound
	}

	draft := m.tasks[i].Draft()
	if f.Title != nil {
		draft.Title = *f.Title
	}
	if f.Description != nil {
		draft.Description = *f.Description
	}
	if err := task.Validate(draft); err != nil {
		m.mu.Unlock()
		return task.Task{}, err
	}
	clean := task.Sanitize(draft)

	t := m.tasks[i]
	t.Title = clean.Title
	t.Description = clean.Description
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	t.UpdatedAt = m.now()
	m.tasks[i] = t

	m.commitLocked(ctx, "update", id)
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
	return t, nil
}

// Delete implements Service.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	m.commitLocked(ctx, "delete", id)
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
	return nil
}

// Toggle implements Service.
func (m *Manager) Toggle(ctx context.Context, id string) (task.Task, error) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return task.Task{}, ErrNotFound
	}
	m.tasks[i].Completed = !m.tasks[i].Completed
	m.tasks[i].UpdatedAt = m.now()
	t := m.tasks[i]

	m.commitLocked(ctx, "toggle", id)
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
	return t, nil
}

// ClearAll implements Service.
func (m *Manager) ClearAll(ctx context.Context) {
	m.mu.Lock()
	m.tasks = nil
	m.commitLocked(ctx, "clear", "")
	snapshot, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot, subs)
}

// Subscribe implements Service.
func (m *Manager) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// StorageErr implements Service.
func (m *Manager) StorageErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storageErr
}

// StorageInfo implements Service.
func (m *Manager) StorageInfo(ctx context.Context) storage.Info {
	if s, ok := m.store.(infoStore); ok {
		return s.Info(ctx)
	}
	return storage.Info{}
}

func (m *Manager) indexLocked(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked persists the current list.
func (m *Manager) commitLocked(ctx context.Context, op, id string) {
	res, err := m.store.Save(ctx, task.Clone(m.tasks))
	if err != nil {
		m.storageErr = fmt.Errorf("%s: %w", op, err)
		m.logger.Warn("failed to save tasks; continuing in memory",
			"op", op, "task", id, "kind", storage.ErrorKind(err), "error", err)
		return
	}
	m.storageErr = nil
	m.logger.Debug("tasks saved", "op", op, "task", id, "count", len(m.tasks),
		"bytes", res.Size, "duration", res.Duration)
}

func (m *Manager) snapshotLocked() ([]task.Task, []subscription) {
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	return task.Clone(m.tasks), subs
}

// notify calls every subscriber with its own copy of snapshot. A panicking
// subscriber is logged and skipped.
func (m *Manager) notify(snapshot []task.Task, subs []subscription) {
	for _, s := range subs {
		m.callSubscriber(s, task.Clone(snapshot))
	}
}

func (m *Manager) callSubscriber(s subscription, tasks []task.Task) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("subscriber panicked", "subscriber", s.id, "panic", r)
		}
	}()
	s.fn(tasks)
}
