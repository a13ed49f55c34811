// Package storage persists the task list as a versioned JSON envelope in a
// key-value backend.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tasktrack/internal/task"
)

const (
	// Key is the backend key holding the envelope.
	Key = "todoapp_data"

	// Version is the current envelope schema version.
	Version = "1.0"

	// DefaultQuota approximates the per-origin quota of browser local storage.
	DefaultQuota = 5 * 1024 * 1024

	probeKey = "__storage_test__"
)

var (
	// ErrUnavailable is returned when the backend fails the availability probe.
	ErrUnavailable = errors.New("storage is not available")

	// ErrQuotaExceeded is returned when a write does not fit in the backend quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCorrupt is returned when the stored envelope cannot be decoded.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// Error kinds reported by ErrorKind.
const (
	KindUnavailable   = "UNAVAILABLE"
	KindQuotaExceeded = "QUOTA_EXCEEDED"
	KindSave          = "SAVE_ERROR"
)

// ErrorKind classifies a Save error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	default:
		return KindSave
	}
}

// Backend is a byte-oriented key-value store.
type Backend interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	// Returns an error wrapping ErrQuotaExceeded if the value does not fit.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Quotaer is implemented by backends with a known capacity in bytes.
type Quotaer interface {
	Quota() int64
}

// Envelope is the persisted wrapper around the task list.
type Envelope struct {
	Tasks        []task.Task `json:"tasks"`
	Version      string      `json:"version"`
	LastModified time.Time   `json:"lastModified"`
}

// SaveResult describes a successful save.
type SaveResult struct {
	Duration time.Duration
	Size     int
}

// Info describes storage usage.
type Info struct {
	Available  bool
	Used       int64
	Total      int64
	Percentage float64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithKey overrides the backend key.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// Adapter reads and writes the task envelope through a Backend.
type Adapter struct {
	backend Backend
	key     string
	now     func() time.Time
	logger  *slog.Logger
}

// NewAdapter creates an adapter over backend.
func NewAdapter(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		key:     Key,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Available probes the backend with a throwaway write. A probe refused only
// for lack of space still proves the backend reachable: a nearly full store
// stays readable, and the next save reports the quota instead.
func (a *Adapter) Available(ctx context.Context) bool {
	if a == nil || a.backend == nil {
		return false
	}
	if err := a.backend.Set(ctx, probeKey, []byte(probeKey)); err != nil {
		return errors.Is(err, ErrQuotaExceeded)
	}
	if err := a.backend.Remove(ctx, probeKey); err != nil {
		return false
	}
	return true
}

// Save writes tasks as the current envelope.
func (a *Adapter) Save(ctx context.Context, tasks []task.Task) (SaveResult, error) {
	start := time.Now()

	if !a.Available(ctx) {
		return SaveResult{}, ErrUnavailable
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(Envelope{
		Tasks:        tasks,
		Version:      Version,
		LastModified: a.now().UTC(),
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to encode tasks: %w", err)
	}

	if err := a.backend.Set(ctx, a.key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return SaveResult{}, err
		}
		return SaveResult{}, fmt.Errorf("failed to save tasks: %w", err)
	}

	return SaveResult{
		Duration: time.Since(start),
		Size:     len(data),
	}, nil
}

// Load returns the stored tasks. Missing, unreadable or corrupt data yields
// an empty list; the cause is logged, never returned.
func (a *Adapter) Load(ctx context.Context) []task.Task {
	env, err := a.LoadEnvelope(ctx)
	if err != nil {
		a.logger.Warn("failed to load tasks", "key", a.key, "error", err)
		return []task.Task{}
	}
	return env.Tasks
}

// LoadEnvelope reads and normalizes the stored envelope.
// A missing key is not an error and yields an empty envelope.
func (a *Adapter) LoadEnvelope(ctx context.Context) (Envelope, error) {
	empty := Envelope{Tasks: []task.Task{}, Version: Version}

	if !a.Available(ctx) {
		return empty, ErrUnavailable
	}

	data, ok, err := a.backend.Get(ctx, a.key)
	if err != nil {
		return empty, fmt.Errorf("failed to read tasks: %w", err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	env, err := decodeEnvelope(data, a.now().UTC())
	if err != nil {
		return empty, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Version != Version {
		a.logger.Debug("normalizing envelope version", "from", env.Version, "to", Version)
		env.Version = Version
	}
	return env, nil
}

// Info reports how much of the backend quota the envelope uses.
func (a *Adapter) Info(ctx context.Context) Info {
	if !a.Available(ctx) {
		return Info{}
	}

	total := int64(DefaultQuota)
	if q, ok := a.backend.(Quotaer); ok && q.Quota() > 0 {
		total = q.Quota()
	}

	data, _, err := a.backend.Get(ctx, a.key)
	if err != nil {
		return Info{Available: true, Total: total}
	}
	used := int64(len(data))
	return Info{
		Available:  true,
		Used:       used,
		Total:      total,
		Percentage: float64(used) / float64(total) * 100,
	}
}

// storedEnvelope is the lenient on-disk shape. Tasks stays raw so a non-array
// value can be told apart from a decoding error.
type storedEnvelope struct {
	Tasks        json.RawMessage `json:"tasks"`
	Version      string          `json:"version"`
	LastModified *time.Time      `json:"lastModified"`
}

type storedTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func decodeEnvelope(data []byte, now time.Time) (Envelope, error) {
	var raw storedEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, err
	}

	env := Envelope{Tasks: []task.Task{}, Version: raw.Version, LastModified: now}
	if raw.LastModified != nil {
		env.LastModified = *raw.LastModified
	}

	trimmed := bytes.TrimSpace(raw.Tasks)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		// Missing, null or not an array: nothing to recover.
		return env, nil
	}

	var stored []storedTask
	if err := json.Unmarshal(trimmed, &stored); err != nil {
		return Envelope{}, err
	}
	for _, s := range stored {
		t := task.Task{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Completed:   s.Completed,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if t.ID == "" {
			t.ID = task.NewID()
		}
		if s.CreatedAt != nil {
			t.CreatedAt = *s.CreatedAt
		}
		if s.UpdatedAt != nil {
			t.UpdatedAt = *s.UpdatedAt
		}
		env.Tasks = append(env.Tasks, t)
	}
	return env, nil
}
