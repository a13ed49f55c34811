package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileExt = ".json"

// FileBackend stores each key as a file in a directory.
// Writes are atomic and durable (temp file + fsync + rename + dir fsync).
type FileBackend struct {
	mu    sync.Mutex
	dir   string
	quota int64
}

// NewFileBackend creates a backend rooted at dir. quota <= 0 means DefaultQuota.
func NewFileBackend(dir string, quota int64) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	if quota <= 0 {
		quota = DefaultQuota
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{dir: dir, quota: quota}, nil
}

// Quota implements Quotaer.
func (b *FileBackend) Quota() int64 { return b.quota }

func (b *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(b.dir, key+fileExt), nil
}

// Get implements Backend.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Backend.
func (b *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	used, err := b.usedExcept(path)
	if err != nil {
		return err
	}
	if used+int64(len(value)) > b.quota {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrQuotaExceeded, len(value), used, b.quota)
	}
	return writeFileAtomicDurable(path, value, 0o600)
}

// Remove implements Backend.
func (b *FileBackend) Remove(ctx context.Context, key string) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// usedExcept sums the sizes of all stored values other than path.
func (b *FileBackend) usedExcept(path string) (int64, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if filepath.Join(b.dir, e.Name()) == path {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func writeFileAtomicDurable(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
