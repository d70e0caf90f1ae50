package retrieve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// TempRegistry tracks temporary files created for a process so they can be
// removed on every exit path. The registry is append/remove-only and
// cleanup is idempotent: removing an already-deleted file is not an error.
type TempRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewTempRegistry creates an empty registry.
func NewTempRegistry() *TempRegistry {
	return &TempRegistry{
		paths: make(map[string]struct{}),
	}
}

// Persist writes data to a fresh temp file and registers it for cleanup.
// The pattern follows os.CreateTemp conventions (e.g. "docent-*.pdf").
func (t *TempRegistry) Persist(data []byte, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	t.mu.Lock()
	t.paths[path] = struct{}{}
	t.mu.Unlock()

	return path, nil
}

// Remove deletes one registered file. Missing files are not an error.
func (t *TempRegistry) Remove(path string) error {
	t.mu.Lock()
	delete(t.paths, path)
	t.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CleanupAll removes every registered file. Safe to call more than once.
func (t *TempRegistry) CleanupAll() {
	t.mu.Lock()
	paths := make([]string, 0, len(t.paths))
	for p := range t.paths {
		paths = append(paths, p)
	}
	t.paths = make(map[string]struct{})
	t.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			// Best effort: nothing sensible to do at process exit.
			continue
		}
	}
}

// Len returns the number of registered files.
func (t *TempRegistry) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.paths)
}
