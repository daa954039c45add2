package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileKV stores all keys as one JSON object on disk, one file per scope.
type FileKV struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

func NewFileKV(path string) (*FileKV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("engagement: file path must not be empty")
	}
	return &FileKV{path: path}, nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(); err != nil {
		return "", false, err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(); err != nil {
		return err
	}
	f.values[key] = value
	return f.flush()
}

func (f *FileKV) ensureLoaded() error {
	if f.loaded {
		return nil
	}
	f.values = map[string]string{}
	raw, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("engagement: read %s: %w", f.path, err)
	case len(strings.TrimSpace(string(raw))) > 0:
		if err := json.Unmarshal(raw, &f.values); err != nil {
			return fmt.Errorf("engagement: decode %s: %w", f.path, err)
		}
	}
	f.loaded = true
	return nil
}

// flush writes through a temp file so a crash never leaves a truncated file.
func (f *FileKV) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("engagement: create dir: %w", err)
	}
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("engagement: encode state: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("engagement: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("engagement: replace %s: %w", f.path, err)
	}
	return nil
}
