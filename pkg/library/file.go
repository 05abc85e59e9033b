package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// FileLibrary stores each entry as a JSON file in a directory.
type FileLibrary struct {
	mu  sync.RWMutex
	dir string
}

// NewFileLibrary opens the library in dir.
// If dir is empty, defaults to ~/.config/catdiagram/library/
func NewFileLibrary(dir string) (*FileLibrary, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		dir = filepath.Join(base, "catdiagram", "library")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &FileLibrary{dir: dir}, nil
}

func (l *FileLibrary) entryPath(name string) string {
	return filepath.Join(l.dir, name+".json")
}

func (l *FileLibrary) Put(_ context.Context, e *Entry) error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *e
	stored.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := os.WriteFile(l.entryPath(e.Name), data, 0o644); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

func (l *FileLibrary) Get(_ context.Context, name string) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.read(l.entryPath(name), name)
}

func (l *FileLibrary) read(path, name string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse entry %s: %w", name, err)
	}
	return &e, nil
}

func (l *FileLibrary) List(_ context.Context) ([]Summary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	files, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}
	var out []Summary
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(f.Name(), ".json")
		e, err := l.read(filepath.Join(l.dir, f.Name()), name)
		if err != nil {
			continue
		}
		out = append(out, summarize(e))
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (l *FileLibrary) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	err := os.Remove(l.entryPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("remove entry: %w", err)
	}
	return nil
}

func (l *FileLibrary) Close(context.Context) error { return nil }

// Path returns the library directory.
func (l *FileLibrary) Path() string { return l.dir }

var _ Library = (*FileLibrary)(nil)
