package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// FileStore keeps each calculation as <id>.json in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/tilecalc/calculations.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "tilecalc", "calculations"), nil
}

// NewFileStore creates a file store. An empty baseDir means [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string {
	return s.baseDir
}

// calcPath rejects IDs that are not UUIDs so they cannot escape baseDir.
func (s *FileStore) calcPath(id string) (string, error) {
	if err := errors.ValidateCalculationID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Save(ctx context.Context, c *Calculation) error {
	path, err := s.calcPath(c.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calculation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write calculation file: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place. The temporary name has no .json extension so List skips it.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Calculation, error) {
	path, err := s.calcPath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readCalculation(path, id)
}

func readCalculation(path, id string) (*Calculation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read calculation file: %w", err)
	}
	var c Calculation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse calculation %s: %w", id, err)
	}
	return &c, nil
}

// List skips files that cannot be parsed.
func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]*Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	out := make([]*Calculation, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		c, err := readCalculation(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			continue
		}
		if opts.matches(c) {
			out = append(out, c)
		}
	}
	sortNewest(out)
	return page(out, opts), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.calcPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove calculation file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
