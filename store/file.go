package store

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore is the deterministic reference implementation: the whole table
// lives in a single gob-serialized file. Append re-persists the full
// concatenation and is not atomic; a crash mid-write can leave the table in
// its pre-write state. A production backing store must do better.
type FileStore struct {
	logger    *slog.Logger
	path      string
	mode      Mode
	connected bool
}

func NewFileStore(path string, mode Mode) *FileStore {
	return &FileStore{
		logger: slog.Default().With(slog.String("module", "store")),
		path:   path,
		mode:   mode,
	}
}

func (s *FileStore) Connect(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	s.connected = true
	return nil
}

func (s *FileStore) Close() error {
	s.connected = false
	return nil
}

func (s *FileStore) Read(ctx context.Context) ([]Prediction, error) {
	if !s.connected {
		return nil, fmt.Errorf("store %s is not connected", s.path)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Prediction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open prediction table %s: %w", s.path, err)
	}
	defer f.Close()

	var table []Prediction
	if err := gob.NewDecoder(f).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode prediction table %s: %w", s.path, err)
	}

	return table, nil
}

func (s *FileStore) Write(ctx context.Context, batch []Prediction) error {
	if !s.connected {
		return fmt.Errorf("store %s is not connected", s.path)
	}

	table := batch
	if s.mode == ModeAppend {
		existing, err := s.Read(ctx)
		if err != nil {
			return err
		}
		table = append(existing, batch...)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create prediction table %s: %w", s.path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(table); err != nil {
		return fmt.Errorf("encode prediction table %s: %w", s.path, err)
	}

	s.logger.Debug("wrote prediction table",
		slog.String("path", s.path),
		slog.String("mode", string(s.mode)),
		slog.Int("batch", len(batch)),
		slog.Int("total", len(table)))

	return nil
}
