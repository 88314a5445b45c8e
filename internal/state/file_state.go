package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// historyFileMode applies to newly created history files. Existing files keep
// their mode across saves.
const historyFileMode fs.FileMode = 0o644

// FileStore keeps history as a small JSON document on local disk.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the history file. A missing file is not an error: it is created
// with empty history, which is returned.
func (s *FileStore) Load(ctx context.Context) (domain.AddressPair, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("path", s.path).Msg("History file does not exist, creating new history file")
		if err := s.Save(ctx, domain.AddressPair{}); err != nil {
			return domain.AddressPair{}, fmt.Errorf("failed to create initial history file: %w", err)
		}
		return domain.AddressPair{}, nil
	}
	if err != nil {
		return domain.AddressPair{}, fmt.Errorf("%w: failed to open history file at %q: %w", ErrHistoryIO, s.path, err)
	}

	h, err := unmarshalHistory(raw)
	if err != nil {
		return domain.AddressPair{}, fmt.Errorf("%w: history file at %q: %w", ErrHistoryIO, s.path, err)
	}
	return h, nil
}

// Save replaces the history file. The content is written to a temporary file
// in the same directory and renamed over the old one.
func (s *FileStore) Save(ctx context.Context, h domain.AddressPair) error {
	data, err := marshalHistory(h)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryIO, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to open history file at %q for writing: %w", ErrHistoryIO, s.path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	mode := historyFileMode
	if fi, err := os.Stat(s.path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to set history file mode: %w", ErrHistoryIO, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write history: %w", ErrHistoryIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write history: %w", ErrHistoryIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write history: %w", ErrHistoryIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace history file at %q: %w", ErrHistoryIO, s.path, err)
	}

	s.logger.Debug().Str("path", s.path).Str("history", h.Render()).Msg("History saved")
	return nil
}

func (s *FileStore) Close() error { return nil }
