package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// FileMirror stores the snapshot as a JSON file.
type FileMirror struct {
	path string
}

// NewFileMirror creates a mirror backed by the file at path
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Path returns the file location
func (m *FileMirror) Path() string { return m.path }

// Load reads the snapshot. A missing or empty file is [shared.ErrMirrorNotFound].
func (m *FileMirror) Load(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Snapshot{}, shared.ErrMirrorNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read mirror: %w", err)
	}
	return decode(data)
}

// Save writes the snapshot atomically.
func (m *FileMirror) Save(ctx context.Context, s models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp := m.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// Clear removes the file. Clearing a missing mirror is not an error.
func (m *FileMirror) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove mirror: %w", err)
	}
	return nil
}
