package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
)

type fileSnapshotRepository struct {
	path string
}

// NewFileSnapshotRepository keeps a single JSON snapshot at path
func NewFileSnapshotRepository(path string) SnapshotRepository {
	return &fileSnapshotRepository{path: path}
}

// Save writes to a temporary file and renames it over the previous snapshot.
func (r *fileSnapshotRepository) Save(ctx context.Context, snap *domain.RegistrySnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (r *fileSnapshotRepository) Load(ctx context.Context, name string) (*domain.RegistrySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, customError.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	snap, err := DecodeSnapshot(payload)
	if err != nil {
		return nil, err
	}
	if snap.Name != name {
		return nil, customError.ErrSnapshotNotFound
	}
	return snap, nil
}
