package repository

import (
	"context"
	"time"

	"github.com/segyhp/lending-registry/internal/domain"
)

// SnapshotRepository persists the full registry state under its name
type SnapshotRepository interface {
	// Save replaces the stored snapshot of snap.Name
	Save(ctx context.Context, snap *domain.RegistrySnapshot) error

	// Load returns the stored snapshot or errors.ErrSnapshotNotFound
	Load(ctx context.Context, name string) (*domain.RegistrySnapshot, error)
}

// SnapshotCache holds encoded snapshots in front of a SnapshotRepository
type SnapshotCache interface {
	// Get returns the cached payload; found is false on a miss
	Get(ctx context.Context, name string) (payload []byte, found bool, err error)

	Set(ctx context.Context, name string, payload []byte, ttl time.Duration) error

	Del(ctx context.Context, name string) error
}
