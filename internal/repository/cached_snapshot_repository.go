package repository

import (
	"context"
	"log"
	"time"

	"github.com/segyhp/lending-registry/internal/domain"
)

type cachedSnapshotRepository struct {
	store SnapshotRepository
	cache SnapshotCache
	ttl   time.Duration
}

// NewCachedSnapshotRepository reads through cache and invalidates it on save.
// Cache failures are logged and never fail the operation.
func NewCachedSnapshotRepository(store SnapshotRepository, cache SnapshotCache, ttl time.Duration) SnapshotRepository {
	return &cachedSnapshotRepository{store: store, cache: cache, ttl: ttl}
}

func (r *cachedSnapshotRepository) Save(ctx context.Context, snap *domain.RegistrySnapshot) error {
	if err := r.store.Save(ctx, snap); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, snap.Name); err != nil {
		log.Printf("Failed to invalidate cached snapshot %s: %v", snap.Name, err)
	}
	return nil
}

func (r *cachedSnapshotRepository) Load(ctx context.Context, name string) (*domain.RegistrySnapshot, error) {
	payload, found, err := r.cache.Get(ctx, name)
	if err != nil {
		log.Printf("Failed to read cached snapshot %s: %v", name, err)
	}
	if found {
		if snap, err := DecodeSnapshot(payload); err == nil {
			return snap, nil
		}
		log.Printf("Discarding undecodable cached snapshot %s", name)
	}

	snap, err := r.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	if payload, err := EncodeSnapshot(snap); err == nil {
		if err := r.cache.Set(ctx, name, payload, r.ttl); err != nil {
			log.Printf("Failed to cache snapshot %s: %v", name, err)
		}
	}
	return snap, nil
}
