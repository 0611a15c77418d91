package repository

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/lending-registry/internal/config"
)

// Store bundles the snapshot repository with the connections behind it.
// DB is nil for the file store and Redis is nil when caching is disabled.
type Store struct {
	Snapshots SnapshotRepository
	DB        *sqlx.DB
	Redis     *redis.Client
}

// OpenStore picks the snapshot backend from cfg: a JSON file when a snapshot
// file is configured, the SQL database otherwise, optionally behind redis.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	store := &Store{}

	if cfg.Lending.SnapshotFile != "" {
		log.Printf("Using snapshot file %s", cfg.Lending.SnapshotFile)
		store.Snapshots = NewFileSnapshotRepository(cfg.Lending.SnapshotFile)
	} else {
		db, err := OpenDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Printf("Using %s database for snapshots", cfg.Database.Driver)
		store.DB = db
		store.Snapshots = NewSQLSnapshotRepository(db, DialectFor(cfg.Database.Driver))
	}

	if cfg.Redis.Enabled {
		store.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store.Snapshots = NewCachedSnapshotRepository(store.Snapshots, NewRedisSnapshotCache(store.Redis), cfg.Redis.SnapshotTTL)
	}

	return store, nil
}

func (s *Store) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
