package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
)

const (
	snapshotTable = "registry_snapshots"
	colRegistry   = "registry"
	colID         = "id"
	colTakenAt    = "taken_at"
	colPayload    = "payload"
)

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS registry_snapshots (
	registry TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	taken_at BIGINT NOT NULL,
	payload  TEXT NOT NULL
)`

type snapshotRow struct {
	Registry string `db:"registry"`
	ID       string `db:"id"`
	TakenAt  int64  `db:"taken_at"`
	Payload  string `db:"payload"`
}

type sqlSnapshotRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewSQLSnapshotRepository stores one row per registry; dialect is "postgres" or "sqlite3"
func NewSQLSnapshotRepository(db *sqlx.DB, dialect string) SnapshotRepository {
	return &sqlSnapshotRepository{db: db, dialect: goqu.Dialect(dialect)}
}

// EnsureSchema creates the snapshot table when missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createSnapshotTable); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *sqlSnapshotRepository) Save(ctx context.Context, snap *domain.RegistrySnapshot) error {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	deleteQuery, deleteArgs, err := r.dialect.Delete(snapshotTable).
		Prepared(true).
		Where(goqu.C(colRegistry).Eq(snap.Name)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	insertQuery, insertArgs, err := r.dialect.Insert(snapshotTable).
		Prepared(true).
		Rows(goqu.Record{
			colRegistry: snap.Name,
			colID:       snap.ID.String(),
			colTakenAt:  snap.TakenAt.UnixMilli(),
			colPayload:  string(payload),
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return customError.WrapDatabaseError(err)
	}
	if _, err = tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err = tx.Commit(); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *sqlSnapshotRepository) Load(ctx context.Context, name string) (*domain.RegistrySnapshot, error) {
	query, args, err := r.dialect.From(snapshotTable).
		Prepared(true).
		Select(colRegistry, colID, colTakenAt, colPayload).
		Where(goqu.C(colRegistry).Eq(name)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.ErrSnapshotNotFound
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return DecodeSnapshot([]byte(row.Payload))
}
