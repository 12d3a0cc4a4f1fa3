// Package pgx implements SnapshotStorage on PostgreSQL.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolescope/backend/pkg/leaselock"
)

// SnapshotDBStorage implements the store.SnapshotStorage interface over a
// pgx connection pool. Reads fan out over the pool; writes run in a single
// transaction per snapshot, serialized per project by a lease lock.
type SnapshotDBStorage struct {
	pool  *pgxpool.Pool
	locks *leaselock.Locker
}

// NewSnapshotDBStorage wraps an existing connection pool.
func NewSnapshotDBStorage(_ context.Context, pool *pgxpool.Pool) *SnapshotDBStorage {
	return &SnapshotDBStorage{
		pool:  pool,
		locks: leaselock.New(pool),
	}
}
