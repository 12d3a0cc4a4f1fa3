package store

import (
	"context"
	"errors"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
)

// ErrNotFound is returned when a project has no stored snapshot yet.
var ErrNotFound = errors.New("store: not found")

// SnapshotStorage persists scan snapshots and the user's RACI overrides.
//
// Snapshots are written once per completed scan by the ingest worker and
// read whenever an explorer session opens. Overrides outlive snapshots:
// they are keyed by project and role so a re-scan does not discard the
// user's manual RACI edits.
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, snap common.Snapshot) error
	LoadLatestSnapshot(ctx context.Context, projectID int64) (common.Snapshot, error)

	SaveOverrides(ctx context.Context, projectID int64, overrides graph.RaciOverrides) error
	LoadOverrides(ctx context.Context, projectID int64) (graph.RaciOverrides, error)
	// DeleteOverrides removes the overrides of the given roles, or every
	// override of the project when no roles are given.
	DeleteOverrides(ctx context.Context, projectID int64, roleIDs ...string) error
}
