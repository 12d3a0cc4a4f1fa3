// Package memory provides an in-process SnapshotStorage used in tests and
// in dev mode when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/store"
)

// Storage keeps the latest snapshot and overrides per project in memory.
type Storage struct {
	mu        sync.RWMutex
	snapshots map[int64]common.Snapshot
	overrides map[int64]graph.RaciOverrides
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		snapshots: make(map[int64]common.Snapshot),
		overrides: make(map[int64]graph.RaciOverrides),
	}
}

// SaveSnapshot replaces the project's latest snapshot.
func (s *Storage) SaveSnapshot(_ context.Context, snap common.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ProjectID] = snap
	return nil
}

// LoadLatestSnapshot returns the project's latest snapshot or ErrNotFound.
func (s *Storage) LoadLatestSnapshot(_ context.Context, projectID int64) (common.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[projectID]
	if !ok {
		return common.Snapshot{}, store.ErrNotFound
	}
	return snap, nil
}

// SaveOverrides merges the given overrides into the project's stored set.
func (s *Storage) SaveOverrides(_ context.Context, projectID int64, overrides graph.RaciOverrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.overrides[projectID]
	if !ok {
		stored = make(graph.RaciOverrides)
		s.overrides[projectID] = stored
	}
	for roleID, edits := range overrides {
		if stored[roleID] == nil {
			stored[roleID] = make(map[graph.RaciType]int, len(edits))
		}
		for t, v := range edits {
			stored[roleID][t] = v
		}
	}
	return nil
}

// LoadOverrides returns a copy of the project's stored overrides.
func (s *Storage) LoadOverrides(_ context.Context, projectID int64) (graph.RaciOverrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(graph.RaciOverrides)
	for roleID, edits := range s.overrides[projectID] {
		cp := make(map[graph.RaciType]int, len(edits))
		for t, v := range edits {
			cp[t] = v
		}
		out[roleID] = cp
	}
	return out, nil
}

// DeleteOverrides drops the named roles' overrides, or all of them when no
// roles are named.
func (s *Storage) DeleteOverrides(_ context.Context, projectID int64, roleIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(roleIDs) == 0 {
		delete(s.overrides, projectID)
		return nil
	}
	stored := s.overrides[projectID]
	for _, roleID := range roleIDs {
		delete(stored, roleID)
	}
	return nil
}
