// Package session owns the per-user explorer sessions. Each session holds
// its own FilterEngine and RaciEngine pair over one project snapshot, so
// concurrent users never share drill-down or override state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/logger"
	"github.com/rolescope/backend/pkg/store"
)

// Session is one open explorer over a project snapshot. The engines do no
// locking of their own, so every access goes through the session mutex;
// HTTP handlers may race on the same session id.
type Session struct {
	ID        string
	ProjectID int64

	mu       sync.Mutex
	snapshot common.Snapshot
	filter   *graph.FilterEngine
	raci     *graph.RaciEngine
	lastUsed time.Time
}

// Manager tracks open sessions and expires idle ones.
type Manager struct {
	storage store.SnapshotStorage
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager backed by the given storage. ttl
// bounds how long an untouched session survives.
func NewManager(storage store.SnapshotStorage, ttl time.Duration) *Manager {
	return &Manager{
		storage:  storage,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Storage exposes the backing store for handlers that persist overrides.
func (m *Manager) Storage() store.SnapshotStorage {
	return m.storage
}

// Open loads the project's latest snapshot and persisted RACI overrides
// and starts a fresh session over them. store.ErrNotFound passes through
// when the project has never been scanned.
func (m *Manager) Open(ctx context.Context, projectID int64) (*Session, error) {
	snap, err := m.storage.LoadLatestSnapshot(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for project %d: %w", projectID, err)
	}
	snap.Graph = graph.Sanitize(snap.Graph)

	overrides, err := m.storage.LoadOverrides(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides for project %d: %w", projectID, err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	raci := graph.NewRaciEngine(snap)
	raci.LoadOverrides(overrides)

	s := &Session{
		ID:        id,
		ProjectID: projectID,
		snapshot:  snap,
		filter:    graph.NewFilterEngine(snap.Graph),
		raci:      raci,
		lastUsed:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.Info("[Session] Opened", "session_id", id, "project_id", projectID,
		"nodes", len(snap.Graph.Nodes), "edges", len(snap.Graph.Edges))
	return s, nil
}

// Get returns the session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.mu.Lock()
		s.lastUsed = time.Now()
		s.mu.Unlock()
	}
	return s, ok
}

// Close drops a session. Unknown ids are ignored.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RebindProject reloads the project's latest snapshot into every open
// session for it, after a re-scan. Drill-down stacks replay against the
// new graph; RACI overlays survive untouched.
func (m *Manager) RebindProject(ctx context.Context, projectID int64) error {
	snap, err := m.storage.LoadLatestSnapshot(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to reload snapshot for project %d: %w", projectID, err)
	}
	snap.Graph = graph.Sanitize(snap.Graph)

	m.mu.Lock()
	affected := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.ProjectID == projectID {
			affected = append(affected, s)
		}
	}
	m.mu.Unlock()

	for _, s := range affected {
		s.rebind(snap)
	}
	if len(affected) > 0 {
		logger.Info("[Session] Rebound sessions to new snapshot", "project_id", projectID, "sessions", len(affected))
	}
	return nil
}

// ExpireIdle removes sessions idle longer than the manager's ttl and
// returns how many were dropped.
func (m *Manager) ExpireIdle() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			expired++
		}
	}
	return expired
}

// StartJanitor expires idle sessions on the given interval until ctx is
// canceled.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.ExpireIdle(); n > 0 {
					logger.Debug("[Session] Expired idle sessions", "count", n)
				}
			}
		}
	}()
}

func (s *Session) rebind(snap common.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.filter.Rebind(snap.Graph)
	s.raci.Recompute(snap)
}

// Graph returns the session's sanitized snapshot graph.
func (s *Session) Graph() common.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Graph
}

// ScanID returns the snapshot's scan identifier.
func (s *Session) ScanID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.ScanID
}

// PrunedGraph returns the connectivity-pruned snapshot graph.
func (s *Session) PrunedGraph(minDegree int) common.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.Prune(s.snapshot.Graph, minDegree)
}

// Hierarchy builds the document-grouped tree for the snapshot.
func (s *Session) Hierarchy() *graph.HierarchyTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.BuildHierarchy(s.snapshot.Graph)
}

// FilterState is a serializable view of the drill-down engine.
type FilterState struct {
	Stack        []graph.FilterEntry `json:"stack"`
	ForwardStack []graph.FilterEntry `json:"forward_stack"`
	VisibleIDs   []string            `json:"visible_node_ids,omitempty"`
	Filtered     bool                `json:"filtered"`
}

func (s *Session) filterStateLocked() FilterState {
	state := FilterState{
		Stack:        s.filter.Stack(),
		ForwardStack: s.filter.ForwardStack(),
	}
	if visible := s.filter.VisibleNodeIDs(); visible != nil {
		state.Filtered = true
		state.VisibleIDs = visible.IDs()
	}
	return state
}

// FilterState snapshots the current drill-down state.
func (s *Session) FilterState() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterStateLocked()
}

// ApplyFilter pushes a drill-down step and returns the new state.
func (s *Session) ApplyFilter(nodeID string, nodeType common.NodeType, label string) FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.ApplyFilter(nodeID, nodeType, label)
	return s.filterStateLocked()
}

// GoBack undoes the newest drill-down step.
func (s *Session) GoBack() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.GoBack()
	return s.filterStateLocked()
}

// GoForward redoes the most recently undone step.
func (s *Session) GoForward() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.GoForward()
	return s.filterStateLocked()
}

// NavigateTo truncates the drill-down stack to index+1 steps.
func (s *Session) NavigateTo(index int) FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.NavigateTo(index)
	return s.filterStateLocked()
}

// ClearFilter returns the session to the unfiltered view.
func (s *Session) ClearFilter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.ClearAll()
	return s.filterStateLocked()
}

// VisibleSubgraph returns the snapshot narrowed to the visible set.
func (s *Session) VisibleSubgraph() common.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.VisibleSubgraph(s.snapshot.Graph)
}

// RaciMatrix returns the effective RACI entries, overrides applied.
func (s *Session) RaciMatrix() []graph.RaciEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raci.Matrix()
}

// RaciEffective returns one role's effective entry.
func (s *Session) RaciEffective(roleID string) (graph.RaciEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raci.Effective(roleID)
}

// SetOverride pins one RACI cell and returns the changed cells for
// persistence.
func (s *Session) SetOverride(roleID string, t graph.RaciType, value int) graph.RaciOverrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raci.SetOverride(roleID, t, value)
	return graph.RaciOverrides{roleID: {t: value}}
}

// Reclassify moves a value between RACI columns and returns the changed
// cells for persistence.
func (s *Session) Reclassify(roleID string, from, to graph.RaciType, value int) graph.RaciOverrides {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raci.Reclassify(roleID, from, to, value)
	return graph.RaciOverrides{roleID: {from: 0, to: value}}
}

// RevertRole drops a role's overrides.
func (s *Session) RevertRole(roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raci.RevertRole(roleID)
}

// RevertAll drops every override in the session.
func (s *Session) RevertAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raci.RevertAll()
}
