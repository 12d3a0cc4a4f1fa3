package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/store"
	"github.com/rolescope/backend/pkg/store/memory"
)

func seededStorage(t *testing.T) *memory.Storage {
	t.Helper()
	s := memory.New()
	err := s.SaveSnapshot(context.Background(), common.Snapshot{
		ProjectID: 1,
		ScanID:    "scan-1",
		Graph: common.Graph{
			Nodes: []common.Node{
				{ID: "a", Type: common.NodeTypeRole, Label: "a", MentionCount: 10},
				{ID: "b", Type: common.NodeTypeRole, Label: "b", MentionCount: 5},
				{ID: "d1", Type: common.NodeTypeDocument, Label: "d1"},
			},
			Edges: []common.Edge{
				{Source: "a", Target: "d1", Weight: 5, LinkType: common.LinkRoleDocument},
				{Source: "b", Target: "d1", Weight: 3, LinkType: common.LinkRoleDocument},
				{Source: "a", Target: "b", Weight: 2, LinkType: common.LinkRoleRole},
			},
		},
		ActionCounts: map[string]common.ActionCounts{
			"a": {"approve": 3, "review": 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenGetClose(t *testing.T) {
	ctx := context.Background()
	m := NewManager(seededStorage(t), time.Hour)

	s, err := m.Open(ctx, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.ID == "" {
		t.Error("session has no id")
	}

	got, ok := m.Get(s.ID)
	if !ok || got.ID != s.ID {
		t.Fatalf("Get(%q) = %v, %v", s.ID, got, ok)
	}

	m.Close(s.ID)
	if _, ok := m.Get(s.ID); ok {
		t.Error("session still reachable after Close")
	}
}

func TestOpenUnknownProject(t *testing.T) {
	m := NewManager(memory.New(), time.Hour)
	_, err := m.Open(context.Background(), 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenLoadsPersistedOverrides(t *testing.T) {
	ctx := context.Background()
	storage := seededStorage(t)
	if err := storage.SaveOverrides(ctx, 1, graph.RaciOverrides{
		"a": {graph.RaciResponsible: 9},
	}); err != nil {
		t.Fatal(err)
	}

	m := NewManager(storage, time.Hour)
	s, err := m.Open(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := s.RaciEffective("a")
	if !ok {
		t.Fatal("role a missing from matrix")
	}
	if entry.Responsible != 9 || !entry.Overridden {
		t.Errorf("persisted override not applied: %+v", entry)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(seededStorage(t), time.Hour)

	first, _ := m.Open(ctx, 1)
	second, _ := m.Open(ctx, 1)

	first.ApplyFilter("a", common.NodeTypeRole, "a")

	if second.FilterState().Filtered {
		t.Error("drill-down leaked between sessions")
	}

	first.SetOverride("a", graph.RaciInformed, 7)
	entry, _ := second.RaciEffective("a")
	if entry.Informed == 7 {
		t.Error("override leaked between sessions")
	}
}

func TestRebindProjectKeepsOverridesAndReplaysFilter(t *testing.T) {
	ctx := context.Background()
	storage := seededStorage(t)
	m := NewManager(storage, time.Hour)

	s, _ := m.Open(ctx, 1)
	s.ApplyFilter("a", common.NodeTypeRole, "a")
	s.ApplyFilter("b", common.NodeTypeRole, "b")
	s.SetOverride("a", graph.RaciResponsible, 9)

	// New scan drops role b entirely.
	if err := storage.SaveSnapshot(ctx, common.Snapshot{
		ProjectID: 1,
		ScanID:    "scan-2",
		Graph: common.Graph{
			Nodes: []common.Node{
				{ID: "a", Type: common.NodeTypeRole, Label: "a", MentionCount: 10},
				{ID: "d1", Type: common.NodeTypeDocument, Label: "d1"},
			},
			Edges: []common.Edge{
				{Source: "a", Target: "d1", Weight: 5, LinkType: common.LinkRoleDocument},
			},
		},
	}); err != nil {
		t.Fatal(err)
	}

	if err := m.RebindProject(ctx, 1); err != nil {
		t.Fatalf("RebindProject() error = %v", err)
	}

	if s.ScanID() != "scan-2" {
		t.Errorf("session still on %s", s.ScanID())
	}

	state := s.FilterState()
	if len(state.Stack) != 1 || state.Stack[0].NodeID != "a" {
		t.Errorf("stack after rebind = %v, want just a", state.Stack)
	}

	entry, _ := s.RaciEffective("a")
	if entry.Responsible != 9 {
		t.Errorf("override lost on rebind: %+v", entry)
	}
}

func TestExpireIdle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(seededStorage(t), time.Nanosecond)

	s, _ := m.Open(ctx, 1)
	time.Sleep(time.Millisecond)

	if n := m.ExpireIdle(); n != 1 {
		t.Fatalf("ExpireIdle() = %d, want 1", n)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Error("expired session still reachable")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}
