package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.LoadLatestSnapshot(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap := common.Snapshot{
		ProjectID: 1,
		ScanID:    "scan-1",
		Graph: common.Graph{
			Nodes: []common.Node{{ID: "a", Type: common.NodeTypeRole, Label: "a"}},
		},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := s.LoadLatestSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("LoadLatestSnapshot() error = %v", err)
	}
	if got.ScanID != "scan-1" || len(got.Graph.Nodes) != 1 {
		t.Errorf("loaded snapshot = %+v", got)
	}
}

func TestOverridesMergeAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := graph.RaciOverrides{"a": {graph.RaciResponsible: 5}}
	second := graph.RaciOverrides{
		"a": {graph.RaciConsulted: 2},
		"b": {graph.RaciInformed: 1},
	}
	if err := s.SaveOverrides(ctx, 1, first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveOverrides(ctx, 1, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadOverrides(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got["a"][graph.RaciResponsible] != 5 || got["a"][graph.RaciConsulted] != 2 {
		t.Errorf("saves did not merge: %v", got)
	}

	if err := s.DeleteOverrides(ctx, 1, "a"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadOverrides(ctx, 1)
	if _, ok := got["a"]; ok {
		t.Error("role a overrides not deleted")
	}
	if _, ok := got["b"]; !ok {
		t.Error("role b overrides deleted alongside a")
	}

	if err := s.DeleteOverrides(ctx, 1); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadOverrides(ctx, 1)
	if len(got) != 0 {
		t.Errorf("project overrides not cleared: %v", got)
	}
}
