package graph

import (
	"reflect"
	"sort"
	"testing"

	"github.com/rolescope/backend/pkg/common"
)

func role(id string, mentions int) common.Node {
	return common.Node{ID: id, Type: common.NodeTypeRole, Label: id, MentionCount: mentions}
}

func document(id string) common.Node {
	return common.Node{ID: id, Type: common.NodeTypeDocument, Label: id}
}

func edge(source, target string, weight int, linkType common.LinkType) common.Edge {
	return common.Edge{Source: source, Target: target, Weight: weight, LinkType: linkType}
}

func sortedIDs(s common.NodeSet) []string {
	ids := s.IDs()
	sort.Strings(ids)
	return ids
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		graph     common.Graph
		wantEdges int
	}{
		{
			name:      "empty graph",
			graph:     common.Graph{},
			wantEdges: 0,
		},
		{
			name: "all edges valid",
			graph: common.Graph{
				Nodes: []common.Node{role("a", 1), role("b", 1)},
				Edges: []common.Edge{edge("a", "b", 1, common.LinkRoleRole)},
			},
			wantEdges: 1,
		},
		{
			name: "dangling source dropped",
			graph: common.Graph{
				Nodes: []common.Node{role("a", 1), role("b", 1)},
				Edges: []common.Edge{
					edge("ghost", "b", 1, common.LinkRoleRole),
					edge("a", "b", 1, common.LinkRoleRole),
				},
			},
			wantEdges: 1,
		},
		{
			name: "dangling target dropped",
			graph: common.Graph{
				Nodes: []common.Node{role("a", 1)},
				Edges: []common.Edge{edge("a", "ghost", 1, common.LinkRoleRole)},
			},
			wantEdges: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.graph)
			if len(got.Edges) != tt.wantEdges {
				t.Errorf("Sanitize() kept %d edges, want %d", len(got.Edges), tt.wantEdges)
			}
			if len(got.Nodes) != len(tt.graph.Nodes) {
				t.Errorf("Sanitize() changed node count: %d, want %d", len(got.Nodes), len(tt.graph.Nodes))
			}

			known := make(common.NodeSet)
			for _, n := range got.Nodes {
				known.Add(n.ID)
			}
			for _, e := range got.Edges {
				if !known.Has(e.Source) || !known.Has(e.Target) {
					t.Errorf("edge %s-%s survived with dangling endpoint", e.Source, e.Target)
				}
			}
		})
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1)},
		Edges: []common.Edge{edge("a", "ghost", 1, common.LinkRoleRole)},
	}
	_ = Sanitize(g)
	if len(g.Edges) != 1 {
		t.Errorf("input graph mutated: %d edges left, want 1", len(g.Edges))
	}
}

func TestNeighborhood(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1), role("b", 1), role("c", 1), role("d", 1)},
		Edges: []common.Edge{
			edge("a", "b", 1, common.LinkRoleRole),
			edge("b", "c", 1, common.LinkRoleRole),
		},
	}
	adj := BuildAdjacency(g)

	tests := []struct {
		name   string
		id     string
		want   []string
		wantOK bool
	}{
		{"node with neighbors", "b", []string{"a", "b", "c"}, true},
		{"leaf node", "a", []string{"a", "b"}, true},
		{"isolated node includes itself", "d", []string{"d"}, true},
		{"missing node", "ghost", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := adj.Neighborhood(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("Neighborhood(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if !reflect.DeepEqual(sortedIDs(got), tt.want) {
				t.Errorf("Neighborhood(%q) = %v, want %v", tt.id, sortedIDs(got), tt.want)
			}
		})
	}
}

func TestBuildAdjacencyIgnoresSelfLoops(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1)},
		Edges: []common.Edge{edge("a", "a", 3, common.LinkRoleRole)},
	}
	adj := BuildAdjacency(g)
	if adj.Degree("a") != 0 {
		t.Errorf("self loop counted toward degree: got %d, want 0", adj.Degree("a"))
	}
}
