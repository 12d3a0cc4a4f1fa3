package graph

import (
	"testing"

	"github.com/rolescope/backend/pkg/common"
)

func TestBuildHierarchyGroupsByPrimaryDocument(t *testing.T) {
	// Roles a, b and document d1; a-d1 (5), b-d1 (3), a-b (2).
	g := common.Graph{
		Nodes: []common.Node{role("a", 5), role("b", 3), document("d1")},
		Edges: []common.Edge{
			edge("a", "d1", 5, common.LinkRoleDocument),
			edge("b", "d1", 3, common.LinkRoleDocument),
			edge("a", "b", 2, common.LinkRoleRole),
		},
	}

	tree := BuildHierarchy(g)

	if len(tree.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(tree.Groups))
	}
	grp := tree.Groups[0]
	if grp.DocumentID != "d1" || grp.Orphan {
		t.Errorf("group = %q (orphan=%v), want d1", grp.DocumentID, grp.Orphan)
	}
	if len(grp.Leaves) != 3 {
		t.Errorf("group has %d leaves, want 3 (a, b and d1 itself)", len(grp.Leaves))
	}
	if leaf, ok := tree.LeafIndex["d1"]; !ok || leaf.GroupID != "d1" {
		t.Errorf("document d1 not indexed as a leaf of its own group")
	}
}

func TestBuildHierarchyPrimaryIsMaxWeight(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1), document("d1"), document("d2")},
		Edges: []common.Edge{
			edge("a", "d1", 2, common.LinkRoleDocument),
			edge("a", "d2", 7, common.LinkRoleDocument),
		},
	}

	tree := BuildHierarchy(g)
	leaf, ok := tree.LeafIndex["a"]
	if !ok {
		t.Fatal("role a missing from leaf index")
	}
	if leaf.GroupID != "d2" {
		t.Errorf("primary document = %q, want d2", leaf.GroupID)
	}
}

func TestBuildHierarchyTieBreaksBySmallerDocumentID(t *testing.T) {
	// Same weight toward both documents, in both edge orders.
	for _, reversed := range []bool{false, true} {
		edges := []common.Edge{
			edge("a", "d2", 4, common.LinkRoleDocument),
			edge("a", "d1", 4, common.LinkRoleDocument),
		}
		if reversed {
			edges[0], edges[1] = edges[1], edges[0]
		}
		g := common.Graph{
			Nodes: []common.Node{role("a", 1), document("d1"), document("d2")},
			Edges: edges,
		}

		tree := BuildHierarchy(g)
		if leaf := tree.LeafIndex["a"]; leaf.GroupID != "d1" {
			t.Errorf("reversed=%v: tie broke to %q, want d1", reversed, leaf.GroupID)
		}
	}
}

func TestBuildHierarchyBridgeRoles(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1), role("b", 1), document("d1"), document("d2")},
		Edges: []common.Edge{
			edge("a", "d1", 5, common.LinkRoleDocument),
			edge("a", "d2", 3, common.LinkRoleDocument),
			edge("b", "d2", 2, common.LinkRoleDocument),
		},
	}

	tree := BuildHierarchy(g)

	var d1 *Group
	for _, grp := range tree.Groups {
		if grp.DocumentID == "d1" {
			d1 = grp
		}
	}
	if d1 == nil {
		t.Fatal("no group for d1")
	}
	if len(d1.BridgeRoleIDs) != 1 || d1.BridgeRoleIDs[0] != "a" {
		t.Errorf("d1 bridge roles = %v, want [a]", d1.BridgeRoleIDs)
	}
}

func TestBuildHierarchyOrphans(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1), role("lonely", 1), document("d1"), document("unclaimed")},
		Edges: []common.Edge{
			edge("a", "d1", 5, common.LinkRoleDocument),
			edge("lonely", "a", 1, common.LinkRoleRole),
		},
	}

	tree := BuildHierarchy(g)

	if len(tree.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(tree.Groups))
	}
	last := tree.Groups[len(tree.Groups)-1]
	if !last.Orphan {
		t.Fatal("orphan group not ordered last")
	}
	if leaf := tree.LeafIndex["lonely"]; leaf == nil || leaf.GroupID != OrphanGroupID {
		t.Errorf("role with no document association not in orphan group")
	}
	if leaf := tree.LeafIndex["unclaimed"]; leaf == nil || leaf.GroupID != OrphanGroupID {
		t.Errorf("document claimed by no role not in orphan group")
	}
}

func TestBuildHierarchyCompleteness(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{
			role("a", 1), role("b", 1), role("c", 1),
			document("d1"), document("d2"), document("d3"),
		},
		Edges: []common.Edge{
			edge("a", "d1", 5, common.LinkRoleDocument),
			edge("b", "d1", 1, common.LinkRoleDocument),
			edge("b", "d2", 4, common.LinkRoleDocument),
			edge("a", "ghost", 9, common.LinkRoleDocument),
		},
	}

	tree := BuildHierarchy(g)

	seen := make(map[string]int)
	for _, grp := range tree.Groups {
		for _, leaf := range grp.Leaves {
			seen[leaf.Node.ID]++
		}
	}
	for _, n := range g.Nodes {
		if seen[n.ID] != 1 {
			t.Errorf("node %s appears in %d leaves, want 1", n.ID, seen[n.ID])
		}
	}
	if len(seen) != len(g.Nodes) {
		t.Errorf("%d nodes placed, want %d", len(seen), len(g.Nodes))
	}
	if len(tree.LeafIndex) != len(g.Nodes) {
		t.Errorf("leaf index has %d entries, want %d", len(tree.LeafIndex), len(g.Nodes))
	}
}

func TestBuildHierarchyColorsAreStable(t *testing.T) {
	g := common.Graph{
		Nodes: []common.Node{role("a", 1), role("b", 1), document("d1"), document("d2")},
		Edges: []common.Edge{
			edge("a", "d1", 5, common.LinkRoleDocument),
			edge("b", "d2", 3, common.LinkRoleDocument),
		},
	}

	first := BuildHierarchy(g)
	second := BuildHierarchy(g)
	for i := range first.Groups {
		if first.Groups[i].DocumentID != second.Groups[i].DocumentID {
			t.Fatalf("group order unstable at index %d", i)
		}
		if first.Groups[i].Color != second.Groups[i].Color {
			t.Errorf("group %s color changed between builds", first.Groups[i].DocumentID)
		}
		if first.Groups[i].Color == "" {
			t.Errorf("group %s has no color", first.Groups[i].DocumentID)
		}
	}
}

func TestBuildHierarchyEmptyGraph(t *testing.T) {
	tree := BuildHierarchy(common.Graph{})
	if len(tree.Groups) != 0 {
		t.Errorf("empty graph produced %d groups", len(tree.Groups))
	}
	if len(tree.LeafIndex) != 0 {
		t.Errorf("empty graph produced %d index entries", len(tree.LeafIndex))
	}
}
