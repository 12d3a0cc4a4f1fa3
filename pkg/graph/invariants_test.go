package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/rolescope/backend/pkg/common"

	"pgregory.net/rapid"
)

// randomGraph draws a small graph with a mix of roles and documents and
// edges that may dangle, may self-loop, and may duplicate pairs. The
// algorithms must cope with all of it after Sanitize.
func randomGraph(t *rapid.T) common.Graph {
	nodeCount := rapid.IntRange(0, 12).Draw(t, "nodeCount")

	nodes := make([]common.Node, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		n := common.Node{
			ID:           fmt.Sprintf("n%d", i),
			Type:         common.NodeTypeRole,
			Label:        fmt.Sprintf("n%d", i),
			MentionCount: rapid.IntRange(0, 50).Draw(t, fmt.Sprintf("mentions%d", i)),
		}
		if rapid.Bool().Draw(t, fmt.Sprintf("isDoc%d", i)) {
			n.Type = common.NodeTypeDocument
		}
		nodes = append(nodes, n)
	}

	edgeCount := rapid.IntRange(0, 24).Draw(t, "edgeCount")
	edges := make([]common.Edge, 0, edgeCount)
	for i := 0; i < edgeCount; i++ {
		// One id past the node range so some edges dangle.
		src := rapid.IntRange(0, nodeCount).Draw(t, fmt.Sprintf("src%d", i))
		tgt := rapid.IntRange(0, nodeCount).Draw(t, fmt.Sprintf("tgt%d", i))
		linkType := common.LinkRoleRole
		if rapid.Bool().Draw(t, fmt.Sprintf("isDocLink%d", i)) {
			linkType = common.LinkRoleDocument
		}
		edges = append(edges, common.Edge{
			Source:   fmt.Sprintf("n%d", src),
			Target:   fmt.Sprintf("n%d", tgt),
			Weight:   rapid.IntRange(1, 9).Draw(t, fmt.Sprintf("w%d", i)),
			LinkType: linkType,
		})
	}

	return common.Graph{Nodes: nodes, Edges: edges}
}

func TestPrunePropertyIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		minDegree := rapid.IntRange(1, 4).Draw(t, "minDegree")

		once := Prune(g, minDegree)
		twice := Prune(once, minDegree)

		if !reflect.DeepEqual(nodeIDs(once), nodeIDs(twice)) {
			t.Fatalf("prune not idempotent: %v then %v", nodeIDs(once), nodeIDs(twice))
		}
	})
}

func TestPrunePropertyDegreeBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		minDegree := rapid.IntRange(1, 4).Draw(t, "minDegree")

		pruned := Prune(g, minDegree)
		adj := BuildAdjacency(pruned)
		for _, n := range pruned.Nodes {
			if adj.Degree(n.ID) < minDegree {
				t.Fatalf("node %s survived with degree %d < %d", n.ID, adj.Degree(n.ID), minDegree)
			}
			if n.ConnectionCount != adj.Degree(n.ID) {
				t.Fatalf("node %s ConnectionCount %d != degree %d", n.ID, n.ConnectionCount, adj.Degree(n.ID))
			}
		}
	})
}

func TestHierarchyPropertyCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)

		tree := BuildHierarchy(g)

		seen := make(map[string]int)
		for _, grp := range tree.Groups {
			for _, leaf := range grp.Leaves {
				seen[leaf.Node.ID]++
			}
		}
		for _, n := range g.Nodes {
			if seen[n.ID] != 1 {
				t.Fatalf("node %s placed %d times", n.ID, seen[n.ID])
			}
		}
	})
}

func TestFilterPropertyReplayInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		engine := NewFilterEngine(g)

		steps := rapid.IntRange(0, 6).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			// May reference a missing node; those must be soft no-ops.
			id := fmt.Sprintf("n%d", rapid.IntRange(0, len(g.Nodes)+1).Draw(t, fmt.Sprintf("step%d", i)))
			engine.ApplyFilter(id, common.NodeTypeRole, id)

			if rapid.Bool().Draw(t, fmt.Sprintf("undo%d", i)) {
				engine.GoBack()
			}
		}

		replayed := NewFilterEngine(g)
		for _, entry := range engine.Stack() {
			replayed.ApplyFilter(entry.NodeID, entry.NodeType, entry.Label)
		}

		got := sortedIDs(engine.VisibleNodeIDs())
		want := sortedIDs(replayed.VisibleNodeIDs())
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("incremental %v != replayed %v", got, want)
		}
		if (engine.VisibleNodeIDs() == nil) != (engine.Depth() == 0) {
			t.Fatalf("visible nil (%v) disagrees with empty stack (%d)",
				engine.VisibleNodeIDs() == nil, engine.Depth())
		}
	})
}

func TestFilterPropertyBackForwardSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		engine := NewFilterEngine(g)

		steps := rapid.IntRange(1, 6).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := fmt.Sprintf("n%d", rapid.IntRange(0, len(g.Nodes)).Draw(t, fmt.Sprintf("step%d", i)))
			engine.ApplyFilter(id, common.NodeTypeRole, id)
		}
		if engine.Depth() == 0 {
			t.Skip("all steps referenced missing nodes")
		}

		stackBefore := engine.Stack()
		visibleBefore := sortedIDs(engine.VisibleNodeIDs())

		engine.GoBack()
		engine.GoForward()

		if !reflect.DeepEqual(engine.Stack(), stackBefore) {
			t.Fatalf("stack %v != %v after back+forward", engine.Stack(), stackBefore)
		}
		if got := sortedIDs(engine.VisibleNodeIDs()); !reflect.DeepEqual(got, visibleBefore) {
			t.Fatalf("visible %v != %v after back+forward", got, visibleBefore)
		}
	})
}
