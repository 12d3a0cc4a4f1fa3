package graph

import (
	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/logger"
)

// DefaultMinDegree is the connectivity threshold used when a caller passes
// a non-positive minimum degree.
const DefaultMinDegree = 2

// maxPrunePasses caps the cascade so a pathological input cannot loop
// forever. Realistic graphs converge after two or three passes.
const maxPrunePasses = 10

// Prune removes nodes whose degree is below minDegree, then repeats,
// because removing a node can drop its neighbors below the threshold too.
// It stops when a pass removes nothing or the pass cap is reached.
//
// Surviving nodes carry their final degree in ConnectionCount for the
// renderer. If every node is pruned the result is an empty graph, which
// callers must treat as "nothing to display", not as a load failure.
func Prune(g common.Graph, minDegree int) common.Graph {
	if minDegree <= 0 {
		minDegree = DefaultMinDegree
	}

	current := Sanitize(g)

	for pass := 0; pass < maxPrunePasses; pass++ {
		adj := BuildAdjacency(current)

		removed := 0
		kept := make([]common.Node, 0, len(current.Nodes))
		for _, n := range current.Nodes {
			if adj.Degree(n.ID) < minDegree {
				removed++
				continue
			}
			kept = append(kept, n)
		}

		if removed == 0 {
			break
		}

		keptIDs := make(common.NodeSet, len(kept))
		for _, n := range kept {
			keptIDs.Add(n.ID)
		}

		edges := make([]common.Edge, 0, len(current.Edges))
		for _, e := range current.Edges {
			if keptIDs.Has(e.Source) && keptIDs.Has(e.Target) {
				edges = append(edges, e)
			}
		}

		logger.Debug("[Prune] Pass removed nodes", "pass", pass+1, "removed", removed, "remaining", len(kept))
		current = common.Graph{Nodes: kept, Edges: edges}
	}

	finalAdj := BuildAdjacency(current)
	for i := range current.Nodes {
		current.Nodes[i].ConnectionCount = finalAdj.Degree(current.Nodes[i].ID)
	}

	return current
}
