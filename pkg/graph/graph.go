// Package graph implements the relationship-graph analytics core: snapshot
// sanitization, connectivity pruning, hierarchical grouping for bundled
// layouts, stack-based drill-down filtering, and RACI classification.
//
// Every operation is a deterministic transformation of an immutable scan
// snapshot. The only mutable state lives in the explicitly constructed
// FilterEngine and RaciEngine, one pair per explorer session.
package graph

import (
	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/logger"
)

// Sanitize returns a copy of g with every edge whose source or target does
// not reference a node in g removed. Extraction output is noisy and partial
// edges are expected, so dropped edges are logged at debug level rather
// than reported as errors.
//
// All other algorithms in this package assume a sanitized graph; running a
// hierarchy build or degree computation over a dangling edge is undefined.
func Sanitize(g common.Graph) common.Graph {
	known := make(common.NodeSet, len(g.Nodes))
	for _, n := range g.Nodes {
		known.Add(n.ID)
	}

	nodes := make([]common.Node, len(g.Nodes))
	copy(nodes, g.Nodes)

	edges := make([]common.Edge, 0, len(g.Edges))
	dropped := 0
	for _, e := range g.Edges {
		if !known.Has(e.Source) || !known.Has(e.Target) {
			dropped++
			continue
		}
		edges = append(edges, e)
	}

	if dropped > 0 {
		logger.Debug("[Graph] Dropped dangling edges", "count", dropped)
	}

	return common.Graph{Nodes: nodes, Edges: edges}
}

// Adjacency is an undirected neighbor index over a sanitized graph.
type Adjacency map[string]common.NodeSet

// BuildAdjacency indexes g's edges into per-node neighbor sets. Self loops
// are ignored; the edge direction is discarded.
func BuildAdjacency(g common.Graph) Adjacency {
	adj := make(Adjacency, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.ID] = make(common.NodeSet)
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		adj[e.Source].Add(e.Target)
		adj[e.Target].Add(e.Source)
	}
	return adj
}

// Neighborhood returns the 1-hop neighborhood of id: the node itself plus
// every node sharing an edge with it. Unknown ids yield an empty set and
// ok == false so callers can distinguish "isolated" from "missing".
func (adj Adjacency) Neighborhood(id string) (common.NodeSet, bool) {
	neighbors, ok := adj[id]
	if !ok {
		return common.NewNodeSet(), false
	}
	hood := make(common.NodeSet, len(neighbors)+1)
	hood.Add(id)
	for n := range neighbors {
		hood.Add(n)
	}
	return hood, true
}

// Degree returns the number of distinct neighbors of id.
func (adj Adjacency) Degree(id string) int {
	return len(adj[id])
}
