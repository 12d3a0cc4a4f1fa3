package graph

import (
	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/logger"
)

// FilterEntry is one drill-down step: the node the user focused plus the
// display metadata a breadcrumb needs.
type FilterEntry struct {
	NodeID   string          `json:"node_id"`
	NodeType common.NodeType `json:"node_type"`
	Label    string          `json:"label"`
}

// FilterEngine narrows the visible node set to the neighborhood of a
// selected entity and stacks further selections as set intersections, with
// back/forward history. One engine serves exactly one explorer session and
// is driven by a single caller at a time; it does no locking of its own.
//
// Invariant: the visible set is nil iff the stack is empty (unfiltered
// means show all), and it is always exactly what replaying the stack from
// an unfiltered state would produce.
type FilterEngine struct {
	adj     Adjacency
	stack   []FilterEntry
	forward []FilterEntry
	visible common.NodeSet
}

// NewFilterEngine builds an engine over a snapshot. The graph is
// sanitized before indexing.
func NewFilterEngine(g common.Graph) *FilterEngine {
	return &FilterEngine{adj: BuildAdjacency(Sanitize(g))}
}

// ApplyFilter pushes a drill-down step. The first step narrows the view to
// the node's 1-hop neighborhood; later steps intersect the current view
// with the new node's neighborhood and re-add the focal node itself, so
// the node the user clicked can never vanish from its own drill-down.
// A fresh step invalidates the forward history.
//
// An unknown node id is a soft failure: the state is left untouched.
func (f *FilterEngine) ApplyFilter(nodeID string, nodeType common.NodeType, label string) {
	hood, ok := f.adj.Neighborhood(nodeID)
	if !ok {
		logger.Warn("[Filter] Ignoring filter on missing node", "node_id", nodeID)
		return
	}

	if f.visible == nil {
		f.visible = hood
	} else {
		next := make(common.NodeSet, len(hood))
		for id := range f.visible {
			if hood.Has(id) {
				next.Add(id)
			}
		}
		next.Add(nodeID)
		f.visible = next
	}

	f.stack = append(f.stack, FilterEntry{NodeID: nodeID, NodeType: nodeType, Label: label})
	f.forward = nil
}

// GoBack pops the newest step onto the forward stack and recomputes the
// view by replaying the remaining steps from scratch. Intersections are
// not reversible incrementally once narrowed, so replay is the only safe
// way back. No-op on an empty stack.
func (f *FilterEngine) GoBack() {
	if len(f.stack) == 0 {
		return
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	f.forward = append(f.forward, top)
	f.recompute()
}

// GoForward re-applies the most recently undone step. No-op when there is
// no forward history.
func (f *FilterEngine) GoForward() {
	if len(f.forward) == 0 {
		return
	}
	top := f.forward[len(f.forward)-1]
	f.forward = f.forward[:len(f.forward)-1]
	f.stack = append(f.stack, top)
	f.recompute()
}

// NavigateTo truncates the stack to index+1 entries, as when the user
// clicks a breadcrumb. The removed tail moves onto the forward stack in
// reverse so GoForward walks back down in the original order. Indexes
// outside the stack are ignored.
func (f *FilterEngine) NavigateTo(index int) {
	if index < 0 || index >= len(f.stack) {
		logger.Warn("[Filter] Ignoring navigation to invalid index", "index", index, "depth", len(f.stack))
		return
	}
	for i := len(f.stack) - 1; i > index; i-- {
		f.forward = append(f.forward, f.stack[i])
	}
	f.stack = f.stack[:index+1]
	f.recompute()
}

// ClearAll drops both stacks and returns to the unfiltered view.
func (f *FilterEngine) ClearAll() {
	f.stack = nil
	f.forward = nil
	f.visible = nil
}

// Rebind swaps in a fresh snapshot after a re-scan and replays the current
// stack against it. Steps whose node no longer exists are dropped with a
// log line; the session keeps drilling into whatever survived.
func (f *FilterEngine) Rebind(g common.Graph) {
	f.adj = BuildAdjacency(Sanitize(g))
	f.forward = nil
	f.recompute()
}

// VisibleNodeIDs returns the current visible set, nil when unfiltered.
// The returned set is shared and must be treated as read-only.
func (f *FilterEngine) VisibleNodeIDs() common.NodeSet {
	return f.visible
}

// Stack returns a copy of the drill-down stack, oldest first.
func (f *FilterEngine) Stack() []FilterEntry {
	out := make([]FilterEntry, len(f.stack))
	copy(out, f.stack)
	return out
}

// ForwardStack returns a copy of the redo history, most recently undone
// step last.
func (f *FilterEngine) ForwardStack() []FilterEntry {
	out := make([]FilterEntry, len(f.forward))
	copy(out, f.forward)
	return out
}

// Depth returns the number of active drill-down steps.
func (f *FilterEngine) Depth() int {
	return len(f.stack)
}

// VisibleSubgraph filters g down to the engine's visible set. With no
// active filter the sanitized graph is returned whole.
func (f *FilterEngine) VisibleSubgraph(g common.Graph) common.Graph {
	g = Sanitize(g)
	if f.visible == nil {
		return g
	}
	nodes := make([]common.Node, 0, len(f.visible))
	for _, n := range g.Nodes {
		if f.visible.Has(n.ID) {
			nodes = append(nodes, n)
		}
	}
	edges := make([]common.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if f.visible.Has(e.Source) && f.visible.Has(e.Target) {
			edges = append(edges, e)
		}
	}
	return common.Graph{Nodes: nodes, Edges: edges}
}

// recompute rebuilds the visible set by replaying the stack from an
// unfiltered state. Entries referencing nodes missing from the current
// snapshot are removed, never fatal.
func (f *FilterEngine) recompute() {
	kept := make([]FilterEntry, 0, len(f.stack))
	var visible common.NodeSet

	for _, entry := range f.stack {
		hood, ok := f.adj.Neighborhood(entry.NodeID)
		if !ok {
			logger.Warn("[Filter] Dropping stack entry for missing node", "node_id", entry.NodeID)
			continue
		}
		if visible == nil {
			visible = hood
		} else {
			next := make(common.NodeSet, len(hood))
			for id := range visible {
				if hood.Has(id) {
					next.Add(id)
				}
			}
			next.Add(entry.NodeID)
			visible = next
		}
		kept = append(kept, entry)
	}

	f.stack = kept
	f.visible = visible
}
