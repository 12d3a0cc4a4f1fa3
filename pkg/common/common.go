package common

// NodeType discriminates the two kinds of nodes produced by document
// scanning: roles extracted from responsibility statements and the
// documents they were found in.
type NodeType string

const (
	NodeTypeRole     NodeType = "role"
	NodeTypeDocument NodeType = "document"
)

// LinkType describes the relationship an edge represents. The scanner
// emits a small closed set of types; anything it cannot classify is
// tagged LinkDefault.
type LinkType string

const (
	LinkRoleRole        LinkType = "role-role"
	LinkRoleDocument    LinkType = "role-document"
	LinkRoleDeliverable LinkType = "role-deliverable"
	LinkApproval        LinkType = "approval"
	LinkCoordination    LinkType = "coordination"
	LinkReportsTo       LinkType = "reports-to"
	LinkSupports        LinkType = "supports"
	LinkDefault         LinkType = "default"
)

// Node represents a role or document in the relationship graph. Nodes are
// immutable for a given scan snapshot; a new scan produces a new snapshot.
//
// ConnectionCount is the one exception: it is written by the pruning pass
// with the node's final degree so the renderer can size nodes without
// recomputing adjacency.
type Node struct {
	ID              string   `json:"id"`
	Type            NodeType `json:"type"`
	Label           string   `json:"label"`
	MentionCount    int      `json:"mention_count"`
	DocumentCount   int      `json:"document_count"`
	ConnectionCount int      `json:"connection_count,omitempty"`
}

// Edge is a weighted, typed link between two nodes. Edges are stored with
// a source and target but traversal treats them as undirected. The scanner
// aggregates co-occurrences, so at most one edge exists per node pair and
// Weight carries the occurrence count.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Weight   int      `json:"weight"`
	LinkType LinkType `json:"link_type"`
}

// Graph is one scan snapshot of nodes and edges. It is the input to every
// analytics operation and is never mutated in place; operations return new
// graphs or derived structures.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ActionCounts maps an action verb to the number of times a role was
// recorded performing it. It is the evidence the RACI classifier works
// from; an empty map means only mention volume is known.
type ActionCounts map[string]int

// Snapshot bundles a scan's graph with its per-role action evidence. The
// scanning pipeline produces one Snapshot per completed scan; this module
// only ever consumes them.
type Snapshot struct {
	ProjectID    int64                   `json:"project_id"`
	ScanID       string                  `json:"scan_id"`
	Graph        Graph                   `json:"graph"`
	ActionCounts map[string]ActionCounts `json:"action_counts"`
}

// NodeSet is a set of node ids, used for visible-node tracking.
type NodeSet map[string]struct{}

// NewNodeSet builds a set from the given ids.
func NewNodeSet(ids ...string) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s NodeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s NodeSet) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the set's members in unspecified order.
func (s NodeSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
