package graph

import (
	"sort"

	"github.com/rolescope/backend/pkg/common"
)

// OrphanGroupID is the synthetic group holding roles with no role-document
// association and documents no role claims as primary.
const OrphanGroupID = "__orphans__"

// groupPalette is the fixed display palette. Colors are assigned cyclically
// over the stable group order so a group keeps its color across rebuilds of
// the same snapshot.
var groupPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Leaf is a terminal entry in the hierarchy: a node plus the id of the
// group it was placed under.
type Leaf struct {
	Node    common.Node `json:"node"`
	GroupID string      `json:"group_id"`
}

// Group collects the roles whose primary document is DocumentID, plus the
// document node itself. Bridge roles span more than one document but are
// still placed only under their primary group.
type Group struct {
	DocumentID    string   `json:"document_id"`
	DocumentLabel string   `json:"document_label"`
	Color         string   `json:"color"`
	Orphan        bool     `json:"orphan,omitempty"`
	Leaves        []*Leaf  `json:"leaves"`
	BridgeRoleIDs []string `json:"bridge_role_ids,omitempty"`
}

// HierarchyTree is the document-grouped view of a snapshot used for
// bundled and semantic-zoom layouts. LeafIndex gives O(1) lookup from a
// node id to its leaf when the renderer draws inter-node paths; the tree
// itself carries no drawing geometry.
type HierarchyTree struct {
	Groups    []*Group         `json:"groups"`
	LeafIndex map[string]*Leaf `json:"-"`
}

// BuildHierarchy groups every role under its primary document, the one
// with the highest-weight role-document edge. Weight ties break toward the
// lexicographically smaller document id so repeated builds of the same
// snapshot agree. Roles with no role-document edge, and documents no role
// claims, land in the synthetic orphan group.
//
// Every node of the sanitized input appears in exactly one leaf.
func BuildHierarchy(g common.Graph) *HierarchyTree {
	g = Sanitize(g)

	nodeByID := make(map[string]common.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeByID[n.ID] = n
	}

	type primary struct {
		docID  string
		weight int
	}
	primaries := make(map[string]primary)
	partners := make(map[string]common.NodeSet)

	for _, e := range g.Edges {
		if e.LinkType != common.LinkRoleDocument {
			continue
		}
		roleID, docID, ok := splitRoleDocument(e, nodeByID)
		if !ok {
			continue
		}

		if partners[roleID] == nil {
			partners[roleID] = make(common.NodeSet)
		}
		partners[roleID].Add(docID)

		best, seen := primaries[roleID]
		if !seen || e.Weight > best.weight || (e.Weight == best.weight && docID < best.docID) {
			primaries[roleID] = primary{docID: docID, weight: e.Weight}
		}
	}

	groups := make(map[string]*Group)
	ensureGroup := func(docID string) *Group {
		grp, ok := groups[docID]
		if ok {
			return grp
		}
		grp = &Group{DocumentID: docID}
		if docID == OrphanGroupID {
			grp.Orphan = true
			grp.DocumentLabel = "Unassociated"
		} else if doc, ok := nodeByID[docID]; ok {
			grp.DocumentLabel = doc.Label
		}
		groups[docID] = grp
		return grp
	}

	// Roles first, so a document's group exists before its own leaf is added.
	docsWithRoles := make(common.NodeSet)
	for _, n := range g.Nodes {
		if n.Type != common.NodeTypeRole {
			continue
		}
		groupID := OrphanGroupID
		if p, ok := primaries[n.ID]; ok {
			groupID = p.docID
			docsWithRoles.Add(p.docID)
		}
		grp := ensureGroup(groupID)
		grp.Leaves = append(grp.Leaves, &Leaf{Node: n, GroupID: groupID})
		if len(partners[n.ID]) >= 2 {
			grp.BridgeRoleIDs = append(grp.BridgeRoleIDs, n.ID)
		}
	}

	for _, n := range g.Nodes {
		if n.Type != common.NodeTypeDocument {
			continue
		}
		groupID := n.ID
		if !docsWithRoles.Has(n.ID) {
			groupID = OrphanGroupID
		}
		grp := ensureGroup(groupID)
		grp.Leaves = append(grp.Leaves, &Leaf{Node: n, GroupID: groupID})
	}

	tree := &HierarchyTree{
		Groups:    make([]*Group, 0, len(groups)),
		LeafIndex: make(map[string]*Leaf),
	}
	for _, grp := range groups {
		sort.Strings(grp.BridgeRoleIDs)
		tree.Groups = append(tree.Groups, grp)
	}

	// Stable order: documents sorted by id, orphan group last.
	sort.Slice(tree.Groups, func(i, j int) bool {
		a, b := tree.Groups[i], tree.Groups[j]
		if a.Orphan != b.Orphan {
			return b.Orphan
		}
		return a.DocumentID < b.DocumentID
	})

	for i, grp := range tree.Groups {
		grp.Color = groupPalette[i%len(groupPalette)]
		for _, leaf := range grp.Leaves {
			tree.LeafIndex[leaf.Node.ID] = leaf
		}
	}

	return tree
}

// splitRoleDocument resolves which endpoint of a role-document edge is the
// role and which is the document. Edges whose endpoints are not one of
// each are skipped.
func splitRoleDocument(e common.Edge, nodes map[string]common.Node) (roleID, docID string, ok bool) {
	src, sok := nodes[e.Source]
	tgt, tok := nodes[e.Target]
	if !sok || !tok {
		return "", "", false
	}
	switch {
	case src.Type == common.NodeTypeRole && tgt.Type == common.NodeTypeDocument:
		return src.ID, tgt.ID, true
	case src.Type == common.NodeTypeDocument && tgt.Type == common.NodeTypeRole:
		return tgt.ID, src.ID, true
	default:
		return "", "", false
	}
}
