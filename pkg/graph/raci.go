package graph

import (
	"sort"
	"strings"

	"github.com/rolescope/backend/pkg/common"
)

// RaciType names one column of a RACI matrix.
type RaciType string

const (
	RaciResponsible RaciType = "R"
	RaciAccountable RaciType = "A"
	RaciConsulted   RaciType = "C"
	RaciInformed    RaciType = "I"
)

// RaciTypes lists the columns in display order.
var RaciTypes = []RaciType{RaciResponsible, RaciAccountable, RaciConsulted, RaciInformed}

// ruleFamily is one ordered family of verb stems. A verb belongs to the
// first family one of whose stems prefixes it.
type ruleFamily struct {
	raciType RaciType
	stems    []string
}

// classificationRules is the classifier's precedence table: Responsible is
// checked before Accountable before Consulted before Informed, and a verb
// matching no family is treated as an unclassified-but-presumed-execution
// action, which buckets into Responsible.
var classificationRules = []ruleFamily{
	{RaciResponsible, []string{
		"perform", "execute", "implement", "develop", "define", "lead",
		"ensure", "maintain", "conduct", "create", "prepare", "manage",
		"oversee", "verify", "validate",
	}},
	{RaciAccountable, []string{
		"approve", "authorize", "sign", "certify", "accept",
	}},
	{RaciConsulted, []string{
		"review", "coordinate", "support", "consult", "advise", "assist",
		"collaborate",
	}},
	{RaciInformed, []string{
		"receive", "report", "monitor", "inform", "notify", "communicate",
		"track", "provide",
	}},
}

// RaciEntry is the computed classification for one role. An empty
// SourceActionCounts signals that no verb-level evidence existed and the
// values are low-confidence; Estimated additionally marks entries produced
// by the mention-volume heuristic rather than verb rules.
type RaciEntry struct {
	RoleID             string              `json:"role_id"`
	Label              string              `json:"label"`
	Responsible        int                 `json:"responsible"`
	Accountable        int                 `json:"accountable"`
	Consulted          int                 `json:"consulted"`
	Informed           int                 `json:"informed"`
	SourceActionCounts common.ActionCounts `json:"source_action_counts,omitempty"`
	Estimated          bool                `json:"estimated,omitempty"`
	Overridden         bool                `json:"overridden,omitempty"`
}

func (e RaciEntry) value(t RaciType) int {
	switch t {
	case RaciResponsible:
		return e.Responsible
	case RaciAccountable:
		return e.Accountable
	case RaciConsulted:
		return e.Consulted
	case RaciInformed:
		return e.Informed
	}
	return 0
}

func (e *RaciEntry) setValue(t RaciType, v int) {
	switch t {
	case RaciResponsible:
		e.Responsible = v
	case RaciAccountable:
		e.Accountable = v
	case RaciConsulted:
		e.Consulted = v
	case RaciInformed:
		e.Informed = v
	}
}

// ClassifyVerb returns the RACI column for a single action verb. Matching
// is case-insensitive stem matching against the ordered rule table.
func ClassifyVerb(verb string) RaciType {
	verb = strings.ToLower(strings.TrimSpace(verb))
	for _, family := range classificationRules {
		for _, stem := range family.stems {
			if strings.HasPrefix(verb, stem) {
				return family.raciType
			}
		}
	}
	return RaciResponsible
}

// Classify buckets a role's recorded action verbs into a RACI entry. With
// no verb evidence at all the role's total mention count lands in
// Responsible and SourceActionCounts stays empty, which downstream
// consumers read as the low-confidence signal.
func Classify(role common.Node, counts common.ActionCounts) RaciEntry {
	entry := RaciEntry{RoleID: role.ID, Label: role.Label}

	if len(counts) == 0 {
		entry.Responsible = role.MentionCount
		return entry
	}

	entry.SourceActionCounts = counts
	for verb, count := range counts {
		t := ClassifyVerb(verb)
		entry.setValue(t, entry.value(t)+count)
	}
	return entry
}

// EstimateFromMentions approximates a RACI split from mention volume alone:
// roughly 70% Responsible, 20% Consulted, 10% Informed. Accountability is
// never inferred from volume, so Accountable stays zero. The split is an
// unvalidated heuristic and the entry is flagged Estimated so it is never
// mistaken for verb-level classification.
func EstimateFromMentions(role common.Node) RaciEntry {
	mentions := role.MentionCount
	consulted := mentions * 20 / 100
	informed := mentions * 10 / 100
	return RaciEntry{
		RoleID:      role.ID,
		Label:       role.Label,
		Responsible: mentions - consulted - informed,
		Consulted:   consulted,
		Informed:    informed,
		Estimated:   true,
	}
}

// RaciOverrides is the sparse user-edit overlay: per role, per column,
// the value the user pinned over the computed one.
type RaciOverrides map[string]map[RaciType]int

// RaciEngine computes RACI entries for every role in a snapshot and layers
// user overrides on top. Computed values are never edited in place, so
// reverting an override always restores exactly the detected values. The
// overlay survives snapshot recomputation until explicitly reverted.
//
// Like FilterEngine, one instance serves one session and expects a single
// caller.
type RaciEngine struct {
	computed map[string]RaciEntry
	overlay  RaciOverrides
}

// NewRaciEngine classifies every role in the snapshot.
func NewRaciEngine(snap common.Snapshot) *RaciEngine {
	e := &RaciEngine{overlay: make(RaciOverrides)}
	e.Recompute(snap)
	return e
}

// Recompute rebuilds the computed entries from a fresh snapshot, keeping
// the override overlay untouched. Roles with verb evidence go through the
// rule table; roles with only mention volume get the flagged heuristic
// estimate.
func (e *RaciEngine) Recompute(snap common.Snapshot) {
	e.computed = make(map[string]RaciEntry)
	for _, n := range snap.Graph.Nodes {
		if n.Type != common.NodeTypeRole {
			continue
		}
		counts := snap.ActionCounts[n.ID]
		if len(counts) > 0 {
			e.computed[n.ID] = Classify(n, counts)
		} else {
			e.computed[n.ID] = EstimateFromMentions(n)
		}
	}
}

// Computed returns the detected entry for a role, before any overrides.
func (e *RaciEngine) Computed(roleID string) (RaciEntry, bool) {
	entry, ok := e.computed[roleID]
	return entry, ok
}

// Effective returns a role's entry with overrides applied. Overridden is
// set when at least one column came from the overlay.
func (e *RaciEngine) Effective(roleID string) (RaciEntry, bool) {
	entry, ok := e.computed[roleID]
	if !ok {
		return RaciEntry{}, false
	}
	edits, ok := e.overlay[roleID]
	if !ok {
		return entry, true
	}
	for t, v := range edits {
		entry.setValue(t, v)
	}
	entry.Overridden = len(edits) > 0
	return entry, true
}

// Matrix returns the effective entries for every role, sorted by role id.
func (e *RaciEngine) Matrix() []RaciEntry {
	entries := make([]RaciEntry, 0, len(e.computed))
	for roleID := range e.computed {
		entry, _ := e.Effective(roleID)
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RoleID < entries[j].RoleID
	})
	return entries
}

// SetOverride pins one column of a role's matrix to value. Unknown roles
// are accepted; the override simply stays dormant until a snapshot
// containing the role appears.
func (e *RaciEngine) SetOverride(roleID string, t RaciType, value int) {
	if e.overlay[roleID] == nil {
		e.overlay[roleID] = make(map[RaciType]int)
	}
	e.overlay[roleID][t] = value
}

// Reclassify moves value from one column to another as a single role-level
// edit: the source column's override is zeroed and the target column's
// override is set to value. It is not a merge with existing overrides.
func (e *RaciEngine) Reclassify(roleID string, from, to RaciType, value int) {
	e.SetOverride(roleID, from, 0)
	e.SetOverride(roleID, to, value)
}

// RevertRole drops every override for the role, returning its effective
// values to the computed ones.
func (e *RaciEngine) RevertRole(roleID string) {
	delete(e.overlay, roleID)
}

// RevertAll clears the whole overlay.
func (e *RaciEngine) RevertAll() {
	e.overlay = make(RaciOverrides)
}

// Overrides returns a deep copy of the overlay, for persistence.
func (e *RaciEngine) Overrides() RaciOverrides {
	out := make(RaciOverrides, len(e.overlay))
	for roleID, edits := range e.overlay {
		cp := make(map[RaciType]int, len(edits))
		for t, v := range edits {
			cp[t] = v
		}
		out[roleID] = cp
	}
	return out
}

// LoadOverrides replaces the overlay with previously persisted edits.
func (e *RaciEngine) LoadOverrides(overrides RaciOverrides) {
	e.overlay = make(RaciOverrides, len(overrides))
	for roleID, edits := range overrides {
		cp := make(map[RaciType]int, len(edits))
		for t, v := range edits {
			cp[t] = v
		}
		e.overlay[roleID] = cp
	}
}
