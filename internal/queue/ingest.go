package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rolescope/backend/internal/util"
	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/graph"
	"github.com/rolescope/backend/pkg/logger"
	"github.com/rolescope/backend/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// ScanCompleteMsg is the payload the scanning pipeline publishes to
// scan_complete_queue when it has finished extracting a project's
// roles and documents.
type ScanCompleteMsg struct {
	ProjectID    int64                          `json:"project_id"`
	ScanID       string                         `json:"scan_id"`
	Graph        common.Graph                   `json:"graph"`
	ActionCounts map[string]common.ActionCounts `json:"action_counts"`
}

// SnapshotReadyMsg is broadcast on the snapshot_ready topic once a scan
// has been normalized and persisted.
type SnapshotReadyMsg struct {
	ProjectID int64  `json:"project_id"`
	ScanID    string `json:"scan_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// ProcessScanComplete ingests one scan_complete message: it validates and
// normalizes the scanned graph, persists it as the project's latest
// snapshot and announces it on the snapshot_ready topic.
func ProcessScanComplete(
	ctx context.Context,
	ch *amqp091.Channel,
	storage store.SnapshotStorage,
	msg string,
) error {
	data := new(ScanCompleteMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode scan_complete message: %w", err)
	}
	if data.ProjectID <= 0 {
		return fmt.Errorf("scan_complete message has invalid project id %d", data.ProjectID)
	}
	if data.ScanID == "" {
		return fmt.Errorf("scan_complete message has empty scan id")
	}

	logger.Info("[Ingest] Processing scan", "project_id", data.ProjectID, "scan_id", data.ScanID, "nodes", len(data.Graph.Nodes), "edges", len(data.Graph.Edges))

	normalized := NormalizeGraph(data.Graph)

	snap := common.Snapshot{
		ProjectID:    data.ProjectID,
		ScanID:       data.ScanID,
		Graph:        normalized,
		ActionCounts: data.ActionCounts,
	}

	err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return storage.SaveSnapshot(ctx, snap)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	ready := SnapshotReadyMsg{
		ProjectID: data.ProjectID,
		ScanID:    data.ScanID,
		NodeCount: len(normalized.Nodes),
		EdgeCount: len(normalized.Edges),
	}
	payload, err := json.Marshal(ready)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot_ready message: %w", err)
	}
	if err := PublishTopic(ch, "snapshot_ready", payload); err != nil {
		// The snapshot is already persisted, so a lost notification is
		// not worth a redelivery of the whole scan.
		logger.Warn("[Ingest] Failed to publish snapshot_ready", "project_id", data.ProjectID, "err", err)
	}

	logger.Info("[Ingest] Snapshot stored", "project_id", data.ProjectID, "scan_id", data.ScanID, "nodes", len(normalized.Nodes), "edges", len(normalized.Edges))
	return nil
}

// NormalizeGraph prepares a scanned graph for storage: dangling edges are
// dropped, self loops and non-positive weights are discarded, and edges
// that name the same undirected pair are merged by summing their weights.
// The first edge seen for a pair decides the merged edge's endpoints and
// link type. Edges are returned in a stable pair order so repeated ingests
// of the same scan store identical rows.
func NormalizeGraph(g common.Graph) common.Graph {
	clean := graph.Sanitize(g)

	merged := make(map[string]common.Edge, len(clean.Edges))
	order := make([]string, 0, len(clean.Edges))
	dropped := 0
	for _, e := range clean.Edges {
		if e.Source == e.Target || e.Weight <= 0 {
			dropped++
			continue
		}
		key := pairKey(e.Source, e.Target)
		if prev, ok := merged[key]; ok {
			prev.Weight += e.Weight
			merged[key] = prev
			continue
		}
		merged[key] = e
		order = append(order, key)
	}
	if dropped > 0 {
		logger.Debug("[Ingest] Dropped degenerate edges", "count", dropped)
	}

	sort.Strings(order)
	edges := make([]common.Edge, 0, len(order))
	for _, key := range order {
		edges = append(edges, merged[key])
	}

	return common.Graph{Nodes: clean.Nodes, Edges: edges}
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
