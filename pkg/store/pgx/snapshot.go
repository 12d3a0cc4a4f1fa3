package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/rolescope/backend/pkg/common"
	"github.com/rolescope/backend/pkg/leaselock"
	"github.com/rolescope/backend/pkg/store"
)

// SaveSnapshot writes one scan snapshot atomically: the snapshot row plus
// bulk copies of its nodes, edges, and per-role action counts. Writes for
// the same project are serialized through a lease lock so concurrent
// workers cannot interleave snapshots.
func (s *SnapshotDBStorage) SaveSnapshot(ctx context.Context, snap common.Snapshot) error {
	key := fmt.Sprintf("snapshot:%d", snap.ProjectID)
	return s.locks.WithLease(ctx, key, leaselock.Options{Wait: true}, func(ctx context.Context) error {
		return s.saveSnapshot(ctx, snap)
	})
}

func (s *SnapshotDBStorage) saveSnapshot(ctx context.Context, snap common.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var snapshotID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO snapshots (project_id, scan_id) VALUES ($1, $2) RETURNING id`,
		snap.ProjectID, snap.ScanID,
	).Scan(&snapshotID)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	nodeRows := make([][]any, 0, len(snap.Graph.Nodes))
	for _, n := range snap.Graph.Nodes {
		nodeRows = append(nodeRows, []any{
			snapshotID, n.ID, string(n.Type), n.Label, n.MentionCount, n.DocumentCount,
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"snapshot_nodes"},
		[]string{"snapshot_id", "node_id", "node_type", "label", "mention_count", "document_count"},
		pgxv5.CopyFromRows(nodeRows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy nodes: %w", err)
	}

	edgeRows := make([][]any, 0, len(snap.Graph.Edges))
	for _, e := range snap.Graph.Edges {
		edgeRows = append(edgeRows, []any{
			snapshotID, e.Source, e.Target, e.Weight, string(e.LinkType),
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"snapshot_edges"},
		[]string{"snapshot_id", "source_id", "target_id", "weight", "link_type"},
		pgxv5.CopyFromRows(edgeRows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy edges: %w", err)
	}

	actionRows := make([][]any, 0, len(snap.ActionCounts))
	for roleID, counts := range snap.ActionCounts {
		for verb, count := range counts {
			actionRows = append(actionRows, []any{snapshotID, roleID, verb, count})
		}
	}
	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"role_actions"},
		[]string{"snapshot_id", "role_id", "verb", "action_count"},
		pgxv5.CopyFromRows(actionRows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy role actions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadLatestSnapshot reads the project's most recent snapshot. Nodes,
// edges, and action counts are loaded in parallel over the pool.
func (s *SnapshotDBStorage) LoadLatestSnapshot(ctx context.Context, projectID int64) (common.Snapshot, error) {
	var snapshotID int64
	snap := common.Snapshot{ProjectID: projectID}

	err := s.pool.QueryRow(ctx,
		`SELECT id, scan_id FROM snapshots
		 WHERE project_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		projectID,
	).Scan(&snapshotID, &snap.ScanID)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to find latest snapshot: %w", err)
	}

	eg, gCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		rows, err := s.pool.Query(gCtx,
			`SELECT node_id, node_type, label, mention_count, document_count
			 FROM snapshot_nodes WHERE snapshot_id = $1`,
			snapshotID,
		)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var n common.Node
			var nodeType string
			if err := rows.Scan(&n.ID, &nodeType, &n.Label, &n.MentionCount, &n.DocumentCount); err != nil {
				return fmt.Errorf("failed to scan node: %w", err)
			}
			n.Type = common.NodeType(nodeType)
			snap.Graph.Nodes = append(snap.Graph.Nodes, n)
		}
		return rows.Err()
	})

	eg.Go(func() error {
		rows, err := s.pool.Query(gCtx,
			`SELECT source_id, target_id, weight, link_type
			 FROM snapshot_edges WHERE snapshot_id = $1`,
			snapshotID,
		)
		if err != nil {
			return fmt.Errorf("failed to load edges: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var e common.Edge
			var linkType string
			if err := rows.Scan(&e.Source, &e.Target, &e.Weight, &linkType); err != nil {
				return fmt.Errorf("failed to scan edge: %w", err)
			}
			e.LinkType = common.LinkType(linkType)
			snap.Graph.Edges = append(snap.Graph.Edges, e)
		}
		return rows.Err()
	})

	actionCounts := make(map[string]common.ActionCounts)
	eg.Go(func() error {
		rows, err := s.pool.Query(gCtx,
			`SELECT role_id, verb, action_count
			 FROM role_actions WHERE snapshot_id = $1`,
			snapshotID,
		)
		if err != nil {
			return fmt.Errorf("failed to load role actions: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var roleID, verb string
			var count int
			if err := rows.Scan(&roleID, &verb, &count); err != nil {
				return fmt.Errorf("failed to scan role action: %w", err)
			}
			if actionCounts[roleID] == nil {
				actionCounts[roleID] = make(common.ActionCounts)
			}
			actionCounts[roleID][verb] = count
		}
		return rows.Err()
	})

	if err := eg.Wait(); err != nil {
		return common.Snapshot{}, err
	}

	snap.ActionCounts = actionCounts
	return snap, nil
}
