package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/rolescope/backend/pkg/graph"
)

// SaveOverrides upserts the given override cells. Cells absent from the
// argument are left untouched so partial saves merge with earlier edits.
func (s *SnapshotDBStorage) SaveOverrides(ctx context.Context, projectID int64, overrides graph.RaciOverrides) error {
	batch := &pgxv5.Batch{}
	for roleID, edits := range overrides {
		for raciType, value := range edits {
			batch.Queue(
				`INSERT INTO raci_overrides (project_id, role_id, raci_type, value)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (project_id, role_id, raci_type)
				 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
				projectID, roleID, string(raciType), value,
			)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert raci override: %w", err)
		}
	}
	return nil
}

// LoadOverrides reads every stored override cell for the project.
func (s *SnapshotDBStorage) LoadOverrides(ctx context.Context, projectID int64) (graph.RaciOverrides, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role_id, raci_type, value FROM raci_overrides WHERE project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load raci overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(graph.RaciOverrides)
	for rows.Next() {
		var roleID, raciType string
		var value int
		if err := rows.Scan(&roleID, &raciType, &value); err != nil {
			return nil, fmt.Errorf("failed to scan raci override: %w", err)
		}
		if overrides[roleID] == nil {
			overrides[roleID] = make(map[graph.RaciType]int)
		}
		overrides[roleID][graph.RaciType(raciType)] = value
	}
	return overrides, rows.Err()
}

// DeleteOverrides removes the named roles' overrides, or every override of
// the project when no roles are named.
func (s *SnapshotDBStorage) DeleteOverrides(ctx context.Context, projectID int64, roleIDs ...string) error {
	var err error
	if len(roleIDs) == 0 {
		_, err = s.pool.Exec(ctx,
			`DELETE FROM raci_overrides WHERE project_id = $1`, projectID)
	} else {
		_, err = s.pool.Exec(ctx,
			`DELETE FROM raci_overrides WHERE project_id = $1 AND role_id = ANY($2)`,
			projectID, roleIDs)
	}
	if err != nil {
		return fmt.Errorf("failed to delete raci overrides: %w", err)
	}
	return nil
}
