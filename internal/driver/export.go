package driver

import (
	"context"
	"fmt"

	"github.com/agenthands/wardwatch/internal/core/cluster"
)

// SaveDocument writes one run's contact graph to the database. Every node and
// relationship carries runID so separate runs never mix.
func SaveDocument(ctx context.Context, d GraphDriver, runID string, doc cluster.Document) error {
	ids := make([]string, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		ids = append(ids, n.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.ExecuteQuery(ctx, SavePatientsQuery, map[string]interface{}{
		"run_id": runID,
		"ids":    ids,
	}); err != nil {
		return fmt.Errorf("failed to save patients: %w", err)
	}

	edges := make([]map[string]interface{}, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		edges = append(edges, map[string]interface{}{
			"source":   e.Source,
			"target":   e.Target,
			"organism": e.Organism,
			"location": e.Location,
		})
	}
	if _, err := d.ExecuteQuery(ctx, SaveContactsQuery, map[string]interface{}{
		"run_id": runID,
		"edges":  edges,
	}); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}

	for _, c := range doc.Clusters {
		if _, err := d.ExecuteQuery(ctx, SaveClusterQuery, map[string]interface{}{
			"run_id":     runID,
			"cluster_id": c.ID,
			"size":       c.Size,
			"members":    c.Nodes,
		}); err != nil {
			return fmt.Errorf("failed to save cluster %d: %w", c.ID, err)
		}
	}
	return nil
}

// DeleteRun removes everything written under runID.
func DeleteRun(ctx context.Context, d GraphDriver, runID string) error {
	if _, err := d.ExecuteQuery(ctx, DeleteRunQuery, map[string]interface{}{"run_id": runID}); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}
