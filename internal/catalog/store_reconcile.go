package catalog

import (
	"context"
	"database/sql"
	"strings"
)

// DuplicateGroup is a set of distinct works whose releases all claim the
// same external metadata id, meaning they describe the same game.
type DuplicateGroup struct {
	ExternalMetadataID string
	Works              []WorkSummary
}

// WorkSummary carries the ranking inputs reconciliation uses to pick a
// survivor.
type WorkSummary struct {
	Work
	ReleaseCount int
}

// FindDuplicateWorkGroups returns every external metadata id claimed by
// more than one work, with the claiming works and their release counts.
// When platform ids are given, only releases on those platforms count as
// duplicate evidence. Ordering is deterministic: groups by external id,
// works by id.
func (o Ops) FindDuplicateWorkGroups(ctx context.Context, platformIDs ...string) ([]DuplicateGroup, error) {
	query := `
        SELECT r.external_metadata_id, w.id, w.canonical_name, w.created_at, w.updated_at,
               (SELECT COUNT(1) FROM releases r2 WHERE r2.work_id = w.id) AS release_count
        FROM releases r
        JOIN works w ON w.id = r.work_id
        WHERE r.external_metadata_id != ''` + platformPredicate("r", len(platformIDs)) + `
        GROUP BY r.external_metadata_id, w.id
        HAVING r.external_metadata_id IN (
            SELECT r3.external_metadata_id FROM releases r3
            WHERE r3.external_metadata_id != ''` + platformPredicate("r3", len(platformIDs)) + `
            GROUP BY r3.external_metadata_id
            HAVING COUNT(DISTINCT r3.work_id) > 1
        )
        ORDER BY r.external_metadata_id, w.id`

	args := make([]any, 0, 2*len(platformIDs))
	for pass := 0; pass < 2; pass++ {
		for _, id := range platformIDs {
			args = append(args, id)
		}
	}

	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("find duplicate works", "query", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var (
			extID      string
			summary    WorkSummary
			createdRaw sql.NullString
			updatedRaw sql.NullString
		)
		if err := rows.Scan(&extID, &summary.ID, &summary.CanonicalName,
			&createdRaw, &updatedRaw, &summary.ReleaseCount); err != nil {
			return nil, storeErr("find duplicate works", "scan", err)
		}
		summary.CreatedAt = parseTimestamp(createdRaw)
		summary.UpdatedAt = parseTimestamp(updatedRaw)

		if len(groups) == 0 || groups[len(groups)-1].ExternalMetadataID != extID {
			groups = append(groups, DuplicateGroup{ExternalMetadataID: extID})
		}
		last := &groups[len(groups)-1]
		last.Works = append(last.Works, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find duplicate works", "iterate", err)
	}
	return groups, nil
}

func platformPredicate(alias string, n int) string {
	if n == 0 {
		return ""
	}
	return " AND " + alias + ".platform_id IN (?" + strings.Repeat(", ?", n-1) + ")"
}

// ReleaseExists reports whether a release row with the given id exists.
// Reconciliation uses it to detect slot collisions before folding a
// duplicate work's release into the survivor.
func (o Ops) ReleaseExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := o.q.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM releases WHERE id = ?", id).Scan(&n); err != nil {
		return false, storeErr("release exists", id, err)
	}
	return n > 0, nil
}
