package catalog

import (
	"context"
	"database/sql"
	"time"
)

// EnsureWork inserts the work if its deterministic ID is new and reports
// whether a row was created. An existing row is left untouched; canonical
// name improvements go through UpdateWorkName.
func (o Ops) EnsureWork(ctx context.Context, id, canonicalName string) (bool, error) {
	now := timestamp(time.Now())
	res, err := o.q.ExecContext(ctx, `
        INSERT INTO works (id, canonical_name, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		id, canonicalName, now, now)
	if err != nil {
		return false, storeErr("ensure work", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("ensure work", "rows affected", err)
	}
	return affected > 0, nil
}

// GetWork loads one work by id.
func (o Ops) GetWork(ctx context.Context, id string) (*Work, error) {
	row := o.q.QueryRowContext(ctx,
		"SELECT id, canonical_name, created_at, updated_at FROM works WHERE id = ?", id)
	w, err := scanWork(row)
	if err != nil {
		return nil, notFoundOrStore("get work", id, err)
	}
	return w, nil
}

// UpdateWorkName replaces the canonical name of a work.
func (o Ops) UpdateWorkName(ctx context.Context, id, canonicalName string) error {
	_, err := o.q.ExecContext(ctx,
		"UPDATE works SET canonical_name = ?, updated_at = ? WHERE id = ?",
		canonicalName, timestamp(time.Now()), id)
	if err != nil {
		return storeErr("update work name", id, err)
	}
	return nil
}

// LinkWorks records a relationship between a surviving work and another
// work id, e.g. the id of a duplicate it absorbed.
func (o Ops) LinkWorks(ctx context.Context, workID, relatedWorkID, kind string) error {
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO work_relationships (work_id, related_work_id, kind)
        VALUES (?, ?, ?)
        ON CONFLICT(work_id, related_work_id, kind) DO NOTHING`,
		workID, relatedWorkID, kind)
	if err != nil {
		return storeErr("link works", workID+" -> "+relatedWorkID, err)
	}
	return nil
}

// DeleteWorkIfOrphaned removes a work that no release references anymore
// and reports whether a row was deleted.
func (o Ops) DeleteWorkIfOrphaned(ctx context.Context, id string) (bool, error) {
	res, err := o.q.ExecContext(ctx, `
        DELETE FROM works
        WHERE id = ? AND NOT EXISTS (SELECT 1 FROM releases WHERE work_id = works.id)`,
		id)
	if err != nil {
		return false, storeErr("delete orphaned work", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete orphaned work", "rows affected", err)
	}
	return affected > 0, nil
}

func scanWork(scanner interface{ Scan(dest ...any) error }) (*Work, error) {
	var (
		w          Work
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&w.ID, &w.CanonicalName, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	w.CreatedAt = parseTimestamp(createdRaw)
	w.UpdatedAt = parseTimestamp(updatedRaw)
	return &w, nil
}
