package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"romcat/internal/services"
)

// RecordDisagreement appends an unresolved disagreement unless an
// unresolved row for the same (entity, field) already exists, in which
// case the existing row stands and false is returned. Repeated imports
// therefore never pile up duplicate rows for the same conflict.
func (o Ops) RecordDisagreement(ctx context.Context, d Disagreement) (bool, error) {
	res, err := o.q.ExecContext(ctx, `
        INSERT INTO disagreements (
            entity_type, entity_id, field, source_a, value_a, source_b, value_b,
            resolved, resolution, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, '', ?)
        ON CONFLICT(entity_type, entity_id, field) WHERE resolved = 0 DO NOTHING`,
		d.EntityType, d.EntityID, d.Field, d.SourceA, d.ValueA, d.SourceB, d.ValueB,
		timestamp(time.Now()))
	if err != nil {
		return false, storeErr("record disagreement", d.EntityID+"."+d.Field, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("record disagreement", "rows affected", err)
	}
	return affected > 0, nil
}

// GetDisagreement loads one disagreement by id.
func (o Ops) GetDisagreement(ctx context.Context, id int64) (*Disagreement, error) {
	row := o.q.QueryRowContext(ctx, `
        SELECT id, entity_type, entity_id, field, source_a, value_a, source_b, value_b,
               resolved, resolution, created_at, resolved_at
        FROM disagreements WHERE id = ?`, id)
	d, err := scanDisagreement(row)
	if err != nil {
		return nil, notFoundOrStore("get disagreement", fmt.Sprintf("%d", id), err)
	}
	return d, nil
}

// ListDisagreements returns disagreements oldest first. With onlyOpen set,
// resolved rows are filtered out.
func (o Ops) ListDisagreements(ctx context.Context, onlyOpen bool) ([]Disagreement, error) {
	query := `
        SELECT id, entity_type, entity_id, field, source_a, value_a, source_b, value_b,
               resolved, resolution, created_at, resolved_at
        FROM disagreements`
	if onlyOpen {
		query += " WHERE resolved = 0"
	}
	query += " ORDER BY id"

	rows, err := o.q.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list disagreements", "query", err)
	}
	defer rows.Close()

	var out []Disagreement
	for rows.Next() {
		d, err := scanDisagreement(rows)
		if err != nil {
			return nil, storeErr("list disagreements", "scan", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list disagreements", "iterate", err)
	}
	return out, nil
}

// ResolveDisagreement marks a disagreement resolved and writes the chosen
// value back to the entity through the safe-field gate. keep_a keeps the
// stored value, so only the row flips; keep_b and manual write valueB or
// the supplied manual value.
func (o Ops) ResolveDisagreement(ctx context.Context, id int64, resolution, manualValue string) error {
	d, err := o.GetDisagreement(ctx, id)
	if err != nil {
		return err
	}
	if d.Resolved {
		return services.Wrap(services.ErrValidation, "catalog", "resolve disagreement",
			fmt.Sprintf("disagreement %d is already resolved", id), nil)
	}

	var write string
	switch resolution {
	case ResolutionKeepA:
		write = ""
	case ResolutionKeepB:
		write = d.ValueB
	case ResolutionManual:
		write = manualValue
	default:
		return services.Wrap(services.ErrValidation, "catalog", "resolve disagreement",
			fmt.Sprintf("unknown resolution %q", resolution), nil)
	}

	if write != "" {
		if err := o.UpdateField(ctx, d.EntityType, d.EntityID, d.Field, write); err != nil {
			return err
		}
	}

	_, err = o.q.ExecContext(ctx,
		"UPDATE disagreements SET resolved = 1, resolution = ?, resolved_at = ? WHERE id = ?",
		resolution, timestamp(time.Now()), id)
	if err != nil {
		return storeErr("resolve disagreement", fmt.Sprintf("%d", id), err)
	}
	return nil
}

// MoveDisagreements re-points unresolved disagreements from one entity id
// to another. Resolved rows keep the old id as history.
func (o Ops) MoveDisagreements(ctx context.Context, entityType, oldID, newID string) error {
	_, err := o.q.ExecContext(ctx,
		"UPDATE disagreements SET entity_id = ? WHERE entity_type = ? AND entity_id = ? AND resolved = 0",
		newID, entityType, oldID)
	if err != nil {
		return storeErr("move disagreements", oldID, err)
	}
	return nil
}

func scanDisagreement(scanner interface{ Scan(dest ...any) error }) (*Disagreement, error) {
	var (
		d           Disagreement
		resolved    int
		createdRaw  sql.NullString
		resolvedRaw sql.NullString
	)
	if err := scanner.Scan(
		&d.ID, &d.EntityType, &d.EntityID, &d.Field, &d.SourceA, &d.ValueA,
		&d.SourceB, &d.ValueB, &resolved, &d.Resolution, &createdRaw, &resolvedRaw,
	); err != nil {
		return nil, err
	}
	d.Resolved = resolved != 0
	d.CreatedAt = parseTimestamp(createdRaw)
	d.ResolvedAt = parseTimestamp(resolvedRaw)
	return &d, nil
}
