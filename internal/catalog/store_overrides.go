package catalog

import (
	"context"
	"database/sql"
	"time"
)

// SaveOverride persists a curator override, replacing the value of an
// identical earlier target. The field is gated before anything is stored.
func (o Ops) SaveOverride(ctx context.Context, ov Override) error {
	if !SafeField(ov.EntityType, ov.Field) {
		return unsafeFieldErr(ov.EntityType, ov.Field)
	}
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO overrides (
            entity_type, entity_id, platform_id, dat_name_pattern, field, value,
            reason, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(entity_type, entity_id, platform_id, dat_name_pattern, field)
        DO UPDATE SET value = excluded.value, reason = excluded.reason`,
		ov.EntityType, ov.EntityID, ov.PlatformID, ov.DATNamePattern, ov.Field,
		ov.Value, ov.Reason, timestamp(time.Now()))
	if err != nil {
		return storeErr("save override", ov.Field, err)
	}
	return nil
}

// ListOverrides returns all stored overrides in insertion order.
func (o Ops) ListOverrides(ctx context.Context) ([]Override, error) {
	rows, err := o.q.QueryContext(ctx, `
        SELECT id, entity_type, entity_id, platform_id, dat_name_pattern, field,
               value, reason, created_at
        FROM overrides ORDER BY id`)
	if err != nil {
		return nil, storeErr("list overrides", "query", err)
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		var (
			ov         Override
			createdRaw sql.NullString
		)
		if err := rows.Scan(&ov.ID, &ov.EntityType, &ov.EntityID, &ov.PlatformID,
			&ov.DATNamePattern, &ov.Field, &ov.Value, &ov.Reason, &createdRaw); err != nil {
			return nil, storeErr("list overrides", "scan", err)
		}
		ov.CreatedAt = parseTimestamp(createdRaw)
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list overrides", "iterate", err)
	}
	return out, nil
}

// FindOverrideTargets resolves a (platform, dat_name LIKE pattern) target
// to entity ids: the matching media rows themselves, or the releases that
// own them when the override targets releases.
func (o Ops) FindOverrideTargets(ctx context.Context, entityType, platformID, likePattern string) ([]string, error) {
	var query string
	switch entityType {
	case EntityMedia:
		query = `
            SELECT DISTINCT m.id FROM media m
            JOIN releases r ON r.id = m.release_id
            WHERE r.platform_id = ? AND m.dat_name LIKE ? ESCAPE '\'
            ORDER BY m.id`
	default:
		query = `
            SELECT DISTINCT r.id FROM releases r
            JOIN media m ON m.release_id = r.id
            WHERE r.platform_id = ? AND m.dat_name LIKE ? ESCAPE '\'
            ORDER BY r.id`
	}

	rows, err := o.q.QueryContext(ctx, query, platformID, likePattern)
	if err != nil {
		return nil, storeErr("find override targets", likePattern, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("find override targets", "scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find override targets", "iterate", err)
	}
	return ids, nil
}
