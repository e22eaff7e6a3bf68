package catalog

import (
	"context"
	"database/sql"
	"time"
)

// AddMediaAsset attaches an artwork or manual record to a release, and
// optionally to one specific media row.
func (o Ops) AddMediaAsset(ctx context.Context, a MediaAsset) (int64, error) {
	res, err := o.q.ExecContext(ctx, `
        INSERT INTO media_assets (release_id, media_id, kind, location, source, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		a.ReleaseID, nullableString(a.MediaID), a.Kind, a.Location, a.Source,
		timestamp(time.Now()))
	if err != nil {
		return 0, storeErr("add media asset", a.Kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("add media asset", "last insert id", err)
	}
	return id, nil
}

// ListMediaAssets returns a release's assets in insertion order.
func (o Ops) ListMediaAssets(ctx context.Context, releaseID string) ([]MediaAsset, error) {
	rows, err := o.q.QueryContext(ctx, `
        SELECT id, release_id, media_id, kind, location, source, created_at
        FROM media_assets WHERE release_id = ? ORDER BY id`, releaseID)
	if err != nil {
		return nil, storeErr("list media assets", "query", err)
	}
	defer rows.Close()

	var assets []MediaAsset
	for rows.Next() {
		var (
			a          MediaAsset
			mediaID    sql.NullString
			createdRaw sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ReleaseID, &mediaID, &a.Kind, &a.Location, &a.Source, &createdRaw); err != nil {
			return nil, storeErr("list media assets", "scan", err)
		}
		a.MediaID = mediaID.String
		a.CreatedAt = parseTimestamp(createdRaw)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list media assets", "iterate", err)
	}
	return assets, nil
}

// MoveMediaAssets re-points assets from one release to another. Used when
// reconciliation folds a duplicate work's release into the survivor.
func (o Ops) MoveMediaAssets(ctx context.Context, oldReleaseID, newReleaseID string) error {
	_, err := o.q.ExecContext(ctx,
		"UPDATE media_assets SET release_id = ? WHERE release_id = ?",
		newReleaseID, oldReleaseID)
	if err != nil {
		return storeErr("move media assets", oldReleaseID, err)
	}
	return nil
}

// AddToCollection marks a media row as owned.
func (o Ops) AddToCollection(ctx context.Context, entry CollectionEntry) error {
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO collection (media_id, owner, notes, added_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(media_id, owner) DO UPDATE SET notes = excluded.notes`,
		entry.MediaID, entry.Owner, entry.Notes, timestamp(time.Now()))
	if err != nil {
		return storeErr("add to collection", entry.MediaID, err)
	}
	return nil
}

// ListCollection returns collection entries ordered by when they were
// added.
func (o Ops) ListCollection(ctx context.Context, owner string) ([]CollectionEntry, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT media_id, owner, notes, added_at FROM collection WHERE owner = ? ORDER BY added_at", owner)
	if err != nil {
		return nil, storeErr("list collection", "query", err)
	}
	defer rows.Close()

	var entries []CollectionEntry
	for rows.Next() {
		var (
			entry    CollectionEntry
			addedRaw sql.NullString
		)
		if err := rows.Scan(&entry.MediaID, &entry.Owner, &entry.Notes, &addedRaw); err != nil {
			return nil, storeErr("list collection", "scan", err)
		}
		entry.AddedAt = parseTimestamp(addedRaw)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list collection", "iterate", err)
	}
	return entries, nil
}
