package catalog

import (
	"context"
	"database/sql"
	"time"
)

const releaseColumns = `id, work_id, platform_id, region, title, alt_title, revision,
    game_serial, release_date, publisher_id, developer_id, genre, players, rating,
    description, external_metadata_id, not_found, created_at, updated_at`

// EnsureRelease inserts the release if its deterministic ID is new and
// reports whether a row was created. Fields on an existing row are never
// clobbered by a re-import; only overrides, resolutions, and enrichment
// write to them afterwards.
func (o Ops) EnsureRelease(ctx context.Context, r Release) (bool, error) {
	now := timestamp(time.Now())
	res, err := o.q.ExecContext(ctx, `
        INSERT INTO releases (
            id, work_id, platform_id, region, title, alt_title, revision,
            game_serial, release_date, publisher_id, developer_id, genre,
            players, rating, description, external_metadata_id, not_found,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		r.ID, r.WorkID, r.PlatformID, r.Region, r.Title, r.AltTitle, r.Revision,
		r.GameSerial, r.ReleaseDate, nullableString(r.PublisherID), nullableString(r.DeveloperID),
		r.Genre, r.Players, r.Rating, r.Description, r.ExternalMetadataID, boolToInt(r.NotFound),
		now, now)
	if err != nil {
		return false, storeErr("ensure release", r.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("ensure release", "rows affected", err)
	}
	return affected > 0, nil
}

// GetRelease loads one release by id.
func (o Ops) GetRelease(ctx context.Context, id string) (*Release, error) {
	row := o.q.QueryRowContext(ctx,
		"SELECT "+releaseColumns+" FROM releases WHERE id = ?", id)
	r, err := scanRelease(row)
	if err != nil {
		return nil, notFoundOrStore("get release", id, err)
	}
	return r, nil
}

// ListReleasesByWork returns a work's releases ordered by platform then
// region.
func (o Ops) ListReleasesByWork(ctx context.Context, workID string) ([]Release, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT "+releaseColumns+" FROM releases WHERE work_id = ? ORDER BY platform_id, region", workID)
	if err != nil {
		return nil, storeErr("list releases", "query", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, storeErr("list releases", "scan", err)
		}
		releases = append(releases, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list releases", "iterate", err)
	}
	return releases, nil
}

// SetReleaseWork re-points a release at a different work. Used by
// reconciliation after the release id has been re-derived for the
// surviving work.
func (o Ops) SetReleaseWork(ctx context.Context, releaseID, newReleaseID, workID string) error {
	_, err := o.q.ExecContext(ctx,
		"UPDATE releases SET id = ?, work_id = ?, updated_at = ? WHERE id = ?",
		newReleaseID, workID, timestamp(time.Now()), releaseID)
	if err != nil {
		return storeErr("set release work", releaseID, err)
	}
	return nil
}

// UpdateReleaseEnrichment writes metadata-service facts onto a release.
// Conflict checks against existing values happen before this is called;
// this writes exactly the fields the enrichment flow decided to set.
func (o Ops) UpdateReleaseEnrichment(ctx context.Context, r *Release) error {
	_, err := o.q.ExecContext(ctx, `
        UPDATE releases SET
            alt_title = ?, release_date = ?, publisher_id = ?, developer_id = ?,
            genre = ?, players = ?, rating = ?, description = ?,
            external_metadata_id = ?, not_found = ?, updated_at = ?
        WHERE id = ?`,
		r.AltTitle, r.ReleaseDate, nullableString(r.PublisherID), nullableString(r.DeveloperID),
		r.Genre, r.Players, r.Rating, r.Description,
		r.ExternalMetadataID, boolToInt(r.NotFound), timestamp(time.Now()), r.ID)
	if err != nil {
		return storeErr("update release enrichment", r.ID, err)
	}
	return nil
}

// DeleteRelease removes one release row.
func (o Ops) DeleteRelease(ctx context.Context, id string) error {
	if _, err := o.q.ExecContext(ctx, "DELETE FROM releases WHERE id = ?", id); err != nil {
		return storeErr("delete release", id, err)
	}
	return nil
}

func scanRelease(scanner interface{ Scan(dest ...any) error }) (*Release, error) {
	var (
		r           Release
		publisherID sql.NullString
		developerID sql.NullString
		notFound    int
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&r.ID, &r.WorkID, &r.PlatformID, &r.Region, &r.Title, &r.AltTitle, &r.Revision,
		&r.GameSerial, &r.ReleaseDate, &publisherID, &developerID, &r.Genre, &r.Players,
		&r.Rating, &r.Description, &r.ExternalMetadataID, &notFound, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	r.PublisherID = publisherID.String
	r.DeveloperID = developerID.String
	r.NotFound = notFound != 0
	r.CreatedAt = parseTimestamp(createdRaw)
	r.UpdatedAt = parseTimestamp(updatedRaw)
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
