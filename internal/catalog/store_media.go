package catalog

import (
	"context"
	"database/sql"
	"time"
)

const mediaColumns = `id, release_id, rom_name, media_serial, disc_number, disc_label, revision,
    dump_status, dat_name, dat_source, file_size, crc32, sha1, md5, created_at, updated_at`

// UpsertMedia inserts or refreshes one media row and classifies the write.
// An insert is OutcomeCreated; an existing row whose tracked fields all
// match is OutcomeUnchanged and is not touched, so updated_at only moves
// when the DAT actually changed something.
func (o Ops) UpsertMedia(ctx context.Context, m Media) (UpsertOutcome, error) {
	existing, err := o.GetMedia(ctx, m.ID)
	if err != nil {
		if !isNotFound(err) {
			return OutcomeUnchanged, err
		}
		now := timestamp(time.Now())
		_, err := o.q.ExecContext(ctx, `
            INSERT INTO media (
                id, release_id, rom_name, media_serial, disc_number, disc_label, revision,
                dump_status, dat_name, dat_source, file_size, crc32, sha1, md5,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.ReleaseID, m.RomName, m.MediaSerial, m.DiscNumber, m.DiscLabel, m.Revision,
			m.DumpStatus, m.DATName, m.DATSource, m.FileSize, m.CRC32, m.SHA1, m.MD5,
			now, now)
		if err != nil {
			return OutcomeUnchanged, storeErr("upsert media", m.ID, err)
		}
		return OutcomeCreated, nil
	}

	if mediaEqual(existing, &m) {
		return OutcomeUnchanged, nil
	}

	_, err = o.q.ExecContext(ctx, `
        UPDATE media SET
            release_id = ?, rom_name = ?, media_serial = ?, disc_number = ?, disc_label = ?,
            revision = ?, dump_status = ?, dat_name = ?, dat_source = ?,
            file_size = ?, crc32 = ?, sha1 = ?, md5 = ?, updated_at = ?
        WHERE id = ?`,
		m.ReleaseID, m.RomName, m.MediaSerial, m.DiscNumber, m.DiscLabel,
		m.Revision, m.DumpStatus, m.DATName, m.DATSource,
		m.FileSize, m.CRC32, m.SHA1, m.MD5, timestamp(time.Now()), m.ID)
	if err != nil {
		return OutcomeUnchanged, storeErr("upsert media", m.ID, err)
	}
	return OutcomeUpdated, nil
}

func mediaEqual(a, b *Media) bool {
	return a.ReleaseID == b.ReleaseID &&
		a.RomName == b.RomName &&
		a.MediaSerial == b.MediaSerial &&
		a.DiscNumber == b.DiscNumber &&
		a.DiscLabel == b.DiscLabel &&
		a.Revision == b.Revision &&
		a.DumpStatus == b.DumpStatus &&
		a.DATName == b.DATName &&
		a.DATSource == b.DATSource &&
		a.FileSize == b.FileSize &&
		a.CRC32 == b.CRC32 &&
		a.SHA1 == b.SHA1 &&
		a.MD5 == b.MD5
}

// GetMedia loads one media row by id.
func (o Ops) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := o.q.QueryRowContext(ctx, "SELECT "+mediaColumns+" FROM media WHERE id = ?", id)
	m, err := scanMedia(row)
	if err != nil {
		return nil, notFoundOrStore("get media", id, err)
	}
	return m, nil
}

// ListMediaByRelease returns a release's media ordered by disc number then
// DAT name.
func (o Ops) ListMediaByRelease(ctx context.Context, releaseID string) ([]Media, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE release_id = ? ORDER BY disc_number, dat_name", releaseID)
	if err != nil {
		return nil, storeErr("list media", "query", err)
	}
	defer rows.Close()
	return collectMedia(rows)
}

// LookupMediaByHash finds media rows whose stored hashes confirm the
// probe: CRC32 hits must also match on size, SHA1 hits stand alone.
func (o Ops) LookupMediaByHash(ctx context.Context, size int64, crc32, sha1 string) ([]Media, error) {
	if crc32 != "" {
		rows, err := o.q.QueryContext(ctx,
			"SELECT "+mediaColumns+" FROM media WHERE crc32 = ? AND file_size = ?", crc32, size)
		if err != nil {
			return nil, storeErr("lookup media", "by crc32", err)
		}
		found, err := collectMedia(rows)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	if sha1 == "" {
		return nil, nil
	}
	rows, err := o.q.QueryContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE sha1 = ?", sha1)
	if err != nil {
		return nil, storeErr("lookup media", "by sha1", err)
	}
	return collectMedia(rows)
}

// LookupMediaBySerial finds media rows by exact normalized serial.
func (o Ops) LookupMediaBySerial(ctx context.Context, serial string) ([]Media, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE media_serial = ?", serial)
	if err != nil {
		return nil, storeErr("lookup media", "by serial", err)
	}
	return collectMedia(rows)
}

// MoveMedia re-keys a media row under a new id and release. Used by
// reconciliation when a duplicate work's releases fold into the survivor.
func (o Ops) MoveMedia(ctx context.Context, oldID, newID, releaseID string) error {
	// media_assets and collection references follow via ON UPDATE CASCADE.
	_, err := o.q.ExecContext(ctx,
		"UPDATE media SET id = ?, release_id = ?, updated_at = ? WHERE id = ?",
		newID, releaseID, timestamp(time.Now()), oldID)
	if err != nil {
		return storeErr("move media", oldID, err)
	}
	return nil
}

func collectMedia(rows *sql.Rows) ([]Media, error) {
	defer rows.Close()
	var media []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, storeErr("collect media", "scan", err)
		}
		media = append(media, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("collect media", "iterate", err)
	}
	return media, nil
}

func scanMedia(scanner interface{ Scan(dest ...any) error }) (*Media, error) {
	var (
		m          Media
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&m.ID, &m.ReleaseID, &m.RomName, &m.MediaSerial, &m.DiscNumber, &m.DiscLabel, &m.Revision,
		&m.DumpStatus, &m.DATName, &m.DATSource, &m.FileSize, &m.CRC32, &m.SHA1, &m.MD5,
		&createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	m.CreatedAt = parseTimestamp(createdRaw)
	m.UpdatedAt = parseTimestamp(updatedRaw)
	return &m, nil
}
