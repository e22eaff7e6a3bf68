package catalog

import (
	"context"
	"database/sql"
)

// AppendImportRun appends one import_log row. The log is append-only;
// nothing ever updates or deletes entries.
func (o Ops) AppendImportRun(ctx context.Context, run ImportRun) (int64, error) {
	res, err := o.q.ExecContext(ctx, `
        INSERT INTO import_log (
            run_id, platform_id, dat_source, dat_name, started_at, finished_at,
            games_seen, works_created, releases_created, media_created,
            media_updated, media_unchanged, bad_dumps_skipped, disagreements,
            overrides_applied
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.PlatformID, run.DATSource, run.DATName,
		timestamp(run.StartedAt), timestamp(run.FinishedAt),
		run.GamesSeen, run.WorksCreated, run.ReleasesCreated, run.MediaCreated,
		run.MediaUpdated, run.MediaUnchanged, run.BadDumpsSkipped, run.Disagreements,
		run.OverridesApplied)
	if err != nil {
		return 0, storeErr("append import run", run.RunID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("append import run", "last insert id", err)
	}
	return id, nil
}

// ListImportRuns returns import log entries, newest first, capped at limit
// when limit is positive.
func (o Ops) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	query := `
        SELECT id, run_id, platform_id, dat_source, dat_name, started_at, finished_at,
               games_seen, works_created, releases_created, media_created,
               media_updated, media_unchanged, bad_dumps_skipped, disagreements,
               overrides_applied
        FROM import_log ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = o.q.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = o.q.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, storeErr("list import runs", "query", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var (
			run         ImportRun
			startedRaw  sql.NullString
			finishedRaw sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.PlatformID, &run.DATSource, &run.DATName,
			&startedRaw, &finishedRaw, &run.GamesSeen, &run.WorksCreated,
			&run.ReleasesCreated, &run.MediaCreated, &run.MediaUpdated,
			&run.MediaUnchanged, &run.BadDumpsSkipped, &run.Disagreements,
			&run.OverridesApplied,
		); err != nil {
			return nil, storeErr("list import runs", "scan", err)
		}
		run.StartedAt = parseTimestamp(startedRaw)
		run.FinishedAt = parseTimestamp(finishedRaw)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list import runs", "iterate", err)
	}
	return runs, nil
}
