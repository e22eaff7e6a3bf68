// Package importer folds parsed DAT files into the catalog. Each DAT is
// one transaction: either every Work, Release, and Media row it implies
// lands, or none do.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/datfile"
	"romcat/internal/datindex"
	"romcat/internal/datname"
	"romcat/internal/logging"
	"romcat/internal/overrides"
	"romcat/internal/slug"
)

// SourceDATImport labels catalog values that came from a DAT file in
// disagreement rows.
const SourceDATImport = "dat-import"

// Importer drives import runs against one catalog store.
type Importer struct {
	store  *catalog.Store
	cfg    *config.Config
	logger *slog.Logger
}

// FileStats counts what one DAT file did to the catalog.
type FileStats struct {
	Path            string
	DATName         string
	GamesSeen       int
	WorksCreated    int
	ReleasesCreated int
	MediaCreated    int
	MediaUpdated    int
	MediaUnchanged  int
	BadDumpsSkipped int
	EmptyTitles     int
	Disagreements   int
}

// RunStats aggregates one run over any number of DAT files.
type RunStats struct {
	RunID            string
	Files            []FileStats
	FilesSkipped     int
	OverridesApplied int
}

// New constructs an importer.
func New(store *catalog.Store, cfg *config.Config, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Importer{store: store, cfg: cfg, logger: logging.WithComponent(logger, "importer")}
}

// Run imports the given DAT files into platformID. Files are parsed
// concurrently; catalog transactions stay sequential. A file that fails
// to parse is logged and skipped, the run continues. After the whole set
// lands, the configured override file (if any) is replayed.
func (i *Importer) Run(ctx context.Context, platformID string, paths []string) (*RunStats, error) {
	if _, err := i.store.GetPlatform(ctx, platformID); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := i.logger.With(logging.String(logging.FieldRunID, runID), logging.String(logging.FieldPlatform, platformID))
	stats := &RunStats{RunID: runID}

	parsed := parseAll(paths, i.cfg.Import.ParseWorkers)
	for _, result := range parsed {
		if result.err != nil {
			stats.FilesSkipped++
			logger.Warn("skipping unparseable dat file",
				logging.String("path", result.path),
				logging.Error(result.err))
			continue
		}

		fileStats := FileStats{Path: result.path, DATName: result.file.Name}
		started := time.Now()
		err := i.store.WithTx(ctx, func(tx *catalog.Tx) error {
			if err := i.importFile(ctx, tx, logger, platformID, result.file, &fileStats); err != nil {
				return err
			}
			run := catalog.ImportRun{
				RunID:           runID,
				PlatformID:      platformID,
				DATSource:       i.cfg.Import.DATSource,
				DATName:         result.file.Name,
				StartedAt:       started,
				FinishedAt:      time.Now(),
				GamesSeen:       fileStats.GamesSeen,
				WorksCreated:    fileStats.WorksCreated,
				ReleasesCreated: fileStats.ReleasesCreated,
				MediaCreated:    fileStats.MediaCreated,
				MediaUpdated:    fileStats.MediaUpdated,
				MediaUnchanged:  fileStats.MediaUnchanged,
				BadDumpsSkipped: fileStats.BadDumpsSkipped,
				Disagreements:   fileStats.Disagreements,
			}
			_, err := tx.AppendImportRun(ctx, run)
			return err
		})
		if err != nil {
			return stats, err
		}

		stats.Files = append(stats.Files, fileStats)
		logger.Info("imported dat file",
			logging.String(logging.FieldDATName, result.file.Name),
			logging.Int("games", fileStats.GamesSeen),
			logging.Int("works_created", fileStats.WorksCreated),
			logging.Int("media_created", fileStats.MediaCreated),
			logging.Int("media_updated", fileStats.MediaUpdated),
			logging.Int("media_unchanged", fileStats.MediaUnchanged),
			logging.Int("bad_dumps_skipped", fileStats.BadDumpsSkipped))
	}

	if err := i.applyOverrides(ctx, logger, platformID, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (i *Importer) importFile(ctx context.Context, tx *catalog.Tx, logger *slog.Logger, platformID string, file *datfile.File, stats *FileStats) error {
	for gi := range file.Games {
		game := &file.Games[gi]
		parsed := datname.Parse(game.Name)
		stats.GamesSeen++

		if parsed.Status() == datname.StatusBadDump {
			stats.BadDumpsSkipped++
			continue
		}
		if parsed.Title == "" {
			stats.EmptyTitles++
			logger.Warn("skipping entry with empty title", logging.String("dat_entry", game.Name))
			continue
		}

		region := fileRegion(parsed, game)
		workID := slug.WorkID(platformID, parsed.Title)
		created, err := tx.EnsureWork(ctx, workID, parsed.Title)
		if err != nil {
			return err
		}
		if created {
			stats.WorksCreated++
		}

		releaseID := slug.ReleaseID(workID, platformID, region)
		release := catalog.Release{
			ID:         releaseID,
			WorkID:     workID,
			PlatformID: platformID,
			Region:     region,
			Title:      parsed.Title,
			Revision:   parsed.Revision,
			GameSerial: datindex.NormalizeSerial(game.Serial),
		}
		created, err = tx.EnsureRelease(ctx, release)
		if err != nil {
			return err
		}
		if created {
			stats.ReleasesCreated++
		} else if err := i.checkReleaseSerial(ctx, tx, releaseID, release.GameSerial, stats); err != nil {
			return err
		}

		for ri := range game.Roms {
			rom := &game.Roms[ri]
			media := catalog.Media{
				ID:          slug.MediaID(releaseID, rom.Name),
				ReleaseID:   releaseID,
				RomName:     rom.Name,
				MediaSerial: datindex.NormalizeSerial(rom.Serial),
				DiscNumber:  parsed.DiscNumber,
				DiscLabel:   parsed.DiscLabel,
				Revision:    parsed.Revision,
				DumpStatus:  string(parsed.Status()),
				DATName:     game.Name,
				DATSource:   i.cfg.Import.DATSource,
				FileSize:    int64(rom.Size),
				CRC32:       rom.CRC,
				SHA1:        rom.SHA1,
				MD5:         rom.MD5,
			}
			outcome, err := tx.UpsertMedia(ctx, media)
			if err != nil {
				return err
			}
			switch outcome {
			case catalog.OutcomeCreated:
				stats.MediaCreated++
			case catalog.OutcomeUpdated:
				stats.MediaUpdated++
			default:
				stats.MediaUnchanged++
			}
		}
	}
	return nil
}

// checkReleaseSerial runs the disagreement rule for an existing release
// whose incoming DAT serial may differ from the stored one.
func (i *Importer) checkReleaseSerial(ctx context.Context, tx *catalog.Tx, releaseID, incoming string, stats *FileStats) error {
	existing, err := tx.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	switch catalog.CheckField(existing.GameSerial, incoming) {
	case catalog.FieldAdopt:
		return tx.UpdateField(ctx, catalog.EntityRelease, releaseID, "game_serial", incoming)
	case catalog.FieldConflict:
		created, err := tx.RecordDisagreement(ctx, catalog.Disagreement{
			EntityType: catalog.EntityRelease,
			EntityID:   releaseID,
			Field:      "game_serial",
			SourceA:    SourceDATImport,
			ValueA:     existing.GameSerial,
			SourceB:    i.cfg.Import.DATSource,
			ValueB:     incoming,
		})
		if err != nil {
			return err
		}
		if created {
			stats.Disagreements++
		}
	}
	return nil
}

// applyOverrides replays the configured override file after the DAT set
// has landed. The override writes and their import_log summary row commit
// in one transaction under the run's id.
func (i *Importer) applyOverrides(ctx context.Context, logger *slog.Logger, platformID string, stats *RunStats) error {
	path := i.cfg.Paths.OverrideFile
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	entries, err := overrides.Load(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	started := time.Now()
	return i.store.WithTx(ctx, func(tx *catalog.Tx) error {
		applied, err := overrides.Apply(ctx, tx.Ops, entries, logger)
		if err != nil {
			return err
		}
		stats.OverridesApplied = applied.Applied
		_, err = tx.AppendImportRun(ctx, catalog.ImportRun{
			RunID:            stats.RunID,
			PlatformID:       platformID,
			DATSource:        i.cfg.Import.DATSource,
			DATName:          "overrides",
			StartedAt:        started,
			FinishedAt:       time.Now(),
			OverridesApplied: applied.Applied,
		})
		return err
	})
}

// fileRegion picks the region slot a release is filed under: the first
// parsed region tag wins, then an explicit region key from the DAT, then
// the unknown bucket.
func fileRegion(parsed datname.ParsedName, game *datfile.Game) string {
	if len(parsed.Regions) > 0 {
		return datname.RegionSlug(parsed.Regions[0])
	}
	if game.Region != "" {
		return datname.RegionSlug(game.Region)
	}
	return "unknown"
}
