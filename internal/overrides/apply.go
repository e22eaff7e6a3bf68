package overrides

import (
	"context"
	"errors"
	"log/slog"

	"romcat/internal/catalog"
	"romcat/internal/logging"
	"romcat/internal/services"
)

// Stats summarizes one application pass.
type Stats struct {
	Applied   int
	Skipped   int
	NoTargets int
}

// Apply runs every entry against the catalog inside the supplied
// transaction scope. Entries targeting a field outside the allow-list or
// naming no target are skipped with a warning; the rest of the batch
// still applies. Applied entries are also persisted to the overrides
// table so re-imports can be replayed against them.
func Apply(ctx context.Context, ops catalog.Ops, entries []Entry, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var stats Stats
	for _, entry := range entries {
		if !catalog.SafeField(entry.EntityType, entry.Field) {
			stats.Skipped++
			logger.Warn("skipping override with unsafe field",
				logging.String("entity_type", entry.EntityType),
				logging.String("field", entry.Field))
			continue
		}
		if !entry.targeted() {
			stats.Skipped++
			logger.Warn("skipping override with no target",
				logging.String("field", entry.Field))
			continue
		}

		targets, err := resolveTargets(ctx, ops, entry)
		if err != nil {
			return stats, err
		}
		if len(targets) == 0 {
			stats.NoTargets++
			logger.Warn("override matched no entities",
				logging.String("entity_type", entry.EntityType),
				logging.String("pattern", entry.DATNamePattern),
				logging.String("entity_id", entry.EntityID))
			continue
		}

		if err := ops.SaveOverride(ctx, catalog.Override{
			EntityType:     entry.EntityType,
			EntityID:       entry.EntityID,
			PlatformID:     entry.Platform,
			DATNamePattern: entry.DATNamePattern,
			Field:          entry.Field,
			Value:          entry.Value,
			Reason:         entry.Reason,
		}); err != nil {
			return stats, err
		}

		for _, id := range targets {
			err := ops.UpdateField(ctx, entry.EntityType, id, entry.Field, entry.Value)
			switch {
			case err == nil:
				stats.Applied++
			case errors.Is(err, services.ErrNotFound):
				stats.NoTargets++
				logger.Warn("override target does not exist",
					logging.String("entity_type", entry.EntityType),
					logging.String("entity_id", id))
			default:
				return stats, err
			}
		}
		logger.Info("applied override",
			logging.String("entity_type", entry.EntityType),
			logging.String("field", entry.Field),
			logging.Int("targets", len(targets)))
	}
	return stats, nil
}

func resolveTargets(ctx context.Context, ops catalog.Ops, entry Entry) ([]string, error) {
	if entry.EntityID != "" {
		return []string{entry.EntityID}, nil
	}
	return ops.FindOverrideTargets(ctx, entry.EntityType, entry.Platform, globToLike(entry.DATNamePattern))
}
