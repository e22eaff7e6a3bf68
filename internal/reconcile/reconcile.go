// Package reconcile merges Works later proven to be duplicates.
//
// Two works are duplicates when their releases resolve to the same
// external metadata id. One work survives; every release, media row,
// asset, and open disagreement of the others folds into it, and the
// emptied works are removed with a merged_from relationship left behind.
package reconcile

import (
	"context"
	"log/slog"
	"sort"

	"romcat/internal/catalog"
	"romcat/internal/logging"
	"romcat/internal/slug"
)

// Merge describes one planned group merge.
type Merge struct {
	ExternalMetadataID string
	SurvivorID         string
	SurvivorName       string
	AbsorbedIDs        []string
}

// Stats summarizes an executed reconciliation pass.
type Stats struct {
	Groups         int
	WorksAbsorbed  int
	ReleasesMoved  int
	ReleasesFolded int
	MediaMoved     int
	NamesImproved  int
}

// Reconciler plans and executes duplicate-work merges against one store.
type Reconciler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New constructs a reconciler.
func New(store *catalog.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{store: store, logger: logging.WithComponent(logger, "reconcile")}
}

// Plan computes the merges a run would perform without writing anything.
// Platform ids, when given, scope the duplicate search to those systems.
func (r *Reconciler) Plan(ctx context.Context, platformIDs ...string) ([]Merge, error) {
	groups, err := r.store.FindDuplicateWorkGroups(ctx, platformIDs...)
	if err != nil {
		return nil, err
	}

	var merges []Merge
	for _, group := range groups {
		ranked := rankWorks(group.Works)
		merge := Merge{
			ExternalMetadataID: group.ExternalMetadataID,
			SurvivorID:         ranked[0].ID,
			SurvivorName:       ranked[0].CanonicalName,
		}
		for _, loser := range ranked[1:] {
			merge.AbsorbedIDs = append(merge.AbsorbedIDs, loser.ID)
		}
		merges = append(merges, merge)
	}
	return merges, nil
}

// Run executes every planned merge in one transaction, optionally scoped
// to the given platforms.
func (r *Reconciler) Run(ctx context.Context, platformIDs ...string) (*Stats, error) {
	stats := &Stats{}
	err := r.store.WithTx(ctx, func(tx *catalog.Tx) error {
		groups, err := tx.FindDuplicateWorkGroups(ctx, platformIDs...)
		if err != nil {
			return err
		}
		for _, group := range groups {
			if err := r.mergeGroup(ctx, tx, group, stats); err != nil {
				return err
			}
			stats.Groups++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *Reconciler) mergeGroup(ctx context.Context, tx *catalog.Tx, group catalog.DuplicateGroup, stats *Stats) error {
	ranked := rankWorks(group.Works)
	survivor := ranked[0]

	names := make([]string, 0, len(ranked))
	for _, w := range ranked {
		names = append(names, w.CanonicalName)
	}
	if improved := improveName(survivor.CanonicalName, names); improved != survivor.CanonicalName {
		if err := tx.UpdateWorkName(ctx, survivor.ID, improved); err != nil {
			return err
		}
		stats.NamesImproved++
		r.logger.Info("improved canonical name",
			logging.String("work_id", survivor.ID),
			logging.String("from", survivor.CanonicalName),
			logging.String("to", improved))
	}

	for _, loser := range ranked[1:] {
		if err := r.absorbWork(ctx, tx, survivor.ID, loser.ID, stats); err != nil {
			return err
		}
		stats.WorksAbsorbed++
		r.logger.Info("absorbed duplicate work",
			logging.String("survivor", survivor.ID),
			logging.String("absorbed", loser.ID),
			logging.String("external_id", group.ExternalMetadataID))
	}
	return nil
}

func (r *Reconciler) absorbWork(ctx context.Context, tx *catalog.Tx, survivorID, loserID string, stats *Stats) error {
	releases, err := tx.ListReleasesByWork(ctx, loserID)
	if err != nil {
		return err
	}

	for _, release := range releases {
		targetID := slug.ReleaseID(survivorID, release.PlatformID, release.Region)
		taken, err := tx.ReleaseExists(ctx, targetID)
		if err != nil {
			return err
		}
		if taken {
			// The survivor already holds this (platform, region) slot:
			// fold the duplicate's media and history into it and drop
			// the duplicate release.
			if err := r.foldRelease(ctx, tx, release, targetID, stats); err != nil {
				return err
			}
			stats.ReleasesFolded++
			continue
		}

		// Re-key the release first; media and asset references follow via
		// ON UPDATE CASCADE, then the media rows re-derive their own ids.
		if err := tx.SetReleaseWork(ctx, release.ID, targetID, survivorID); err != nil {
			return err
		}
		if err := tx.MoveDisagreements(ctx, catalog.EntityRelease, release.ID, targetID); err != nil {
			return err
		}
		if err := r.moveReleaseMedia(ctx, tx, targetID, targetID, stats); err != nil {
			return err
		}
		stats.ReleasesMoved++
	}

	if err := tx.LinkWorks(ctx, survivorID, loserID, catalog.RelationMergedFrom); err != nil {
		return err
	}
	deleted, err := tx.DeleteWorkIfOrphaned(ctx, loserID)
	if err != nil {
		return err
	}
	if !deleted {
		r.logger.Warn("absorbed work still has releases", logging.String("work_id", loserID))
	}
	return nil
}

func (r *Reconciler) foldRelease(ctx context.Context, tx *catalog.Tx, release catalog.Release, targetID string, stats *Stats) error {
	if err := r.moveReleaseMedia(ctx, tx, release.ID, targetID, stats); err != nil {
		return err
	}
	if err := tx.MoveMediaAssets(ctx, release.ID, targetID); err != nil {
		return err
	}
	if err := tx.MoveDisagreements(ctx, catalog.EntityRelease, release.ID, targetID); err != nil {
		return err
	}
	return tx.DeleteRelease(ctx, release.ID)
}

// moveReleaseMedia re-parents every media row, re-deriving its id from
// the destination release and the stored rom name so a later re-import of
// the same DAT lands on the moved row instead of minting a second one.
func (r *Reconciler) moveReleaseMedia(ctx context.Context, tx *catalog.Tx, fromReleaseID, toReleaseID string, stats *Stats) error {
	media, err := tx.ListMediaByRelease(ctx, fromReleaseID)
	if err != nil {
		return err
	}
	for _, m := range media {
		newID := slug.MediaID(toReleaseID, m.RomName)
		if newID == m.ID {
			continue
		}
		if err := tx.MoveMedia(ctx, m.ID, newID, toReleaseID); err != nil {
			return err
		}
		if err := tx.MoveDisagreements(ctx, catalog.EntityMedia, m.ID, newID); err != nil {
			return err
		}
		stats.MediaMoved++
	}
	return nil
}

// rankWorks orders a duplicate group: the work with the most releases
// wins, ties go to the oldest row, then the smallest id for determinism.
func rankWorks(works []catalog.WorkSummary) []catalog.WorkSummary {
	ranked := make([]catalog.WorkSummary, len(works))
	copy(ranked, works)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ReleaseCount != ranked[j].ReleaseCount {
			return ranked[i].ReleaseCount > ranked[j].ReleaseCount
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
