// Package enrich applies metadata-service facts to catalog releases.
//
// Every fact runs through the field-level disagreement rule: a fact for an
// empty field fills it, a fact agreeing with the stored value is dropped,
// and a fact contradicting a present value becomes an unresolved
// disagreement row while the stored value stands.
package enrich

import (
	"context"
	"log/slog"
	"strconv"

	"romcat/internal/catalog"
	"romcat/internal/logging"
)

// SourceCatalog labels the already-stored value in disagreement rows.
const SourceCatalog = "catalog"

// Facts is one release's worth of external metadata.
type Facts struct {
	ReleaseID          string
	AltTitle           string
	ReleaseDate        string
	Genre              string
	Players            int
	Rating             string
	Description        string
	Publisher          string
	Developer          string
	ExternalMetadataID string
	// NotFound records that the metadata service has no entry for this
	// release, so later runs skip it instead of asking again.
	NotFound bool
}

// Result summarizes one application.
type Result struct {
	Adopted       int
	Disagreements int
}

// Enricher applies facts against catalog operations. It carries the
// source label recorded on the facts' side of disagreement rows.
type Enricher struct {
	sourceLabel string
	logger      *slog.Logger
}

// New constructs an enricher.
func New(sourceLabel string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{sourceLabel: sourceLabel, logger: logging.WithComponent(logger, "enrich")}
}

// Apply folds one release's facts into the catalog.
func (e *Enricher) Apply(ctx context.Context, ops catalog.Ops, facts Facts) (Result, error) {
	var result Result

	release, err := ops.GetRelease(ctx, facts.ReleaseID)
	if err != nil {
		return result, err
	}

	if facts.NotFound {
		release.NotFound = true
		if err := ops.UpdateReleaseEnrichment(ctx, release); err != nil {
			return result, err
		}
		e.logger.Info("release not known to metadata service",
			logging.String("release_id", release.ID))
		return result, nil
	}
	release.NotFound = false

	type fieldFact struct {
		name     string
		current  *string
		incoming string
	}
	playersCurrent := ""
	if release.Players > 0 {
		playersCurrent = strconv.Itoa(release.Players)
	}
	playersIncoming := ""
	if facts.Players > 0 {
		playersIncoming = strconv.Itoa(facts.Players)
	}

	checks := []fieldFact{
		{"alt_title", &release.AltTitle, facts.AltTitle},
		{"release_date", &release.ReleaseDate, facts.ReleaseDate},
		{"genre", &release.Genre, facts.Genre},
		{"description", &release.Description, facts.Description},
		{"players", &playersCurrent, playersIncoming},
	}
	for _, check := range checks {
		switch catalog.CheckField(*check.current, check.incoming) {
		case catalog.FieldAdopt:
			*check.current = check.incoming
			result.Adopted++
		case catalog.FieldConflict:
			created, err := ops.RecordDisagreement(ctx, catalog.Disagreement{
				EntityType: catalog.EntityRelease,
				EntityID:   release.ID,
				Field:      check.name,
				SourceA:    SourceCatalog,
				ValueA:     *check.current,
				SourceB:    e.sourceLabel,
				ValueB:     check.incoming,
			})
			if err != nil {
				return result, err
			}
			if created {
				result.Disagreements++
			}
		}
	}
	if playersCurrent != "" {
		if n, err := strconv.Atoi(playersCurrent); err == nil {
			release.Players = n
		}
	}

	// Rating and the external id have no overridable slot, so a differing
	// value cannot become a resolvable disagreement; fill-if-empty only.
	if release.Rating == "" {
		release.Rating = facts.Rating
	}
	if release.ExternalMetadataID == "" {
		release.ExternalMetadataID = facts.ExternalMetadataID
	} else if facts.ExternalMetadataID != "" && release.ExternalMetadataID != facts.ExternalMetadataID {
		e.logger.Warn("metadata service moved this release to a different id",
			logging.String("release_id", release.ID),
			logging.String("stored", release.ExternalMetadataID),
			logging.String("incoming", facts.ExternalMetadataID))
	}

	if err := e.applyCompanies(ctx, ops, release, facts); err != nil {
		return result, err
	}

	if err := ops.UpdateReleaseEnrichment(ctx, release); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Enricher) applyCompanies(ctx context.Context, ops catalog.Ops, release *catalog.Release, facts Facts) error {
	if release.PublisherID == "" && facts.Publisher != "" {
		company, err := ops.ResolveCompany(ctx, facts.Publisher)
		if err != nil {
			return err
		}
		release.PublisherID = company.ID
	}
	if release.DeveloperID == "" && facts.Developer != "" {
		company, err := ops.ResolveCompany(ctx, facts.Developer)
		if err != nil {
			return err
		}
		release.DeveloperID = company.ID
	}
	return nil
}
