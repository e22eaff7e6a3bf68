package catalog

import (
	"context"

	"romcat/internal/config"
)

// UpsertPlatform inserts or refreshes one platform row and replaces its
// region list.
func (o Ops) UpsertPlatform(ctx context.Context, p Platform) error {
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO platforms (id, name, manufacturer, media_type, release_year, external_ref)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            manufacturer = excluded.manufacturer,
            media_type = excluded.media_type,
            release_year = excluded.release_year,
            external_ref = excluded.external_ref`,
		p.ID, p.Name, p.Manufacturer, p.MediaType, p.ReleaseYear, p.ExternalRef)
	if err != nil {
		return storeErr("upsert platform", p.ID, err)
	}

	if _, err := o.q.ExecContext(ctx, "DELETE FROM platform_regions WHERE platform_id = ?", p.ID); err != nil {
		return storeErr("upsert platform", "clear regions", err)
	}
	for _, region := range p.Regions {
		if _, err := o.q.ExecContext(ctx,
			"INSERT INTO platform_regions (platform_id, region) VALUES (?, ?)",
			p.ID, region); err != nil {
			return storeErr("upsert platform", "insert region "+region, err)
		}
	}
	return nil
}

// LinkPlatforms records a relationship between two platforms.
func (o Ops) LinkPlatforms(ctx context.Context, rel PlatformRelationship) error {
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO platform_relationships (platform_id, related_platform_id, kind)
        VALUES (?, ?, ?)
        ON CONFLICT(platform_id, related_platform_id, kind) DO NOTHING`,
		rel.PlatformID, rel.RelatedPlatformID, rel.Kind)
	if err != nil {
		return storeErr("link platforms", rel.PlatformID+" -> "+rel.RelatedPlatformID, err)
	}
	return nil
}

// SeedPlatforms upserts the platform seed file contents, including
// predecessor relationships. Predecessors are linked in a second pass so
// seed file ordering does not matter.
func (o Ops) SeedPlatforms(ctx context.Context, seeds []config.PlatformSeed) error {
	for _, seed := range seeds {
		p := Platform{
			ID:           seed.ID,
			Name:         seed.Name,
			Manufacturer: seed.Manufacturer,
			MediaType:    seed.MediaType,
			ReleaseYear:  seed.ReleaseYear,
			ExternalRef:  seed.ExternalRef,
			Regions:      seed.Regions,
		}
		if err := o.UpsertPlatform(ctx, p); err != nil {
			return err
		}
	}
	for _, seed := range seeds {
		if seed.Predecessor == "" {
			continue
		}
		rel := PlatformRelationship{
			PlatformID:        seed.ID,
			RelatedPlatformID: seed.Predecessor,
			Kind:              "predecessor",
		}
		if err := o.LinkPlatforms(ctx, rel); err != nil {
			return err
		}
	}
	return nil
}

// GetPlatform loads one platform with its regions.
func (o Ops) GetPlatform(ctx context.Context, id string) (*Platform, error) {
	var p Platform
	row := o.q.QueryRowContext(ctx,
		"SELECT id, name, manufacturer, media_type, release_year, external_ref FROM platforms WHERE id = ?", id)
	if err := row.Scan(&p.ID, &p.Name, &p.Manufacturer, &p.MediaType, &p.ReleaseYear, &p.ExternalRef); err != nil {
		return nil, notFoundOrStore("get platform", id, err)
	}

	rows, err := o.q.QueryContext(ctx,
		"SELECT region FROM platform_regions WHERE platform_id = ? ORDER BY region", id)
	if err != nil {
		return nil, storeErr("get platform", "load regions", err)
	}
	defer rows.Close()
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, storeErr("get platform", "scan region", err)
		}
		p.Regions = append(p.Regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get platform", "iterate regions", err)
	}
	return &p, nil
}

// ListPlatforms returns all platforms ordered by id, without regions.
func (o Ops) ListPlatforms(ctx context.Context) ([]Platform, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT id, name, manufacturer, media_type, release_year, external_ref FROM platforms ORDER BY id")
	if err != nil {
		return nil, storeErr("list platforms", "query", err)
	}
	defer rows.Close()

	var platforms []Platform
	for rows.Next() {
		var p Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Manufacturer, &p.MediaType, &p.ReleaseYear, &p.ExternalRef); err != nil {
			return nil, storeErr("list platforms", "scan", err)
		}
		platforms = append(platforms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list platforms", "iterate", err)
	}
	return platforms, nil
}
