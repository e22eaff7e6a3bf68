package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// PlatformSeed is one console/system definition from the platform seed
// file. Platforms are loaded once and upserted into the catalog before any
// import runs.
type PlatformSeed struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name"`
	Manufacturer string   `toml:"manufacturer"`
	MediaType    string   `toml:"media_type"`
	ReleaseYear  int      `toml:"release_year"`
	ExternalRef  string   `toml:"external_ref"`
	Regions      []string `toml:"regions"`
	// Predecessor links this platform to the system it succeeded,
	// recorded as a platform relationship.
	Predecessor string `toml:"predecessor"`
}

var mediaTypes = map[string]struct{}{
	"cartridge": {},
	"disc":      {},
	"card":      {},
	"digital":   {},
}

// LoadPlatforms reads and validates the platform seed file.
func LoadPlatforms(path string) ([]PlatformSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read platform file: %w", err)
	}

	var doc struct {
		Platforms []PlatformSeed `toml:"platform"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse platform file: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Platforms))
	for i := range doc.Platforms {
		seed := &doc.Platforms[i]
		seed.ID = strings.TrimSpace(seed.ID)
		seed.Name = strings.TrimSpace(seed.Name)
		seed.MediaType = strings.ToLower(strings.TrimSpace(seed.MediaType))
		if seed.ID == "" {
			return nil, fmt.Errorf("platform %d: id must be set", i)
		}
		if _, dup := seen[seed.ID]; dup {
			return nil, fmt.Errorf("platform %q: duplicate id", seed.ID)
		}
		seen[seed.ID] = struct{}{}
		if seed.Name == "" {
			return nil, fmt.Errorf("platform %q: name must be set", seed.ID)
		}
		if _, ok := mediaTypes[seed.MediaType]; !ok {
			return nil, fmt.Errorf("platform %q: media_type must be cartridge, disc, card, or digital", seed.ID)
		}
	}
	return doc.Platforms, nil
}
