package catalog

import "time"

// Platform is a console or system the catalog files releases under.
type Platform struct {
	ID           string
	Name         string
	Manufacturer string
	MediaType    string
	ReleaseYear  int
	ExternalRef  string
	Regions      []string
}

// PlatformRelationship links two platforms, e.g. kind "predecessor".
type PlatformRelationship struct {
	PlatformID        string
	RelatedPlatformID string
	Kind              string
}

// Company is a publisher or developer. Aliases collapse naming variants
// ("Squaresoft", "Square Soft, Inc.") onto one row; alias lookups are
// case-insensitive.
type Company struct {
	ID      string
	Name    string
	Country string
	Aliases []string
}

// Work is the abstract game, independent of platform and region.
type Work struct {
	ID            string
	CanonicalName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Release is one regional publication of a Work on one platform. The
// (WorkID, PlatformID, Region) triple is unique.
type Release struct {
	ID                 string
	WorkID             string
	PlatformID         string
	Region             string
	Title              string
	AltTitle           string
	Revision           string
	GameSerial         string
	ReleaseDate        string
	PublisherID        string
	DeveloperID        string
	Genre              string
	Players            int
	Rating             string
	Description        string
	ExternalMetadataID string
	NotFound           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Media is one physical dump belonging to a Release: a cartridge image or
// a single disc of a multi-disc set.
type Media struct {
	ID          string
	ReleaseID   string
	RomName     string
	MediaSerial string
	DiscNumber  int
	DiscLabel   string
	Revision    string
	DumpStatus  string
	DATName     string
	DATSource   string
	FileSize    int64
	CRC32       string
	SHA1        string
	MD5         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MediaAsset is an artwork or manual attachment. MediaID is empty when the
// asset belongs to the release as a whole.
type MediaAsset struct {
	ID        int64
	ReleaseID string
	MediaID   string
	Kind      string
	Location  string
	Source    string
	CreatedAt time.Time
}

// CollectionEntry marks a media row as owned.
type CollectionEntry struct {
	MediaID string
	Owner   string
	Notes   string
	AddedAt time.Time
}

// ImportRun is one appended import_log row.
type ImportRun struct {
	ID               int64
	RunID            string
	PlatformID       string
	DATSource        string
	DATName          string
	StartedAt        time.Time
	FinishedAt       time.Time
	GamesSeen        int
	WorksCreated     int
	ReleasesCreated  int
	MediaCreated     int
	MediaUpdated     int
	MediaUnchanged   int
	BadDumpsSkipped  int
	Disagreements    int
	OverridesApplied int
}

// Disagreement records two sources asserting different values for the same
// field of the same entity. The stored entity value is left untouched until
// a curator resolves the row.
type Disagreement struct {
	ID         int64
	EntityType string
	EntityID   string
	Field      string
	SourceA    string
	ValueA     string
	SourceB    string
	ValueB     string
	Resolved   bool
	Resolution string
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// Override is a persisted curator correction. Either EntityID or the
// (PlatformID, DATNamePattern) pair selects the targets.
type Override struct {
	ID             int64
	EntityType     string
	EntityID       string
	PlatformID     string
	DATNamePattern string
	Field          string
	Value          string
	Reason         string
	CreatedAt      time.Time
}

// Entity type names used in disagreements and overrides.
const (
	EntityRelease = "release"
	EntityMedia   = "media"
	EntityWork    = "work"
)

// Disagreement resolution outcomes.
const (
	ResolutionKeepA  = "keep_a"
	ResolutionKeepB  = "keep_b"
	ResolutionManual = "manual"
)

// Work relationship kinds recorded by reconciliation.
const (
	RelationMergedFrom = "merged_from"
)

// UpsertOutcome classifies what a deterministic upsert did to a row.
type UpsertOutcome int

const (
	OutcomeUnchanged UpsertOutcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}
