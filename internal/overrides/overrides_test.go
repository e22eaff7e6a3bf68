package overrides

import (
	"context"
	"path/filepath"
	"testing"

	"romcat/internal/catalog"
	"romcat/internal/slug"
)

func TestParseAcceptsArrayAndWrapper(t *testing.T) {
	array := []byte(`[{"entity_type":"release","entity_id":"r1","field":"title","value":"Fixed"}]`)
	entries, err := Parse(array)
	if err != nil {
		t.Fatalf("parse array: %v", err)
	}
	if len(entries) != 1 || entries[0].Field != "title" {
		t.Fatalf("entries = %+v", entries)
	}

	wrapper := []byte("\xEF\xBB\xBF" + `{"overrides":[{"entity_type":"MEDIA","entity_id":"m1","field":"Dump_Status","value":"verified"}]}`)
	entries, err = Parse(wrapper)
	if err != nil {
		t.Fatalf("parse wrapper with BOM: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].EntityType != "media" || entries[0].Field != "dump_status" {
		t.Fatalf("normalize failed: %+v", entries[0])
	}
}

func TestParseEmptyFile(t *testing.T) {
	entries, err := Parse([]byte("  \n"))
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil entries, got %v", entries)
	}
}

func TestGlobToLike(t *testing.T) {
	cases := map[string]string{
		"Metal Gear*":      "Metal Gear%",
		"Disc ?":           "Disc _",
		"100%_done":        `100\%\_done`,
		"back\\slash":      `back\\slash`,
		"plain":            "plain",
		"*(USA)*(Disc ?)*": "%(USA)%(Disc _)%",
	}
	for glob, want := range cases {
		if got := globToLike(glob); got != want {
			t.Fatalf("globToLike(%q) = %q, want %q", glob, got, want)
		}
	}
}

func seedCatalog(t *testing.T) (*catalog.Store, catalog.Release) {
	t.Helper()
	ctx := context.Background()
	store, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.UpsertPlatform(ctx, catalog.Platform{ID: "psx", Name: "PlayStation", MediaType: "disc"}); err != nil {
		t.Fatalf("platform: %v", err)
	}
	workID := slug.WorkID("psx", "Metal Gear Solid")
	if _, err := store.EnsureWork(ctx, workID, "Metal Gear Solid"); err != nil {
		t.Fatalf("work: %v", err)
	}
	release := catalog.Release{
		ID:         slug.ReleaseID(workID, "psx", "usa"),
		WorkID:     workID,
		PlatformID: "psx",
		Region:     "usa",
		Title:      "Metal Gear Solid",
	}
	if _, err := store.EnsureRelease(ctx, release); err != nil {
		t.Fatalf("release: %v", err)
	}
	media := catalog.Media{
		ID:        slug.MediaID(release.ID, "Metal Gear Solid (USA) (Disc 1).bin"),
		ReleaseID: release.ID,
		RomName:   "Metal Gear Solid (USA) (Disc 1).bin",
		DATName:   "Metal Gear Solid (USA) (Disc 1)",
	}
	if _, err := store.UpsertMedia(ctx, media); err != nil {
		t.Fatalf("media: %v", err)
	}
	return store, release
}

func TestApplyByEntityID(t *testing.T) {
	store, release := seedCatalog(t)
	ctx := context.Background()

	entries := []Entry{{
		EntityType: catalog.EntityRelease,
		EntityID:   release.ID,
		Field:      "title",
		Value:      "Metal Gear Solid: Integral",
		Reason:     "regional title fix",
	}}
	stats, err := Apply(ctx, store.Ops, entries, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.Applied != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	got, err := store.GetRelease(ctx, release.ID)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if got.Title != "Metal Gear Solid: Integral" {
		t.Fatalf("title = %q", got.Title)
	}

	saved, err := store.ListOverrides(ctx)
	if err != nil {
		t.Fatalf("list overrides: %v", err)
	}
	if len(saved) != 1 || saved[0].Reason != "regional title fix" {
		t.Fatalf("saved overrides = %+v", saved)
	}
}

func TestApplyByPattern(t *testing.T) {
	store, release := seedCatalog(t)
	ctx := context.Background()

	entries := []Entry{{
		EntityType:     catalog.EntityMedia,
		Platform:       "psx",
		DATNamePattern: "Metal Gear*",
		Field:          "dump_status",
		Value:          "verified",
	}}
	stats, err := Apply(ctx, store.Ops, entries, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.Applied != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	media, err := store.ListMediaByRelease(ctx, release.ID)
	if err != nil {
		t.Fatalf("list media: %v", err)
	}
	if len(media) != 1 || media[0].DumpStatus != "verified" {
		t.Fatalf("media = %+v", media)
	}
}

func TestApplySkipsUnsafeFieldAndContinues(t *testing.T) {
	store, release := seedCatalog(t)
	ctx := context.Background()

	entries := []Entry{
		{
			EntityType: catalog.EntityRelease,
			EntityID:   release.ID,
			Field:      "work_id",
			Value:      "w-evil",
		},
		{
			EntityType: catalog.EntityRelease,
			EntityID:   release.ID,
			Field:      "genre",
			Value:      "stealth",
		},
	}
	stats, err := Apply(ctx, store.Ops, entries, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.Skipped != 1 || stats.Applied != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	got, err := store.GetRelease(ctx, release.ID)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if got.WorkID != release.WorkID {
		t.Fatal("work_id must be untouched")
	}
	if got.Genre != "stealth" {
		t.Fatalf("genre = %q", got.Genre)
	}
}

func TestApplyReportsMissingTargets(t *testing.T) {
	store, _ := seedCatalog(t)
	ctx := context.Background()

	entries := []Entry{{
		EntityType:     catalog.EntityMedia,
		Platform:       "psx",
		DATNamePattern: "Gran Turismo*",
		Field:          "dump_status",
		Value:          "verified",
	}}
	stats, err := Apply(ctx, store.Ops, entries, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if stats.NoTargets != 1 || stats.Applied != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
