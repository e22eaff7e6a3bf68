package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"romcat/internal/catalog"
	"romcat/internal/services"
	"romcat/internal/slug"
)

func openStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedRelease(t *testing.T, store *catalog.Store, platformID, title, region string) catalog.Release {
	t.Helper()
	ctx := context.Background()
	if err := store.UpsertPlatform(ctx, catalog.Platform{
		ID: platformID, Name: platformID, MediaType: "disc",
	}); err != nil {
		t.Fatalf("upsert platform: %v", err)
	}
	workID := slug.WorkID(platformID, title)
	if _, err := store.EnsureWork(ctx, workID, title); err != nil {
		t.Fatalf("ensure work: %v", err)
	}
	release := catalog.Release{
		ID:         slug.ReleaseID(workID, platformID, region),
		WorkID:     workID,
		PlatformID: platformID,
		Region:     region,
		Title:      title,
	}
	if _, err := store.EnsureRelease(ctx, release); err != nil {
		t.Fatalf("ensure release: %v", err)
	}
	return release
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.OpenPath(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	store, err = catalog.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = store.Close()
}

func TestOpenRefusesNewerSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.OpenPath(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("raw open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("raw close: %v", err)
	}

	if _, err := catalog.OpenPath(path); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("reopen error = %v, want ErrSchemaMismatch", err)
	}
}

func TestEnsureWorkIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id := slug.WorkID("psx", "Metal Gear Solid")
	created, err := store.EnsureWork(ctx, id, "Metal Gear Solid")
	if err != nil {
		t.Fatalf("ensure work: %v", err)
	}
	if !created {
		t.Fatal("first ensure should create")
	}
	created, err = store.EnsureWork(ctx, id, "Metal Gear Solid")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if created {
		t.Fatal("second ensure must not create")
	}

	w, err := store.GetWork(ctx, id)
	if err != nil {
		t.Fatalf("get work: %v", err)
	}
	if w.CanonicalName != "Metal Gear Solid" {
		t.Fatalf("canonical name = %q", w.CanonicalName)
	}
}

func TestEnsureReleaseDoesNotClobber(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	if err := store.UpdateField(ctx, catalog.EntityRelease, release.ID, "genre", "stealth"); err != nil {
		t.Fatalf("update field: %v", err)
	}

	// Re-import of the same game must leave curated fields alone.
	created, err := store.EnsureRelease(ctx, release)
	if err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
	if created {
		t.Fatal("re-ensure must not create")
	}
	got, err := store.GetRelease(ctx, release.ID)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if got.Genre != "stealth" {
		t.Fatalf("genre = %q, want stealth", got.Genre)
	}
}

func TestUpsertMediaOutcomes(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	media := catalog.Media{
		ID:          slug.MediaID(release.ID, "Metal Gear Solid (USA) (Disc 1).bin"),
		ReleaseID:   release.ID,
		RomName:     "Metal Gear Solid (USA) (Disc 1).bin",
		MediaSerial: "SLUS00594",
		DiscNumber:  1,
		DATName:     "Metal Gear Solid (USA) (Disc 1)",
		DATSource:   "redump",
		FileSize:    681574400,
		CRC32:       "a1b2c3d4",
		SHA1:        "0123456789abcdef0123456789abcdef01234567",
	}

	outcome, err := store.UpsertMedia(ctx, media)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if outcome != catalog.OutcomeCreated {
		t.Fatalf("first upsert = %v, want created", outcome)
	}

	outcome, err = store.UpsertMedia(ctx, media)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if outcome != catalog.OutcomeUnchanged {
		t.Fatalf("identical upsert = %v, want unchanged", outcome)
	}

	media.DumpStatus = "verified"
	outcome, err = store.UpsertMedia(ctx, media)
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if outcome != catalog.OutcomeUpdated {
		t.Fatalf("changed upsert = %v, want updated", outcome)
	}

	got, err := store.GetMedia(ctx, media.ID)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if got.DumpStatus != "verified" {
		t.Fatalf("dump status = %q", got.DumpStatus)
	}
	if got.CreatedAt.IsZero() || got.CreatedAt.After(got.UpdatedAt) {
		t.Fatalf("timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestLookupMediaByHashRequiresSizeForCRC(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	media := catalog.Media{
		ID:        slug.MediaID(release.ID, "mgs.bin"),
		ReleaseID: release.ID,
		RomName:   "mgs.bin",
		FileSize:  1024,
		CRC32:     "deadbeef",
		SHA1:      "1111111111111111111111111111111111111111",
	}
	if _, err := store.UpsertMedia(ctx, media); err != nil {
		t.Fatalf("upsert media: %v", err)
	}

	found, err := store.LookupMediaByHash(ctx, 1024, "deadbeef", "")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("crc+size lookup found %d rows", len(found))
	}

	// Same CRC but wrong size must not confirm; the SHA1 probe decides.
	found, err = store.LookupMediaByHash(ctx, 2048, "deadbeef", "1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("sha1 fallback found %d rows", len(found))
	}

	found, err = store.LookupMediaByHash(ctx, 2048, "deadbeef", "")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("wrong size without sha1 found %d rows", len(found))
	}
}

func TestResolveCompanyAliases(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.ResolveCompany(ctx, "Squaresoft")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := store.AddCompanyAlias(ctx, first.ID, "Square Soft, Inc."); err != nil {
		t.Fatalf("add alias: %v", err)
	}

	second, err := store.ResolveCompany(ctx, "SQUARESOFT")
	if err != nil {
		t.Fatalf("resolve upper: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("case variant minted new company %q != %q", second.ID, first.ID)
	}

	third, err := store.ResolveCompany(ctx, "Square Soft, Inc.")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	if third.ID != first.ID {
		t.Fatalf("alias resolved to %q, want %q", third.ID, first.ID)
	}

	other, err := store.ResolveCompany(ctx, "Konami")
	if err != nil {
		t.Fatalf("resolve other: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("distinct companies must not share an id")
	}
}

func TestDisagreementLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	if err := store.UpdateField(ctx, catalog.EntityRelease, release.ID, "release_date", "1998-10-21"); err != nil {
		t.Fatalf("seed release date: %v", err)
	}

	d := catalog.Disagreement{
		EntityType: catalog.EntityRelease,
		EntityID:   release.ID,
		Field:      "release_date",
		SourceA:    "dat-import",
		ValueA:     "1998-10-21",
		SourceB:    "metadata-service",
		ValueB:     "1998-11-20",
	}
	created, err := store.RecordDisagreement(ctx, d)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !created {
		t.Fatal("first record should insert")
	}

	// A re-run of the same comparison must not duplicate the open row.
	created, err = store.RecordDisagreement(ctx, d)
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if created {
		t.Fatal("duplicate open disagreement inserted")
	}

	open, err := store.ListDisagreements(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open disagreements = %d", len(open))
	}

	if err := store.ResolveDisagreement(ctx, open[0].ID, catalog.ResolutionKeepB, ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := store.GetRelease(ctx, release.ID)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if got.ReleaseDate != "1998-11-20" {
		t.Fatalf("release date = %q, want keep_b value", got.ReleaseDate)
	}

	open, err = store.ListDisagreements(ctx, true)
	if err != nil {
		t.Fatalf("list after resolve: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("open disagreements after resolve = %d", len(open))
	}

	// Once resolved, the same conflict may be recorded again.
	created, err = store.RecordDisagreement(ctx, d)
	if err != nil {
		t.Fatalf("record after resolve: %v", err)
	}
	if !created {
		t.Fatal("new disagreement after resolution should insert")
	}
}

func TestUpdateFieldRejectsUnsafeField(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	err := store.UpdateField(ctx, catalog.EntityRelease, release.ID, "work_id", "w0000000000000000")
	if !errors.Is(err, services.ErrUnsafeField) {
		t.Fatalf("expected ErrUnsafeField, got %v", err)
	}

	err = store.UpdateField(ctx, catalog.EntityRelease, release.ID, "players", "two")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-numeric players, got %v", err)
	}
	if err := store.UpdateField(ctx, catalog.EntityRelease, release.ID, "players", "2"); err != nil {
		t.Fatalf("numeric players: %v", err)
	}

	err = store.UpdateField(ctx, catalog.EntityRelease, "r-missing", "title", "X")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFieldStatusWritesDumpStatus(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	media := catalog.Media{
		ID:        slug.MediaID(release.ID, "Metal Gear Solid (USA).bin"),
		ReleaseID: release.ID,
		RomName:   "Metal Gear Solid (USA).bin",
		DATName:   "Metal Gear Solid (USA)",
	}
	if _, err := store.UpsertMedia(ctx, media); err != nil {
		t.Fatalf("upsert media: %v", err)
	}

	if err := store.UpdateField(ctx, catalog.EntityMedia, media.ID, "status", "verified"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := store.GetMedia(ctx, media.ID)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if got.DumpStatus != "verified" {
		t.Fatalf("dump status = %q, want verified", got.DumpStatus)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx *catalog.Tx) error {
		if _, err := tx.EnsureWork(ctx, slug.WorkID("psx", "Vagrant Story"), "Vagrant Story"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_, err = store.GetWork(ctx, slug.WorkID("psx", "Vagrant Story"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("rolled-back work should be absent, got %v", err)
	}
}

func TestFindDuplicateWorkGroups(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a := seedRelease(t, store, "psx", "Chrono Cross", "usa")
	b := seedRelease(t, store, "psx", "Chrono Cross Beta", "japan")
	c := seedRelease(t, store, "psx", "Vagrant Story", "usa")

	for _, rel := range []catalog.Release{a, b} {
		got, err := store.GetRelease(ctx, rel.ID)
		if err != nil {
			t.Fatalf("get release: %v", err)
		}
		got.ExternalMetadataID = "igdb-1121"
		if err := store.UpdateReleaseEnrichment(ctx, got); err != nil {
			t.Fatalf("set external id: %v", err)
		}
	}
	got, err := store.GetRelease(ctx, c.ID)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	got.ExternalMetadataID = "igdb-2222"
	if err := store.UpdateReleaseEnrichment(ctx, got); err != nil {
		t.Fatalf("set external id: %v", err)
	}

	groups, err := store.FindDuplicateWorkGroups(ctx)
	if err != nil {
		t.Fatalf("find groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].ExternalMetadataID != "igdb-1121" {
		t.Fatalf("group id = %q", groups[0].ExternalMetadataID)
	}
	if len(groups[0].Works) != 2 {
		t.Fatalf("group works = %d, want 2", len(groups[0].Works))
	}
}

func TestFindOverrideTargets(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	release := seedRelease(t, store, "psx", "Metal Gear Solid", "usa")
	for _, name := range []string{"Metal Gear Solid (USA) (Disc 1)", "Metal Gear Solid (USA) (Disc 2)"} {
		media := catalog.Media{
			ID:        slug.MediaID(release.ID, name+".bin"),
			ReleaseID: release.ID,
			RomName:   name + ".bin",
			DATName:   name,
		}
		if _, err := store.UpsertMedia(ctx, media); err != nil {
			t.Fatalf("upsert media: %v", err)
		}
	}
	other := seedRelease(t, store, "psx", "Vagrant Story", "usa")
	media := catalog.Media{
		ID:        slug.MediaID(other.ID, "Vagrant Story (USA).bin"),
		ReleaseID: other.ID,
		RomName:   "Vagrant Story (USA).bin",
		DATName:   "Vagrant Story (USA)",
	}
	if _, err := store.UpsertMedia(ctx, media); err != nil {
		t.Fatalf("upsert media: %v", err)
	}

	ids, err := store.FindOverrideTargets(ctx, catalog.EntityMedia, "psx", "Metal Gear Solid%")
	if err != nil {
		t.Fatalf("find targets: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("media targets = %d, want 2", len(ids))
	}

	ids, err = store.FindOverrideTargets(ctx, catalog.EntityRelease, "psx", "Metal Gear Solid%")
	if err != nil {
		t.Fatalf("find release targets: %v", err)
	}
	if len(ids) != 1 || ids[0] != release.ID {
		t.Fatalf("release targets = %v", ids)
	}
}

func TestSaveOverrideRejectsUnsafeField(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.SaveOverride(ctx, catalog.Override{
		EntityType: catalog.EntityRelease,
		EntityID:   "r1234",
		Field:      "work_id",
		Value:      "w9999",
	})
	if !errors.Is(err, services.ErrUnsafeField) {
		t.Fatalf("expected ErrUnsafeField, got %v", err)
	}
}
