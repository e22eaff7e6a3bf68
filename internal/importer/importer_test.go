package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/slug"
	"romcat/internal/testsupport"
)

const zeldaDAT = `<?xml version="1.0"?>
<datafile>
  <header>
    <name>Nintendo - Nintendo Entertainment System</name>
    <version>2024-01-01</version>
  </header>
  <game name="Zelda (USA)">
    <rom name="Zelda (USA).nes" size="131088" crc="a12d74c1" sha1="aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"/>
  </game>
  <game name="Zelda (USA) (Rev A)">
    <rom name="Zelda (USA) (Rev A).nes" size="131088" crc="cebd2a31" sha1="bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"/>
  </game>
</datafile>`

func newImporter(t *testing.T) (*Importer, *catalog.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.UpsertPlatform(context.Background(), catalog.Platform{
		ID: "nes", Name: "Nintendo Entertainment System", MediaType: "cartridge",
	}); err != nil {
		t.Fatalf("seed platform: %v", err)
	}
	return New(store, cfg, nil), store, cfg
}

func writeDAT(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dat: %v", err)
	}
	return path
}

func TestImportZeldaScenario(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx := context.Background()

	path := writeDAT(t, t.TempDir(), "nes.dat", zeldaDAT)
	stats, err := imp.Run(ctx, "nes", []string{path})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(stats.Files) != 1 {
		t.Fatalf("files imported = %d", len(stats.Files))
	}
	fs := stats.Files[0]
	if fs.WorksCreated != 1 || fs.ReleasesCreated != 1 || fs.MediaCreated != 2 {
		t.Fatalf("stats = %+v", fs)
	}

	workID := slug.WorkID("nes", "Zelda")
	releaseID := slug.ReleaseID(workID, "nes", "usa")
	media, err := store.ListMediaByRelease(ctx, releaseID)
	if err != nil {
		t.Fatalf("list media: %v", err)
	}
	if len(media) != 2 {
		t.Fatalf("media rows = %d, want 2 on one release", len(media))
	}

	revisions := map[string]string{}
	for _, m := range media {
		revisions[m.CRC32] = m.Revision
	}
	if revisions["cebd2a31"] != "Rev A" {
		t.Fatalf("rev-a revision = %q", revisions["cebd2a31"])
	}
	if revisions["a12d74c1"] != "" {
		t.Fatalf("base revision = %q, want empty", revisions["a12d74c1"])
	}
}

func TestImportIsIdempotent(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx := context.Background()

	path := writeDAT(t, t.TempDir(), "nes.dat", zeldaDAT)
	if _, err := imp.Run(ctx, "nes", []string{path}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := imp.Run(ctx, "nes", []string{path})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	fs := stats.Files[0]
	if fs.WorksCreated != 0 || fs.ReleasesCreated != 0 || fs.MediaCreated != 0 {
		t.Fatalf("second run created rows: %+v", fs)
	}
	if fs.MediaUnchanged != 2 {
		t.Fatalf("media unchanged = %d, want 2", fs.MediaUnchanged)
	}

	runs, err := store.ListImportRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("import log rows = %d, want 2", len(runs))
	}
}

func TestImportSkipsBadDumpsAndEmptyTitles(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx := context.Background()

	dat := `<?xml version="1.0"?>
<datafile>
  <header><name>NES</name></header>
  <game name="Zelda (USA) [b]">
    <rom name="Zelda (USA) [b].nes" size="131088" crc="11111111"/>
  </game>
  <game name="(USA)">
    <rom name="nameless.nes" size="1024" crc="22222222"/>
  </game>
  <game name="Metroid (USA)">
    <rom name="Metroid (USA).nes" size="131088" crc="33333333"/>
  </game>
</datafile>`
	path := writeDAT(t, t.TempDir(), "nes.dat", dat)
	stats, err := imp.Run(ctx, "nes", []string{path})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	fs := stats.Files[0]
	if fs.BadDumpsSkipped != 1 {
		t.Fatalf("bad dumps skipped = %d", fs.BadDumpsSkipped)
	}
	if fs.EmptyTitles != 1 {
		t.Fatalf("empty titles = %d", fs.EmptyTitles)
	}
	if fs.MediaCreated != 1 {
		t.Fatalf("media created = %d", fs.MediaCreated)
	}

	if _, err := store.GetWork(ctx, slug.WorkID("nes", "Metroid")); err != nil {
		t.Fatalf("good entry missing: %v", err)
	}
}

func TestImportRecordsSerialDisagreement(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx := context.Background()
	dir := t.TempDir()

	first := `<?xml version="1.0"?>
<datafile>
  <header><name>NES A</name></header>
  <game name="Zelda (USA)">
    <rom name="Zelda (USA).nes" size="131088" crc="a12d74c1" serial="NES-ZL-USA"/>
  </game>
</datafile>`
	second := `<?xml version="1.0"?>
<datafile>
  <header><name>NES B</name></header>
  <game name="Zelda (USA)">
    <rom name="Zelda (USA).nes" size="131088" crc="a12d74c1" serial="NES-ZL-0"/>
  </game>
</datafile>`

	if _, err := imp.Run(ctx, "nes", []string{writeDAT(t, dir, "a.dat", first)}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := imp.Run(ctx, "nes", []string{writeDAT(t, dir, "b.dat", second)})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Files[0].Disagreements != 1 {
		t.Fatalf("disagreements = %d, want 1", stats.Files[0].Disagreements)
	}

	open, err := store.ListDisagreements(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 1 || open[0].Field != "game_serial" {
		t.Fatalf("open = %+v", open)
	}
	// The stored value stays until a curator resolves it.
	workID := slug.WorkID("nes", "Zelda")
	release, err := store.GetRelease(ctx, slug.ReleaseID(workID, "nes", "usa"))
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if release.GameSerial != "NESZLUSA" {
		t.Fatalf("stored serial = %q", release.GameSerial)
	}
}

func TestImportSkipsUnparseableFileAndContinues(t *testing.T) {
	imp, _, _ := newImporter(t)
	ctx := context.Background()
	dir := t.TempDir()

	bad := writeDAT(t, dir, "bad.dat", "this is not a dat file")
	good := writeDAT(t, dir, "good.dat", zeldaDAT)

	stats, err := imp.Run(ctx, "nes", []string{bad, good})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesSkipped != 1 {
		t.Fatalf("files skipped = %d", stats.FilesSkipped)
	}
	if len(stats.Files) != 1 {
		t.Fatalf("files imported = %d", len(stats.Files))
	}
}

func TestImportAppliesOverrideFile(t *testing.T) {
	imp, store, cfg := newImporter(t)
	ctx := context.Background()
	dir := t.TempDir()

	overridePath := filepath.Join(dir, "overrides.json")
	overrideJSON := `[{"entity_type":"release","platform":"nes","dat_name_pattern":"Zelda*","field":"title","value":"The Legend of Zelda"}]`
	if err := os.WriteFile(overridePath, []byte(overrideJSON), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	cfg.Paths.OverrideFile = overridePath

	path := writeDAT(t, dir, "nes.dat", zeldaDAT)
	stats, err := imp.Run(ctx, "nes", []string{path})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.OverridesApplied != 1 {
		t.Fatalf("overrides applied = %d", stats.OverridesApplied)
	}

	workID := slug.WorkID("nes", "Zelda")
	release, err := store.GetRelease(ctx, slug.ReleaseID(workID, "nes", "usa"))
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if release.Title != "The Legend of Zelda" {
		t.Fatalf("title = %q", release.Title)
	}

	// Override application lands as its own log row under the run id, so
	// per-file statistics stay exactly what each DAT did.
	runs, err := store.ListImportRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("import log rows = %d, want dat row plus overrides row", len(runs))
	}
	summary := runs[0]
	if summary.DATName != "overrides" || summary.OverridesApplied != 1 {
		t.Fatalf("summary row = %+v", summary)
	}
	if summary.RunID != stats.RunID {
		t.Fatalf("summary run id = %q, want %q", summary.RunID, stats.RunID)
	}
}

func TestFileRegionFallbacks(t *testing.T) {
	imp, store, _ := newImporter(t)
	ctx := context.Background()

	dat := `clrmamepro (
	name "NES"
)
game (
	name "Mother"
	region "Japan"
	rom ( name "Mother.nes" size 1024 crc 44444444 )
)
game (
	name "Homebrew Quest"
	rom ( name "Homebrew Quest.nes" size 1024 crc 55555555 )
)`
	path := writeDAT(t, t.TempDir(), "nes.dat", dat)
	if _, err := imp.Run(ctx, "nes", []string{path}); err != nil {
		t.Fatalf("run: %v", err)
	}

	motherWork := slug.WorkID("nes", "Mother")
	if _, err := store.GetRelease(ctx, slug.ReleaseID(motherWork, "nes", "japan")); err != nil {
		t.Fatalf("explicit region key should file under japan: %v", err)
	}
	homebrewWork := slug.WorkID("nes", "Homebrew Quest")
	if _, err := store.GetRelease(ctx, slug.ReleaseID(homebrewWork, "nes", "unknown")); err != nil {
		t.Fatalf("untagged entry should file under unknown: %v", err)
	}
}
