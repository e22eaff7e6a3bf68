package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"romcat/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Import.DATSource != "redump" {
		t.Fatalf("dat_source = %q", cfg.Import.DATSource)
	}
	if !filepath.IsAbs(cfg.Paths.CatalogDir) {
		t.Fatalf("expected expanded catalog dir, got %q", cfg.Paths.CatalogDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
catalog_dir = "` + dir + `/catalog"

[import]
dat_source = " no-intro "
parse_workers = 2

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Import.DATSource != "no-intro" {
		t.Fatalf("dat_source = %q", cfg.Import.DATSource)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.CatalogDBPath() != filepath.Join(dir, "catalog", "catalog.db") {
		t.Fatalf("db path = %q", cfg.CatalogDBPath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[import]
parse_workers = 0

[logging]
format = "yaml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "parse_workers") || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load, exists=%v err=%v", exists, err)
	}
}

func TestLoadPlatforms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.toml")
	content := `
[[platform]]
id = "nes"
name = "Nintendo Entertainment System"
manufacturer = "Nintendo"
media_type = "cartridge"
release_year = 1985
regions = ["usa", "japan", "europe"]

[[platform]]
id = "snes"
name = "Super Nintendo Entertainment System"
manufacturer = "Nintendo"
media_type = "cartridge"
predecessor = "nes"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write platforms: %v", err)
	}
	seeds, err := config.LoadPlatforms(path)
	if err != nil {
		t.Fatalf("LoadPlatforms: %v", err)
	}
	if len(seeds) != 2 {
		t.Fatalf("seeds = %d", len(seeds))
	}
	if seeds[1].Predecessor != "nes" {
		t.Fatalf("predecessor = %q", seeds[1].Predecessor)
	}
}

func TestLoadPlatformsRejectsBadMediaType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.toml")
	content := `
[[platform]]
id = "nes"
name = "NES"
media_type = "tape"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write platforms: %v", err)
	}
	if _, err := config.LoadPlatforms(path); err == nil {
		t.Fatal("expected media_type rejection")
	}
}
