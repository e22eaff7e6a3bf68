// Package testsupport provides shared constructors for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"romcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.DATDir = filepath.Join(base, "dats")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.PlatformFile = ""
	cfg.Paths.OverrideFile = ""
	cfg.Import.ParseWorkers = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDATSource overrides the provenance label on the test config.
func WithDATSource(source string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Import.DATSource = source
	}
}
