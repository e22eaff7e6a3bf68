// Package config loads and validates romcat's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and data-file configuration.
type Paths struct {
	CatalogDir   string `toml:"catalog_dir"`
	DATDir       string `toml:"dat_dir"`
	CacheDir     string `toml:"cache_dir"`
	LogDir       string `toml:"log_dir"`
	PlatformFile string `toml:"platform_file"`
	OverrideFile string `toml:"override_file"`
}

// Import contains import pipeline settings.
type Import struct {
	// DATSource labels the provenance recorded on imported media rows
	// (e.g. "redump", "no-intro").
	DATSource string `toml:"dat_source"`
	// ParseWorkers bounds concurrent DAT file parsing. Import
	// transactions themselves always run sequentially.
	ParseWorkers int `toml:"parse_workers"`
}

// Enrichment contains metadata-service settings consumed by the merge
// engine when enrichment facts are applied.
type Enrichment struct {
	// SourceLabel names the service as source_b in disagreement rows.
	SourceLabel string `toml:"source_label"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for romcat.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Import     Import     `toml:"import"`
	Enrichment Enrichment `toml:"enrichment"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/romcat/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists
// at the resolved location the defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("romcat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.CatalogDir,
		&c.Paths.DATDir,
		&c.Paths.CacheDir,
		&c.Paths.LogDir,
		&c.Paths.PlatformFile,
		&c.Paths.OverrideFile,
	}
	for _, field := range paths {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Import.DATSource = strings.TrimSpace(c.Import.DATSource)
	c.Enrichment.SourceLabel = strings.TrimSpace(c.Enrichment.SourceLabel)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories required for catalog operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CatalogDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogDBPath returns the SQLite database path inside the catalog dir.
func (c *Config) CatalogDBPath() string {
	return filepath.Join(c.Paths.CatalogDir, "catalog.db")
}

// LockPath returns the file-lock path guarding catalog writes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CatalogDir, "catalog.lock")
}

// LogFilePath returns the log file location, or empty when no log dir is
// configured.
func (c *Config) LogFilePath() string {
	if c.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "romcat.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the given location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
