package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		problems = append(problems, "paths.catalog_dir must be set")
	}
	if c.Import.DATSource == "" {
		problems = append(problems, "import.dat_source must not be empty")
	}
	if c.Import.ParseWorkers < 1 {
		problems = append(problems, fmt.Sprintf("import.parse_workers must be >= 1, got %d", c.Import.ParseWorkers))
	}
	if c.Enrichment.SourceLabel == "" {
		problems = append(problems, "enrichment.source_label must not be empty")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
