package config

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir:   "~/.local/share/romcat",
			DATDir:       "~/.local/share/romcat/dats",
			CacheDir:     "~/.cache/romcat",
			LogDir:       "~/.local/share/romcat/logs",
			PlatformFile: "~/.config/romcat/platforms.toml",
			OverrideFile: "",
		},
		Import: Import{
			DATSource:    "redump",
			ParseWorkers: 4,
		},
		Enrichment: Enrichment{
			SourceLabel: "metadata-service",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
