package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"romcat/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage romcat configuration",
	}
	cmd.AddCommand(newConfigInitCommand(ctx))
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return err
			}
			if exists {
				cmd.Printf("config file: %s\n", resolved)
			} else {
				cmd.Println("config file: (defaults, no file found)")
			}

			rows := [][]string{
				{"paths.catalog_dir", cfg.Paths.CatalogDir},
				{"paths.dat_dir", cfg.Paths.DATDir},
				{"paths.cache_dir", cfg.Paths.CacheDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.platform_file", cfg.Paths.PlatformFile},
				{"paths.override_file", cfg.Paths.OverrideFile},
				{"import.dat_source", cfg.Import.DATSource},
				{"import.parse_workers", strconv.Itoa(cfg.Import.ParseWorkers)},
				{"enrichment.source_label", cfg.Enrichment.SourceLabel},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			cmd.Println(renderTable([]string{"Key", "Value"}, rows))
			return nil
		},
	}
}
