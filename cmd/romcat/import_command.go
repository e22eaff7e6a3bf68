package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/importer"
	"romcat/internal/services"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <platform> [dat-file-or-dir]...",
		Short: "Import DAT files into the catalog",
		Long: `Import parses each DAT file and folds it into the catalog in a single
transaction. With no paths given, the configured dat_dir is scanned.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store) error {
				paths, err := collectDATPaths(cfg, args[1:])
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return services.Wrap(services.ErrValidation, "cli", "import", "no dat files found", nil)
				}

				imp := importer.New(store, cfg, logger)
				stats, err := imp.Run(cmd.Context(), args[0], paths)
				if err != nil {
					return err
				}
				printRunStats(cmd, stats)
				return nil
			})
		},
	}
	return cmd
}

func printRunStats(cmd *cobra.Command, stats *importer.RunStats) {
	rows := make([][]string, 0, len(stats.Files))
	for _, fs := range stats.Files {
		rows = append(rows, []string{
			fs.DATName,
			strconv.Itoa(fs.GamesSeen),
			strconv.Itoa(fs.WorksCreated),
			strconv.Itoa(fs.ReleasesCreated),
			strconv.Itoa(fs.MediaCreated),
			strconv.Itoa(fs.MediaUpdated),
			strconv.Itoa(fs.MediaUnchanged),
			strconv.Itoa(fs.BadDumpsSkipped),
			strconv.Itoa(fs.Disagreements),
		})
	}
	cmd.Println(renderTable(
		[]string{"DAT", "Games", "Works+", "Releases+", "Media+", "Media~", "Media=", "Bad", "Disagreements"},
		rows))
	if stats.FilesSkipped > 0 {
		cmd.Printf("%d file(s) skipped as unparseable\n", stats.FilesSkipped)
	}
	if stats.OverridesApplied > 0 {
		cmd.Printf("%d override write(s) applied\n", stats.OverridesApplied)
	}
	cmd.Printf("run %s complete\n", stats.RunID)
}

func collectDATPaths(cfg *config.Config, args []string) ([]string, error) {
	roots := args
	if len(roots) == 0 && cfg.Paths.DATDir != "" {
		roots = []string{cfg.Paths.DATDir}
	}

	var paths []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "import", "stat "+root, err)
		}
		if !info.IsDir() {
			paths = append(paths, root)
			continue
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "import", "read "+root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".dat", ".xml":
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
