package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/services"
)

func newPlatformsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List and seed catalog platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				platforms, err := store.ListPlatforms(cmd.Context())
				if err != nil {
					return err
				}
				if len(platforms) == 0 {
					cmd.Println("no platforms seeded; run 'romcat platforms seed'")
					return nil
				}
				rows := make([][]string, 0, len(platforms))
				for _, p := range platforms {
					year := ""
					if p.ReleaseYear > 0 {
						year = strconv.Itoa(p.ReleaseYear)
					}
					rows = append(rows, []string{p.ID, p.Name, p.Manufacturer, p.MediaType, year})
				}
				cmd.Println(renderTable([]string{"ID", "Name", "Manufacturer", "Media", "Year"}, rows))
				return nil
			})
		},
	}
	cmd.AddCommand(newPlatformsSeedCommand(ctx))
	return cmd
}

func newPlatformsSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Upsert platforms from a seed file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store) error {
				path := cfg.Paths.PlatformFile
				if len(args) == 1 {
					path = args[0]
				}
				if strings.TrimSpace(path) == "" {
					return services.Wrap(services.ErrValidation, "cli", "platforms",
						"no seed file given and paths.platform_file is not set", nil)
				}

				seeds, err := config.LoadPlatforms(path)
				if err != nil {
					return services.Wrap(services.ErrFormat, "cli", "platforms", "load "+path, err)
				}
				err = store.WithTx(cmd.Context(), func(tx *catalog.Tx) error {
					return tx.SeedPlatforms(cmd.Context(), seeds)
				})
				if err != nil {
					return err
				}
				cmd.Printf("seeded %d platform(s)\n", len(seeds))
				return nil
			})
		},
	}
}
