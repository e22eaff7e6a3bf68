package main

import (
	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/overrides"
	"romcat/internal/services"
)

func newOverridesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Apply and inspect curator overrides",
	}
	cmd.AddCommand(newOverridesApplyCommand(ctx))
	cmd.AddCommand(newOverridesListCommand(ctx))
	return cmd
}

func newOverridesApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [file]",
		Short: "Apply an override file to the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store) error {
				path := cfg.Paths.OverrideFile
				if len(args) == 1 {
					path = args[0]
				}
				if path == "" {
					return services.Wrap(services.ErrValidation, "cli", "overrides",
						"no override file given and paths.override_file is not set", nil)
				}

				entries, err := overrides.Load(path)
				if err != nil {
					return err
				}
				var stats overrides.Stats
				err = store.WithTx(cmd.Context(), func(tx *catalog.Tx) error {
					stats, err = overrides.Apply(cmd.Context(), tx.Ops, entries, logger)
					return err
				})
				if err != nil {
					return err
				}
				cmd.Printf("applied %d override write(s), %d skipped, %d without targets\n",
					stats.Applied, stats.Skipped, stats.NoTargets)
				return nil
			})
		},
	}
}

func newOverridesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				list, err := store.ListOverrides(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					cmd.Println("no overrides stored")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, ov := range list {
					target := ov.EntityID
					if target == "" {
						target = ov.PlatformID + ":" + ov.DATNamePattern
					}
					rows = append(rows, []string{ov.EntityType, target, ov.Field, ov.Value, ov.Reason})
				}
				cmd.Println(renderTable([]string{"Entity", "Target", "Field", "Value", "Reason"}, rows))
				return nil
			})
		},
	}
}
