package main

import (
	"strings"

	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile [systems...]",
		Short: "Merge works proven duplicates by external metadata ids",
		Long: `Reconcile merges works whose releases share an external metadata id.
With platform ids as arguments, only duplicates evidenced on those systems
are merged; with none, the whole catalog is swept.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if dryRun {
				return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
					merges, err := reconcile.New(store, logger).Plan(cmd.Context(), args...)
					if err != nil {
						return err
					}
					if len(merges) == 0 {
						cmd.Println("no duplicate works found")
						return nil
					}
					rows := make([][]string, 0, len(merges))
					for _, m := range merges {
						rows = append(rows, []string{
							m.ExternalMetadataID,
							m.SurvivorName,
							m.SurvivorID,
							strings.Join(m.AbsorbedIDs, ", "),
						})
					}
					cmd.Println(renderTable([]string{"External ID", "Survivor", "Survivor ID", "Would Absorb"}, rows))
					return nil
				})
			}

			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, err := reconcile.New(store, logger).Run(cmd.Context(), args...)
				if err != nil {
					return err
				}
				cmd.Printf("merged %d group(s): %d work(s) absorbed, %d release(s) moved, %d folded, %d media row(s) re-keyed\n",
					stats.Groups, stats.WorksAbsorbed, stats.ReleasesMoved, stats.ReleasesFolded, stats.MediaMoved)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan merges without writing")
	return cmd
}
