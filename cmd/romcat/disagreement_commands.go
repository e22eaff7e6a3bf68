package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/services"
)

func newDisagreementsCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "disagreements",
		Short: "List recorded source disagreements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				list, err := store.ListDisagreements(cmd.Context(), !allFlag)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					cmd.Println("no disagreements")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, d := range list {
					status := "open"
					if d.Resolved {
						status = d.Resolution
					}
					rows = append(rows, []string{
						strconv.FormatInt(d.ID, 10),
						d.EntityType,
						d.EntityID,
						d.Field,
						d.SourceA + "=" + d.ValueA,
						d.SourceB + "=" + d.ValueB,
						status,
					})
				}
				cmd.Println(renderTable(
					[]string{"ID", "Entity", "Entity ID", "Field", "Source A", "Source B", "Status"},
					rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&allFlag, "all", false, "Include resolved disagreements")
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <id> <keep_a|keep_b|manual> [value]",
		Short: "Resolve a disagreement",
		Long: `Resolve closes one disagreement. keep_a keeps the stored value, keep_b
writes the challenger's value, manual writes the supplied value. Writes go
through the same field allow-list that guards overrides.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve", "disagreement id must be a number", err)
			}
			resolution := args[1]
			manual := ""
			if len(args) == 3 {
				manual = args[2]
			}
			if resolution == catalog.ResolutionManual && manual == "" {
				return services.Wrap(services.ErrValidation, "cli", "resolve", "manual resolution needs a value", nil)
			}

			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store) error {
				err := store.WithTx(cmd.Context(), func(tx *catalog.Tx) error {
					return tx.ResolveDisagreement(cmd.Context(), id, resolution, manual)
				})
				if err != nil {
					return err
				}
				cmd.Printf("disagreement %d resolved (%s)\n", id, resolution)
				return nil
			})
		},
	}
	return cmd
}
