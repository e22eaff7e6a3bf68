package main

import (
	"github.com/spf13/cobra"

	"romcat/internal/datcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the versioned DAT cache",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached DAT files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache := datcache.New(cfg.Paths.CacheDir, logger)
			names, err := cache.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				cmd.Println("cache is empty")
				return nil
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}

	var versionFlag int
	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Prepare the cache for a DAT set version, wiping stale contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache := datcache.New(cfg.Paths.CacheDir, logger)
			invalidated, err := cache.Ensure(versionFlag)
			if err != nil {
				return err
			}
			if invalidated {
				cmd.Println("cache invalidated")
			} else {
				cmd.Println("cache is current")
			}
			return nil
		},
	}
	ensure.Flags().IntVar(&versionFlag, "version", 1, "Current DAT set version")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := datcache.New(cfg.Paths.CacheDir, logger).Clear(); err != nil {
				return err
			}
			cmd.Println("cache cleared")
			return nil
		},
	}

	cmd.AddCommand(list, ensure, clear)
	return cmd
}
