package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"artreview/internal/artcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the provider response cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how many provider responses are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *artcache.Cache) error {
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{"entries": cache.Len()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cached provider responses: %d\n", cache.Len())
				return nil
			})
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop expired provider responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *artcache.Cache) error {
				removed, err := cache.Prune()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries, %d remain\n", removed, cache.Len())
				return nil
			})
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached provider response",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *artcache.Cache) error {
				removed, err := cache.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries\n", removed)
				return nil
			})
		},
	})

	return cacheCmd
}
