package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)
	ctx := newCommandContext(&configPath, &jsonOutput)

	root := &cobra.Command{
		Use:   "artreview",
		Short: "Review and fill missing library artwork",
		Long: "artreview scans a Kodi library for artwork slots that are empty or below\n" +
			"the preferred quality, queues them, and resolves each one from TMDB and\n" +
			"fanart.tv either automatically or through an interactive review.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file path")
	flags.BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON where supported")

	root.AddCommand(
		newReviewCommand(ctx),
		newQueueCommand(ctx),
		newReportCommand(ctx),
		newCacheCommand(ctx),
		newStatusCommand(ctx),
		newLogsCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
