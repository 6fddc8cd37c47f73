package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"artreview/internal/library/kodi"
	"artreview/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, Kodi and provider configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lib, err := kodi.New(cfg.Kodi.URL, cfg.KodiTimeout(), kodi.WithCredentials(cfg.Kodi.Username, cfg.Kodi.Password))
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, lib)
			failed := preflight.Failed(results)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				fmt.Fprintln(out, sectionHeader("Readiness", color))
				for _, r := range results {
					fmt.Fprintln(out, statusLine(r.Name, resultKind(r), r.Detail, color))
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d readiness checks failed", len(failed))
			}
			return nil
		},
	}
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Warning:
		return statusWarn
	default:
		return statusError
	}
}
