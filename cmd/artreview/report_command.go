package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"artreview/internal/queue"
	"artreview/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the last completed review report",
		Long: `Show the report of the most recently completed review session.

Only the latest report is kept. Use --current to inspect the unfinished
session instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				var (
					sess *queue.Session
					err  error
				)
				if current {
					sess, err = store.ActiveSession(cmd.Context())
				} else {
					sess, err = store.LastReport(cmd.Context())
				}
				if err != nil {
					return err
				}
				if sess == nil || sess.Report == nil {
					if ctx.JSONMode() {
						return writeJSON(cmd, nil)
					}
					if current {
						fmt.Fprintln(cmd.OutOrStdout(), "No unfinished session")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "No completed review yet")
					}
					return nil
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, sess.Report)
				}
				printReport(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "Show the unfinished session instead of the last completed one")
	return cmd
}

func printReport(out io.Writer, sess *queue.Session) {
	rep := sess.Report
	color := shouldColorize(out)
	title := cases.Title(language.English)

	fmt.Fprintln(out, sectionHeader("Session "+sess.ID, color))
	fmt.Fprintln(out, statusLine("Scope", statusInfo, string(sess.Scope), color))
	fmt.Fprintln(out, statusLine("Policy", statusInfo, string(sess.Mode), color))
	fmt.Fprintln(out, statusLine("Processing", statusInfo, strings.ReplaceAll(string(sess.Processing), "_", " "), color))
	fmt.Fprintln(out, statusLine("Started", statusInfo, formatReportTime(rep.StartedAt), color))
	if rep.CompletedAt != nil {
		fmt.Fprintln(out, statusLine("Completed", statusOK, formatReportTime(*rep.CompletedAt), color))
	} else {
		fmt.Fprintln(out, statusLine("Status", statusWarn, string(sess.Status), color))
	}
	fmt.Fprintln(out, statusLine("Totals", statusInfo, rep.Summary(), color))

	sections := []struct {
		name    string
		entries []report.Entry
		total   int
	}{
		{"selected", rep.Selected, rep.Counts.Selected},
		{"auto applied", rep.AutoApplied, rep.Counts.AutoApplied},
		{"skipped", rep.Skipped, rep.Counts.Skipped},
		{"stale", rep.Stale, rep.Counts.Stale},
	}
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		fmt.Fprintln(out)
		heading := title.String(section.name)
		if section.total > len(section.entries) {
			heading = fmt.Sprintf("%s (showing %d of %d)", heading, len(section.entries), section.total)
		}
		fmt.Fprintln(out, sectionHeader(heading, color))
		fmt.Fprint(out, renderTable(reportColumns, buildReportRows(section.entries)))
	}

	if len(rep.AutoRuns) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sectionHeader("Automatic passes", color))
		rows := make([][]string, 0, len(rep.AutoRuns))
		for _, run := range rep.AutoRuns {
			rows = append(rows, []string{
				formatReportTime(run.At),
				strconv.Itoa(run.Filled),
				strconv.Itoa(run.Skipped),
				strconv.Itoa(run.Remaining),
			})
		}
		fmt.Fprint(out, renderTable([]column{
			{Title: "At"},
			{Title: "Filled", Right: true},
			{Title: "Skipped", Right: true},
			{Title: "Remaining", Right: true},
		}, rows))
	}
}

var reportColumns = []column{
	{Title: "Item", Max: 40},
	{Title: "Art"},
	{Title: "Provider"},
	{Title: "Detail", Max: 60},
}

func buildReportRows(entries []report.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		item := e.Title
		if e.Year != "" {
			item = fmt.Sprintf("%s (%s)", e.Title, e.Year)
		}
		detail := e.Reason
		switch {
		case len(e.URLs) > 0:
			detail = fmt.Sprintf("%d images", len(e.URLs))
		case e.URL != "":
			detail = e.URL
		}
		rows = append(rows, []string{item, e.ArtType, e.Provider, detail})
	}
	return rows
}

func formatReportTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
