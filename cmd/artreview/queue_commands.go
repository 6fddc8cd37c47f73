package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artreview/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the review queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueuePeekCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts and the unfinished session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				sess, err := store.ActiveSession(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, queueStatusJSON(stats, sess))
				}

				out := cmd.OutOrStdout()
				if sess != nil {
					fmt.Fprintf(out, "Session %s: %s, %s policy, %s (%s)\n",
						sess.ID, sess.Scope, sess.Mode, sess.Processing, sess.Status)
					fmt.Fprintf(out, "Progress: %s\n", sess.Report.Summary())
				} else {
					fmt.Fprintln(out, "No unfinished session")
				}
				if stats.Total() == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				fmt.Fprint(out, renderTable([]column{{Title: "Art type"}, {Title: "Entries", Right: true}}, buildStatsRows(stats)))
				fmt.Fprintf(out, "Pending: %d, in review: %d\n", stats.Pending, stats.InReview)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok || status.Terminal() {
					return fmt.Errorf("invalid queue status %q (want pending or in_review)", raw)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(store *queue.Store) error {
				entries, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				return printEntries(cmd, ctx, entries)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueuePeekCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "peek [count]",
		Short: "Show the next pending entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 10
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				limit = n
			}
			return ctx.withStore(func(store *queue.Store) error {
				entries, err := store.Peek(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printEntries(cmd, ctx, entries)
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every queued entry",
		Long:  "Remove every queued entry. The unfinished session keeps its report; resuming it finds nothing left to review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue entries\n", removed)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if ctx.JSONMode() {
					if jsonErr := writeJSON(cmd, health); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				fmt.Fprintln(out, sectionHeader("Queue database", color))
				fmt.Fprintln(out, statusLine("Path", statusInfo, health.DBPath, color))
				fmt.Fprintln(out, statusLine("Exists", boolKind(health.DatabaseExists), yesNo(health.DatabaseExists), color))
				fmt.Fprintln(out, statusLine("Readable", boolKind(health.DatabaseReadable), yesNo(health.DatabaseReadable), color))
				fmt.Fprintln(out, statusLine("Schema version", statusInfo, strconv.Itoa(health.SchemaVersion), color))
				if len(health.MissingTables) > 0 {
					fmt.Fprintln(out, statusLine("Tables", statusError, "missing "+strings.Join(health.MissingTables, ", "), color))
				} else {
					fmt.Fprintln(out, statusLine("Tables", statusOK, strings.Join(health.TablesPresent, ", "), color))
				}
				fmt.Fprintln(out, statusLine("Integrity", boolKind(health.IntegrityCheck), yesNo(health.IntegrityCheck), color))
				fmt.Fprintln(out, statusLine("Entries", statusInfo, strconv.Itoa(health.TotalEntries), color))
				if health.Error != "" {
					fmt.Fprintln(out, statusLine("Error", statusError, health.Error, color))
				}
				return err
			})
		},
	}
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}

func printEntries(cmd *cobra.Command, ctx *commandContext, entries []*queue.Entry) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, entriesJSON(entries))
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Queue is empty")
		return nil
	}
	fmt.Fprint(out, renderTable(entryColumns, buildEntryRows(entries)))
	return nil
}

var entryColumns = []column{
	{Title: "ID", Right: true},
	{Title: "Item", Max: 40},
	{Title: "Art"},
	{Title: "Status"},
	{Title: "Kind"},
	{Title: "Queued"},
}

func buildEntryRows(entries []*queue.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		kind := "missing"
		if e.IsUpgrade() {
			kind = "upgrade"
		}
		title := e.Title
		if e.Year != "" {
			title = fmt.Sprintf("%s (%s)", e.Title, e.Year)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			title,
			string(e.ArtType),
			string(e.Status),
			kind,
			e.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func buildStatsRows(stats queue.Stats) [][]string {
	keys := slices.Sorted(maps.Keys(stats.ByType))
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{string(k), strconv.Itoa(stats.ByType[k])})
	}
	return rows
}

type entryJSON struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	MediaType string `json:"media_type"`
	ArtType   string `json:"art_type"`
	Title     string `json:"title"`
	Year      string `json:"year,omitempty"`
	Status    string `json:"status"`
	Baseline  string `json:"baseline,omitempty"`
	CreatedAt string `json:"created_at"`
}

func entriesJSON(entries []*queue.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			ID:        e.ID,
			ItemID:    e.ItemID,
			MediaType: string(e.ItemType),
			ArtType:   string(e.ArtType),
			Title:     e.Title,
			Year:      e.Year,
			Status:    string(e.Status),
			Baseline:  e.Baseline,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func queueStatusJSON(stats queue.Stats, sess *queue.Session) map[string]any {
	byType := make(map[string]int, len(stats.ByType))
	for k, v := range stats.ByType {
		byType[string(k)] = v
	}
	payload := map[string]any{
		"pending":   stats.Pending,
		"in_review": stats.InReview,
		"by_type":   byType,
	}
	if sess != nil {
		payload["session"] = map[string]any{
			"id":         sess.ID,
			"scope":      sess.Scope,
			"mode":       sess.Mode,
			"processing": sess.Processing,
			"status":     sess.Status,
		}
		if sess.Report != nil {
			payload["counts"] = sess.Report.Counts
		}
	}
	return payload
}
