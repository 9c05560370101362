package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/belegwerk/belegscan/internal/model"
	"github.com/belegwerk/belegscan/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scan run history",
	Long:  "Commands for listing, viewing, and summarizing recorded scan runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		inputDir, _ := cmd.Flags().GetString("input")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:   model.RunStatus(status),
			InputDir: inputDir,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run, including its result rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate scan statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, stats)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (complete, failed)")
	runsListCmd.Flags().String("input", "", "filter by input directory")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.ScanRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tINPUT\tSTATUS\tFILES\tAMOUNTS\tPERIODS\tFAILED\tSTARTED\tDURATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			shortID(r.ID),
			r.InputDir,
			r.Status,
			r.Files,
			r.Amounts,
			r.Periods,
			r.Failures,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate statistics to w.
func formatRunStats(out io.Writer, stats *store.RunStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", stats.Runs)
	_, _ = fmt.Fprintf(w, "Files scanned:\t%d\n", stats.Files)
	_, _ = fmt.Fprintf(w, "Amounts found:\t%d\n", stats.Amounts)
	_, _ = fmt.Fprintf(w, "Periods found:\t%d\n", stats.Periods)
	_, _ = fmt.Fprintf(w, "Unreadable files:\t%d\n", stats.Failures)
	if !stats.LastRun.IsZero() {
		_, _ = fmt.Fprintf(w, "Last run:\t%s\n", stats.LastRun.Local().Format(time.RFC3339))
	}
	_ = w.Flush()
}

// shortID truncates a UUID for listing output; runs show accepts the prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
