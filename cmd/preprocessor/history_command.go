package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"preprocessor/internal/history"
	"preprocessor/internal/services"
)

const shortRunIDLength = 8

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent build runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No builds recorded yet")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "Status", "Target", "Size", "Written", "Missing", "Failed", "Duration"},
					historyRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			humanize.Time(run.StartedAt),
			string(run.Status),
			run.TargetDir,
			fmt.Sprintf("%dx%d", run.Width, run.Height),
			strconv.Itoa(run.Written),
			strconv.Itoa(run.Missing),
			strconv.Itoa(run.Failed),
			run.Duration().Round(time.Millisecond).String(),
		})
	}
	return rows
}

func shortRunID(id string) string {
	if len(id) <= shortRunIDLength {
		return id
	}
	return id[:shortRunIDLength]
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one build run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					if errors.Is(err, history.ErrNotFound) {
						return services.Wrap(services.ErrNotFound, "cli", "history show", fmt.Sprintf("no run matches %q", args[0]), nil)
					}
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				lines := []string{
					renderValueLine("Run ID", run.ID),
					renderValueLine("Status", string(run.Status)),
					renderValueLine("Started", run.StartedAt.Local().Format(time.DateTime)),
					renderValueLine("Duration", run.Duration().Round(time.Millisecond).String()),
					renderValueLine("Source", run.SourceDir),
					renderValueLine("Target", run.TargetDir),
					renderValueLine("Label API", run.APIURL),
					renderValueLine("Dimensions", fmt.Sprintf("%dx%d", run.Width, run.Height)),
					renderValueLine("Dry run", yesNo(run.DryRun)),
					renderValueLine("Scanned", strconv.Itoa(run.Scanned)),
					renderValueLine("Labeled", strconv.Itoa(run.Labeled)),
					renderValueLine("Missing labels", strconv.Itoa(run.Missing)),
					renderValueLine("Planned writes", strconv.Itoa(run.Actions)),
					renderValueLine("Written", strconv.Itoa(run.Written)),
					renderValueLine("Failed", strconv.Itoa(run.Failed)),
				}
				if run.ErrorMessage != "" {
					lines = append(lines, renderValueLine("Error", run.ErrorMessage))
				}
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "history prune", "--older-than must be positive", nil)
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) older than %s\n", removed, olderThan)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold, e.g. 720h")
	return cmd
}
