package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"appcatalog/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var region string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent merge runs per region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.setup()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
			if err != nil {
				return runFailure(err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), region, limit)
			if err != nil {
				return runFailure(err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No merge runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")
	cmd.Flags().StringVar(&region, "region", "", "Only show this region")
	return cmd
}

func renderHistory(entries []history.Entry) string {
	columns := []column{
		left("Started"), left("Region"), right("Added"), right("Merged"), right("Dropped"),
		right("Archived"), right("Failed"), left("Changed"), left("Run"), left("Error"),
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.StartedAt.Local().Format(historyTimeLayout),
			e.Region,
			strconv.Itoa(e.Added),
			strconv.Itoa(e.Merged),
			strconv.Itoa(e.Dropped),
			strconv.Itoa(e.ArchivedFiles),
			strconv.Itoa(e.FailedFiles),
			yesNo(e.Changed),
			shortRunID(e.RunID),
			e.Error,
		})
	}
	return renderTable(columns, rows)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
