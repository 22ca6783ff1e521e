package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"appcatalog/internal/config"
	"appcatalog/internal/history"
	"appcatalog/internal/ingest"
	"appcatalog/internal/logging"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var regions []string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge pending inbox files into the region catalogs",
		Long: "Merge folds every pending <inbox>/<region>/*.json file into catalog_<region>.json,\n" +
			"archives merged inputs under _processed/, and prints a changed=/regions= report.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			opts, err := ingest.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			opts.DryRun = dryRun
			opts.Regions = regions
			opts.Logger = logger

			if !dryRun {
				store := openHistory(cmd, cfg, logger)
				if store != nil {
					defer store.Close()
					opts.History = store
				}
			}

			runner, err := ingest.NewRunner(opts)
			if err != nil {
				return err
			}
			rep, runErr := runner.Run(cmd.Context())
			if rep != nil && len(rep.Regions) > 0 && isTerminal(cmd.ErrOrStderr()) {
				fmt.Fprintln(cmd.ErrOrStderr(), renderMergeSummary(rep))
			}
			if runErr != nil {
				return runFailure(fmt.Errorf("merge: %w", runErr))
			}
			return writeChangeReport(cmd.OutOrStdout(), cfg, rep, logger)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing catalogs or archiving inputs")
	cmd.Flags().StringArrayVar(&regions, "region", nil, "Only merge this region (repeatable)")
	return cmd
}

// openHistory opens the run history database. Failure only costs the
// history row, so it is logged and the merge continues.
func openHistory(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *history.Store {
	store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.Paths.HistoryDB),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded in history"))
		return nil
	}
	return store
}

func writeChangeReport(out io.Writer, cfg *config.Config, rep *ingest.Report, logger *slog.Logger) error {
	change := rep.ChangeReport()
	if err := change.Write(out); err != nil {
		return runFailure(fmt.Errorf("write change report: %w", err))
	}
	if rep.DryRun {
		return nil
	}
	if err := change.AppendFile(cfg.Report.OutputPath); err != nil {
		logging.ErrorWithContext(logger, "failed to append change report", "change_report_failed",
			logging.String("path", cfg.Report.OutputPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check report.output_path or $GITHUB_OUTPUT"))
		return runFailure(fmt.Errorf("append change report: %w", err))
	}
	return nil
}

func renderMergeSummary(rep *ingest.Report) string {
	columns := []column{
		left("Region"), right("Files"), right("Archived"), right("Failed"),
		right("Added"), right("Merged"), right("Dropped"), left("Changed"), left("Error"),
	}
	rows := make([][]string, 0, len(rep.Regions))
	for _, region := range rep.Regions {
		errText := ""
		if region.Err != nil {
			errText = region.Err.Error()
		}
		rows = append(rows, []string{
			region.Region,
			strconv.Itoa(len(region.Files)),
			strconv.Itoa(region.ArchivedFiles()),
			strconv.Itoa(region.FailedFiles()),
			strconv.Itoa(region.Added),
			strconv.Itoa(region.Merged),
			strconv.Itoa(region.Dropped),
			yesNo(region.Changed),
			errText,
		})
	}
	return renderTable(columns, rows)
}
