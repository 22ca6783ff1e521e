package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appcatalog/internal/linkaudit"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "audit <catalog.json>...",
		Short: "Check universal link hosts for app-site association files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "table" {
				return fmt.Errorf("--format %q: expected csv or table", format)
			}
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}

			var apps []linkaudit.App
			for _, path := range args {
				loaded, err := linkaudit.LoadCatalog(path, cfg.Catalog.WrapperKey, logger)
				if err != nil {
					return fmt.Errorf("load catalog: %w", err)
				}
				apps = append(apps, loaded...)
			}
			apps = linkaudit.Dedupe(apps)

			opts := linkaudit.OptionsFromConfig(cfg)
			opts.Logger = logger
			rows, err := linkaudit.New(opts).Audit(cmd.Context(), apps)
			if err != nil {
				return runFailure(fmt.Errorf("audit: %w", err))
			}

			out := cmd.OutOrStdout()
			if format == "table" {
				fmt.Fprintln(out, renderAuditTable(rows))
				return nil
			}
			return linkaudit.WriteCSV(out, rows)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or table")
	return cmd
}

func renderAuditTable(rows []linkaudit.Row) string {
	columns := make([]column, len(linkaudit.Header))
	for i, title := range linkaudit.Header {
		columns[i] = left(title)
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Fields()
	}
	return renderTable(columns, cells)
}
