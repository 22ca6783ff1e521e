package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"appcatalog/internal/logging"
	"appcatalog/internal/normalize"
	"appcatalog/internal/requests"
)

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "App request intake",
	}
	requestsCmd.AddCommand(newRequestsImportCommand(ctx))
	return requestsCmd
}

func newRequestsImportCommand(ctx *commandContext) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "import <export.csv>",
		Short: "Convert a form export into pending request files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}

			var sinceTime time.Time
			if strings.TrimSpace(since) != "" {
				parsed, ok := requests.ParseTimestamp(since)
				if !ok {
					return fmt.Errorf("--since %q: expected YYYY/MM/DD HH:MM:SS or YYYY-MM-DD HH:MM:SS", since)
				}
				sinceTime = parsed
			}

			known, err := requests.LoadKnownApps(cfg.Intake.KnownAppsPath)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer file.Close()

			importer := requests.NewImporter(requests.Options{
				Since:     sinceTime,
				Known:     known,
				Region:    cfg.Intake.DefaultRegion,
				Normalize: normalize.OptionsFromConfig(cfg),
				Logger:    logger,
			})
			result, err := importer.Import(file)
			if err != nil {
				return runFailure(fmt.Errorf("import %s: %w", args[0], err))
			}
			paths, err := requests.WriteRecords(cfg.Paths.RequestsDir, result.Records)
			if err != nil {
				return runFailure(err)
			}

			logger.Info("requests imported",
				logging.String("export", args[0]),
				logging.Int("rows", result.Rows),
				logging.Int("skipped", result.Skipped),
				logging.Int("written", len(paths)))
			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only import rows stamped after this time")
	return cmd
}
