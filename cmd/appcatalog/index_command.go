package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appcatalog/internal/searchindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Search index generation",
	}
	indexCmd.AddCommand(newIndexBuildCommand(ctx))
	return indexCmd
}

func newIndexBuildCommand(ctx *commandContext) *cobra.Command {
	var shards bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write search_index_<region>.json for every catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			builder := searchindex.NewBuilder(searchindex.Options{
				CatalogDir:  cfg.Paths.CatalogDir,
				IndexDir:    cfg.Paths.IndexDir,
				WrapperKey:  cfg.Catalog.WrapperKey,
				Version:     cfg.Index.Version,
				WriteShards: shards,
				Logger:      logger,
			})
			results, err := builder.BuildAll()
			if err != nil {
				return runFailure(fmt.Errorf("build search index: %w", err))
			}
			out := cmd.OutOrStdout()
			for _, result := range results {
				fmt.Fprintf(out, "%s\t%d entries\t%s\n", result.Region, result.Entries, result.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&shards, "shards", false, "Also write one file per record at its shard path")
	return cmd
}
