package main

import (
	"errors"
	"fmt"

	"regdocs/config"
	"regdocs/crawler"
	"regdocs/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const missingSecretHint = "create a .env file and set " + config.PgConnEnv + " in it"

// NewRootCommand creates the root command
func NewRootCommand(deps ingest.Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "regdocs",
		Short: "Collect regulation PDFs and index them for semantic search",
		Long: `regdocs downloads regulation documents from Indonesian government portals
and ingests local PDFs into a vector store.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCrawlCommand())
	rootCmd.AddCommand(newIngestCommand(deps))

	return rootCmd
}

func newCrawlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Download linked PDFs from the regulation portals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := crawler.NewDefault(crawler.NewConfig(cfg), logger)
			if err != nil {
				logger.Error("failed to create crawler", zap.Error(err))
				return err
			}

			summary, err := c.Run(cmd.Context())
			if err != nil {
				logger.Error("crawl failed", zap.Error(err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "visited %d seeds, downloaded %d files into %s (%d failed)\n",
				summary.SeedsVisited, summary.Downloaded, cfg.DataDir, summary.Failed)
			return nil
		},
	}
}

func newIngestCommand(deps ingest.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Split, embed and store the PDFs in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			summary, err := ingest.Execute(cmd.Context(), cfg, deps, logger)
			if err != nil {
				logger.Error("ingestion failed", zap.Error(err))
				if errors.Is(err, config.ErrMissingSecret) {
					fmt.Fprintln(cmd.ErrOrStderr(), missingSecretHint)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %d new records (%d total), %d of %d batches failed\n",
				summary.Delta(), summary.FinalCount, summary.Failed(), len(summary.Batches))
			return nil
		},
	}
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to load config: %v\n", err)
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to create logger: %v\n", err)
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = lvl
	return zapCfg.Build()
}
