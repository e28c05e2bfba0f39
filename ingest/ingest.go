package ingest

import (
	"context"
	"fmt"

	"regdocs/config"
	"regdocs/pipeline"
	"regdocs/pkg/chunking"
	"regdocs/pkg/embedding"
	"regdocs/pkg/postgres"
	"regdocs/pkg/qdrantdb"
	processor "regdocs/process"
	"regdocs/repository"

	"go.uber.org/zap"
)

// Deps builds the external collaborators of the ingestion job.
type Deps struct {
	OpenStore   func(ctx context.Context, cfg config.StoreConfig) (repository.DocumentVectorRepo, error)
	NewPipeline func(cfg *config.Config, writer pipeline.Writer) (Runner, error)
}

func DefaultDeps() Deps {
	return Deps{
		OpenStore:   OpenStore,
		NewPipeline: NewPipeline,
	}
}

// Execute validates the store secret, opens the store, builds the pipeline
// and runs the job. Everything before Job.Run is fatal.
func Execute(ctx context.Context, cfg *config.Config, deps Deps, logger *zap.Logger) (*Summary, error) {
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}

	store, err := deps.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("initialize document store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close document store", zap.Error(err))
		}
	}()

	runner, err := deps.NewPipeline(cfg, store)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	logger.Info("ingestion pipeline built",
		zap.Int("split_length", cfg.Ingest.SplitLength),
		zap.Int("split_overlap", cfg.Ingest.SplitOverlap),
		zap.String("store", cfg.Store.Backend))

	return NewJob(store, runner, cfg.DataDir, cfg.Ingest.BatchSize, logger).Run(ctx)
}

func OpenStore(ctx context.Context, cfg config.StoreConfig) (repository.DocumentVectorRepo, error) {
	switch cfg.Backend {
	case config.StoreQdrant:
		qdb, err := qdrantdb.NewClient(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		if err := qdb.CreateDocumentCollection(ctx); err != nil {
			_ = qdb.Close()
			return nil, err
		}
		return qdb, nil
	case config.StorePgvector:
		pg, err := postgres.NewClient(ctx, cfg.PgConnString, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Backend)
	}
}

// NewPipeline wires PDF conversion, sentence splitting and embedding in
// front of writer.
func NewPipeline(cfg *config.Config, writer pipeline.Writer) (Runner, error) {
	converter := processor.NewClient(processor.NewLangchainExtractor())

	tokenizer, err := chunking.NewPunktTokenizer()
	if err != nil {
		return nil, err
	}
	splitter, err := chunking.NewSentenceSplitter(tokenizer, cfg.Ingest.SplitLength, cfg.Ingest.SplitOverlap)
	if err != nil {
		return nil, err
	}

	embedder := embedding.NewDocumentEmbedder(
		embedding.NewAllMinilmL6V2(cfg.EmbeddingURL),
		cfg.Ingest.EmbedBatchSize,
	)

	p, err := pipeline.New(converter, splitter, embedder, writer)
	if err != nil {
		return nil, err
	}
	return p, nil
}
