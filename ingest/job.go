package ingest

import (
	"context"
	"fmt"

	"regdocs/pipeline"

	"go.uber.org/zap"
)

// DefaultBatchSize bounds how many files go through the pipeline at once.
const DefaultBatchSize = 16

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Runner interface {
	Run(ctx context.Context, paths []string) (pipeline.Result, error)
}

// BatchResult is the outcome of one pipeline invocation.
type BatchResult struct {
	Index int
	Files []string
	pipeline.Result
	Err error
}

func (b BatchResult) OK() bool { return b.Err == nil }

type Summary struct {
	InitialCount int64
	FinalCount   int64
	Files        int
	Batches      []BatchResult
}

func (s *Summary) Delta() int64 { return s.FinalCount - s.InitialCount }

func (s *Summary) Failed() int {
	n := 0
	for _, b := range s.Batches {
		if !b.OK() {
			n++
		}
	}
	return n
}

func (s *Summary) Written() int {
	n := 0
	for _, b := range s.Batches {
		n += b.Written
	}
	return n
}

type Job struct {
	store     Counter
	pipeline  Runner
	dataDir   string
	batchSize int
	logger    *zap.Logger
}

func NewJob(store Counter, runner Runner, dataDir string, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Job{
		store:     store,
		pipeline:  runner,
		dataDir:   dataDir,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run processes every PDF in the data directory batch by batch. A failing
// batch is recorded in the summary and does not stop the run; only count
// failures, scan failures and cancellation are returned as errors.
func (j *Job) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	initial, err := j.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	summary.InitialCount = initial
	summary.FinalCount = initial
	j.logger.Info("connected to document store", zap.Int64("document_count", initial))

	paths, err := ScanPDFs(j.dataDir)
	if err != nil {
		return summary, err
	}
	summary.Files = len(paths)
	if len(paths) == 0 {
		j.logger.Warn("no PDF files found", zap.String("dir", j.dataDir))
		return summary, nil
	}

	batches := Batches(paths, j.batchSize)
	j.logger.Info("found PDF files",
		zap.Int("files", len(paths)),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", j.batchSize))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		j.logger.Info("processing batch",
			zap.Int("batch", i+1),
			zap.Int("of", len(batches)),
			zap.Int("files", len(batch)))

		res := j.runBatch(ctx, i, batch)
		summary.Batches = append(summary.Batches, res)
	}

	final, err := j.store.Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("count documents: %w", err)
	}
	summary.FinalCount = final

	j.logger.Info("ingestion finished",
		zap.Int64("document_count", final),
		zap.Int64("added", summary.Delta()),
		zap.Int("chunks_written", summary.Written()),
		zap.Int("failed_batches", summary.Failed()))

	return summary, nil
}

func (j *Job) runBatch(ctx context.Context, index int, files []string) BatchResult {
	res, err := j.pipeline.Run(ctx, files)
	if err != nil {
		j.logger.Error("failed to process batch",
			zap.Int("batch", index+1),
			zap.Strings("files", files),
			zap.Error(err))
	}
	return BatchResult{
		Index:  index,
		Files:  files,
		Result: res,
		Err:    err,
	}
}
