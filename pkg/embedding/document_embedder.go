package embedding

import (
	"context"
	"fmt"
	"os"

	"regdocs/repository"

	"github.com/schollz/progressbar/v3"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/term"
)

// DocumentEmbedder turns chunks into records by embedding their text in
// sub-batches of at most maxBatchSize texts.
type DocumentEmbedder struct {
	embedder     embeddings.Embedder
	maxBatchSize int
	progress     bool
}

func NewDocumentEmbedder(embedder embeddings.Embedder, maxBatchSize int) *DocumentEmbedder {
	if maxBatchSize <= 0 {
		maxBatchSize = 32
	}
	return &DocumentEmbedder{
		embedder:     embedder,
		maxBatchSize: maxBatchSize,
		progress:     term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// WithProgress forces the progress bar on or off.
func (e *DocumentEmbedder) WithProgress(enabled bool) *DocumentEmbedder {
	e.progress = enabled
	return e
}

func (e *DocumentEmbedder) Embed(ctx context.Context, chunks []schema.Document) ([]repository.Record, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	bar := e.newBar(len(chunks))
	records := make([]repository.Record, 0, len(chunks))

	for i := 0; i < len(chunks); i += e.maxBatchSize {
		end := min(i+e.maxBatchSize, len(chunks))
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.PageContent
		}

		vectors, err := e.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", i, end, err)
		}
		if err := checkVectorCount(len(batch), len(vectors)); err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", i, end, err)
		}

		for j, chunk := range batch {
			records = append(records, repository.Record{
				Content:   chunk.PageContent,
				Embedding: vectors[j],
				Meta:      chunk.Metadata,
			})
		}

		if bar != nil {
			_ = bar.Add(len(batch))
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return records, nil
}

func (e *DocumentEmbedder) newBar(total int) *progressbar.ProgressBar {
	if !e.progress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("embedding"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
