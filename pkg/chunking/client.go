package chunking

import "github.com/tmc/langchaingo/schema"

// Metadata keys set on every chunk.
const (
	MetaSourceID      = "source_id"
	MetaSplitID       = "split_id"
	MetaSplitIdxStart = "split_idx_start"
	MetaPageNumber    = "page_number"
)

type ChunkingClient interface {
	Split(docs []schema.Document) ([]schema.Document, error)
}

// SentenceTokenizer splits text into contiguous sentence spans whose
// concatenation is the original text.
type SentenceTokenizer interface {
	Sentences(text string) []string
}
