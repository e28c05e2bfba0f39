package embedding

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/embeddings"
)

// ErrVectorCount is returned when the server answers with a different number
// of vectors than texts sent.
var ErrVectorCount = errors.New("embedding count does not match input count")

type EmbeddingRequest struct {
	Inputs []string `json:"inputs"`
	// Truncate lets the server cut inputs longer than the model window.
	Truncate bool `json:"truncate,omitempty"`
}

type EmbeddingResponse [][]float32

type Client interface {
	// If you send 3 texts, you'll get 3 vectors.
	// Input: ["this is a text"] → list of strings
	// Output: [ [0.12, -0.33, 0.57, ...] ]
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

var (
	_ Client              = (*AllMinilmL6V2)(nil)
	_ embeddings.Embedder = (*AllMinilmL6V2)(nil)
)
