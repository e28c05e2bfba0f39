package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDimensionMismatch is returned when an embedding does not match the store dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DocumentVectorRepo is the vector store as seen by the ingestion job.
type DocumentVectorRepo interface {
	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)
	// Write stores records and returns how many were written. Implementations
	// write all records of one call or none of them.
	Write(ctx context.Context, records []Record) (int, error)
	Close() error
}

// Record is one stored chunk: text, embedding and chunk metadata.
type Record struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Meta      map[string]any `json:"meta"`
}

// PrepareRecords checks every embedding against dim and assigns missing ids.
func PrepareRecords(records []Record, dim int) error {
	for i := range records {
		if got := len(records[i].Embedding); got != dim {
			return fmt.Errorf("record %d: got %d, want %d: %w", i, got, dim, ErrDimensionMismatch)
		}
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	return nil
}
