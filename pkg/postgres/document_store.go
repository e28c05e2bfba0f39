package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"regdocs/repository"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const insertDocumentQuery = `
	INSERT INTO documents (id, content, embedding, meta)
	VALUES ($1, $2, $3, $4)
`

func (c *PostgresClient) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("unable to count documents: %w", err)
	}
	return n, nil
}

// Write inserts records in one transaction.
func (c *PostgresClient) Write(ctx context.Context, records []repository.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := repository.PrepareRecords(records, c.dimension); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		meta, err := json.Marshal(r.Meta)
		if err != nil {
			return 0, fmt.Errorf("unable to encode meta for %s: %w", r.ID, err)
		}
		batch.Queue(insertDocumentQuery, r.ID, r.Content, pgvector.NewVector(r.Embedding), meta)
	}

	err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("unable to insert documents: %w", err)
	}

	return len(records), nil
}

var _ repository.DocumentVectorRepo = (*PostgresClient)(nil)
