package qdrantdb

import (
	"context"
	"fmt"

	"regdocs/repository"

	"github.com/qdrant/go-client/qdrant"
)

const (
	DocumentCollectionName = "regulation_documents"
)

func (c *DocumentClient) CreateDocumentCollection(ctx context.Context) error {
	exists, err := c.Client.CollectionExists(ctx, DocumentCollectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: DocumentCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(c.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("err create document collection: %w", err)
	}

	_, err = c.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: DocumentCollectionName,
		FieldName:      "source_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("err create source_id index: %w", err)
	}
	return nil
}

func (c *DocumentClient) Count(ctx context.Context) (int64, error) {
	n, err := c.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: DocumentCollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("err count points: %w", err)
	}
	return int64(n), nil
}

// Write upserts all records in a single waited request.
func (c *DocumentClient) Write(ctx context.Context, records []repository.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := repository.PrepareRecords(records, c.dimension); err != nil {
		return 0, err
	}

	points, err := toPoints(records)
	if err != nil {
		return 0, err
	}

	_, err = c.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: DocumentCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("err upsert points: %w", err)
	}
	return len(records), nil
}

func toPoints(records []repository.Record) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		md := make(map[string]any, len(r.Meta)+1)
		for k, v := range r.Meta {
			md[k] = v
		}
		md["content"] = r.Content

		payload, err := qdrant.TryValueMap(md)
		if err != nil {
			return nil, fmt.Errorf("err build payload for %s: %w", r.ID, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(r.ID),
			Vectors: qdrant.NewVectorsDense(r.Embedding),
			Payload: payload,
		})
	}
	return points, nil
}

var _ repository.DocumentVectorRepo = (*DocumentClient)(nil)
