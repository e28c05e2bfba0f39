package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AllMinilmL6V2 talks to a text-embeddings-inference server serving
// sentence-transformers/all-MiniLM-L6-v2 (384 dimensions).
type AllMinilmL6V2 struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAllMinilmL6V2(baseURL string) *AllMinilmL6V2 {
	return &AllMinilmL6V2{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ServiceError is a non-200 answer from the embedding server.
type ServiceError struct {
	Status  int
	Kind    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("embedding server: %d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("embedding server: %d: %s", e.Status, e.Message)
}

func (c *AllMinilmL6V2) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(EmbeddingRequest{Inputs: texts, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readServiceError(resp)
	}

	var vectors EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if err := checkVectorCount(len(texts), len(vectors)); err != nil {
		return nil, err
	}
	return vectors, nil
}

// readServiceError reads the {"error","error_type"} body the server sends
// with failures, falling back to the raw text.
func readServiceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	out := &ServiceError{Status: resp.StatusCode}

	var teiErr struct {
		Error string `json:"error"`
		Type  string `json:"error_type"`
	}
	if json.Unmarshal(body, &teiErr) == nil && teiErr.Error != "" {
		out.Message = teiErr.Error
		out.Kind = teiErr.Type
		return out
	}
	out.Message = strings.TrimSpace(string(body))
	return out
}

func checkVectorCount(sent, got int) error {
	if sent != got {
		return fmt.Errorf("sent %d texts, got %d vectors: %w", sent, got, ErrVectorCount)
	}
	return nil
}

// EmbedDocuments implements embeddings.Embedder.
func (c *AllMinilmL6V2) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.GetEmbeddings(ctx, texts)
}

// EmbedQuery implements embeddings.Embedder.
func (c *AllMinilmL6V2) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
