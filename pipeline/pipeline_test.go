package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"regdocs/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

type stubConverter struct{ err error }

func (s stubConverter) Convert(_ context.Context, paths []string) ([]schema.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	docs := make([]schema.Document, len(paths))
	for i, p := range paths {
		docs[i] = schema.Document{PageContent: p + " one. " + p + " two.", Metadata: map[string]any{"file_path": p}}
	}
	return docs, nil
}

// stubSplitter yields one chunk per ". "-separated piece.
type stubSplitter struct{}

func (stubSplitter) Split(docs []schema.Document) ([]schema.Document, error) {
	var out []schema.Document
	for _, d := range docs {
		for _, part := range strings.Split(d.PageContent, ". ") {
			out = append(out, schema.Document{PageContent: part, Metadata: d.Metadata})
		}
	}
	return out, nil
}

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, chunks []schema.Document) ([]repository.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]repository.Record, len(chunks))
	for i, c := range chunks {
		out[i] = repository.Record{Content: c.PageContent, Embedding: []float32{1, 2}, Meta: c.Metadata}
	}
	return out, nil
}

type stubWriter struct {
	stored []repository.Record
	err    error
}

func (s *stubWriter) Write(_ context.Context, records []repository.Record) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.stored = append(s.stored, records...)
	return len(records), nil
}

func TestNew_RequiresAllStages(t *testing.T) {
	_, err := New(stubConverter{}, nil, &stubEmbedder{}, &stubWriter{})
	assert.Error(t, err)
}

func TestPipeline_Run(t *testing.T) {
	w := &stubWriter{}
	p, err := New(stubConverter{}, stubSplitter{}, &stubEmbedder{}, w)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), []string{"a.pdf", "b.pdf"})
	require.NoError(t, err)

	assert.Equal(t, Result{Documents: 2, Chunks: 4, Written: 4}, res)
	require.Len(t, w.stored, 4)
	assert.Equal(t, "a.pdf one", w.stored[0].Content)
}

func TestPipeline_Run_NoChunksSkipsEmbedAndWrite(t *testing.T) {
	e := &stubEmbedder{}
	w := &stubWriter{}
	p, err := New(stubConverter{}, stubSplitter{}, e, w)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, e.calls)
}

func TestPipeline_Run_StageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		converter Converter
		embedder  *stubEmbedder
		writer    *stubWriter
		stage     string
	}{
		{"converter", stubConverter{err: boom}, &stubEmbedder{}, &stubWriter{}, StageConverter},
		{"embedder", stubConverter{}, &stubEmbedder{err: boom}, &stubWriter{}, StageEmbedder},
		{"writer", stubConverter{}, &stubEmbedder{}, &stubWriter{err: boom}, StageWriter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.converter, stubSplitter{}, tt.embedder, tt.writer)
			require.NoError(t, err)

			res, err := p.Run(context.Background(), []string{"a.pdf"})
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.Zero(t, res.Written)
		})
	}
}
