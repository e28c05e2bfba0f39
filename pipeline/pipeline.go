// Package pipeline wires the four ingestion stages into a fixed linear
// pipeline: converter -> splitter -> embedder -> writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"regdocs/repository"

	"github.com/tmc/langchaingo/schema"
)

const (
	StageConverter = "converter"
	StageSplitter  = "splitter"
	StageEmbedder  = "embedder"
	StageWriter    = "writer"
)

type Converter interface {
	Convert(ctx context.Context, paths []string) ([]schema.Document, error)
}

type Splitter interface {
	Split(docs []schema.Document) ([]schema.Document, error)
}

type Embedder interface {
	Embed(ctx context.Context, chunks []schema.Document) ([]repository.Record, error)
}

type Writer interface {
	Write(ctx context.Context, records []repository.Record) (int, error)
}

// StageError tells which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result counts what one run produced.
type Result struct {
	Documents int
	Chunks    int
	Written   int
}

type Pipeline struct {
	converter Converter
	splitter  Splitter
	embedder  Embedder
	writer    Writer
}

func New(converter Converter, splitter Splitter, embedder Embedder, writer Writer) (*Pipeline, error) {
	if converter == nil || splitter == nil || embedder == nil || writer == nil {
		return nil, errors.New("pipeline: every stage is required")
	}
	return &Pipeline{
		converter: converter,
		splitter:  splitter,
		embedder:  embedder,
		writer:    writer,
	}, nil
}

// Run pushes paths through all four stages.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Result, error) {
	var res Result

	docs, err := p.converter.Convert(ctx, paths)
	if err != nil {
		return res, &StageError{Stage: StageConverter, Err: err}
	}
	res.Documents = len(docs)

	chunks, err := p.splitter.Split(docs)
	if err != nil {
		return res, &StageError{Stage: StageSplitter, Err: err}
	}
	res.Chunks = len(chunks)
	if len(chunks) == 0 {
		return res, nil
	}

	records, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return res, &StageError{Stage: StageEmbedder, Err: err}
	}

	written, err := p.writer.Write(ctx, records)
	if err != nil {
		return res, &StageError{Stage: StageWriter, Err: err}
	}
	res.Written = written

	return res, nil
}
