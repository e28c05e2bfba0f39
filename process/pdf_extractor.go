package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// LangchainExtractor implements PDFExtractor using the langchaingo PDF loader
// (github.com/ledongthuc/pdf underneath).
type LangchainExtractor struct{}

func NewLangchainExtractor() *LangchainExtractor {
	return &LangchainExtractor{}
}

// ExtractPages opens filePath and returns the plain text of each page.
func (e *LangchainExtractor) ExtractPages(ctx context.Context, filePath string) (pages []string, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF file: %w", err)
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF %s: %v", filePath, r)
		}
	}()

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract plain text: %w", err)
	}

	pages = make([]string, len(docs))
	for i, d := range docs {
		pages[i] = d.PageContent
	}
	return pages, nil
}

func (c *Client) convertOne(ctx context.Context, path string) (schema.Document, error) {
	pages, err := c.extractor.ExtractPages(ctx, path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("convert %s: %w", path, err)
	}

	return schema.Document{
		PageContent: strings.Join(pages, PageSeparator),
		Metadata: map[string]any{
			MetaFilePath:   path,
			MetaFileName:   filepath.Base(path),
			MetaTotalPages: len(pages),
		},
	}, nil
}
