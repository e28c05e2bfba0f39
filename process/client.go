package processor

import (
	"context"

	"github.com/tmc/langchaingo/schema"
)

// Metadata keys set on converted documents.
const (
	MetaFilePath   = "file_path"
	MetaFileName   = "file_name"
	MetaTotalPages = "total_pages"
)

// PageSeparator joins the text of consecutive pages.
const PageSeparator = "\f"

// PDFExtractor defines the interface for PDF text extraction
type PDFExtractor interface {
	// ExtractPages returns the plain text of every page in order.
	ExtractPages(ctx context.Context, filePath string) ([]string, error)
}

// Client wraps the PDFExtractor interface for easy swapping of implementations
type Client struct {
	extractor PDFExtractor
}

// NewClient creates a new PDF processor client with the given extractor implementation
func NewClient(extractor PDFExtractor) *Client {
	return &Client{
		extractor: extractor,
	}
}

// Convert turns every path into one document. Any failing file fails the call.
func (c *Client) Convert(ctx context.Context, paths []string) ([]schema.Document, error) {
	docs := make([]schema.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := c.convertOne(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
