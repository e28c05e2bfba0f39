package chunking

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/tmc/langchaingo/schema"
)

// PunktTokenizer is the English punkt sentence tokenizer.
type PunktTokenizer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktTokenizer() (*PunktTokenizer, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	return &PunktTokenizer{tokenizer: tokenizer}, nil
}

func (p *PunktTokenizer) Sentences(text string) []string {
	spans := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

// SentenceSplitter groups sentences into windows of length sentences where
// consecutive windows share overlap sentences.
type SentenceSplitter struct {
	tokenizer SentenceTokenizer
	length    int
	overlap   int
}

func NewSentenceSplitter(tokenizer SentenceTokenizer, length, overlap int) (*SentenceSplitter, error) {
	if length <= 0 {
		return nil, fmt.Errorf("split length must be positive, got %d", length)
	}
	if overlap < 0 || overlap >= length {
		return nil, fmt.Errorf("split overlap must be in [0, %d), got %d", length, overlap)
	}
	return &SentenceSplitter{
		tokenizer: tokenizer,
		length:    length,
		overlap:   overlap,
	}, nil
}

func (s *SentenceSplitter) Split(docs []schema.Document) ([]schema.Document, error) {
	var chunks []schema.Document
	for _, doc := range docs {
		chunks = append(chunks, s.splitDocument(doc)...)
	}
	return chunks, nil
}

func (s *SentenceSplitter) splitDocument(doc schema.Document) []schema.Document {
	units := s.tokenizer.Sentences(doc.PageContent)
	if len(units) == 0 {
		return nil
	}

	// byte offset of every unit in the source text
	offsets := make([]int, len(units))
	pos := 0
	for i, u := range units {
		offsets[i] = pos
		pos += len(u)
	}

	sourceID, _ := doc.Metadata["file_path"].(string)

	var chunks []schema.Document
	for _, w := range Windows(len(units), s.length, s.overlap) {
		text := strings.Join(units[w[0]:w[1]], "")
		if strings.TrimSpace(text) == "" {
			continue
		}

		start := offsets[w[0]]
		meta := make(map[string]any, len(doc.Metadata)+4)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta[MetaSourceID] = sourceID
		meta[MetaSplitID] = len(chunks)
		meta[MetaSplitIdxStart] = start
		lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
		meta[MetaPageNumber] = pageAt(doc.PageContent, start+lead)

		chunks = append(chunks, schema.Document{
			PageContent: text,
			Metadata:    meta,
		})
	}
	return chunks
}

// Windows returns the [start, end) unit ranges for n units. A window is
// emitted only when it holds at least one unit the previous window did not.
func Windows(n, length, overlap int) [][2]int {
	if n <= 0 {
		return nil
	}
	step := length - overlap

	var out [][2]int
	for start := 0; start < n; start += step {
		end := min(start+length, n)
		out = append(out, [2]int{start, end})
		if end == n {
			break
		}
	}
	return out
}

// pageAt returns the 1-based page of offset; pages are separated by form feeds.
func pageAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\f") + 1
}

var (
	_ ChunkingClient    = (*SentenceSplitter)(nil)
	_ SentenceTokenizer = (*PunktTokenizer)(nil)
)
