package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

// periodTokenizer ends a sentence after every ". " and keeps the separator.
type periodTokenizer struct{}

func (periodTokenizer) Sentences(text string) []string {
	var out []string
	for text != "" {
		i := strings.Index(text, ". ")
		if i < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:i+2])
		text = text[i+2:]
	}
	return out
}

func numbered(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "S%d. ", i)
	}
	return b.String()
}

func TestWindows(t *testing.T) {
	tests := []struct {
		n, length, overlap int
		want               [][2]int
	}{
		{0, 10, 2, nil},
		{3, 10, 2, [][2]int{{0, 3}}},
		{10, 10, 2, [][2]int{{0, 10}}},
		{11, 10, 2, [][2]int{{0, 10}, {8, 11}}},
		{18, 10, 2, [][2]int{{0, 10}, {8, 18}}},
		{19, 10, 2, [][2]int{{0, 10}, {8, 18}, {16, 19}}},
		{5, 2, 0, [][2]int{{0, 2}, {2, 4}, {4, 5}}},
		{4, 3, 2, [][2]int{{0, 3}, {1, 4}}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/l=%d/o=%d", tt.n, tt.length, tt.overlap), func(t *testing.T) {
			assert.Equal(t, tt.want, Windows(tt.n, tt.length, tt.overlap))
		})
	}
}

func TestWindows_EveryUnitCovered(t *testing.T) {
	for n := 1; n <= 50; n++ {
		ws := Windows(n, 10, 2)
		require.NotEmpty(t, ws)
		assert.Equal(t, 0, ws[0][0])
		assert.Equal(t, n, ws[len(ws)-1][1])
		for i := 1; i < len(ws); i++ {
			assert.Equal(t, ws[i-1][1]-2, ws[i][0], "consecutive windows share two units")
		}
	}
}

func TestNewSentenceSplitter_InvalidParams(t *testing.T) {
	_, err := NewSentenceSplitter(periodTokenizer{}, 0, 0)
	assert.Error(t, err)

	_, err = NewSentenceSplitter(periodTokenizer{}, 10, 10)
	assert.Error(t, err)

	_, err = NewSentenceSplitter(periodTokenizer{}, 10, -1)
	assert.Error(t, err)
}

func TestSentenceSplitter_Split(t *testing.T) {
	splitter, err := NewSentenceSplitter(periodTokenizer{}, 10, 2)
	require.NoError(t, err)

	doc := schema.Document{
		PageContent: numbered(12),
		Metadata:    map[string]any{"file_path": "data/uu-1-2024.pdf", "total_pages": 1},
	}

	chunks, err := splitter.Split([]schema.Document{doc})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.True(t, strings.HasPrefix(chunks[0].PageContent, "S0. "))
	assert.True(t, strings.HasSuffix(chunks[0].PageContent, "S9. "))
	assert.True(t, strings.HasPrefix(chunks[1].PageContent, "S8. S9. S10. "))
	assert.True(t, strings.HasSuffix(chunks[1].PageContent, "S11. "))

	for i, c := range chunks {
		assert.Equal(t, "data/uu-1-2024.pdf", c.Metadata[MetaSourceID])
		assert.Equal(t, i, c.Metadata[MetaSplitID])
		assert.Equal(t, 1, c.Metadata["total_pages"], "source metadata is carried over")
		start := c.Metadata[MetaSplitIdxStart].(int)
		assert.True(t, strings.HasPrefix(doc.PageContent[start:], c.PageContent))
	}
}

func TestSentenceSplitter_PageNumbers(t *testing.T) {
	splitter, err := NewSentenceSplitter(periodTokenizer{}, 2, 0)
	require.NoError(t, err)

	doc := schema.Document{
		PageContent: "A1. A2. \fB1. B2. \fC1. C2. ",
		Metadata:    map[string]any{"file_path": "x.pdf"},
	}

	chunks, err := splitter.Split([]schema.Document{doc})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 1, chunks[0].Metadata[MetaPageNumber])
	assert.Equal(t, 2, chunks[1].Metadata[MetaPageNumber])
	assert.Equal(t, 3, chunks[2].Metadata[MetaPageNumber])
}

func TestSentenceSplitter_SkipsBlankDocuments(t *testing.T) {
	splitter, err := NewSentenceSplitter(periodTokenizer{}, 10, 2)
	require.NoError(t, err)

	chunks, err := splitter.Split([]schema.Document{
		{PageContent: "", Metadata: map[string]any{}},
		{PageContent: "   \n\f  ", Metadata: map[string]any{}},
	})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestPunktTokenizer_Sentences(t *testing.T) {
	tok, err := NewPunktTokenizer()
	require.NoError(t, err)

	text := "The minister signed the regulation. It takes effect next month. Citizens must comply."
	sents := tok.Sentences(text)

	require.Len(t, sents, 3)
	assert.Equal(t, "The minister signed the regulation.", strings.TrimSpace(sents[0]))
	assert.Equal(t, "Citizens must comply.", strings.TrimSpace(sents[2]))
}
