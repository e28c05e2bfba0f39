package relevance

import (
	"net/url"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

var separators = strings.NewReplacer("-", " ", "_", " ", "+", " ", "/", " ")

// KeywordFilter matches links against a list of keywords/phrases.
type KeywordFilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewKeywordFilter builds a filter from keywords. Blank entries are
// ignored; nil is returned when nothing is left, meaning "match all".
func NewKeywordFilter(keywords []string) *KeywordFilter {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = normalize(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	return &KeywordFilter{
		matcher:  ahocorasick.NewStringMatcher(cleaned),
		keywords: cleaned,
	}
}

// Match reports whether at least one keyword occurs in link, along with the
// fraction of keywords found. A nil filter matches everything.
func (f *KeywordFilter) Match(link string) (bool, float32) {
	if f == nil {
		return true, 1
	}
	if unescaped, err := url.PathUnescape(link); err == nil {
		link = unescaped
	}

	matches := f.matcher.MatchThreadSafe([]byte(normalize(link)))
	if len(matches) == 0 {
		return false, 0
	}

	found := make(map[string]struct{})
	for _, idx := range matches {
		found[f.keywords[idx]] = struct{}{}
	}
	return true, float32(len(found)) / float32(len(f.keywords))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(separators.Replace(strings.ToLower(s))), " ")
}
