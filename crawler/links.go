package crawler

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxFilenameLength = 100

// ExtractLinks returns the absolute http(s) targets of every a[href] in
// html, resolved against base, without fragments and without duplicates.
func ExtractLinks(html, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse page url %q: %w", base, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			baseURL = baseURL.ResolveReference(ref)
		}
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		abs.RawFragment = ""

		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

// MatchesExtension reports whether the URL path of link ends in one of the
// allowed extensions. Case is ignored.
func MatchesExtension(link string, allowed []string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}

// FileName derives a safe local file name from the URL path of link. The
// extension is lowercased so that ingest picks up "X.PDF" as "X.pdf".
func FileName(link string) string {
	raw := ""
	if u, err := url.Parse(link); err == nil {
		raw = path.Base(u.Path)
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}

	ext := fileExt(raw)
	stem := sanitize(strings.TrimSuffix(raw, ext))
	if e := sanitize(ext); e != "" {
		ext = "." + strings.ToLower(e)
	} else {
		ext = ""
	}
	if strings.Trim(stem, "._-") == "" {
		stem = "download-" + shortHash(link)
	}

	name := stem + ext
	if len(name) > maxFilenameLength {
		base := name[:maxFilenameLength-len(ext)-8]
		return fmt.Sprintf("%s-%s%s", base, shortHash(name), ext)
	}
	return name
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

func withHashSuffix(name, key string) string {
	ext := fileExt(name)
	base := strings.TrimSuffix(name, ext)
	if len(base) > maxFilenameLength-len(ext)-8 {
		base = base[:maxFilenameLength-len(ext)-8]
	}
	return fmt.Sprintf("%s-%s%s", base, shortHash(key), ext)
}

// fileExt is path.Ext, ignoring suffixes too long to be an extension.
func fileExt(name string) string {
	ext := path.Ext(name)
	if len(ext) > 16 {
		return ""
	}
	return ext
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:7]
}
