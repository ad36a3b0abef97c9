package fetch

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"newsdigest/internal/domain/entity"
)

// Dedup keys, also used as metric labels.
const (
	dupTitle   = "title"
	dupLink    = "link"
	dupContent = "content"
)

// seenFilter remembers normalised titles, links and a content fingerprint
// of every accepted article.
type seenFilter struct {
	titles map[string]struct{}
	links  map[string]struct{}
	hashes map[string]struct{}
}

func newSeenFilter() *seenFilter {
	return &seenFilter{
		titles: make(map[string]struct{}),
		links:  make(map[string]struct{}),
		hashes: make(map[string]struct{}),
	}
}

// seen returns the key that matched, or "" for a new article.
func (f *seenFilter) seen(a entity.Article) string {
	if _, ok := f.titles[normTitle(a.Title)]; ok {
		return dupTitle
	}
	if a.Link != "" {
		if _, ok := f.links[a.Link]; ok {
			return dupLink
		}
	}
	if _, ok := f.hashes[fingerprint(a)]; ok {
		return dupContent
	}
	return ""
}

func (f *seenFilter) add(a entity.Article) {
	f.titles[normTitle(a.Title)] = struct{}{}
	if a.Link != "" {
		f.links[a.Link] = struct{}{}
	}
	f.hashes[fingerprint(a)] = struct{}{}
}

func normTitle(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// fingerprint hashes the first 100 runes of the title and 200 of the summary.
func fingerprint(a entity.Article) string {
	sum := md5.Sum([]byte(prefix(a.Title, 100) + prefix(a.Summary, 200)))
	return hex.EncodeToString(sum[:])
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
