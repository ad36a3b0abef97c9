package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText returns the visible text of an HTML fragment with whitespace
// collapsed. Input that does not parse is returned trimmed.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// dateLayouts are tried in order after GMT/UTC suffixes became +0000.
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
}

// ParseDate parses the date formats commonly found in feeds.
// It returns nil when none matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, " GMT", " +0000", 1)
	s = strings.Replace(s, " UTC", " +0000", 1)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
