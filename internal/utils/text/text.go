// Package text provides rune-aware helpers shared by the collector, the post
// formatter and the image renderer.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
//	CountRunes("hello")   // 5
//	CountRunes("hello世界") // 7
//	CountRunes("Hello👋")  // 6
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes returns the first n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// TruncateWords shortens s to at most max runes, cutting at the last space and
// appending ellipsis when anything was removed. The ellipsis counts toward max.
// A single word longer than the budget is cut mid-word.
func TruncateWords(s string, max int, ellipsis string) string {
	s = strings.TrimSpace(s)
	if CountRunes(s) <= max {
		return s
	}
	budget := max - CountRunes(ellipsis)
	if budget <= 0 {
		return TruncateRunes(ellipsis, max)
	}

	cut := TruncateRunes(s, budget)
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) && r != ')' && r != '"'
	}) + ellipsis
}

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// StripURLs removes http(s) and www links and collapses the remaining whitespace.
func StripURLs(s string) string {
	return CollapseSpaces(urlPattern.ReplaceAllString(s, ""))
}

// CollapseSpaces replaces runs of spaces and tabs with one space on every line
// and trims each line.
func CollapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ToASCII drops every non-ASCII rune, including emoji, keeping printable
// characters and newlines.
func ToASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || (r < unicode.MaxASCII && unicode.IsPrint(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
