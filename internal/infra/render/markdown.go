// Package render writes digest assets to disk: the markdown thread export with
// its HTML preview, and the image cards.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"newsdigest/internal/domain/entity"
)

// postSeparator separates posts in the markdown export.
const postSeparator = "---\n\n"

// MarkdownExporter writes news-DD--MM-YYYY.md and an .html preview next to it.
type MarkdownExporter struct {
	Dir string
	md  goldmark.Markdown
}

// NewMarkdownExporter returns an exporter writing into dir.
func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{
		Dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// MarkdownFileName returns the export file name for date.
func MarkdownFileName(date time.Time) string {
	return fmt.Sprintf("news-%s.md", date.Format("02--01-2006"))
}

// Markdown joins posts into the export document.
func Markdown(posts []entity.Post) []byte {
	var buf bytes.Buffer
	for i, p := range posts {
		buf.WriteString(strings.TrimSpace(p.Text))
		buf.WriteString("\n\n")
		if i < len(posts)-1 {
			buf.WriteString(postSeparator)
		}
	}
	return buf.Bytes()
}

// Export writes the markdown file and its HTML preview and returns both paths.
func (e *MarkdownExporter) Export(posts []entity.Post, date time.Time) (mdPath, htmlPath string, err error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create export dir: %w", err)
	}

	doc := Markdown(posts)
	mdPath = filepath.Join(e.Dir, MarkdownFileName(date))
	if err := os.WriteFile(mdPath, doc, 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown: %w", err)
	}

	var body bytes.Buffer
	if err := e.md.Convert(doc, &body); err != nil {
		return mdPath, "", fmt.Errorf("render markdown preview: %w", err)
	}

	htmlPath = strings.TrimSuffix(mdPath, ".md") + ".html"
	page := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
		strings.TrimSuffix(filepath.Base(mdPath), ".md"), body.String())
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return mdPath, "", fmt.Errorf("write markdown preview: %w", err)
	}
	return mdPath, htmlPath, nil
}
