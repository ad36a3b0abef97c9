// Package store persists digest output as flat JSON files.
// Every save replaces the previous file; there is no history.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"newsdigest/internal/domain/entity"
)

const (
	// ContentFile holds the per-platform threads.
	ContentFile = "content.json"
	// ArticlesFile holds the scraped articles in digest order.
	ArticlesFile = "scraped_articles.json"
)

// Store reads and writes digest files under Dir.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the location of name inside the store directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// SaveContent writes content.json.
func (s *Store) SaveContent(content entity.Content) error {
	return s.write(ContentFile, content)
}

// LoadContent reads content.json.
func (s *Store) LoadContent() (entity.Content, error) {
	var content entity.Content
	err := s.read(ContentFile, &content)
	return content, err
}

// SaveArticles writes scraped_articles.json.
func (s *Store) SaveArticles(articles []entity.Article) error {
	if articles == nil {
		articles = []entity.Article{}
	}
	return s.write(ArticlesFile, articles)
}

// LoadArticles reads scraped_articles.json.
func (s *Store) LoadArticles() ([]entity.Article, error) {
	var articles []entity.Article
	if err := s.read(ArticlesFile, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *Store) write(name string, v any) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
