// Package sources loads the list of feed URLs the digest collects from.
//
// Three formats are understood, chosen by file extension:
//   - .xlsx: the "RSS Feed URL" column of the first sheet
//   - .yaml/.yml: a document of the form `feeds: [{url: ..., name: ...}]`
//   - anything else: CSV or plain text, one URL per line (first column), header optional
package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"newsdigest/internal/domain/entity"
)

// URLColumn is the spreadsheet header holding feed URLs.
const URLColumn = "RSS Feed URL"

// ErrColumnNotFound is returned when a spreadsheet lacks the URL column.
var ErrColumnNotFound = errors.New("feed url column not found")

// Feed is one entry of a YAML feed list.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type feedList struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeedURLs reads feed URLs from path and drops entries that are not
// absolute http(s) URLs. A missing or unreadable file is logged and yields an
// empty list; the pipeline then reports no articles.
func LoadFeedURLs(path string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	urls, err := Load(path)
	if err != nil {
		logger.Error("failed to load feed list",
			slog.String("path", path),
			slog.Any("error", err))
		return []string{}
	}

	valid := urls[:0]
	for _, u := range urls {
		if err := entity.ValidateURL(u); err != nil {
			logger.Warn("skipping invalid feed url",
				slog.String("url", u),
				slog.Any("error", err))
			continue
		}
		valid = append(valid, u)
	}

	logger.Info("feed list loaded",
		slog.String("path", path),
		slog.Int("feeds", len(valid)),
		slog.Int("skipped", len(urls)-len(valid)))
	return valid
}

// Load reads feed URLs from path and returns any error encountered.
// Blank entries are dropped and duplicates removed, keeping first occurrence order.
func Load(path string) ([]string, error) {
	var (
		urls []string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		urls, err = loadSpreadsheet(path)
	case ".yaml", ".yml":
		urls, err = loadYAML(path)
	default:
		urls, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return dedupe(urls), nil
}

func loadSpreadsheet(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrColumnNotFound, sheets[0])
	}

	col := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == URLColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, URLColumn)
	}

	urls := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells, so short rows have no value.
		if col < len(row) {
			urls = append(urls, row[col])
		}
	}
	return urls, nil
}

func loadYAML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}

	var list feedList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse feed list: %w", err)
	}

	urls := make([]string, 0, len(list.Feeds))
	for _, f := range list.Feeds {
		urls = append(urls, f.URL)
	}
	return urls, nil
}

func loadCSV(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed list: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var urls []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse feed list: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		value := strings.TrimSpace(record[0])
		if value == URLColumn || strings.EqualFold(value, "url") {
			continue
		}
		urls = append(urls, value)
	}
	return urls, nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
