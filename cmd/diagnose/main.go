// Package main checks every feed in the feeds file and writes a health report.
// Usage: diagnose [-feeds rss.xlsx] [-out output] [-timeout 30s]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdigest/internal/infra/scraper"
	"newsdigest/internal/infra/sources"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/pkg/redact"
	"newsdigest/pkg/config"
)

// Feed statuses.
const (
	StatusOK         = "OK"
	StatusRedirect   = "REDIRECT"
	StatusHTTPError  = "HTTP_ERROR"
	StatusTimeout    = "TIMEOUT"
	StatusReadError  = "READ_ERROR"
	StatusParseError = "PARSE_ERROR"
	StatusEmpty      = "EMPTY"
)

// FeedDiagnostic is the result for a single feed.
type FeedDiagnostic struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	HTTPCode      int    `json:"http_code"`
	ItemCount     int    `json:"item_count"`
	LatestDate    string `json:"latest_date"`
	ErrorMessage  string `json:"error_message,omitempty"`
	FeedType      string `json:"feed_type"`
	RedirectURL   string `json:"redirect_url,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

// Healthy reports whether the feed can be scraped.
func (d FeedDiagnostic) Healthy() bool {
	return d.Status == StatusOK || d.Status == StatusRedirect
}

const maxRedirects = 10

func main() {
	feedsFile := flag.String("feeds", config.GetEnvString("FEEDS_FILE", "rss.xlsx"), "feeds file (.xlsx, .yaml or .csv)")
	outDir := flag.String("out", config.GetEnvString("OUTPUT_DIR", "output"), "directory for the reports")
	timeout := flag.Duration("timeout", 30*time.Second, "per-feed request timeout")
	delay := flag.Duration("delay", 500*time.Millisecond, "pause between feeds")
	flag.Parse()

	logger := logging.New(logging.Options{Format: "text", Level: config.GetEnvString("LOG_LEVEL", "info")})

	feeds, err := sources.Load(*feedsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(feeds) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no feeds found in", *feedsFile)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient()
	logger.Info("diagnosing feeds", slog.Int("feeds", len(feeds)), slog.String("feeds_file", *feedsFile))

	diagnostics := make([]FeedDiagnostic, 0, len(feeds))
	for i, feedURL := range feeds {
		if ctx.Err() != nil {
			break
		}
		d := diagnoseFeed(ctx, client, feedURL, *timeout)
		logger.Info("feed diagnosed",
			slog.Int("index", i+1),
			slog.String("url", feedURL),
			slog.String("status", d.Status),
			slog.Int("items", d.ItemCount))
		diagnostics = append(diagnostics, d)

		if i < len(feeds)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(*delay):
			}
		}
	}

	textPath, jsonPath, err := writeReports(*outDir, diagnostics, time.Now())
	if err != nil {
		logger.Error("failed to write reports", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("reports written", slog.String("text", textPath), slog.String("json", jsonPath))
}

func newClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// diagnoseFeed fetches feedURL and classifies the response.
func diagnoseFeed(ctx context.Context, client *http.Client, feedURL string, timeout time.Duration) FeedDiagnostic {
	d := FeedDiagnostic{Name: feedName(feedURL), URL: feedURL}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		d.Status = StatusHTTPError
		d.ErrorMessage = err.Error()
		return d
	}
	req.Header.Set("User-Agent", scraper.DefaultUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := client.Do(req)
	d.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			d.Status = StatusTimeout
			d.ErrorMessage = fmt.Sprintf("request timeout after %v", timeout)
		} else {
			d.Status = StatusHTTPError
			d.ErrorMessage = redact.Error(err)
		}
		return d
	}
	defer func() { _ = resp.Body.Close() }()

	d.HTTPCode = resp.StatusCode
	d.ContentLength = resp.ContentLength

	redirected := resp.Request.URL.String() != feedURL
	if redirected {
		d.RedirectURL = resp.Request.URL.String()
	}
	if resp.StatusCode != http.StatusOK {
		d.Status = StatusHTTPError
		d.ErrorMessage = "HTTP " + resp.Status
		return d
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.Status = StatusReadError
		d.ErrorMessage = err.Error()
		return d
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		d.Status = StatusParseError
		d.FeedType = "UNKNOWN"
		d.ErrorMessage = fmt.Sprintf("%v (content preview: %s)", err, preview(body))
		return d
	}
	d.FeedType = strings.ToUpper(feed.FeedType)
	d.ItemCount = len(feed.Items)
	if d.ItemCount == 0 {
		d.Status = StatusEmpty
		d.ErrorMessage = "feed has no items"
		return d
	}
	d.LatestDate = latestDate(feed)

	d.Status = StatusOK
	if redirected {
		d.Status = StatusRedirect
	}
	return d
}

func latestDate(feed *gofeed.Feed) string {
	first := feed.Items[0]
	if first.Published != "" {
		return first.Published
	}
	return first.Updated
}

func feedName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}

func preview(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
