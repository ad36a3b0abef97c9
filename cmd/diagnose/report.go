package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	textReportName = "feed_diagnostic_report.txt"
	jsonReportName = "feed_diagnostic_report.json"
	rule           = "==============================================="
	thinRule       = "-------------------------------------------"
)

// writeReports writes the text and JSON reports into dir.
func writeReports(dir string, diagnostics []FeedDiagnostic, now time.Time) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create report dir: %w", err)
	}

	var text bytes.Buffer
	writeTextReport(&text, diagnostics, now)
	textPath := filepath.Join(dir, textReportName)
	if err := os.WriteFile(textPath, text.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("write text report: %w", err)
	}

	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode json report: %w", err)
	}
	jsonPath := filepath.Join(dir, jsonReportName)
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write json report: %w", err)
	}
	return textPath, jsonPath, nil
}

func writeTextReport(w io.Writer, diagnostics []FeedDiagnostic, now time.Time) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "RSS Feed Diagnostic Report")
	fmt.Fprintf(w, "Generated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "Total Sources: %d\n", len(diagnostics))
	fmt.Fprintf(w, "%s\n\n", rule)

	statusCount := make(map[string]int)
	var healthy, broken []FeedDiagnostic
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Healthy() {
			healthy = append(healthy, d)
		} else {
			broken = append(broken, d)
		}
	}

	fmt.Fprintln(w, "SUMMARY:")
	fmt.Fprintf(w, "  ✅ Working: %d (%.1f%%)\n", len(healthy), percent(len(healthy), len(diagnostics)))
	fmt.Fprintf(w, "  ❌ Broken: %d (%.1f%%)\n", len(broken), percent(len(broken), len(diagnostics)))
	fmt.Fprintln(w, "\nSTATUS BREAKDOWN:")
	statuses := make([]string, 0, len(statusCount))
	for s := range statusCount {
		statuses = append(statuses, s)
	}
	slices.Sort(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %s: %d\n", s, statusCount[s])
	}

	fmt.Fprintf(w, "\n✅ WORKING FEEDS (%d):\n%s\n", len(healthy), thinRule)
	for _, d := range healthy {
		fmt.Fprintf(w, "Name: %s\n", d.Name)
		fmt.Fprintf(w, "  URL: %s\n", d.URL)
		fmt.Fprintf(w, "  Type: %s | Items: %d | Latest: %s\n", d.FeedType, d.ItemCount, d.LatestDate)
		fmt.Fprintf(w, "  Response: %dms | HTTP: %d\n", d.ResponseTime, d.HTTPCode)
		if d.RedirectURL != "" {
			fmt.Fprintf(w, "  ⚠️  Redirected to: %s\n", d.RedirectURL)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n❌ BROKEN FEEDS (%d):\n%s\n", len(broken), thinRule)
	for _, d := range broken {
		fmt.Fprintf(w, "Name: %s\n", d.Name)
		fmt.Fprintf(w, "  URL: %s\n", d.URL)
		fmt.Fprintf(w, "  Status: %s | HTTP: %d\n", d.Status, d.HTTPCode)
		fmt.Fprintf(w, "  Error: %s\n", d.ErrorMessage)
		fmt.Fprintf(w, "  Response: %dms\n", d.ResponseTime)
		fmt.Fprintln(w)
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
