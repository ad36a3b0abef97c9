// Package main provides a CLI command that rewrites a saved article list.
// Usage: newsdigest-rewrite [--input output/scraped_articles.json] [--provider gemini] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/llm"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/rewrite"
	"newsdigest/pkg/config"
)

// ItemOutput is one rewritten article in JSON output.
type ItemOutput struct {
	ID        int    `json:"id"`
	Heading   string `json:"heading"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Rewritten bool   `json:"rewritten"`
}

func main() {
	var (
		input        string
		provider     string
		outputFormat string
		timeout      time.Duration
	)

	flag.StringVar(&input, "input", "output/scraped_articles.json", "JSON file with the articles to rewrite")
	flag.StringVar(&provider, "provider", config.GetEnvString("LLM_PROVIDER", llm.ProviderGemini), "LLM provider: gemini, genai, claude or openai")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Overall timeout")
	flag.Parse()

	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: Invalid output format '%s' (must be 'text' or 'json')\n", outputFormat)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Format: config.GetEnvString("LOG_FORMAT", "json"),
		Level:  config.GetEnvString("LOG_LEVEL", "info"),
		Writer: os.Stderr,
	})
	slog.SetDefault(logger)

	articles, err := loadArticles(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gen, err := llm.New(provider, os.Getenv(llm.APIKeyEnv(provider)), llm.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if c, ok := gen.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Error("failed to close generator", slog.Any("error", err))
			}
		}()
	}

	rewriter, err := rewrite.New(gen, rewrite.LoadConfigFromEnv(), rewrite.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid rewrite configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("rewriting articles",
		slog.String("input", input),
		slog.String("provider", provider),
		slog.Int("articles", len(articles)))

	items := rewriter.Rewrite(ctx, entity.Inputs(articles))
	merged, _ := digest.Merge(articles, items)

	rewritten := make(map[int]bool, len(items))
	for _, it := range items {
		rewritten[it.Position] = true
	}

	if outputFormat == "json" {
		outputJSON(merged, rewritten)
	} else {
		outputText(merged, rewritten, len(items))
	}
}

func loadArticles(path string) ([]entity.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	var articles []entity.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse articles %s: %w", path, err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles in %s", path)
	}
	return articles, nil
}

// outputText prints the rewritten articles in human-readable format.
func outputText(items []entity.DigestItem, rewritten map[int]bool, count int) {
	fmt.Printf("Rewritten %d of %d articles\n\n", count, len(items))
	for i, it := range items {
		marker := ""
		if !rewritten[i] {
			marker = " (original)"
		}
		fmt.Printf("%d. %s%s\n", i+1, it.Heading, marker)
		fmt.Printf("   %s\n", it.Summary)
		if it.Link != "" {
			fmt.Printf("   %s\n", it.Link)
		}
		fmt.Println()
	}
}

// outputJSON prints the rewritten articles in JSON format.
func outputJSON(items []entity.DigestItem, rewritten map[int]bool) {
	out := make([]ItemOutput, len(items))
	for i, it := range items {
		out[i] = ItemOutput{
			ID:        it.ID,
			Heading:   it.Heading,
			Summary:   it.Summary,
			Link:      it.Link,
			Rewritten: rewritten[i],
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}
