package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/rewrite"
)

// ProviderClaude is Anthropic's Messages API.
const ProviderClaude = "claude"

// Claude implements rewrite.Generator on top of the Anthropic SDK.
type Claude struct {
	apiKey string
	client anthropic.Client
	s      settings
}

// NewClaude creates a Claude generator. SDK-level retries are disabled and
// temperatures above 1, the Messages API maximum, are clamped.
func NewClaude(apiKey string, opts ...Option) *Claude {
	s := newSettings("", opts)
	apiKey = strings.TrimSpace(apiKey)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(s.httpClient),
	}
	if s.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(s.baseURL))
	}

	return &Claude{
		apiKey: apiKey,
		client: anthropic.NewClient(clientOpts...),
		s:      s,
	}
}

// Generate implements rewrite.Generator.
func (c *Claude) Generate(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, rewrite.ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := c.do(ctx, req)
	c.s.metrics.RecordRequest(ProviderClaude, req.Model, statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Claude) do(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxOutputTokens),
		Temperature: anthropic.Float(min(req.Temperature, 1)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if len(req.StopSequences) > 0 {
		params.StopSequences = req.StopSequences
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			msg := truncate(apiErr.Error(), maxErrorBody)
			c.s.logger.ErrorContext(ctx, "claude request failed",
				slog.String("model", req.Model),
				slog.Int("status_code", apiErr.StatusCode),
				slog.String("error", msg))
			return nil, fmt.Errorf("claude %s: %w", req.Model,
				&retry.HTTPError{StatusCode: apiErr.StatusCode, Message: msg})
		}
		return nil, fmt.Errorf("claude %s: %w", req.Model, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &rewrite.GenerateResponse{
		Candidates: []rewrite.Candidate{{
			Index:        0,
			Text:         sb.String(),
			FinishReason: claudeFinishReason(string(message.StopReason)),
		}},
		Raw: []byte(message.RawJSON()),
	}, nil
}

// claudeFinishReason maps stop reasons. A stop sequence is a clean finish.
func claudeFinishReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return rewrite.FinishReasonStop
	case "max_tokens":
		return rewrite.FinishReasonMaxTokens
	case "refusal":
		return rewrite.FinishReasonSafety
	default:
		return rewrite.FinishReasonOther
	}
}
