package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/rewrite"
)

// ProviderOpenAI is the Chat Completions API or any compatible server.
const ProviderOpenAI = "openai"

// OpenAI implements rewrite.Generator with chat completions.
type OpenAI struct {
	apiKey string
	client *openai.Client
	s      settings
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	s := newSettings("", opts)
	apiKey = strings.TrimSpace(apiKey)

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = s.httpClient
	if s.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(s.baseURL, "/")
	}

	return &OpenAI{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
		s:      s,
	}
}

// Generate implements rewrite.Generator.
func (o *OpenAI) Generate(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	if o.apiKey == "" {
		return nil, rewrite.ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := o.do(ctx, req)
	o.s.metrics.RecordRequest(ProviderOpenAI, req.Model, statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (o *OpenAI) do(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxOutputTokens,
		Stop:        req.StopSequences,
	})
	if err != nil {
		if status := openAIStatus(err); status != 0 {
			msg := truncate(err.Error(), maxErrorBody)
			o.s.logger.ErrorContext(ctx, "openai request failed",
				slog.String("model", req.Model),
				slog.Int("status_code", status),
				slog.String("error", msg))
			return nil, fmt.Errorf("openai %s: %w", req.Model,
				&retry.HTTPError{StatusCode: status, Message: msg})
		}
		return nil, fmt.Errorf("openai %s: %w", req.Model, err)
	}

	raw, _ := json.Marshal(resp)

	out := &rewrite.GenerateResponse{
		Candidates: make([]rewrite.Candidate, 0, len(resp.Choices)),
		Raw:        raw,
	}
	for _, choice := range resp.Choices {
		out.Candidates = append(out.Candidates, rewrite.Candidate{
			Index:        choice.Index,
			Text:         choice.Message.Content,
			FinishReason: openAIFinishReason(choice.FinishReason),
		})
	}
	return out, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func openAIFinishReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return rewrite.FinishReasonStop
	case openai.FinishReasonLength:
		return rewrite.FinishReasonMaxTokens
	case openai.FinishReasonContentFilter:
		return rewrite.FinishReasonSafety
	default:
		return rewrite.FinishReasonOther
	}
}
