package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/rewrite"
)

const (
	// ProviderGemini is the Generative Language REST API.
	ProviderGemini = "gemini"

	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	// maxResponseBody bounds how much of a reply is read.
	maxResponseBody = 8 << 20
)

// Gemini calls the generateContent REST endpoint directly.
type Gemini struct {
	apiKey string
	s      settings
}

// NewGemini creates a Gemini generator. An empty apiKey is accepted; every
// call then fails with rewrite.ErrMissingAPIKey.
func NewGemini(apiKey string, opts ...Option) *Gemini {
	s := newSettings(defaultGeminiBaseURL, opts)
	return &Gemini{
		apiKey: strings.TrimSpace(apiKey),
		s:      s,
	}
}

type geminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Generate implements rewrite.Generator.
func (g *Gemini) Generate(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	if g.apiKey == "" {
		return nil, rewrite.ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := g.do(ctx, req)
	g.s.metrics.RecordRequest(ProviderGemini, req.Model, statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (g *Gemini) do(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
			StopSequences:   req.StopSequences,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(g.s.baseURL, "/"), url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	httpResp, err := g.s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Model, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("gemini %s: read body: %w", req.Model, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := truncate(strings.TrimSpace(string(raw)), maxErrorBody)
		g.s.logger.ErrorContext(ctx, "gemini request failed",
			slog.String("model", req.Model),
			slog.Int("status_code", httpResp.StatusCode),
			slog.String("body", msg))
		return nil, fmt.Errorf("gemini %s: %w", req.Model,
			retry.NewHTTPError(httpResp, msg))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("gemini %s: decode response: %w", req.Model, err)
	}
	if len(decoded.Candidates) == 0 && decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		g.s.logger.WarnContext(ctx, "gemini blocked prompt",
			slog.String("model", req.Model),
			slog.String("block_reason", decoded.PromptFeedback.BlockReason))
	}

	out := &rewrite.GenerateResponse{
		Candidates: make([]rewrite.Candidate, 0, len(decoded.Candidates)),
		Raw:        raw,
	}
	for i, c := range decoded.Candidates {
		out.Candidates = append(out.Candidates, rewrite.Candidate{
			Index:        i,
			Text:         geminiText(c.Content.Parts),
			FinishReason: geminiFinishReason(c.FinishReason),
		})
	}
	return out, nil
}

// geminiText joins the visible parts of a candidate. Thought summaries are skipped.
func geminiText(parts []geminiPart) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func geminiFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return rewrite.FinishReasonStop
	case "MAX_TOKENS":
		return rewrite.FinishReasonMaxTokens
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return rewrite.FinishReasonSafety
	default:
		return rewrite.FinishReasonOther
	}
}
