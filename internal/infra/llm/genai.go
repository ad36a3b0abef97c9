package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"newsdigest/internal/usecase/rewrite"
)

// ProviderGenAI is Gemini through the Google Go SDK instead of raw REST.
const ProviderGenAI = "genai"

// GenAI implements rewrite.Generator with the generative-ai-go client.
// The client is dialled on first use and must be released with Close.
type GenAI struct {
	apiKey string
	s      settings

	mu     sync.Mutex
	client *genai.Client
}

// NewGenAI creates a GenAI generator. The base URL option, when set, is used
// as the API endpoint.
func NewGenAI(apiKey string, opts ...Option) *GenAI {
	s := newSettings("", opts)
	return &GenAI{
		apiKey: strings.TrimSpace(apiKey),
		s:      s,
	}
}

func (g *GenAI) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(g.apiKey)}
	if g.s.baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(g.s.baseURL))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return client, nil
}

// Close releases the underlying client.
func (g *GenAI) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// Generate implements rewrite.Generator.
func (g *GenAI) Generate(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	if g.apiKey == "" {
		return nil, rewrite.ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := g.do(ctx, req)
	g.s.metrics.RecordRequest(ProviderGenAI, req.Model, statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (g *GenAI) do(ctx context.Context, req rewrite.GenerateRequest) (*rewrite.GenerateResponse, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	model.StopSequences = req.StopSequences

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		// A blocked reply is still a reply; the rewriter decides what to do with it.
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			blockedResp := &genai.GenerateContentResponse{PromptFeedback: blocked.PromptFeedback}
			if blocked.Candidate != nil {
				blockedResp.Candidates = []*genai.Candidate{blocked.Candidate}
			}
			return fromGenAI(blockedResp), nil
		}
		return nil, fmt.Errorf("genai %s: %w", req.Model, err)
	}
	return fromGenAI(resp), nil
}

func fromGenAI(resp *genai.GenerateContentResponse) *rewrite.GenerateResponse {
	raw, _ := json.Marshal(resp)
	out := &rewrite.GenerateResponse{
		Candidates: make([]rewrite.Candidate, 0, len(resp.Candidates)),
		Raw:        raw,
	}
	for i, c := range resp.Candidates {
		if c == nil {
			continue
		}
		var sb strings.Builder
		if c.Content != nil {
			for _, p := range c.Content.Parts {
				if t, ok := p.(genai.Text); ok {
					sb.WriteString(string(t))
				}
			}
		}
		out.Candidates = append(out.Candidates, rewrite.Candidate{
			Index:        i,
			Text:         sb.String(),
			FinishReason: genAIFinishReason(c.FinishReason),
		})
	}
	return out
}

func genAIFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return rewrite.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return rewrite.FinishReasonMaxTokens
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return rewrite.FinishReasonSafety
	default:
		return rewrite.FinishReasonOther
	}
}
