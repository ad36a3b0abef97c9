// Package rewrite turns scraped articles into short model-written headings and
// summaries. It owns batching, pacing, retries across two model tiers, tolerant
// parsing of the model output and bisection of batches that keep failing.
package rewrite

import (
	"context"
	"time"
)

// Normalised finish reasons reported by Generator implementations.
const (
	FinishReasonStop      = "STOP"
	FinishReasonMaxTokens = "MAX_TOKENS"
	FinishReasonSafety    = "SAFETY"
	FinishReasonOther     = "OTHER"
)

// Generator is a generative-text backend.
// Implementations perform exactly one outbound request per call and never retry.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is one completion request.
type GenerateRequest struct {
	Model           string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	StopSequences   []string
	Timeout         time.Duration
}

// GenerateResponse is the decoded reply of a backend.
// Raw is the undecoded payload, kept for the debug dump.
type GenerateResponse struct {
	Candidates []Candidate
	Raw        []byte
}

// Candidate is one completion. Text is empty when the backend returned no usable parts.
type Candidate struct {
	Index        int
	Text         string
	FinishReason string
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

// Generate calls f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return f(ctx, req)
}
