package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/usecase/rewrite"
)

func TestFromGenAI(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      &genai.Content{Parts: []genai.Part{genai.Text(`[{"heading":`), genai.Text(`"A"}]`)}},
				FinishReason: genai.FinishReasonStop,
			},
			nil,
			{FinishReason: genai.FinishReasonSafety},
		},
	}

	got := fromGenAI(resp)

	require.Len(t, got.Candidates, 2)
	assert.Equal(t, `[{"heading":"A"}]`, got.Candidates[0].Text)
	assert.Equal(t, rewrite.FinishReasonStop, got.Candidates[0].FinishReason)
	assert.Equal(t, 2, got.Candidates[1].Index)
	assert.Empty(t, got.Candidates[1].Text)
	assert.Equal(t, rewrite.FinishReasonSafety, got.Candidates[1].FinishReason)
	assert.NotEmpty(t, got.Raw)
}

func TestGenAIFinishReason(t *testing.T) {
	assert.Equal(t, rewrite.FinishReasonMaxTokens, genAIFinishReason(genai.FinishReasonMaxTokens))
	assert.Equal(t, rewrite.FinishReasonSafety, genAIFinishReason(genai.FinishReasonRecitation))
	assert.Equal(t, rewrite.FinishReasonOther, genAIFinishReason(genai.FinishReasonUnspecified))
}

func TestGenAI_MissingAPIKey(t *testing.T) {
	g := NewGenAI("", WithMetrics(NoopMetrics{}))
	defer func() { _ = g.Close() }()

	_, err := g.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, rewrite.ErrMissingAPIKey)
}

func TestGenAI_CloseWithoutClient(t *testing.T) {
	g := NewGenAI("secret", WithMetrics(NoopMetrics{}))
	assert.NoError(t, g.Close())
}
