package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/rewrite"
)

func TestOpenAI_Generate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[
				{"index":0,"message":{"role":"assistant","content":"[{\"heading\":\"A\",\"summary\":\"B\"}]"},"finish_reason":"stop"},
				{"index":1,"message":{"role":"assistant","content":"[{\"head"},"finish_reason":"length"}
			]
		}`)
	}))
	defer srv.Close()

	metrics := &recordingMetrics{}
	o := NewOpenAI("secret", WithBaseURL(srv.URL+"/v1/"), WithLogger(quietLogger()), WithMetrics(metrics))

	req := testRequest()
	req.Model = "gpt-test"
	resp, err := o.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", gotBody["model"])
	assert.Equal(t, []any{"]"}, gotBody["stop"])

	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, `[{"heading":"A","summary":"B"}]`, resp.Candidates[0].Text)
	assert.Equal(t, rewrite.FinishReasonStop, resp.Candidates[0].FinishReason)
	assert.Equal(t, 1, resp.Candidates[1].Index)
	assert.Equal(t, rewrite.FinishReasonMaxTokens, resp.Candidates[1].FinishReason)
	assert.Contains(t, string(resp.Raw), "chatcmpl-1")
	assert.Equal(t, "ok", metrics.last().status)
}

func TestOpenAI_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	metrics := &recordingMetrics{}
	o := NewOpenAI("secret", WithBaseURL(srv.URL+"/v1"), WithLogger(quietLogger()), WithMetrics(metrics))

	_, err := o.Generate(context.Background(), testRequest())
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, "client_error", metrics.last().status)
}

func TestOpenAI_MissingAPIKey(t *testing.T) {
	o := NewOpenAI("", WithMetrics(NoopMetrics{}))
	_, err := o.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, rewrite.ErrMissingAPIKey)
}

func TestOpenAIFinishReason(t *testing.T) {
	assert.Equal(t, rewrite.FinishReasonStop, openAIFinishReason(openai.FinishReasonStop))
	assert.Equal(t, rewrite.FinishReasonMaxTokens, openAIFinishReason(openai.FinishReasonLength))
	assert.Equal(t, rewrite.FinishReasonSafety, openAIFinishReason(openai.FinishReasonContentFilter))
	assert.Equal(t, rewrite.FinishReasonOther, openAIFinishReason(openai.FinishReasonToolCalls))
}
