package rewrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"newsdigest/internal/domain/entity"
)

// fakeGenerator replays a scripted reply per call and records every request.
type fakeGenerator struct {
	mu     sync.Mutex
	calls  []GenerateRequest
	stamps []time.Time
	reply  func(call int, req GenerateRequest) (*GenerateResponse, error)
}

func (f *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (*GenerateResponse, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.stamps = append(f.stamps, time.Now())
	f.mu.Unlock()
	return f.reply(call, req)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGenerator) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Model
	}
	return out
}

func textResponse(text string) *GenerateResponse {
	return &GenerateResponse{
		Candidates: []Candidate{{Index: 0, Text: text, FinishReason: FinishReasonStop}},
		Raw:        []byte(fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PrimaryModel = "primary"
	cfg.FallbackModel = "fallback"
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = time.Second
	cfg.MinCallInterval = 0
	cfg.DebugDumpPath = ""
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRewriter(t *testing.T, gen Generator, cfg Config, opts ...Option) *Rewriter {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	r, err := New(gen, cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func articles(n int) []entity.ArticleInput {
	out := make([]entity.ArticleInput, n)
	for i := range out {
		out[i] = entity.ArticleInput{
			Title:   fmt.Sprintf("Title %d", i+1),
			Summary: fmt.Sprintf("Summary %d", i+1),
		}
	}
	return out
}

// echoItems renders a well-formed array with ids 1..n.
func echoItems(n int) string {
	s := "["
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ","
		}
		s += fmt.Sprintf(`{"id":%d,"heading":"Heading %d","summary":"Rewritten %d"}`, i, i, i)
	}
	return s + "]"
}

// countArticles returns how many articles the prompt carries.
func countArticles(prompt string) int {
	n := 0
	for strings.Contains(prompt, fmt.Sprintf(`{"id":%d,`, n+1)) {
		n++
	}
	return n
}

type recordingMetrics struct {
	mu       sync.Mutex
	attempts map[string]int
	stages   map[string]int
	splits   int
	returned int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{attempts: map[string]int{}, stages: map[string]int{}}
}

func (m *recordingMetrics) RecordAttempt(model, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[model+"/"+outcome]++
}

func (m *recordingMetrics) RecordDuration(string, time.Duration) {}

func (m *recordingMetrics) RecordParseStage(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage]++
}

func (m *recordingMetrics) RecordSplit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.splits++
}

func (m *recordingMetrics) RecordItems(returned, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returned = returned
}
