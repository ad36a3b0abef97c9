package rewrite

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      []parsedItem
		wantStage string
	}{
		{
			name:      "strict array",
			text:      `[{"heading":"A","summary":"B"}]`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "fenced with language tag",
			text:      "```json\n[{\"heading\":\"A\",\"summary\":\"B\"}]\n```",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "fenced without language tag",
			text:      "```\n[{\"heading\":\"A\",\"summary\":\"B\"}]\n```",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "fence never closed",
			text:      "```json\n[{\"heading\":\"A\",\"summary\":\"B\"}",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "repaired",
		},
		{
			name:      "ids echoed",
			text:      `[{"id":2,"heading":"A","summary":"B"},{"id":"1","heading":"C","summary":"D"}]`,
			want:      []parsedItem{{ID: 2, Heading: "A", Summary: "B"}, {ID: 1, Heading: "C", Summary: "D"}},
			wantStage: "strict",
		},
		{
			name:      "trailing commas",
			text:      `[{"heading":"A","summary":"B",},]`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "lenient",
		},
		{
			name:      "single quotes and unquoted keys",
			text:      `[{heading:'A', summary:'B'}]`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "lenient",
		},
		{
			name:      "comments",
			text:      "[\n// first\n{\"heading\":\"A\",\"summary\":\"B\"}\n]",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "lenient",
		},
		{
			name:      "truncated inside string",
			text:      `[{"heading":"A","summary":"B`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "repaired",
		},
		{
			name:      "missing closing bracket",
			text:      `[{"heading":"A","summary":"B"},{"heading":"C","summary":"D"}`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}, {Heading: "C", Summary: "D"}},
			wantStage: "repaired",
		},
		{
			name:      "dangling comma after object",
			text:      "[{\"heading\":\"A\",\"summary\":\"B\"},\n",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "repaired",
		},
		{
			name:      "single object",
			text:      `{"heading":"A","summary":"B"}`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "non-object elements dropped",
			text:      `["x", 3, {"heading":"A","summary":"B"}, {"other":1}]`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "single quotes with embedded quotes",
			text:      `[{'heading':'Say "hi"','summary':'It\'s here'}]`,
			want:      []parsedItem{{Heading: `Say "hi"`, Summary: "It's here"}},
			wantStage: "lenient",
		},
		{
			name:      "apostrophe inside double quotes",
			text:      `[{heading:"It's", summary:'B'}]`,
			want:      []parsedItem{{Heading: "It's", Summary: "B"}},
			wantStage: "lenient",
		},
		{
			name:      "fence on one line",
			text:      "```json [{\"heading\":\"A\",\"summary\":\"B\"}]```",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "closing fence on json line",
			text:      "```json\n[{\"heading\":\"A\",\"summary\":\"B\"}]```",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
		{
			name:      "preamble",
			text:      "Here you go:\n[{\"heading\":\"A\",\"summary\":\"B\"}]",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "extracted+strict",
		},
		{
			name:      "trailing remark",
			text:      "[{\"heading\":\"A\",\"summary\":\"B\"}]\nLet me know if you want changes!",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "extracted+strict",
		},
		{
			name:      "preamble before fenced block",
			text:      "Sure, here's the list:\n```json\n[{\"heading\":\"A\",\"summary\":\"B\"}]\n```",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "extracted+strict",
		},
		{
			name:      "preamble with truncated array",
			text:      "Here you go: [{\"heading\":\"A\",\"summary\":\"B",
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "extracted+repaired",
		},
		{
			name:      "whitespace trimmed",
			text:      `[{"heading":"  A ","summary":" B"}]`,
			want:      []parsedItem{{Heading: "A", Summary: "B"}},
			wantStage: "strict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItems(tt.text)
			if err != nil {
				t.Fatalf("parseItems() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantStage, got.Stage)
		})
	}
}

func TestParseItems_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "blank", text: "  \n\t "},
		{name: "prose", text: "Sorry, I cannot do that."},
		{name: "bare word first", text: "Here you go: nothing today"},
		{name: "prose with apostrophes", text: "I'm afraid there's nothing to rewrite."},
		{name: "preamble with empty array", text: "Nothing matched: []"},
		{name: "empty array", text: "[]"},
		{name: "array of empty objects", text: `[{}, {"heading":""}]`},
		{name: "scalar", text: `"just a string"`},
		{name: "only fence", text: "```json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItems(tt.text)
			assert.True(t, errors.Is(err, ErrUnparseable), "err = %v", err)
			assert.Empty(t, got.Items)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[1]", stripCodeFence("```json\n[1]\n```"))
	assert.Equal(t, "[1]", stripCodeFence("  ```\n[1]\n```  "))
	assert.Equal(t, "[1]", stripCodeFence("[1]"))
	assert.Equal(t, "[1", stripCodeFence("```json\n[1"))
	assert.Equal(t, "[1]", stripCodeFence("```json [1]```"))
	assert.Equal(t, "[1]", stripCodeFence("```json\n[1]```"))
	assert.Equal(t, "[1]", stripCodeFence("```JSON5\n[1]\n```"))
	assert.Equal(t, "", stripCodeFence("```json\n```"))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "Here: [1, 2] done", want: "[1, 2]", wantOK: true},
		{in: `Result {"a":1}`, want: `{"a":1}`, wantOK: true},
		{in: "Here: [1, 2", want: "[1, 2", wantOK: true},
		{in: "[1, 2]", wantOK: false},
		{in: "no json here", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{'a':'b'}`, want: `{"a":"b"}`},
		{in: `{'a':'say "x"'}`, want: `{"a":"say \"x\""}`},
		{in: `{'a':'it\'s'}`, want: `{"a":"it's"}`},
		{in: `{"a":"it's"}`, want: `{"a":"it's"}`},
		{in: `{"a":"q\"'"}`, want: `{"a":"q\"'"}`},
		{in: `{'a':'b\nc'}`, want: `{"a":"b\nc"}`},
		{in: `{'a':'trunc`, want: `{"a":"trunc`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := requote(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, requote(got))
		})
	}
}

func TestDecodeLenient_BareWordIsError(t *testing.T) {
	assert.NotPanics(t, func() {
		v, err := decodeLenient("Here you go:\n[1]")
		assert.Error(t, err)
		assert.Nil(t, v)
	})
}

func FuzzParseItems(f *testing.F) {
	for _, seed := range []string{
		`[{"heading":"A","summary":"B"}]`,
		"Here you go:\n[{\"heading\":\"A\",\"summary\":\"B\"}]",
		`[{heading:'A', summary:'B',},]`,
		"```json\n[{\"heading\":\"A\"",
		"```json [1]```",
		"Sorry, I cannot do that.",
		`{'a':'it\'s "q"'}`,
		"[{\"heading\":\"A\"}] trailing",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, text string) {
		got, err := parseItems(text)
		if err != nil {
			if !errors.Is(err, ErrUnparseable) {
				t.Fatalf("parseItems(%q) error = %v, want ErrUnparseable", text, err)
			}
			return
		}
		if len(got.Items) == 0 {
			t.Fatalf("parseItems(%q) returned no items without an error", text)
		}
	})
}

func TestRepairTruncated(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `[{"a":"b`, want: `[{"a":"b"}]`},
		{in: `[{"a":"b"}`, want: `[{"a":"b"}]`},
		{in: `[{"a":"b"},`, want: `[{"a":"b"}]`},
		{in: "[{\"a\":\"b\"}, \n", want: `[{"a":"b"}]`},
		{in: `[{"a":"b"}]`, want: `[{"a":"b"}]`},
		{in: `[{"a":1,`, want: `[{"a":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, repairTruncated(tt.in))
		})
	}
}
