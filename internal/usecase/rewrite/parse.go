package rewrite

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// parsedItem is one object decoded from the model output.
// ID is 0 when the model did not echo a usable id.
type parsedItem struct {
	ID      int
	Heading string
	Summary string
}

// parser decodes model text into a generic JSON value.
type parser struct {
	name   string
	decode func(text string) (any, error)
}

// parseChain is tried in order; the first stage yielding at least one item wins.
var parseChain = []parser{
	{name: "strict", decode: decodeStrict},
	{name: "lenient", decode: decodeLenient},
	{name: "repaired", decode: func(text string) (any, error) { return decodeLenient(repairTruncated(requote(text))) }},
}

// parseResult holds the items and the name of the stage that produced them.
type parseResult struct {
	Items []parsedItem
	Stage string
}

// parseItems runs the parse chain over text. When no stage succeeds and the
// text carries words around the JSON, the chain runs again over the part
// from the first bracket to the last. It never panics and returns
// ErrUnparseable (with the last stage error) when nothing produced items.
func parseItems(text string) (parseResult, error) {
	txt := stripCodeFence(text)
	if txt == "" {
		return parseResult{}, fmt.Errorf("%w: empty text", ErrUnparseable)
	}

	res, err := runChain(txt, "")
	if err == nil {
		return res, nil
	}
	if inner, ok := extractJSON(txt); ok {
		if res, innerErr := runChain(inner, "extracted+"); innerErr == nil {
			return res, nil
		}
	}
	return parseResult{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
}

func runChain(txt, prefix string) (parseResult, error) {
	var lastErr error
	for _, p := range parseChain {
		v, err := p.decode(txt)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", p.name, err)
			continue
		}
		items := toItems(v)
		if len(items) == 0 {
			lastErr = fmt.Errorf("%s: no items", p.name)
			continue
		}
		return parseResult{Items: items, Stage: prefix + p.name}, nil
	}
	return parseResult{}, lastErr
}

// stripCodeFence removes a surrounding ``` fence and its language tag. The
// fences may share a line with the JSON; a missing closing fence (truncated
// output) is tolerated.
func stripCodeFence(text string) string {
	txt := strings.TrimSpace(text)
	if !strings.HasPrefix(txt, "```") {
		return txt
	}

	txt = strings.TrimPrefix(txt, "```")
	txt = strings.TrimLeftFunc(txt, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	txt = strings.TrimSpace(txt)
	txt = strings.TrimSuffix(txt, "```")
	return strings.TrimSpace(txt)
}

// extractJSON returns text from its first '[' or '{' through its last ']' or
// '}', or to the end when no closing bracket follows. ok is false when there
// is no bracket or nothing would be cut.
func extractJSON(text string) (string, bool) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexAny(text, "]}")
	if end < start {
		end = len(text) - 1
	}
	inner := text[start : end+1]
	if len(inner) == len(text) {
		return "", false
	}
	return inner, true
}

func decodeStrict(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeLenient accepts JSON5. The decoder panics on some malformed input,
// e.g. text starting with a bare word; that is reported as an error.
func decodeLenient(text string) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("json5 decoder: %v", p)
		}
	}()

	var out any
	if decErr := json5.Unmarshal([]byte(requote(text)), &out); decErr != nil {
		return nil, decErr
	}
	return out, nil
}

// requote turns single-quoted strings into double-quoted ones, escaping any
// double quotes they contain. Text inside double-quoted strings is untouched.
func requote(text string) string {
	if !strings.Contains(text, "'") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote == 0:
			switch c {
			case '\'':
				quote = c
				b.WriteByte('"')
				continue
			case '"':
				quote = c
			}
			b.WriteByte(c)
		case c == '\\' && i+1 < len(text):
			i++
			if quote == '\'' && text[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte(c)
			b.WriteByte(text[i])
		case c == quote:
			quote = 0
			b.WriteByte('"')
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// repairTruncated closes output cut off mid-array: an odd number of double
// quotes gets one more, trailing commas and whitespace are dropped, and a
// missing "}" and "]" are appended.
func repairTruncated(text string) string {
	fixed := text
	if strings.Count(fixed, `"`)%2 != 0 {
		fixed += `"`
	}

	fixed = strings.TrimRight(fixed, ", \n\r\t")
	if !strings.HasSuffix(fixed, "]") {
		if !strings.HasSuffix(fixed, "}") {
			fixed += "}"
		}
		fixed += "]"
	}
	return fixed
}

// toItems extracts items from a decoded value. An array yields one item per
// object; a single object is treated as a one-element array. Objects with
// neither heading nor summary are dropped.
func toItems(v any) []parsedItem {
	var elems []any
	switch t := v.(type) {
	case []any:
		elems = t
	case map[string]any:
		elems = []any{t}
	default:
		return nil
	}

	items := make([]parsedItem, 0, len(elems))
	for _, e := range elems {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item := parsedItem{
			ID:      toID(obj["id"]),
			Heading: toText(obj["heading"]),
			Summary: toText(obj["summary"]),
		}
		if item.Heading == "" && item.Summary == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toID(v any) int {
	switch t := v.(type) {
	case float64:
		if t == float64(int(t)) && t > 0 {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > 0 {
			return n
		}
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
