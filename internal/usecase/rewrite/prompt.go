package rewrite

import (
	"bytes"
	"encoding/json"
	"fmt"

	"newsdigest/internal/domain/entity"
)

// promptItem is the compact per-article record sent to the model.
// ID is 1-based within the batch and echoed back for alignment.
type promptItem struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

const promptTemplate = `Rephrase these news articles.

Return ONLY a JSON array with exactly one object per input article. Each object must have:
- id (the id of the input article)
- heading (short headline)
- summary (1-2 sentences plain text)

NO links, NO emojis, NO markdown, NO extra text.

Input:
%s

Output:
[{"id":1,"heading":"...","summary":"..."}, ...]
`

// BuildPrompt renders the instruction prompt for a batch.
// Only title and summary reach the model.
func BuildPrompt(articles []entity.ArticleInput) (string, error) {
	items := make([]promptItem, len(articles))
	for i, a := range articles {
		items[i] = promptItem{ID: i + 1, Title: a.Title, Summary: a.Summary}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	return fmt.Sprintf(promptTemplate, bytes.TrimSpace(buf.Bytes())), nil
}
