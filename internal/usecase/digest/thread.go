package digest

import (
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"
)

// ThreadSize is the number of detail slots in a digest thread.
const ThreadSize = 10

// IndexHeading is the heading of the first thread of every platform.
const IndexHeading = "Top 10 Index"

// Merge re-attaches each rewritten item to its source article by Position.
// Articles without a usable rewrite keep their original title and summary.
// It returns the digest items in article order and the number that came from
// the model.
func Merge(articles []entity.Article, items []entity.RewrittenItem) ([]entity.DigestItem, int) {
	byPos := make(map[int]entity.RewrittenItem, len(items))
	for _, it := range items {
		if _, dup := byPos[it.Position]; !dup {
			byPos[it.Position] = it
		}
	}

	merged := make([]entity.DigestItem, 0, len(articles))
	rewritten := 0
	for i, a := range articles {
		id := a.ID
		if id == 0 {
			id = i + 1
		}
		d := entity.DigestItem{
			ID:      id,
			Heading: a.Title,
			Summary: a.Summary,
			Link:    a.Link,
			Source:  a.Source,
		}
		if d.Heading == "" {
			d.Heading = fmt.Sprintf("Article %d", id)
		}
		if d.Summary == "" {
			d.Summary = "No summary available"
		}

		if it, ok := byPos[i]; ok && strings.TrimSpace(it.Heading) != "" {
			d.Heading = strings.TrimSpace(it.Heading)
			if s := strings.TrimSpace(it.Summary); s != "" {
				d.Summary = s
			}
			rewritten++
		}
		merged = append(merged, d)
	}
	return merged, rewritten
}

// BuildThreadFormat builds the content bundle: an index thread followed by
// ThreadSize detail threads, identical for every platform. Missing slots are
// filled with placeholders.
func BuildThreadFormat(items []entity.DigestItem, date time.Time) entity.Content {
	threads := make([]entity.Thread, 0, ThreadSize+1)

	lines := make([]string, 0, ThreadSize)
	for i := 0; i < ThreadSize; i++ {
		if i < len(items) {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, items[i].Heading))
		} else {
			lines = append(lines, fmt.Sprintf("%d. (No article available)", i+1))
		}
	}
	index := fmt.Sprintf("🚀 Top 10 Tech/AI News of the Day (%s)\n\n", date.Format("02-01-2006")) + strings.Join(lines, "\n")
	threads = append(threads, entity.Thread{Heading: IndexHeading, Summary: index})

	for i := 0; i < ThreadSize; i++ {
		heading := fmt.Sprintf("Article %d", i+1)
		summary := "(No summary available)"
		link := ""
		if i < len(items) {
			heading, summary, link = items[i].Heading, items[i].Summary, items[i].Link
		}

		txt := fmt.Sprintf("📰 %d/%d: %s\n\n%s", i+1, ThreadSize, heading, summary)
		if link != "" {
			txt += "\n\n🔗 " + link
		}
		threads = append(threads, entity.Thread{Heading: heading, Summary: txt})
	}

	set := entity.ThreadSet{Threads: threads}
	return entity.Content{Twitter: set, LinkedIn: set, Instagram: set}
}

// filledThreads returns the index thread and the detail threads backed by an
// item, dropping placeholder slots.
func filledThreads(set entity.ThreadSet, items int) []entity.Thread {
	n := min(items, ThreadSize) + 1
	if n > len(set.Threads) {
		n = len(set.Threads)
	}
	return set.Threads[:n]
}
