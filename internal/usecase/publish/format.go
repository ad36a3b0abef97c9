package publish

import (
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/utils/text"
)

const (
	// MaxPostLength is the X/Twitter character budget for one post.
	MaxPostLength = 280
	// LinkLength is the length X/Twitter counts for any link (t.co wrapping).
	LinkLength = 23
	// MaxItems is the number of detail posts in a thread.
	MaxItems = 10

	dateLayout = "02-01-2006"
)

// Formatter renders digest threads into posts.
// Limit caps the index post length; zero means unlimited (markdown export).
type Formatter struct {
	Limit int
}

// TweetFormatter returns a Formatter bound to the X/Twitter budget.
func TweetFormatter() Formatter {
	return Formatter{Limit: MaxPostLength}
}

// DetailThreads drops a leading index entry ("Top 10 ...") and caps the result to MaxItems.
func DetailThreads(threads []entity.Thread) []entity.Thread {
	if len(threads) > 0 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(threads[0].Heading)), "top 10") {
		threads = threads[1:]
	}
	if len(threads) > MaxItems {
		threads = threads[:MaxItems]
	}
	return threads
}

// Index renders the "Top N" list post.
func (f Formatter) Index(threads []entity.Thread, date time.Time) string {
	header := fmt.Sprintf("🚀 Top %d Tech/AI News Of The Day - %s:\n\n", min(len(threads), MaxItems), date.Format(dateLayout))

	var items []string
	for i, t := range threads {
		if i >= MaxItems {
			break
		}
		heading := strings.TrimSpace(t.Heading)
		if heading == "" {
			continue
		}
		line := fmt.Sprintf("%d. %s", i+1, heading)
		if f.Limit > 0 && text.CountRunes(header+strings.Join(append(items, line), "\n")) >= f.Limit-20 {
			continue
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		return strings.TrimSpace(header)
	}
	return header + strings.Join(items, "\n")
}

// Detail renders the post for one article: numbered heading, summary trimmed to
// the space left under MaxPostLength, then the link. It returns an empty post
// when the thread has no heading.
func (f Formatter) Detail(t entity.Thread, link string, idx, total int) entity.Post {
	heading := strings.TrimSpace(t.Heading)
	if heading == "" {
		return entity.Post{}
	}

	base := fmt.Sprintf("📰 %d/%d: %s", idx, total, heading)
	linkCost := 0
	if link != "" {
		linkCost = LinkLength + 4
	}
	spaceLeft := MaxPostLength - text.CountRunes(base) - linkCost - 4

	var sb strings.Builder
	sb.WriteString(base)
	if summary := cleanSummary(t.Summary); summary != "" && spaceLeft > 20 {
		sb.WriteString("\n\n")
		sb.WriteString(text.TruncateWords(summary, spaceLeft, "..."))
	}
	if link != "" {
		sb.WriteString("\n\n🔗 ")
		sb.WriteString(link)
	}
	return entity.Post{Text: sb.String(), Link: link}
}

// Closing renders the sign-off post.
func (f Formatter) Closing(date time.Time) string {
	return fmt.Sprintf("✅ That's a wrap for %s! 🚀 Stay tuned for tomorrow's top tech stories.", date.Format(dateLayout))
}

// Thread renders the full post sequence: index, one detail post per thread
// (numbered out of MaxItems), closing. Links come from articles by position.
func (f Formatter) Thread(threads []entity.Thread, articles []entity.Article, date time.Time) []entity.Post {
	threads = DetailThreads(threads)
	if len(threads) == 0 {
		return nil
	}

	posts := make([]entity.Post, 0, len(threads)+2)
	posts = append(posts, entity.Post{Text: f.Index(threads, date)})
	for i, t := range threads {
		var link string
		if i < len(articles) {
			link = articles[i].Link
		}
		if p := f.Detail(t, link, i+1, MaxItems); p.Text != "" {
			posts = append(posts, p)
		}
	}
	posts = append(posts, entity.Post{Text: f.Closing(date)})
	return posts
}

// cleanSummary removes the numbered heading and link lines the thread format
// embeds in summaries and joins the rest into one paragraph.
func cleanSummary(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "📰") || strings.HasPrefix(line, "🔗") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}
