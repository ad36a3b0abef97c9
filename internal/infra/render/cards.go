package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/utils/text"
)

const (
	defaultCardSize = 1080
	jpegQuality     = 90
)

var numberingPattern = regexp.MustCompile(`^\s*\d+/\d+:\s*`)

// Card is the text drawn on one news image.
type Card struct {
	Heading string
	Summary string
	Source  string
}

// CardRenderer draws the index image and one card per item.
type CardRenderer struct {
	// Dir is the output directory of RenderThread.
	Dir string

	// Background is an image file drawn under the text; a dark canvas is used
	// when it is empty or cannot be loaded.
	Background string
	// FontPath is a TrueType font; the built-in face is used when empty.
	FontPath string

	// Width and Height of the canvas when no background is loaded.
	Width  int
	Height int

	Logger *slog.Logger
}

// CardsDir returns the folder name for date.
func CardsDir(date time.Time) string {
	return "instagram-images-" + date.Format("02-01-2006")
}

// CardsFromThreads pairs the detail threads of a digest with the source of
// the article at the same position. A leading index thread is skipped and the
// numbered heading and link lines are dropped from each summary.
func CardsFromThreads(threads []entity.Thread, articles []entity.Article) []Card {
	if len(threads) > 0 && strings.HasPrefix(strings.ToLower(threads[0].Heading), "top 10") {
		threads = threads[1:]
	}
	cards := make([]Card, 0, min(len(threads), 10))
	for i, t := range threads {
		if i >= 10 {
			break
		}
		var kept []string
		for _, line := range strings.Split(t.Summary, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "📰") || strings.HasPrefix(line, "🔗") {
				continue
			}
			kept = append(kept, line)
		}
		c := Card{Heading: t.Heading, Summary: strings.Join(kept, " ")}
		if i < len(articles) {
			c.Source = articles[i].Source
		}
		cards = append(cards, c)
	}
	return cards
}

// RenderThread draws the cards of a digest thread into Dir.
func (r *CardRenderer) RenderThread(threads []entity.Thread, articles []entity.Article, date time.Time) ([]string, error) {
	return r.Render(r.Dir, CardsFromThreads(threads, articles), date)
}

// Render writes index.jpg and news{i}.jpg into dir/instagram-images-DD-MM-YYYY
// and returns the paths written, index first.
func (r *CardRenderer) Render(dir string, cards []Card, date time.Time) ([]string, error) {
	folder := filepath.Join(dir, CardsDir(date))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	bg := r.background()
	paths := make([]string, 0, len(cards)+1)

	indexPath := filepath.Join(folder, "index.jpg")
	if err := r.drawIndex(bg, cards, date, indexPath); err != nil {
		return paths, err
	}
	paths = append(paths, indexPath)

	for i, c := range cards {
		if i >= 10 {
			break
		}
		p := filepath.Join(folder, fmt.Sprintf("news%d.jpg", i+1))
		if err := r.drawCard(bg, i+1, c, p); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (r *CardRenderer) drawIndex(bg image.Image, cards []Card, date time.Time, path string) error {
	dc := r.canvas(bg)
	w, h := float64(dc.Width()), float64(dc.Height())

	title := fmt.Sprintf("Top 10 Tech/AI News Of The Day - %s:", date.Format("02-01-2006"))
	items := make([]string, 0, len(cards))
	for i, c := range cards {
		heading := clean(c.Heading)
		if heading == "" {
			heading = fmt.Sprintf("Article %d", i+1)
		}
		items = append(items, fmt.Sprintf("%d. %s", i+1, heading))
	}

	if err := r.setFont(dc, 64); err != nil {
		return err
	}
	_, th := dc.MeasureString(title)
	const titleGap, lineGap = 60.0, 18.0

	if err := r.setFont(dc, 44); err != nil {
		return err
	}
	total := th + titleGap
	for _, it := range items {
		_, lh := dc.MeasureString(it)
		total += lh + lineGap
	}

	y := (h - total) / 2
	_ = r.setFont(dc, 64)
	drawCentered(dc, title, w, y)
	y += th + titleGap

	_ = r.setFont(dc, 44)
	for _, it := range items {
		y += drawCentered(dc, it, w, y) + lineGap
	}
	return gg.SaveJPG(path, dc.Image(), jpegQuality)
}

func (r *CardRenderer) drawCard(bg image.Image, idx int, c Card, path string) error {
	dc := r.canvas(bg)
	w, h := float64(dc.Width()), float64(dc.Height())

	heading := fmt.Sprintf("%d/10: %s", idx, clean(c.Heading))
	summary := numberingPattern.ReplaceAllString(clean(c.Summary), "")
	if summary == "" {
		summary = "No summary available"
	}
	source := clean(c.Source)

	if err := r.setFont(dc, 50); err != nil {
		return err
	}
	headLines := dc.WordWrap(heading, w-120)
	headH := measureLines(dc, headLines, 16)

	if err := r.setFont(dc, 48); err != nil {
		return err
	}
	lines := dc.WordWrap(summary, w-120)
	sumH := measureLines(dc, lines, 16)

	const blockGap = 40.0
	y := (h - (headH + blockGap + sumH)) / 2

	_ = r.setFont(dc, 50)
	for _, l := range headLines {
		y += drawCentered(dc, l, w, y) + 16
	}
	y += blockGap - 16

	_ = r.setFont(dc, 48)
	for _, l := range lines {
		y += drawCentered(dc, l, w, y) + 16
	}

	if source != "" {
		_ = r.setFont(dc, 36)
		label := "source: " + source
		_, sh := dc.MeasureString(label)
		drawShadowed(dc, label, 30, h-sh-70)
	}
	return gg.SaveJPG(path, dc.Image(), jpegQuality)
}

func (r *CardRenderer) background() image.Image {
	if r.Background == "" {
		return nil
	}
	img, err := gg.LoadImage(r.Background)
	if err != nil {
		r.logger().Warn("background image unavailable, using plain canvas",
			slog.String("path", r.Background),
			slog.Any("error", err))
		return nil
	}
	return img
}

func (r *CardRenderer) canvas(bg image.Image) *gg.Context {
	if bg != nil {
		return gg.NewContextForImage(bg)
	}
	w, h := r.Width, r.Height
	if w <= 0 {
		w = defaultCardSize
	}
	if h <= 0 {
		h = defaultCardSize
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.RGBA{R: 0x12, G: 0x16, B: 0x22, A: 0xff})
	dc.Clear()
	return dc
}

func (r *CardRenderer) setFont(dc *gg.Context, points float64) error {
	if r.FontPath == "" {
		return nil
	}
	if err := dc.LoadFontFace(r.FontPath, points); err != nil {
		return fmt.Errorf("load font %s: %w", r.FontPath, err)
	}
	return nil
}

func (r *CardRenderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// drawCentered draws s horizontally centered with its top at y and returns the line height.
func drawCentered(dc *gg.Context, s string, width, y float64) float64 {
	tw, th := dc.MeasureString(s)
	drawShadowed(dc, s, (width-tw)/2, y)
	return th
}

func drawShadowed(dc *gg.Context, s string, x, y float64) {
	_, th := dc.MeasureString(s)
	// gg anchors on the baseline; shift so y is the top of the line.
	y += th
	dc.SetRGB(0, 0, 0)
	dc.DrawString(s, x+3, y+3)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(s, x, y)
}

func measureLines(dc *gg.Context, lines []string, gap float64) float64 {
	var total float64
	for _, l := range lines {
		_, lh := dc.MeasureString(l)
		total += lh + gap
	}
	return total
}

// clean strips links and non-ASCII runes (emoji) and joins lines.
func clean(s string) string {
	return strings.Join(strings.Fields(text.ToASCII(text.StripURLs(s))), " ")
}
