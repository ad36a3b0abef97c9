package fetch

import "context"

// ContentFetcher returns the readable text of an article page. The collector
// calls it only for kept items whose feed summary is empty, at most
// Config.EnrichLimit characters of the result are used, and any error leaves
// the summary empty.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}
