package fetch

import "net/url"

// hostOf names an article source after the host of its feed.
func hostOf(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Hostname()
}
