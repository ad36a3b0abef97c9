package entity

import (
	"fmt"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// ValidateURL accepts absolute http(s) URLs with a host, up to 2048 bytes.
func ValidateURL(rawURL string) error {
	switch {
	case rawURL == "":
		return &ValidationError{Field: "url", Message: "empty"}
	case len(rawURL) > maxURLLength:
		return &ValidationError{Field: "url", Message: fmt.Sprintf("longer than %d bytes", maxURLLength)}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("scheme %q is not http or https", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "missing host"}
	}
	return nil
}

// Validate requires a non-blank title. Summary and link may be empty; the
// digest falls back to placeholders for them.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "blank"}
	}
	return nil
}
