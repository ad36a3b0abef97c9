package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{name: "https", url: "https://example.com/feed"},
		{name: "http with port and query", url: "http://example.com:8080/feed?format=rss"},
		{name: "empty", url: "", wantMsg: "invalid url: empty"},
		{name: "ftp", url: "ftp://example.com/feed", wantMsg: `scheme "ftp"`},
		{name: "javascript", url: "javascript:alert(1)", wantMsg: `scheme "javascript"`},
		{name: "relative", url: "/feed.xml", wantMsg: `scheme ""`},
		{name: "no host", url: "https://", wantMsg: "missing host"},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantMsg: "longer than 2048"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestArticle_ValidateMessages(t *testing.T) {
	assert.NoError(t, Article{Title: "Chips"}.Validate())
	assert.NoError(t, Article{Title: "Chips", Summary: "", Link: ""}.Validate())
	assert.ErrorContains(t, Article{Title: "  \t"}.Validate(), "invalid title: blank")
}
