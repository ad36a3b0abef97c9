// Package entity defines the core domain entities and validation logic for the application.
// It contains the scraped Article, the model-produced RewrittenItem and the digest
// structures built from them, along with their validation rules and domain-specific errors.
package entity

import "time"

// Article represents a news article scraped from an RSS feed.
// ID is assigned after collection (1-based, in digest order).
type Article struct {
	ID          int        `json:"id,omitempty"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Link        string     `json:"link"`
	Source      string     `json:"source,omitempty"`
	Published   string     `json:"published"`
	PublishedAt *time.Time `json:"published_datetime,omitempty"`
}

// Input strips the article down to the fields forwarded to the model.
func (a Article) Input() ArticleInput {
	return ArticleInput{Title: a.Title, Summary: a.Summary}
}

// ArticleInput is the part of an article that is sent to the generative model.
type ArticleInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// RewrittenItem is a model-produced heading and summary for one article.
// Position is the index of the source article in the list handed to the rewriter;
// it is filled in by the rewriter and never serialized.
type RewrittenItem struct {
	ID       int    `json:"id,omitempty"`
	Heading  string `json:"heading"`
	Summary  string `json:"summary"`
	Position int    `json:"-"`
}

// DigestItem is a rewritten article with its link re-attached.
type DigestItem struct {
	ID      int    `json:"id"`
	Heading string `json:"heading"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	Source  string `json:"source,omitempty"`
}

// Inputs converts a list of articles into model inputs, preserving order.
func Inputs(articles []Article) []ArticleInput {
	inputs := make([]ArticleInput, 0, len(articles))
	for _, a := range articles {
		inputs = append(inputs, a.Input())
	}
	return inputs
}
