package rewrite

import "errors"

var (
	// ErrMissingAPIKey is returned by generators constructed without credentials.
	// The rewriter treats it as a configuration error and stops without retrying.
	ErrMissingAPIKey = errors.New("rewrite: api key not configured")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("rewrite: invalid config")

	// ErrNoCandidates means the response had no candidate carrying text.
	ErrNoCandidates = errors.New("rewrite: no candidate contained text")

	// ErrUnparseable means no parse stage produced any item.
	ErrUnparseable = errors.New("rewrite: response is not a JSON array of items")

	// ErrMisaligned means parsed items could not be matched to the batch.
	ErrMisaligned = errors.New("rewrite: items do not match batch")
)
