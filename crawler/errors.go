package crawler

import "errors"

var (
	// ErrInvalidURL indicates the start URL could not be parsed or is not
	// an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrContentTooLarge indicates a fetched page exceeded the configured
	// size limit.
	ErrContentTooLarge = errors.New("content too large")
)
