package domain

import "errors"

var (
	// ErrInvalidQuote is returned when a quote is missing its text or category.
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrMalformedImport is returned when imported content is not an array of quotes.
	ErrMalformedImport = errors.New("malformed import")
	// ErrNotFound is returned by stores when a key has never been written.
	ErrNotFound = errors.New("not found")
)
