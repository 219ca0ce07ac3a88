package http

import (
	"errors"
	"fmt"
)

// maxSnippet bounds how much of a body a ParseError carries.
const maxSnippet = 64

// ParseError reports a response body that is not the JSON a strict
// accessor expected.
type ParseError struct {
	// Snippet is the start of the offending body
	Snippet string

	// Reason is set when the body parsed but had the wrong shape
	Reason string

	Err error
}

func newParseError(body []byte, reason string, err error) *ParseError {
	snippet := string(body)
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet] + "..."
	}
	return &ParseError{Snippet: snippet, Reason: reason, Err: err}
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unexpected JSON response: %s", e.Reason)
	}
	return fmt.Sprintf("response body is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError checks if the error is a ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}
