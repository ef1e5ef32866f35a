package openai

import (
	"errors"
	"fmt"
)

// ConnectionError marks embedding calls that never reached the provider.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return "embedding service unreachable"
	}
	return fmt.Sprintf("embedding service unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsConnectionError reports whether err (or anything it wraps) is a
// transport-level embedding failure.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// APIError carries a non-2xx provider response verbatim (truncated).
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e == nil {
		return "openai api error"
	}
	return fmt.Sprintf("openai api error: status=%d body=%q", e.Status, e.Body)
}
