package gemini

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded signals an HTTP 429 from the generative API. It is
// kept distinct from UpstreamError because the user-facing reply
// differs ("try again tomorrow" instead of a generic failure).
var ErrQuotaExceeded = errors.New("gemini: quota exceeded")

// UpstreamError covers transport failures, timeouts and non-2xx
// statuses other than 429.
type UpstreamError struct {
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gemini: request failed: %v", e.Err)
	}
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError means the response carried no locatable or valid JSON
// region. Raw holds the (truncated) model text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gemini: invalid JSON in response: %v", e.Err)
	}
	return "gemini: no JSON found in response"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
