package gemini

import "fmt"

// ErrorKind classifies a terminal inference failure.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindAuth        ErrorKind = "auth"
	KindUnknown     ErrorKind = "unknown"
)

// Retryable reports whether a failure of this kind is transient and worth
// another attempt. Auth and unknown failures are not expected to succeed on
// retry.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindRateLimited
}

// InferenceError is the single terminal error surfaced when the remote call
// fails, after the retry policy has run its course.
type InferenceError struct {
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference failed (%s) after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("inference failed (%s) after %d attempt(s)", e.Kind, e.Attempts)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
