package gemini

import "time"

type phase int

const (
	phaseAttempting phase = iota
	phaseSuccess
	phaseFailed
)

// retryState tracks the retry loop as a small explicit state machine. The
// transition function is pure so the policy can be tested without clocks or
// network calls.
type retryState struct {
	phase    phase
	attempts int
	max      int // additional attempts allowed beyond the first
}

func newRetryState(maxRetries int) retryState {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retryState{phase: phaseAttempting, max: maxRetries}
}

// next consumes the outcome of one attempt. ok marks success; kind
// classifies the failure otherwise.
func (s retryState) next(ok bool, kind ErrorKind) retryState {
	s.attempts++
	switch {
	case ok:
		s.phase = phaseSuccess
	case !kind.Retryable(), s.attempts > s.max:
		s.phase = phaseFailed
	}
	return s
}

// backoffDelay returns the exponential delay before the given attempt number
// (1-based; the first attempt has no delay).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt <= 1 || base <= 0 {
		return 0
	}
	delay := base
	for i := 2; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
