package completion

import (
	"fmt"
	"time"
)

// DefaultRetryDelay is the fixed wait between failed provider calls.
const DefaultRetryDelay = 60 * time.Second

// RetryPolicy controls how failed provider calls are repeated.
type RetryPolicy struct {
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// MaxAttempts bounds the number of calls. Zero means retry until the
	// context is cancelled.
	MaxAttempts int
}

// DefaultRetryPolicy retries forever with a fixed 60 second wait.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: DefaultRetryDelay}
}

func (p RetryPolicy) exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

// ProviderError is returned when a bounded retry policy gives up.
type ProviderError struct {
	Provider string
	Model    string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion: %s model %s failed after %d attempt(s): %v", e.Provider, e.Model, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
