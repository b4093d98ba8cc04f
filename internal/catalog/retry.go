package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/tanic-org/tanic/internal/logger"
)

// ConnectRetry tracks connection attempts against one catalog uri
type ConnectRetry struct {
	Attempt     int           // Number of attempts made so far
	LastAttempt time.Time     // Timestamp of last attempt
	NextDelay   time.Duration // Delay before the next attempt
	MaxAttempts int           // Maximum attempts before giving up
	BaseDelay   time.Duration // Delay after the first failure
	MaxDelay    time.Duration // Upper bound for NextDelay
}

// NewConnectRetry creates retry state with a 1s base delay capped at 30s
func NewConnectRetry(maxAttempts int) *ConnectRetry {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ConnectRetry{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		NextDelay:   time.Second,
	}
}

// CalculateNextDelay calculates the next delay using exponential backoff
// Sequence: 1s, 2s, 4s, 8s, 16s, capped at 30s
func (r *ConnectRetry) CalculateNextDelay() time.Duration {
	delay := r.BaseDelay * time.Duration(1<<uint(r.Attempt))
	if r.MaxDelay > 0 && (delay > r.MaxDelay || delay <= 0) {
		delay = r.MaxDelay
	}
	return delay
}

// NextAttempt records an attempt and reports whether it is within budget
func (r *ConnectRetry) NextAttempt() bool {
	r.NextDelay = r.CalculateNextDelay()
	r.Attempt++
	r.LastAttempt = time.Now()
	return r.Attempt <= r.MaxAttempts
}

// Reset resets the retry state after a successful connection
func (r *ConnectRetry) Reset() {
	r.Attempt = 0
	r.NextDelay = r.BaseDelay
}

// HasAttemptsRemaining returns true if more attempts are available
func (r *ConnectRetry) HasAttemptsRemaining() bool {
	return r.Attempt < r.MaxAttempts
}

// ConnectWithRetry connects to uri, retrying failures with exponential
// backoff until the attempt budget is spent or ctx is done.
func ConnectWithRetry(ctx context.Context, c Connector, uri string, r *ConnectRetry) (Catalog, error) {
	var lastErr error
	for r.NextAttempt() {
		cat, err := c.Connect(ctx, uri)
		if err == nil {
			r.Reset()
			return cat, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, Wrap("connect", uri, ErrConnect, ctx.Err())
		}
		if !r.HasAttemptsRemaining() {
			break
		}

		logger.Warn("Catalog connection attempt failed",
			"uri", uri,
			"attempt", r.Attempt,
			"max_attempts", r.MaxAttempts,
			"next_delay", r.NextDelay,
			"error", err,
		)

		timer := time.NewTimer(r.NextDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, Wrap("connect", uri, ErrConnect, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, Wrap("connect", uri, ErrConnect,
		fmt.Errorf("failed after %d attempts: %w", r.Attempt, lastErr))
}
