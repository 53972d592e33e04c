// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy bounds RetryWithBackoff.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (must be > 0).
	MaxAttempts int
	// BaseDelay is the delay before the first retry. It doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps the delay. 0 means uncapped.
	MaxDelay time.Duration
	// Logger receives retry diagnostics. nil uses slog.Default().
	Logger *slog.Logger
}

// delay returns the backoff before attempt+1: BaseDelay * 2^(attempt-1), capped.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// RetryWithBackoff retries an operation with exponential backoff.
// shouldRetry decides whether a failed attempt is worth repeating; nil
// retries every error. An error it rejects is returned immediately.
// Returns the error from the last attempt if all attempts fail, or the
// context error if ctx ends first.
func RetryWithBackoff(ctx context.Context, operation func() error, policy RetryPolicy, shouldRetry func(error) bool) error {
	if policy.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := policy.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if shouldRetry != nil && !shouldRetry(lastErr) {
			logger.Debug("operation failed, not retryable", "attempt", attempt, "error", lastErr)
			return lastErr
		}

		logger.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == policy.MaxAttempts {
			break
		}

		// Sleep with context awareness
		timer := time.NewTimer(policy.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
