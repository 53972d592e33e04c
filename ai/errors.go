package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrTransient marks a failure worth retrying: timeouts, rate limits and
	// temporary upstream errors.
	ErrTransient = errors.New("transient summarization error")

	// ErrPermanent marks a failure that will not succeed on retry.
	ErrPermanent = errors.New("permanent summarization error")

	// ErrEmptySummary is returned when a back-end answers with no text.
	ErrEmptySummary = errors.New("empty summary")
)

// Transient wraps err as a transient failure. It returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Permanent wraps err as a permanent failure. It returns nil for a nil err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsTransient reports whether err was classified as transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent reports whether err was classified as permanent.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// statusPattern matches the HTTP status that clients embed in their error
// strings ("status code: 429", "status 503", genai's "Error 400, ...").
var statusPattern = regexp.MustCompile(`(?:status(?: code)?|^error):? (\d{3})`)

// transientPatterns covers untyped third-party errors.
var transientPatterns = []string{
	"rate limit",
	"too many requests",
	"resource_exhausted",
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"tls handshake",
	"temporary failure",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"overloaded",
	"unexpected eof",
}

// Classify wraps a raw back-end error as transient or permanent.
// Errors that are already classified are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsPermanent(err) {
		return err
	}

	// Cancellation by the caller is never worth retrying; a per-call deadline is.
	if errors.Is(err, context.Canceled) {
		return Permanent(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient(err)
	}

	msg := strings.ToLower(err.Error())
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		if isRetryableStatus(code) {
			return Transient(err)
		}
		return Permanent(err)
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return Transient(err)
		}
	}

	return Permanent(err)
}

func isRetryableStatus(code int) bool {
	switch code {
	case 408, 429:
		return true
	}
	return code >= 500
}
