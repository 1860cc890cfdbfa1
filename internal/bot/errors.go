package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BlockedError indicates a permanent-blocked send failure (spec §4.8): the
// user blocked the bot, the chat no longer exists, or the bot was removed
// from a group. The subscriber is deactivated and the send is never
// retried.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string { return "blocked: " + e.Reason }

// RateLimitError indicates Telegram asked the caller to wait before
// retrying, with an explicit retry-after duration (spec §4.8: "honor that
// duration exactly").
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// classifySendError maps a raw transport error to the three kinds spec
// §4.8 distinguishes. A nil error is never passed to this function.
func classifySendError(err error) (blocked bool, rateLimited *RateLimitError) {
	var be *BlockedError
	if errors.As(err, &be) {
		return true, nil
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return false, rle
	}

	// TelegramTransport wraps raw API errors whose message text is the only
	// signal the library exposes for these cases; match on it the same way
	// the teacher matches storage.IsNotFound by sentinel text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blocked"),
		strings.Contains(msg, "chat not found"),
		strings.Contains(msg, "kicked"),
		strings.Contains(msg, "user is deactivated"),
		strings.Contains(msg, "bot was kicked"):
		return true, nil
	}
	return false, nil
}

// isTransient reports whether err should be retried per spec §4.8
// (network/5xx/rate-limit), as opposed to permanent-other, which is logged
// and skipped without retry.
func isTransient(err error) bool {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "internal server error"),
		strings.Contains(msg, "bad gateway"),
		strings.Contains(msg, "service unavailable"):
		return true
	}
	return false
}
