package labels

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"preprocessor/internal/logging"
)

func (c *Client) withRetry(ctx context.Context, operation string, op func() error) error {
	attempt := 0
	for {
		err := op()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetriable(err) || attempt >= c.maxRetries {
			return err
		}
		attempt++
		backoff := c.initialBackoff * time.Duration(1<<uint(attempt-1))
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
		c.logger.Warn("label api request failed, retrying",
			logging.String("operation", operation),
			logging.Duration("backoff", backoff),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.maxRetries),
			logging.Error(err),
			logging.String(logging.FieldEventType, "label_api_retry"),
			logging.String(logging.FieldErrorHint, "check label api availability or network connectivity"),
		)
		if err := sleepWithContext(ctx, backoff); err != nil {
			return err
		}
	}
}

// sleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetriable reports whether err is a transient condition: rate limiting,
// server errors, timeouts, or dropped connections.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	if isTimeout(err) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{
		"connection reset",
		"connection refused",
		"temporary failure",
		"unexpected eof",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
