package domain

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
)

var retryAfterPattern = regexp.MustCompile(`retry after (\d+)`)

// MinFloodWait is the shortest pause taken after a flood-control error
const MinFloodWait = time.Second

// RetryAfter extracts the wait Telegram demands from a flood-control error
func RetryAfter(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return time.Duration(tooMany.RetryAfter) * time.Second, true
	}

	// Errors wrapped into plain text by intermediaries still carry the hint
	if m := retryAfterPattern.FindStringSubmatch(err.Error()); m != nil {
		if seconds, convErr := strconv.Atoi(m[1]); convErr == nil {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return 0, false
}

// FloodWait is RetryAfter with the wait raised to at least MinFloodWait
func FloodWait(err error) (time.Duration, bool) {
	wait, limited := RetryAfter(err)
	if limited && wait < MinFloodWait {
		wait = MinFloodWait
	}
	return wait, limited
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
