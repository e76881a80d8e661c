package slack

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials means Slack rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid slack credentials")

	// ErrPageLayout means a page did not look the way the login flow
	// expects. Slack changed their web UI incompatibly, or we are talking to
	// something that is not a Slack workspace.
	ErrPageLayout = errors.New("unrecognized slack page layout")

	// ErrNameTaken means the workspace already has an emoji by that name.
	// Non-fatal; the emoji is effectively already present.
	ErrNameTaken = errors.New("emoji name already taken")

	// ErrBadFormat means Slack rejected the image payload.
	ErrBadFormat = errors.New("emoji image format rejected")

	// ErrClosed is returned when the session is used after Close.
	ErrClosed = errors.New("slack session is closed")

	// ErrNotAuthenticated is returned when an API call is made before a
	// successful Authenticate.
	ErrNotAuthenticated = errors.New("slack session is not authenticated")
)

// RateLimitedError is returned when Slack answers HTTP 429. RetryAfter holds
// the server-requested wait time.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited by slack, retry after %s", e.RetryAfter)
}
