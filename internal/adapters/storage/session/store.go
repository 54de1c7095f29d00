package session

import (
	"context"
	"time"

	domain "gymdesk/internal/domain/session"
)

// Store defines session persistence.
type Store interface {
	// Create persists s and returns the cookie token that identifies it.
	// PRE: s validated
	// POST: Returned token is the only way to load s; s.Key is set in the stored row
	Create(ctx context.Context, s domain.Session) (string, domain.Session, error)

	// Get loads the session for a cookie token.
	// POST: Returns domain.ErrNotFound or domain.ErrExpired when unusable
	Get(ctx context.Context, token string) (domain.Session, error)

	// Delete removes the session for a cookie token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every session expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
