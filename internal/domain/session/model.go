package session

import (
	"errors"
	"time"

	"gymdesk/internal/domain/account"
)

// Lifetime is how long a session stays valid after sign-in.
const Lifetime = 24 * time.Hour

// Domain errors
var (
	ErrNotFound     = errors.New("session not found")
	ErrExpired      = errors.New("session expired")
	ErrEmptyToken   = errors.New("backend token cannot be empty")
	ErrMissingRole  = errors.New("session user has no recognised role")
	ErrMissingEmail = errors.New("session user has no email")
)

// Session is a signed-in browser. Key identifies it server side and is derived
// from the cookie; the cookie value itself is never stored.
type Session struct {
	Key          string
	User         account.User
	BackendToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// New starts a session for user at now.
// PRE: token non-empty, user has email and role
// POST: ExpiresAt = now + Lifetime
func New(user account.User, token string, now time.Time) (Session, error) {
	s := Session{
		User:         user,
		BackendToken: token,
		CreatedAt:    now,
		ExpiresAt:    now.Add(Lifetime),
	}
	return s, s.Validate()
}

// Validate checks the fields a stored session must carry.
func (s Session) Validate() error {
	if s.BackendToken == "" {
		return ErrEmptyToken
	}
	if s.User.Email == "" {
		return ErrMissingEmail
	}
	if !account.IsValidRole(s.User.Role) {
		return ErrMissingRole
	}
	return nil
}

// IsExpired reports whether the session is past its expiry at now.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Role is shorthand for User.Role.
func (s Session) Role() string { return s.User.Role }

// IsStaff reports whether the user may manage gym records (staff or admin).
func (s Session) IsStaff() bool {
	return s.User.Role == account.RoleAdmin || s.User.Role == account.RoleStaff
}

// IsAdmin reports whether the user is an administrator.
func (s Session) IsAdmin() bool {
	return s.User.Role == account.RoleAdmin
}
