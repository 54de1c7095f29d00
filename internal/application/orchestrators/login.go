package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/session"
)

// AuthBackend is the backend subset used for sign-in and registration.
type AuthBackend interface {
	Login(ctx context.Context, creds account.Credentials) (api.LoginResult, error)
	Register(ctx context.Context, reg account.Registration) error
}

// SessionStore is the session store subset used by the auth orchestrators.
type SessionStore interface {
	Create(ctx context.Context, s session.Session) (string, session.Session, error)
	Delete(ctx context.Context, token string) error
}

// SessionCache is dropped when a session ends.
type SessionCache interface {
	Drop(sessionKey string)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the cookie token and the new session.
type LoginResult struct {
	Token   string
	Session session.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Backend  AuthBackend
	Sessions SessionStore
	Now      func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownRole        = errors.New("this account has no access to the gym desk")
)

// ExecuteLogin exchanges credentials for a backend token and opens a session.
// PRE: none
// POST: Returns a cookie token on success; the backend token is stored sealed
// INVARIANT: the backend token never leaves the server
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	creds := account.Credentials{Email: strings.TrimSpace(input.Email), Password: input.Password}
	if err := creds.Validate(); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	res, err := deps.Backend.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) || api.IsValidation(err) {
			slog.Info("auth_event", "event", "login_failed", "email", creds.Email, "reason", "rejected")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if !account.IsValidRole(res.User.Role) {
		slog.Info("auth_event", "event", "login_blocked", "email", creds.Email, "reason", "unknown_role", "role", res.User.Role)
		return LoginResult{}, ErrUnknownRole
	}

	sess, err := session.New(res.User, res.Token, deps.Now())
	if err != nil {
		return LoginResult{}, err
	}
	token, sess, err := deps.Sessions.Create(ctx, sess)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	slog.Info("auth_event", "event", "login_success", "email", creds.Email, "role", sess.Role())
	return LoginResult{Token: token, Session: sess}, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionStore
	Cache    SessionCache
}

// ExecuteLogout ends a session and drops its cached records.
// PRE: token may be empty (no-op)
// POST: Session row deleted and record cache dropped
func ExecuteLogout(ctx context.Context, token string, sess session.Session, deps LogoutDeps) error {
	if sess.Key != "" && deps.Cache != nil {
		deps.Cache.Drop(sess.Key)
	}
	if token == "" {
		return nil
	}
	if err := deps.Sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("auth_event", "event", "logout", "email", sess.User.Email)
	return nil
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	Backend AuthBackend
}

// ExecuteRegister creates a member account on the backend.
// PRE: none
// POST: Returns a validation error for bad input, the backend's error otherwise
func ExecuteRegister(ctx context.Context, reg account.Registration, deps RegisterDeps) error {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := deps.Backend.Register(ctx, reg); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "registered", "email", reg.Email)
	return nil
}
