package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/session"
)

type fakeAuthBackend struct {
	result     api.LoginResult
	err        error
	registered []account.Registration
}

func (b *fakeAuthBackend) Login(_ context.Context, _ account.Credentials) (api.LoginResult, error) {
	return b.result, b.err
}

func (b *fakeAuthBackend) Register(_ context.Context, reg account.Registration) error {
	if b.err != nil {
		return b.err
	}
	b.registered = append(b.registered, reg)
	return nil
}

type fakeSessionStore struct {
	created []session.Session
	deleted []string
}

func (s *fakeSessionStore) Create(_ context.Context, sess session.Session) (string, session.Session, error) {
	sess.Key = "key-1"
	s.created = append(s.created, sess)
	return "cookie-1", sess, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	s.deleted = append(s.deleted, token)
	return nil
}

type fakeCache struct{ dropped []string }

func (c *fakeCache) Drop(key string) { c.dropped = append(c.dropped, key) }

func TestLogin_CreatesSession(t *testing.T) {
	backend := &fakeAuthBackend{result: api.LoginResult{Token: "backend-jwt", User: testUser()}}
	sessions := &fakeSessionStore{}
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	res, err := ExecuteLogin(context.Background(), LoginInput{Email: " ada@example.com ", Password: "pw"}, LoginDeps{
		Backend: backend, Sessions: sessions, Now: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("ExecuteLogin: %v", err)
	}
	if res.Token != "cookie-1" || res.Session.Key != "key-1" {
		t.Errorf("result = %+v", res)
	}
	if len(sessions.created) != 1 || sessions.created[0].BackendToken != "backend-jwt" {
		t.Fatalf("created = %+v", sessions.created)
	}
	if !sessions.created[0].ExpiresAt.Equal(now.Add(session.Lifetime)) {
		t.Errorf("expires = %v", sessions.created[0].ExpiresAt)
	}
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		input LoginInput
		err   error
		want  error
	}{
		{"blank email", LoginInput{Password: "pw"}, nil, ErrInvalidCredentials},
		{"unauthorized", LoginInput{Email: "a@b.c", Password: "pw"}, &api.Error{Status: 401}, ErrInvalidCredentials},
		{"validation", LoginInput{Email: "a@b.c", Password: "pw"}, &api.Error{Status: 400}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessionStore{}
			_, err := ExecuteLogin(context.Background(), tt.input, LoginDeps{
				Backend: &fakeAuthBackend{err: tt.err}, Sessions: sessions, Now: time.Now,
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if len(sessions.created) != 0 {
				t.Error("session created for a rejected login")
			}
		})
	}
}

func TestLogin_UpstreamErrorPassesThrough(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"}, LoginDeps{
		Backend: &fakeAuthBackend{err: &api.Error{Status: 503}}, Sessions: &fakeSessionStore{}, Now: time.Now,
	})
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("server errors must not look like bad credentials")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("error = %v, want *api.Error", err)
	}
}

func TestLogin_UnknownRole(t *testing.T) {
	user := testUser()
	user.Role = "janitor"
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "pw"}, LoginDeps{
		Backend: &fakeAuthBackend{result: api.LoginResult{Token: "t", User: user}}, Sessions: &fakeSessionStore{}, Now: time.Now,
	})
	if !errors.Is(err, ErrUnknownRole) {
		t.Errorf("error = %v, want ErrUnknownRole", err)
	}
}

func TestLogout_DeletesSessionAndCache(t *testing.T) {
	sessions := &fakeSessionStore{}
	cache := &fakeCache{}
	sess := session.Session{Key: "key-1", User: testUser()}

	if err := ExecuteLogout(context.Background(), "cookie-1", sess, LogoutDeps{Sessions: sessions, Cache: cache}); err != nil {
		t.Fatal(err)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "cookie-1" {
		t.Errorf("deleted = %v", sessions.deleted)
	}
	if len(cache.dropped) != 1 || cache.dropped[0] != "key-1" {
		t.Errorf("dropped = %v", cache.dropped)
	}

	if err := ExecuteLogout(context.Background(), "", session.Session{}, LogoutDeps{Sessions: sessions, Cache: cache}); err != nil {
		t.Errorf("logout without a session: %v", err)
	}
}

func TestRegister(t *testing.T) {
	backend := &fakeAuthBackend{}
	err := ExecuteRegister(context.Background(), account.Registration{Name: " Ada ", Email: "ada@example.com", Password: "pw"}, RegisterDeps{Backend: backend})
	if err != nil {
		t.Fatalf("ExecuteRegister: %v", err)
	}
	if len(backend.registered) != 1 || backend.registered[0].Name != "Ada" {
		t.Errorf("registered = %+v", backend.registered)
	}

	err = ExecuteRegister(context.Background(), account.Registration{Email: "ada@example.com", Password: "pw"}, RegisterDeps{Backend: backend})
	if !errors.Is(err, account.ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
}
