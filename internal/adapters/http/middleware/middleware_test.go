package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAccount "gymdesk/internal/domain/account"
	domainSession "gymdesk/internal/domain/session"
)

type fakeLoader struct {
	sessions map[string]domainSession.Session
	err      error
}

func (f fakeLoader) Get(_ context.Context, token string) (domainSession.Session, error) {
	if f.err != nil {
		return domainSession.Session{}, f.err
	}
	s, ok := f.sessions[token]
	if !ok {
		return domainSession.Session{}, domainSession.ErrNotFound
	}
	return s, nil
}

func staffSession() domainSession.Session {
	return domainSession.Session{
		Key:       "k1",
		User:      domainAccount.User{ID: "u1", Email: "kim@gym.test", Role: domainAccount.RoleStaff},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSessionFromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(sess.Role()))
	})
}

func requestWithCookie(path, token string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return req
}

func TestAuth_LoadsSession(t *testing.T) {
	h := Auth(fakeLoader{sessions: map[string]domainSession.Session{"tok": staffSession()}})(whoAmI())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestWithCookie("/", "tok"))
	if rr.Body.String() != domainAccount.RoleStaff {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestAuth_UnknownTokenClearsCookie(t *testing.T) {
	h := Auth(fakeLoader{})(whoAmI())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestWithCookie("/", "stale"))
	if rr.Body.String() != "anonymous" {
		t.Errorf("body = %q", rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("Set-Cookie"), SessionCookieName+"=;") {
		t.Errorf("cookie not cleared: %q", rr.Header().Get("Set-Cookie"))
	}
}

func TestAuth_StoreErrorKeepsCookie(t *testing.T) {
	h := Auth(fakeLoader{err: errors.New("db locked")})(whoAmI())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestWithCookie("/", "tok"))
	if rr.Body.String() != "anonymous" {
		t.Errorf("body = %q", rr.Body.String())
	}
	if rr.Header().Get("Set-Cookie") != "" {
		t.Error("a transient store error must not log the user out")
	}
}

func TestRequireRole(t *testing.T) {
	loader := fakeLoader{sessions: map[string]domainSession.Session{"tok": staffSession()}}
	tests := []struct {
		name   string
		roles  []string
		token  string
		status int
	}{
		{"anonymous redirected", []string{domainAccount.RoleAdmin}, "", http.StatusSeeOther},
		{"wrong role forbidden", []string{domainAccount.RoleAdmin}, "tok", http.StatusForbidden},
		{"allowed", []string{domainAccount.RoleAdmin, domainAccount.RoleStaff}, "tok", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Auth(loader)(RequireRole(tt.roles...)(whoAmI()))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, requestWithCookie("/attendance", tt.token))
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestIsRoleHelpers(t *testing.T) {
	ctx := ContextWithSession(context.Background(), staffSession())
	if !IsStaffOrAdmin(ctx) || IsAdmin(ctx) {
		t.Error("staff session misclassified")
	}
	if IsRole(context.Background(), domainAccount.RoleMember) {
		t.Error("anonymous context has no role")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Stop()
	h := RateLimit(rl)(okHandler(http.StatusOK))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:5000" // port varies per connection; the limit is per host
		if i == 1 {
			req.RemoteAddr = "10.0.0.1:5001"
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	rl.Stop()
}

func TestSecurityHeadersAndNoStore(t *testing.T) {
	h := Chain(okHandler(http.StatusOK), NoStore, SecurityHeaders)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/dashboard", nil))
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("headers = %v", rr.Header())
	}
}
