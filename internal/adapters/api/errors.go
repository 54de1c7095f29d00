package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("not authorized")
)

// Error is a non-2xx backend response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s %s: %d", e.Method, e.Path, e.Status)
}

// Unwrap maps auth and not-found statuses onto the sentinels.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// UserMessage returns text safe to show in a toast.
func (e *Error) UserMessage() string {
	if e.Status >= 500 {
		return "The server could not complete the request. Please try again."
	}
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// UserMessage extracts toast text from any error returned by this package.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Could not reach the server. Please try again."
}

// IsValidation reports whether the backend rejected the input (400 or 422).
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity
}

// errorMessage pulls a human message out of a backend error body. It understands
// {"detail": ...}, {"message": ...} and field maps like {"email": ["taken"]}.
func errorMessage(body []byte) string {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(body, &generic); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	for _, key := range []string{"detail", "message", "error"} {
		if raw, ok := generic[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	keys := make([]string, 0, len(generic))
	for k := range generic {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		var msgs []string
		if json.Unmarshal(generic[k], &msgs) == nil && len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, " "))
		}
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
