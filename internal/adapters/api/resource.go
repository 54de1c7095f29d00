package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// maxPages bounds how many "next" links List follows.
const maxPages = 50

// page is the paginated list envelope: {"count":..,"next":..,"results":[..]}.
type page[T any] struct {
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// listBody accepts either a bare JSON array or a paginated envelope.
type listBody[T any] struct {
	items []T
	next  string
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *listBody[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.items)
	}
	var p page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	l.items = p.Results
	if p.Next != nil {
		l.next = *p.Next
	}
	return nil
}

// Resource is a REST collection such as "invoices/".
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a collection path to a client.
// PRE: path ends with "/"
func NewResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{client: c, path: path}
}

// Path returns the collection path.
func (r Resource[T]) Path() string { return r.path }

// List fetches the whole collection, following pagination links on the backend host.
// PRE: token may be empty for public collections
// POST: Returns records in backend order
func (r Resource[T]) List(ctx context.Context, token string, query url.Values) ([]T, error) {
	var body listBody[T]
	if err := r.client.Do(ctx, http.MethodGet, r.path, token, query, nil, &body); err != nil {
		return nil, err
	}
	all := body.items
	for i := 0; body.next != "" && i < maxPages; i++ {
		next, err := url.Parse(body.next)
		if err != nil {
			return nil, fmt.Errorf("invalid next link %q: %w", body.next, err)
		}
		if !next.IsAbs() {
			next = r.client.baseURL.ResolveReference(next)
		}
		if !r.client.sameOrigin(next) {
			return nil, fmt.Errorf("next link %q leaves the backend host", body.next)
		}
		body = listBody[T]{}
		if err := r.client.doURL(ctx, http.MethodGet, next, r.path, token, nil, &body); err != nil {
			return nil, err
		}
		all = append(all, body.items...)
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

// Get fetches one record by id.
// POST: Returns an error wrapping ErrNotFound if the backend has no such record
func (r Resource[T]) Get(ctx context.Context, token, id string) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), token, nil, nil, &out)
	return out, err
}

// Create posts a new record and returns the backend's version of it.
func (r Resource[T]) Create(ctx context.Context, token string, body any) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodPost, r.path, token, nil, body, &out)
	return out, err
}

// Update patches a record and returns the backend's version of it.
func (r Resource[T]) Update(ctx context.Context, token, id string, patch any) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodPatch, r.itemPath(id), token, nil, patch, &out)
	return out, err
}

// Delete removes a record.
func (r Resource[T]) Delete(ctx context.Context, token, id string) error {
	return r.client.Do(ctx, http.MethodDelete, r.itemPath(id), token, nil, nil, nil)
}

func (r Resource[T]) itemPath(id string) string {
	return r.path + url.PathEscape(id) + "/"
}
