package recordstore

import (
	"context"
	"net/url"
)

// Fetcher loads records of one kind from the backend.
type Fetcher[T any] interface {
	List(ctx context.Context, token string, query url.Values) ([]T, error)
	Get(ctx context.Context, token, id string) (T, error)
}

// Loader reads through a Store and goes to the backend on a miss.
type Loader[T Record] struct {
	Store *Store[T]
	Fetch Fetcher[T]
	Token string
}

// NewLoader binds a store, a fetcher and the session's backend token.
func NewLoader[T Record](s *Store[T], f Fetcher[T], token string) Loader[T] {
	return Loader[T]{Store: s, Fetch: f, Token: token}
}

// List returns the cached list snapshot, fetching and caching it on a miss.
// POST: never returns a nil slice on success
func (l Loader[T]) List(ctx context.Context) ([]T, error) {
	if recs, ok := l.Store.List(); ok {
		return recs, nil
	}
	recs, err := l.Fetch.List(ctx, l.Token, nil)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []T{}
	}
	l.Store.PutAll(recs)
	return recs, nil
}

// Get returns one record, from the cache when fresh and from the backend otherwise.
// cached reports which.
func (l Loader[T]) Get(ctx context.Context, id string) (rec T, cached bool, err error) {
	if rec, ok := l.Store.Get(id); ok {
		return rec, true, nil
	}
	rec, err = l.Fetch.Get(ctx, l.Token, id)
	if err != nil {
		return rec, false, err
	}
	l.Store.Put(rec)
	return rec, false, nil
}
