package outbox

import (
	"context"
	"time"

	domain "gymdesk/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error wrapping sql.ErrNoRows
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that still need delivery (pending or retrying).
	// POST: Returns up to limit entries, oldest first
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListRecent returns the newest entries of any status for the admin page.
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)

	// DeleteFinishedBefore removes done and abandoned entries older than cutoff.
	// POST: Returns the number of rows removed
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
