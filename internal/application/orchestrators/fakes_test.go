package orchestrators

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/pdf"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/format"
	domainOutbox "gymdesk/internal/domain/outbox"
)

// --- Export fakes ---

type fakeRenderer struct {
	err   error
	calls int
}

// Standalone returns a tiny page that names the capture root.
// PRE: none
// POST: Returns HTML or the configured error
func (r *fakeRenderer) Standalone(v document.View) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte(`<div id="` + v.RootID + `">` + v.Key + `</div>`), nil
}

func (r *fakeRenderer) Background() string { return "#ffffff" }

type fakeRasterizer struct {
	mu      sync.Mutex
	err     error
	calls   int
	rootIDs []string
	// block, when set, is received from before returning
	block chan struct{}
}

// Rasterize records the call and returns a fixed PNG header.
// PRE: none
// POST: Returns fake PNG bytes or the configured error
func (r *fakeRasterizer) Rasterize(ctx context.Context, html []byte, rootID, background string) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	r.rootIDs = append(r.rootIDs, rootID)
	block := r.block
	r.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte("\x89PNG fake"), nil
}

type fakePDF struct {
	err  error
	opts []pdf.Options
}

// Write records the options and returns a fake PDF.
// PRE: none
// POST: Returns "%PDF-fake" or the configured error
func (w *fakePDF) Write(png []byte, opts pdf.Options) ([]byte, error) {
	w.opts = append(w.opts, opts)
	if w.err != nil {
		return nil, w.err
	}
	return []byte("%PDF-fake"), nil
}

func newExportDeps() (ExportDeps, *fakeRenderer, *fakeRasterizer, *fakePDF) {
	r := &fakeRenderer{}
	ras := &fakeRasterizer{}
	w := &fakePDF{}
	return ExportDeps{
		Renderer:    r,
		Rasterizer:  ras,
		PDF:         w,
		Guard:       NewInFlight(),
		Formatter:   format.New(time.UTC, "USD"),
		Gym:         document.Gym{Name: "Iron Temple", Address: "1 Main St", Phone: "555-0100", Email: "desk@iron.test"},
		ReceiptPage: pdf.A5,
		InvoicePage: pdf.A4,
		MarginMM:    10,
	}, r, ras, w
}

// --- Email fakes ---

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []emailAdapter.SendRequest
}

// Send records the request or fails with the configured error.
// PRE: none
// POST: Returns a fixed message id on success
func (s *fakeSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return emailAdapter.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

// --- Outbox fake ---

type fakeOutboxStore struct {
	entries map[string]domainOutbox.Entry
	saveErr error
}

func newFakeOutboxStore() *fakeOutboxStore {
	return &fakeOutboxStore{entries: make(map[string]domainOutbox.Entry)}
}

// GetByID returns a stored entry.
// PRE: id is non-empty
// POST: Returns entry or error
func (s *fakeOutboxStore) GetByID(_ context.Context, id string) (domainOutbox.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return domainOutbox.Entry{}, errors.New("not found")
	}
	return e, nil
}

// Save stores an entry.
// PRE: e has an ID
// POST: Entry stored in map
func (s *fakeOutboxStore) Save(_ context.Context, e domainOutbox.Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries[e.ID] = e
	return nil
}

func (s *fakeOutboxStore) byStatus(limit int, keep func(domainOutbox.Entry) bool) []domainOutbox.Entry {
	var out []domainOutbox.Entry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *fakeOutboxStore) ListPending(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	return s.byStatus(limit, func(e domainOutbox.Entry) bool {
		return e.Status == domainOutbox.StatusPending || e.Status == domainOutbox.StatusRetrying
	}), nil
}

func (s *fakeOutboxStore) ListFailed(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	return s.byStatus(limit, func(e domainOutbox.Entry) bool {
		return e.Status == domainOutbox.StatusFailed
	}), nil
}

func (s *fakeOutboxStore) ListRecent(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	return s.byStatus(limit, func(domainOutbox.Entry) bool { return true }), nil
}

func (s *fakeOutboxStore) DeleteFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, e := range s.entries {
		if (e.Status == domainOutbox.StatusDone || e.Status == domainOutbox.StatusAbandoned) && e.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}
