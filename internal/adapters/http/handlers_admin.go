package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/domain/outbox"
)

type perfPage struct {
	Window   string
	Since    time.Time
	Snapshot perf.Snapshot
	Total    int64
}

// perfWindows are the look-back choices on the perf page.
var perfWindows = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

// handleAdminPerf handles GET /admin/perf
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	d, ok := perfWindows[window]
	if !ok {
		window, d = "1h", time.Hour
	}
	page := perfPage{Window: window, Since: timeNow().Add(-d)}
	if app.Collector != nil {
		page.Snapshot = app.Collector.Snapshot(page.Since, 10)
		page.Total = app.Collector.TotalRecorded()
	}
	renderTemplate(w, r, "admin_perf.html", page)
}

type outboxPage struct {
	Status  string
	Entries []outbox.Entry
}

// handleAdminOutbox handles GET /admin/outbox. ?status=failed narrows the list
// to entries that exhausted their attempts.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 200 {
		limit = n
	}
	page := outboxPage{Status: r.URL.Query().Get("status")}
	var err error
	if page.Status == outbox.StatusFailed {
		page.Entries, err = app.Outbox.ListFailed(r.Context(), limit)
	} else {
		page.Status = "all"
		page.Entries, err = app.Outbox.ListRecent(r.Context(), limit)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "admin_outbox.html", page)
}

// handleAdminOutboxRetry handles POST /admin/outbox/{id}/retry
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := app.Processor.ProcessSingle(r.Context(), id); err != nil {
		slog.Warn("outbox_manual_retry_failed", "entry_id", id, "error", err.Error())
		redirectWithFlash(w, r, "/admin/outbox", Flash{Kind: FlashError, Message: "Retry failed: " + err.Error()})
		return
	}
	slog.Info("outbox_event", "event", "manual_retry", "entry_id", id, "by", sess.User.Email)
	entry, err := app.Outbox.GetByID(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	if entry.Status != outbox.StatusDone {
		redirectWithFlash(w, r, "/admin/outbox", Flash{Kind: FlashError, Message: "Retry failed: " + entry.ErrorMessage})
		return
	}
	redirectWithFlash(w, r, "/admin/outbox", Flash{Kind: FlashSuccess, Message: "Entry delivered to " + entry.Recipient + "."})
}

// handleAdminOutboxAbandon handles POST /admin/outbox/{id}/abandon
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := app.Processor.AbandonEntry(r.Context(), id); err != nil {
		redirectWithFlash(w, r, "/admin/outbox", Flash{Kind: FlashError, Message: "Could not abandon entry: " + err.Error()})
		return
	}
	slog.Info("outbox_event", "event", "abandoned", "entry_id", id, "by", sess.User.Email)
	redirectWithFlash(w, r, "/admin/outbox", Flash{Kind: FlashSuccess, Message: "Entry abandoned."})
}
