package web

import (
	"errors"
	"log/slog"
	"net/http"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/application/recordstore"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/invoice"
)

// updateStatus PATCHes {"status": s} on one record and swaps the cached copy for
// the backend's response.
// PRE: route guarded; path has {id}
// POST: redirect back with a toast; the cache holds the updated record on success
func updateStatus[T recordstore.Record](w http.ResponseWriter, r *http.Request, res api.Resource[T], store *recordstore.Store[T], valid func(string) bool, fallback string) {
	id := r.PathValue("id")
	status := r.FormValue("status")
	back := backTo(r, fallback)
	if !valid(status) {
		redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: "Unknown status."})
		return
	}
	rec := recordsFor(r)
	updated, err := res.Update(r.Context(), rec.Token(), id, map[string]string{"status": status})
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	replaceCached(store, id, updated)
	slog.Info("record_event", "event", "status_changed", "collection", res.Path(), "id", id, "status", status, "by", rec.User().Email)
	redirectWithFlash(w, r, back, Flash{Kind: FlashSuccess, Message: "Status changed to " + statusLabel(status) + "."})
}

// deleteRecord deletes one record and drops it from the cache.
func deleteRecord[T recordstore.Record](w http.ResponseWriter, r *http.Request, res api.Resource[T], store *recordstore.Store[T], label, fallback string) {
	id := r.PathValue("id")
	back := backTo(r, fallback)
	rec := recordsFor(r)
	if err := res.Delete(r.Context(), rec.Token(), id); err != nil && !errors.Is(err, api.ErrNotFound) {
		backendFailed(w, r, err, back)
		return
	}
	store.Remove(id)
	slog.Info("record_event", "event", "deleted", "collection", res.Path(), "id", id, "by", rec.User().Email)
	redirectWithFlash(w, r, back, Flash{Kind: FlashSuccess, Message: label + " deleted."})
}

// replaceCached stores the backend's copy, or forgets the record when the
// backend answered without a body.
func replaceCached[T recordstore.Record](store *recordstore.Store[T], id string, updated T) {
	if updated.RecordID() == "" {
		store.Invalidate(id)
		return
	}
	store.Put(updated)
}

// handleAttendanceStatus handles POST /attendance/{id}/status
func handleAttendanceStatus(w http.ResponseWriter, r *http.Request) {
	updateStatus(w, r, app.Backend.Attendance, recordsFor(r).Set.Attendance, attendance.IsValidStatus, "/attendance")
}

// handleBookingStatus handles POST /bookings/{id}/status
func handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	updateStatus(w, r, app.Backend.Bookings, recordsFor(r).Set.Bookings, booking.IsValidStatus, "/bookings")
}

// handleFeedbackStatus handles POST /feedback/{id}/status
func handleFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	updateStatus(w, r, app.Backend.Feedback, recordsFor(r).Set.Feedback, feedback.IsValidStatus, "/feedback")
}

// handleInvoiceStatus handles POST /invoices/{id}/status. Only lifecycle moves
// DRAFT -> PENDING -> PAID | CANCELLED are sent to the backend.
func handleInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	back := backTo(r, "/invoices")
	current, _, err := rec.Invoices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	if err := invoice.CanTransition(current.Status, r.FormValue("status")); err != nil {
		redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: "Invoice " + current.NaturalKey() + ": " + err.Error()})
		return
	}
	updateStatus(w, r, app.Backend.Invoices, rec.Set.Invoices, invoice.IsValidStatus, "/invoices")
}

// handleClassDelete handles POST /classes/{id}/delete
func handleClassDelete(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, app.Backend.Classes, recordsFor(r).Set.Classes, "Class", "/classes")
}

// handlePlanDelete handles POST /plans/{id}/delete
func handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, app.Backend.Plans, recordsFor(r).Set.Plans, "Plan", "/plans")
}

// handleFeedbackDelete handles POST /feedback/{id}/delete
func handleFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, app.Backend.Feedback, recordsFor(r).Set.Feedback, "Feedback", "/feedback")
}

// handleClassBook handles POST /classes/{id}/book for members.
func handleClassBook(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	id := r.PathValue("id")
	back := backTo(r, "/classes")
	cls, _, err := rec.Classes.Get(r.Context(), id)
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	if !cls.IsBookable(timeNow()) {
		redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: cls.Name + " can no longer be booked."})
		return
	}
	created, err := app.Backend.Bookings.Create(r.Context(), rec.Token(), map[string]string{"fitness_class": id})
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	if created.RecordID() != "" {
		rec.Set.Bookings.Put(created)
	} else {
		rec.Set.Bookings.InvalidateList()
	}
	// Booked count changed on the backend.
	rec.Set.Classes.Invalidate(id)
	slog.Info("record_event", "event", "class_booked", "class_id", id, "by", rec.User().Email)
	redirectWithFlash(w, r, back, Flash{Kind: FlashSuccess, Message: "You're booked into " + cls.Name + "."})
}

// handleBookingCancel handles POST /bookings/{id}/cancel for members.
func handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	id := r.PathValue("id")
	back := backTo(r, "/bookings")
	b, _, err := rec.Bookings.Get(r.Context(), id)
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	if b.Member.ID != "" && b.Member.ID != rec.User().ID {
		backendFailed(w, r, api.ErrNotFound, back)
		return
	}
	if !b.IsCancellable(timeNow()) {
		redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: "This booking can no longer be cancelled."})
		return
	}
	updated, err := app.Backend.Bookings.Update(r.Context(), rec.Token(), id, map[string]string{"status": booking.StatusCancelled})
	if err != nil {
		backendFailed(w, r, err, back)
		return
	}
	replaceCached(rec.Set.Bookings, id, updated)
	if b.FitnessClass.ID != "" {
		rec.Set.Classes.Invalidate(b.FitnessClass.ID.String())
	}
	slog.Info("record_event", "event", "booking_cancelled", "id", id, "by", rec.User().Email)
	redirectWithFlash(w, r, back, Flash{Kind: FlashSuccess, Message: "Booking cancelled."})
}
