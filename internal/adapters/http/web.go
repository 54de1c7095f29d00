package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/adapters/http/perf"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	sessionStore "gymdesk/internal/adapters/storage/session"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/recordstore"
	"gymdesk/internal/domain/account"
)

//go:embed static
var staticFS embed.FS

// Deps holds everything the handlers reach for.
type Deps struct {
	Backend   *api.Backend
	Sessions  sessionStore.Store
	Records   *recordstore.Registry
	Outbox    outboxStore.Store
	Processor *orchestrators.OutboxProcessor
	Export    orchestrators.ExportDeps
	Sender    email.Sender
	Documents *document.Renderer
	Collector *perf.Collector

	// CSRFKey is the 32-byte gorilla/csrf auth key.
	CSRFKey        []byte
	TrustedOrigins []string
	Production     bool
	SlowRequest    time.Duration
}

// Global dependencies (set by NewMux)
var app Deps

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

var limiter *middleware.RateLimiter

// NewMux wires HTTP handlers for the app.
// PRE: d.Backend, d.Sessions, d.Records and d.Documents are set; d.CSRFKey is 32 bytes
// POST: Returns the full handler chain; call Close on shutdown
func NewMux(d Deps) http.Handler {
	app = d
	middleware.SecureCookies = d.Production

	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux, middleware.Timing(d.Collector, d.SlowRequest))

	if limiter != nil {
		limiter.Stop()
	}
	limiter = middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost first: Gzip -> RateLimit -> Auth -> CSRF -> NoStore -> SecurityHeaders -> mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.NoStore,
		middleware.CSRF(d.CSRFKey, d.TrustedOrigins),
		middleware.Auth(d.Sessions),
		middleware.RateLimit(limiter),
		middleware.Gzip,
	)
}

// Close stops background work started by NewMux.
func Close() {
	if limiter != nil {
		limiter.Stop()
	}
}

// registerRoutes maps every route. timing wraps each route individually so the
// perf collector groups requests by pattern.
func registerRoutes(mux *http.ServeMux, timing func(http.Handler) http.Handler) {
	handle := func(pattern string, h http.HandlerFunc, guards ...func(http.Handler) http.Handler) {
		mux.Handle(pattern, timing(middleware.Chain(h, guards...)))
	}
	signedIn := middleware.RequireAuth
	admin := middleware.RequireRole(account.RoleAdmin)
	staff := middleware.RequireRole(account.RoleAdmin, account.RoleStaff)
	member := middleware.RequireRole(account.RoleMember)
	billing := middleware.RequireRole(account.RoleAdmin, account.RoleMember)

	// Marketing
	handle("GET /{$}", handleHome)
	handle("GET /about", handleAbout)
	handle("GET /pricing", handlePricing)
	handle("GET /contact", handleContact)

	// Auth
	handle("GET /login", handleLoginForm)
	handle("POST /login", handleLogin)
	handle("POST /logout", handleLogout)
	handle("GET /register", handleRegisterForm)
	handle("POST /register", handleRegister)

	handle("GET /dashboard", handleDashboard, signedIn)

	// Attendance
	handle("GET /attendance", handleAttendanceList, staff)
	handle("POST /attendance/{id}/status", handleAttendanceStatus, staff)

	// Bookings
	handle("GET /bookings", handleBookingList, signedIn)
	handle("POST /bookings/{id}/status", handleBookingStatus, staff)
	handle("POST /bookings/{id}/cancel", handleBookingCancel, member)

	// Classes
	handle("GET /classes", handleClassList, signedIn)
	handle("GET /classes/new", handleClassForm, admin)
	handle("POST /classes", handleClassCreate, admin)
	handle("GET /classes/{id}/edit", handleClassForm, admin)
	handle("POST /classes/{id}", handleClassUpdate, admin)
	handle("POST /classes/{id}/delete", handleClassDelete, admin)
	handle("POST /classes/{id}/book", handleClassBook, member)

	// Plans
	handle("GET /plans", handlePlanList, signedIn)
	handle("GET /plans/new", handlePlanForm, admin)
	handle("POST /plans", handlePlanCreate, admin)
	handle("GET /plans/{id}/edit", handlePlanForm, admin)
	handle("POST /plans/{id}", handlePlanUpdate, admin)
	handle("POST /plans/{id}/delete", handlePlanDelete, admin)

	// Feedback
	handle("GET /feedback", handleFeedbackList, staff)
	handle("GET /feedback/new", handleFeedbackForm, member)
	handle("POST /feedback/new", handleFeedbackCreate, member)
	handle("POST /feedback/{id}/status", handleFeedbackStatus, admin)
	handle("POST /feedback/{id}/delete", handleFeedbackDelete, admin)

	// Payments and receipts
	handle("GET /payments", handlePaymentList, billing)
	handle("GET /payments/{id}/receipt", handleReceiptView, billing)
	handle("GET /payments/{id}/receipt.pdf", handleReceiptPDF, billing)
	handle("POST /payments/{id}/receipt/email", handleReceiptEmail, billing)

	// Invoices
	handle("GET /invoices", handleInvoiceList, billing)
	handle("POST /invoices/{id}/status", handleInvoiceStatus, admin)
	handle("GET /invoices/{id}/view", handleInvoiceView, billing)
	handle("GET /invoices/{id}/invoice.pdf", handleInvoicePDF, billing)
	handle("POST /invoices/{id}/email", handleInvoiceEmail, billing)

	// Admin
	handle("GET /admin/perf", handleAdminPerf, admin)
	handle("GET /admin/outbox", handleAdminOutbox, admin)
	handle("POST /admin/outbox/{id}/retry", handleAdminOutboxRetry, admin)
	handle("POST /admin/outbox/{id}/abandon", handleAdminOutboxAbandon, admin)
}
