package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/format"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/record"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// --- Flash toasts ---

const flashCookieName = "gymdesk_flash"

// Toast kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
	// Retry is a local URL offered as "Try again" on error toasts.
	Retry string `json:"r,omitempty"`
}

func setFlash(w http.ResponseWriter, f Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// takeFlash reads and clears the toast cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	if !isLocalPath(f.Retry) {
		f.Retry = ""
	}
	return &f
}

// redirectWithFlash stores a toast and sends the browser to target.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, f Flash) {
	setFlash(w, f)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// isLocalPath accepts "/x" but not "//host" or absolute URLs.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

// backTo returns the form's "next" field when it is a local path, else fallback.
func backTo(r *http.Request, fallback string) string {
	if next := r.FormValue("next"); isLocalPath(next) {
		return next
	}
	return fallback
}

// --- Templates ---

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	user := sess.User
	flash := takeFlash(w, r)
	f := app.Export.Formatter
	if f.Loc == nil {
		f = format.New(time.UTC, "")
	}
	query := r.URL.Query()

	funcMap := template.FuncMap{
		"currentUser":  func() account.User { return user },
		"currentRole":  func() string { return user.Role },
		"isLoggedIn":   func() bool { return loggedIn },
		"isAdmin":      func() bool { return loggedIn && sess.IsAdmin() },
		"isStaff":      func() bool { return loggedIn && sess.IsStaff() },
		"isMember":     func() bool { return loggedIn && user.Role == account.RoleMember },
		"csrfToken":    func() string { return csrf.Token(r) },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"flash":        func() *Flash { return flash },
		"currentPath":  func() string { return r.URL.RequestURI() },
		"gymName":      func() string { return app.Export.Gym.Name },
		"list":         func(items ...string) []string { return items },
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"lower":        strings.ToLower,
		"statusLabel":  statusLabel,
		"amount":       f.Amount,
		"date":         f.TimeDate,
		"dateTime":     f.TimeDateTime,
		"clock":        f.TimeClock,
		"optDateTime":  f.OptionalDateTime,
		"calendarDate": func(d record.Date) string { return f.CalendarDate(d.Time) },
		"inputDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(f.Loc).Format(inputDateTimeLayout)
		},
		"price": func(cents int64) string {
			return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"filterValue": func(key string) string { return query.Get(key) },
		"sortHeaderArgs": func(col, label string, p listutil.ListParams) map[string]string {
			nextDir := "asc"
			if col == p.Sort && p.Dir == "asc" {
				nextDir = "desc"
			}
			q := cloneQuery(query)
			q.Set("sort", col)
			q.Set("dir", nextDir)
			q.Del("page")
			return map[string]string{
				"Col": col, "Label": label,
				"ActiveSort": p.Sort, "ActiveDir": p.Dir,
				"Href": r.URL.Path + "?" + q.Encode(),
			}
		},
		"paginationQuery": func(page int) template.URL {
			q := cloneQuery(query)
			q.Set("page", strconv.Itoa(page))
			return template.URL(q.Encode())
		},
		"perPageOptions":      func() []int { return listutil.PerPageOptions },
		"nextInvoiceStatuses": invoice.NextStatuses,
		"statusForm": func(action, current string, options []string) map[string]any {
			return map[string]any{"Action": action, "Current": current, "Options": options}
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

const inputDateTimeLayout = "2006-01-02T15:04"

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// statusLabel turns NO_SHOW into "No show".
func statusLabel(s string) string {
	if s == "" {
		return format.Placeholder
	}
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.ToUpper(s[:1]) + s[1:]
}
