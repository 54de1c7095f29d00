package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/domain/account"
)

type authPage struct {
	Email string
	Name  string
	Phone string
	Error string
}

// handleLoginForm handles GET /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", authPage{})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{
		Backend:  app.Backend,
		Sessions: app.Sessions,
		Now:      timeNow,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		page := authPage{Email: input.Email}
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, orchestrators.ErrInvalidCredentials), errors.Is(err, orchestrators.ErrUnknownRole):
			page.Error = err.Error()
		default:
			slog.Error("login_failed", "error", err.Error())
			page.Error = api.UserMessage(err)
			status = http.StatusBadGateway
		}
		renderTemplateStatus(w, r, status, "login.html", page)
		return
	}

	middleware.SetSessionCookie(w, result.Token)
	redirectWithFlash(w, r, "/dashboard", Flash{Kind: FlashSuccess, Message: "Welcome back, " + result.Session.User.DisplayName() + "."})
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleRegisterForm handles GET /register
func handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "register.html", authPage{})
}

// handleRegister handles POST /register. New accounts are members and sign in
// afterwards with the same credentials.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	reg := account.Registration{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    r.FormValue("phone"),
		Password: r.FormValue("password"),
	}
	if reg.Password != r.FormValue("password_confirm") {
		renderTemplateStatus(w, r, http.StatusBadRequest, "register.html", authPage{
			Name: reg.Name, Email: reg.Email, Phone: reg.Phone, Error: "Passwords do not match.",
		})
		return
	}

	err := orchestrators.ExecuteRegister(r.Context(), reg, orchestrators.RegisterDeps{Backend: app.Backend})
	if err != nil {
		msg := api.UserMessage(err)
		if vErr := reg.Validate(); vErr != nil {
			msg = vErr.Error()
		}
		renderTemplateStatus(w, r, http.StatusBadRequest, "register.html", authPage{
			Name: reg.Name, Email: reg.Email, Phone: reg.Phone, Error: msg,
		})
		return
	}
	redirectWithFlash(w, r, "/login", Flash{Kind: FlashSuccess, Message: "Account created. Please sign in."})
}
