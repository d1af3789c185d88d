package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	authn "zupos_panel/internal/auth"
	"zupos_panel/internal/handlers"
	"zupos_panel/internal/middlewares"
	"zupos_panel/internal/routes"
	"zupos_panel/internal/session"
	"zupos_panel/internal/views"
)

const (
	pageTitle     = "Giriş"
	loginFailed   = "Giriş yapılırken bir hata oluştu. Lütfen tekrar deneyin."
	tooManyLogins = "Çok fazla giriş denemesi yapıldı. Lütfen biraz bekleyin."
)

type AuthHandler struct {
	h       *handlers.Handler
	service *authn.Service
}

func NewAuthHandler(h *handlers.Handler, service *authn.Service) *AuthHandler {
	return &AuthHandler{h: h, service: service}
}

// LoginPage renders the sign-in form. A browser that already has a session
// goes straight to the dashboard.
func (ah *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := ah.h.Sessions.Manager.Load(r.Context(), ah.h.Sessions.SessionID(r)); err == nil {
		http.Redirect(w, r, ah.target(r.URL.Query().Get("redirect")), http.StatusSeeOther)
		return
	}

	ah.render(w, http.StatusOK, views.LoginPage{
		BranchNo: authn.DefaultBranchNo,
		Redirect: r.URL.Query().Get("redirect"),
	})
}

// Login validates the form and signs in. Every session gets a fresh id so a
// previous session's cached menu is never reused.
func (ah *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ah.render(w, http.StatusBadRequest, views.LoginPage{BranchNo: authn.DefaultBranchNo, Error: loginFailed})
		return
	}

	form := authn.Form{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		BranchNo: strings.TrimSpace(r.PostForm.Get("branchNo")),
	}
	page := views.LoginPage{
		Username: form.Username,
		BranchNo: form.BranchNo,
		Redirect: r.PostForm.Get("redirect"),
	}

	id := session.NewID()
	_, err := ah.service.Login(r.Context(), id, form)
	if err != nil {
		var verr *authn.ValidationError
		switch {
		case errors.As(err, &verr):
			page.Errors = verr.Fields
			ah.render(w, http.StatusUnprocessableEntity, page)
		case errors.Is(err, authn.ErrInvalidCredentials):
			page.Error = authn.GenericLoginError
			ah.render(w, http.StatusUnauthorized, page)
		default:
			ah.h.Logger.Error("login failed", "user", form.Username, "error", err)
			page.Error = loginFailed
			ah.render(w, http.StatusInternalServerError, page)
		}
		return
	}

	if old := ah.h.Sessions.SessionID(r); old != "" {
		if st, err := ah.h.Sessions.Manager.Load(r.Context(), old); err == nil {
			ah.service.Logout(r.Context(), st)
		}
	}

	ah.h.Sessions.SetSessionCookie(w, id)
	http.Redirect(w, r, ah.target(page.Redirect), http.StatusSeeOther)
}

// Logout ends the session and returns to the login page. It works without a
// valid session too.
func (ah *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := ah.h.Sessions.SessionID(r); id != "" {
		if st, err := ah.h.Sessions.Manager.Load(r.Context(), id); err == nil {
			ah.service.Logout(r.Context(), st)
		} else {
			ah.h.Menus.Drop(id)
		}
	}
	ah.h.Sessions.DeleteSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// TooManyAttempts is the login rate limiter's rejection page.
func (ah *AuthHandler) TooManyAttempts(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	ah.h.Logger.Warn("login throttled", "retry_after", retryAfter.String())
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	ah.render(w, http.StatusTooManyRequests, views.LoginPage{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		BranchNo: strings.TrimSpace(r.PostFormValue("branchNo")),
		Redirect: r.PostFormValue("redirect"),
		Error:    tooManyLogins,
	})
}

func (ah *AuthHandler) target(redirect string) string {
	if redirect == "/login" || strings.HasPrefix(redirect, "/login?") {
		return routes.DashboardRoot
	}
	return middlewares.SafeRedirect(redirect, routes.DashboardRoot)
}

func (ah *AuthHandler) render(w http.ResponseWriter, status int, page views.LoginPage) {
	page.Title = pageTitle
	page.AppName = views.AppName
	if page.BranchNo == "" {
		page.BranchNo = authn.DefaultBranchNo
	}
	ah.h.Views.Render(w, status, "login", page)
}
