// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/minhvu-dev/recipebook/internal/auth"
	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/oauth"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// msgInvalidCredentials is shared by the "no such account" and "wrong
// password" branches so login failures reveal nothing about which one
// happened.
const msgInvalidCredentials = "Email hoặc mật khẩu không đúng."

// oauthStateCookie carries the CSRF state across the provider redirect.
const oauthStateCookie = "oauth_state"

// AuthHandler handles signup, login, logout, and federated sign-in.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	identityService *service.IdentityService
	loginProtection *middleware.LoginProtection
	provider        oauth.Provider
	isDev           bool
}

// NewAuthHandler creates a new AuthHandler. provider may be nil when
// federated sign-in is not configured.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, provider oauth.Provider, isDev bool) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		identityService: service.NewIdentityService(db),
		loginProtection: lp,
		provider:        provider,
		isDev:           isDev,
	}
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.render(w, r, "signup", "Đăng ký")
}

// Signup creates a local account: valid email, password of at least six
// characters, non-empty name. A duplicate email is rejected without a
// second row.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignup) {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	switch {
	case name == "":
		flashError(w, r, h.renderer, RouteSignup, "Vui lòng nhập tên của bạn.")
		return
	case !validEmail(email):
		flashError(w, r, h.renderer, RouteSignup, "Địa chỉ email không hợp lệ.")
		return
	case len(password) < MinPasswordLength:
		flashError(w, r, h.renderer, RouteSignup, "Mật khẩu phải có ít nhất 6 ký tự.")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, RouteSignup, "Email này đã được đăng ký.")
			return
		}
		slog.Error("failed to create user", "error", err)
		flashError(w, r, h.renderer, RouteSignup, "Không thể tạo tài khoản. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "User signed up",
		&user.ID, clientIP(r), map[string]any{"email": user.Email})

	h.establishSession(w, r, user, "Chào mừng, "+user.Name+"!")
}

// LoginForm renders the login page. Authenticated users are sent home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", "Đăng nhập")
}

// Login handles the local login form. The two failure modes are logged
// and audited separately but share one flash message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	ip := clientIP(r)

	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, msgInvalidCredentials)
		return
	}

	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogWarning(r.Context(), model.EventCategoryAuth,
				"Login attempt on locked account", nil, ip, map[string]any{"email": email})
			flashError(w, r, h.renderer, RouteLogin, "Tài khoản tạm thời bị khóa. Vui lòng thử lại sau.")
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for unknown email", "email", email)
			_ = h.eventService.LogWarning(r.Context(), model.EventCategoryAuth,
				"Login failed: user not found", nil, ip, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		h.recordFailure(w, r, email)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !valid {
		if err != nil {
			slog.Error("password check error", "error", err)
		} else {
			slog.Debug("invalid password attempt", "email", email)
		}
		_ = h.eventService.LogWarning(r.Context(), model.EventCategoryAuth,
			"Login failed: invalid password", &user.ID, ip, map[string]any{"email": email})
		h.recordFailure(w, r, email)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash when the stored parameters have drifted from current ones
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	ua := useragent.Parse(r.UserAgent())
	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "User logged in",
		&user.ID, ip, map[string]any{
			"email":   user.Email,
			"browser": ua.Name,
			"os":      ua.OS,
			"mobile":  ua.Mobile,
		})

	h.establishSession(w, r, user, "Chào mừng trở lại, "+user.Name+"!")
}

// recordFailure books a failed attempt against the email and flashes the
// shared invalid-credentials message.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string) {
	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.RecordFailedAttempt(email); locked {
			flashError(w, r, h.renderer, RouteLogin, "Quá nhiều lần thử. Tài khoản tạm thời bị khóa.")
			return
		}
	}
	flashError(w, r, h.renderer, RouteLogin, msgInvalidCredentials)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}

	if user != nil {
		_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "User logged out",
			&user.ID, clientIP(r), nil)
	}

	flashSuccess(w, r, h.renderer, RouteRoot, "Bạn đã đăng xuất.")
}

// GoogleStart begins the federated sign-in flow: random state into a
// short-lived cookie, then redirect to the provider.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		flashError(w, r, h.renderer, RouteLogin, "Đăng nhập Google chưa được cấu hình.")
		return
	}

	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   !h.isDev,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusSeeOther)
}

// GoogleCallback completes the flow: verify state, exchange the code,
// fetch the profile, map it to a local account, and establish the
// session exactly like a local login.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		flashError(w, r, h.renderer, RouteLogin, "Đăng nhập Google chưa được cấu hình.")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		_ = h.eventService.LogWarning(r.Context(), model.EventCategoryAuth,
			"Federated login failed: state mismatch", nil, clientIP(r), nil)
		flashError(w, r, h.renderer, RouteLogin, "Phiên đăng nhập Google không hợp lệ. Vui lòng thử lại.")
		return
	}

	// The state is single-use
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		flashError(w, r, h.renderer, RouteLogin, "Đăng nhập Google bị hủy.")
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "provider", h.provider.Name(), "error", err)
		flashError(w, r, h.renderer, RouteLogin, "Không thể đăng nhập với Google. Vui lòng thử lại.")
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), token.AccessToken)
	if err != nil {
		slog.Error("oauth profile fetch failed", "provider", h.provider.Name(), "error", err)
		flashError(w, r, h.renderer, RouteLogin, "Không thể đăng nhập với Google. Vui lòng thử lại.")
		return
	}

	user, created, err := h.identityService.LookupOrCreate(r.Context(), *profile)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			flashError(w, r, h.renderer, RouteLogin, "Email này đã được đăng ký bằng mật khẩu. Vui lòng đăng nhập bằng email.")
			return
		}
		slog.Error("federated lookup failed", "error", err)
		flashError(w, r, h.renderer, RouteLogin, "Không thể đăng nhập với Google. Vui lòng thử lại.")
		return
	}

	message := "Chào mừng trở lại, " + user.Name + "!"
	if created {
		message = "Chào mừng, " + user.Name + "!"
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "User logged in via Google",
		&user.ID, clientIP(r), map[string]any{"email": user.Email, "created": created})

	h.establishSession(w, r, user, message)
}

// establishSession renews the session token against fixation, stores
// the user id, and sends the user home.
func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, user model.User, message string) {
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	flashSuccess(w, r, h.renderer, RouteRoot, message)
}

// validEmail reports whether the address parses as a bare RFC 5322
// address.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, name, title string) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
	})
	if err != nil {
		logAndInternalError(w, "render failed", "template", name, "error", err)
	}
}
