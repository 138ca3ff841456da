// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key the current user travels under.
const ContextKeyUser ContextKey = "user"

// Session keys.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyFlash     = "flash"
	SessionKeyFlashType = "flash_type"
)

// Decision is the outcome of an authorization guard. Every denial carries
// a redirect target and a user-visible message; guards never fail
// silently.
type Decision struct {
	Allowed  bool
	Redirect string
	Message  string
}

// Allow returns a passing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a failing decision with the mandatory message.
func Deny(redirect, message string) Decision {
	return Decision{Redirect: redirect, Message: message}
}

// Apply enforces a decision: a denial flashes the message and redirects.
// Returns true when the request may proceed.
func (d Decision) Apply(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager) bool {
	if d.Allowed {
		return true
	}
	sm.Put(r.Context(), SessionKeyFlash, d.Message)
	sm.Put(r.Context(), SessionKeyFlashType, "error")
	http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
	return false
}

// LoadUser loads the session's user into the request context. A session
// pointing at a deleted user is destroyed. Unauthenticated requests pass
// through with no user attached; RequireAuth decides what that means.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is attached.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// AuthDecision gates a request on an attached identity.
func AuthDecision(user *model.User) Decision {
	if user == nil {
		return Deny("/login", "Bạn cần đăng nhập để tiếp tục.")
	}
	return Allow()
}

// AdminDecision gates a request on the admin role.
func AdminDecision(user *model.User) Decision {
	if user == nil {
		return Deny("/login", "Bạn cần đăng nhập để tiếp tục.")
	}
	if !user.IsAdmin() {
		return Deny("/", "Bạn không có quyền truy cập trang này.")
	}
	return Allow()
}

// CanModifyRecipe gates mutation of a specific recipe: the owner (by
// email, matching the case-insensitive email column) or an admin may
// proceed.
func CanModifyRecipe(user *model.User, recipe model.Recipe) Decision {
	if user == nil {
		return Deny("/login", "Bạn cần đăng nhập để tiếp tục.")
	}
	if user.IsAdmin() || strings.EqualFold(user.Email, recipe.OwnerEmail) {
		return Allow()
	}
	return Deny("/my-recipes", "Bạn không có quyền thao tác trên công thức này.")
}

// RequireAuth rejects unauthenticated requests with a flash and a
// redirect to the login page. Must run after LoadUser.
func RequireAuth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !AuthDecision(GetUser(r)).Apply(w, r, sm) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects non-admin requests with a flash and a redirect
// home. Must run after LoadUser.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !AdminDecision(GetUser(r)).Apply(w, r, sm) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
