// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/minhvu-dev/recipebook/internal/auth"
	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// ProfileHandler handles the signed-in user's own pages. All routes
// assume LoadUser + RequireAuth ran first.
type ProfileHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *ProfileHandler {
	return &ProfileHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// Profile renders the profile page with recipe and favorite counts.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipes, err := h.queries.ListRecipesByOwner(r.Context(), user.Email)
	if err != nil {
		logAndInternalError(w, "failed to load own recipes", "user_id", user.ID, "error", err)
		return
	}

	favoriteCount, err := h.queries.CountFavorites(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to count favorites", "user_id", user.ID, "error", err)
		return
	}

	h.render(w, r, "profile", "Hồ sơ", map[string]any{
		"RecipeCount":   len(recipes),
		"FavoriteCount": favoriteCount,
	})
}

// EditProfileForm renders the profile edit form.
func (h *ProfileHandler) EditProfileForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "edit-profile", "Sửa hồ sơ", nil)
}

// EditProfile updates name and email. Changing the email also rewrites
// the owner email of the user's recipes so ownership follows the
// account.
func (h *ProfileHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, RouteEditProfile) {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")

	switch {
	case name == "":
		flashError(w, r, h.renderer, RouteEditProfile, "Vui lòng nhập tên của bạn.")
		return
	case !validEmail(email):
		flashError(w, r, h.renderer, RouteEditProfile, "Địa chỉ email không hợp lệ.")
		return
	}

	err := store.UpdateUserProfileCascade(r.Context(), h.db, store.UpdateUserProfileParams{
		Name:      name,
		Email:     email,
		UpdatedAt: time.Now(),
		ID:        user.ID,
	}, user.Email)
	if err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, RouteEditProfile, "Email này đã được đăng ký.")
			return
		}
		slog.Error("failed to update profile", "user_id", user.ID, "error", err)
		flashError(w, r, h.renderer, RouteEditProfile, "Không thể lưu hồ sơ. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "Profile updated",
		&user.ID, clientIP(r), nil)

	flashSuccess(w, r, h.renderer, RouteProfile, "Đã cập nhật hồ sơ.")
}

// ChangePasswordForm renders the password change form.
func (h *ProfileHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "change-password", "Đổi mật khẩu", nil)
}

// ChangePassword verifies the current password and sets a new one.
// Federated accounts have no password to change.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if user.IsFederated() {
		flashError(w, r, h.renderer, RouteProfile, "Tài khoản Google không có mật khẩu.")
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteChangePassword) {
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	valid, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil || !valid {
		flashError(w, r, h.renderer, RouteChangePassword, "Mật khẩu hiện tại không đúng.")
		return
	}

	if len(newPassword) < MinPasswordLength {
		flashError(w, r, h.renderer, RouteChangePassword, "Mật khẩu phải có ít nhất 6 ký tự.")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	})
	if err != nil {
		slog.Error("failed to change password", "user_id", user.ID, "error", err)
		flashError(w, r, h.renderer, RouteChangePassword, "Không thể đổi mật khẩu. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAuth, "Password changed",
		&user.ID, clientIP(r), nil)

	flashSuccess(w, r, h.renderer, RouteProfile, "Đã đổi mật khẩu.")
}

// MyRecipes lists the current user's recipes.
func (h *ProfileHandler) MyRecipes(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipes, err := h.queries.ListRecipesByOwner(r.Context(), user.Email)
	if err != nil {
		logAndInternalError(w, "failed to load own recipes", "user_id", user.ID, "error", err)
		return
	}

	h.render(w, r, "my-recipes", "Công thức của tôi", map[string]any{
		"Recipes": recipes,
	})
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	})
	if err != nil {
		logAndInternalError(w, "render failed", "template", name, "error", err)
	}
}
