// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// adminUsersPerPage is the dashboard user-list page size.
const adminUsersPerPage = 20

// AdminHandler handles the moderation dashboard. All routes assume
// LoadUser + RequireAdmin ran first.
type AdminHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *AdminHandler {
	return &AdminHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// Dashboard renders site statistics, the paginated user list, and the
// recent audit events.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userCount, err := h.queries.CountUsers(ctx)
	if err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}
	recipeCount, err := h.queries.CountRecipes(ctx)
	if err != nil {
		logAndInternalError(w, "failed to count recipes", "error", err)
		return
	}
	adminCount, err := h.queries.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		logAndInternalError(w, "failed to count admins", "error", err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := BuildPagination(page, userCount, adminUsersPerPage, RouteAdminDashboard)

	users, err := h.queries.ListUsers(ctx, store.ListUsersParams{
		Limit:  int64(pagination.PerPage),
		Offset: pagination.Offset(),
	})
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	events, err := h.queries.ListRecentEvents(ctx, 20)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Quản trị",
		User:  middleware.GetUser(r),
		Data: map[string]any{
			"UserCount":   userCount,
			"RecipeCount": recipeCount,
			"AdminCount":  adminCount,
			"Users":       users,
			"Pagination":  pagination,
			"Events":      events,
			"Roles":       model.ValidRoles,
		},
	})
	if err != nil {
		logAndInternalError(w, "render failed", "template", "admin/dashboard", "error", err)
	}
}

// UpdateUser applies the inline dashboard edit: name, email, role. An
// email change drags the user's recipes along.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteAdminDashboard, "Không tìm thấy người dùng.")
		return
	}

	target, ok := requireEntityWithRedirect(w, r, h.renderer, RouteAdminDashboard, "Không tìm thấy người dùng.", id,
		func(id int64) (model.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteAdminDashboard) {
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	role := r.FormValue("role")

	switch {
	case name == "":
		flashError(w, r, h.renderer, RouteAdminDashboard, "Tên không được để trống.")
		return
	case !validEmail(email):
		flashError(w, r, h.renderer, RouteAdminDashboard, "Địa chỉ email không hợp lệ.")
		return
	case !slices.Contains(model.ValidRoles, role):
		flashError(w, r, h.renderer, RouteAdminDashboard, "Vai trò không hợp lệ.")
		return
	}

	// Dropping one's own admin role would lock the door behind you
	if target.ID == admin.ID && role != model.RoleAdmin {
		flashError(w, r, h.renderer, RouteAdminDashboard, "Bạn không thể tự bỏ quyền quản trị.")
		return
	}

	err = store.UpdateUserCascade(r.Context(), h.db, store.UpdateUserParams{
		Name:      name,
		Email:     email,
		Role:      role,
		UpdatedAt: time.Now(),
		ID:        target.ID,
	}, target.Email)
	if err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, RouteAdminDashboard, "Email này đã được đăng ký.")
			return
		}
		slog.Error("failed to update user", "user_id", target.ID, "error", err)
		flashError(w, r, h.renderer, RouteAdminDashboard, "Không thể lưu thay đổi. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAdmin, "User updated by admin",
		&admin.ID, clientIP(r), map[string]any{"target_id": target.ID, "role": role})

	flashSuccess(w, r, h.renderer, RouteAdminDashboard, "Đã cập nhật người dùng.")
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteAdminDashboard, "Không tìm thấy người dùng.")
		return
	}

	if id == admin.ID {
		flashError(w, r, h.renderer, RouteAdminDashboard, "Bạn không thể tự xóa tài khoản của mình.")
		return
	}

	if err := store.DeleteUserCascade(r.Context(), h.db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashError(w, r, h.renderer, RouteAdminDashboard, "Không tìm thấy người dùng.")
			return
		}
		slog.Error("failed to delete user", "user_id", id, "error", err)
		flashError(w, r, h.renderer, RouteAdminDashboard, "Không thể xóa người dùng. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAdmin, "User deleted by admin",
		&admin.ID, clientIP(r), map[string]any{"target_id": id})

	flashSuccess(w, r, h.renderer, RouteAdminDashboard, "Đã xóa người dùng.")
}
