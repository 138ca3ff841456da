// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// RecipeHandler handles recipe submission, editing, comments, and
// favorites. All routes assume LoadUser + RequireAuth ran first.
type RecipeHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	uploads        *service.UploadService
	eventService   *service.EventService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, uploads *service.UploadService) *RecipeHandler {
	return &RecipeHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		uploads:        uploads,
		eventService:   service.NewEventService(db),
	}
}

// SubmitForm renders the recipe submission form.
func (h *RecipeHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "submit-recipe", "Đăng công thức", nil)
}

// Submit creates a recipe from the submission form. The image file is
// written first and removed again if the row insert fails, so a recipe
// never points at a missing file.
func (h *RecipeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Dữ liệu biểu mẫu không hợp lệ.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	category := r.FormValue("category")
	ingredients := normalizeIngredients(r.Form["ingredients"])

	switch {
	case name == "":
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Vui lòng nhập tên công thức.")
		return
	case description == "":
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Vui lòng nhập mô tả.")
		return
	case len(ingredients) == 0:
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Vui lòng nhập nguyên liệu.")
		return
	case !model.IsValidCategory(category):
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Danh mục không hợp lệ.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Vui lòng chọn ảnh cho công thức.")
		return
	}
	defer file.Close()

	image, err := h.uploads.SaveImage(file, header)
	if err != nil {
		flashError(w, r, h.renderer, RouteSubmitRecipe, uploadErrorMessage(err))
		return
	}

	now := time.Now()
	recipe, err := h.queries.CreateRecipe(r.Context(), store.CreateRecipeParams{
		Name:        name,
		Description: description,
		OwnerEmail:  user.Email,
		Ingredients: ingredients,
		Category:    category,
		Image:       image,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		// The file already landed; take it back out
		if rmErr := h.uploads.Remove(image); rmErr != nil {
			slog.Error("failed to clean up upload after insert failure", "image", image, "error", rmErr)
		}
		slog.Error("failed to create recipe", "error", err)
		flashError(w, r, h.renderer, RouteSubmitRecipe, "Không thể lưu công thức. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryRecipe, "Recipe created",
		&user.ID, clientIP(r), map[string]any{"recipe_id": recipe.ID, "name": recipe.Name})

	flashSuccess(w, r, h.renderer, recipePath(recipe.ID), "Đã đăng công thức thành công.")
}

// EditForm renders the edit form for an owned recipe.
func (h *RecipeHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.requireOwnedRecipe(w, r)
	if !ok {
		return
	}

	h.render(w, r, "edit-recipe", "Sửa công thức", map[string]any{
		"Recipe": recipe,
	})
}

// Edit applies the edit form to an owned recipe. Fields left blank keep
// their stored values; the image only changes when a new file was
// uploaded.
func (h *RecipeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipe, ok := h.requireOwnedRecipe(w, r)
	if !ok {
		return
	}
	editURL := recipeEditPath(recipe.ID)

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, editURL, "Dữ liệu biểu mẫu không hợp lệ.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = recipe.Name
	}
	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		description = recipe.Description
	}
	category := r.FormValue("category")
	if !model.IsValidCategory(category) {
		category = recipe.Category
	}

	// An empty ingredient submission keeps the stored list instead of
	// clearing it
	ingredients := normalizeIngredients(r.Form["ingredients"])
	if len(ingredients) == 0 {
		ingredients = recipe.Ingredients
	}

	image := recipe.Image
	var newImage string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		newImage, err = h.uploads.SaveImage(file, header)
		if err != nil {
			flashError(w, r, h.renderer, editURL, uploadErrorMessage(err))
			return
		}
		image = newImage
	}

	err := h.queries.UpdateRecipe(r.Context(), store.UpdateRecipeParams{
		Name:        name,
		Description: description,
		Ingredients: ingredients,
		Category:    category,
		Image:       image,
		UpdatedAt:   time.Now(),
		ID:          recipe.ID,
	})
	if err != nil {
		if newImage != "" {
			if rmErr := h.uploads.Remove(newImage); rmErr != nil {
				slog.Error("failed to clean up upload after update failure", "image", newImage, "error", rmErr)
			}
		}
		slog.Error("failed to update recipe", "recipe_id", recipe.ID, "error", err)
		flashError(w, r, h.renderer, editURL, "Không thể lưu thay đổi. Vui lòng thử lại.")
		return
	}

	// The replaced image is no longer referenced
	if newImage != "" && recipe.Image != "" {
		if err := h.uploads.Remove(recipe.Image); err != nil {
			slog.Warn("failed to remove replaced image", "image", recipe.Image, "error", err)
		}
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryRecipe, "Recipe updated",
		&user.ID, clientIP(r), map[string]any{"recipe_id": recipe.ID})

	flashSuccess(w, r, h.renderer, recipePath(recipe.ID), "Đã cập nhật công thức.")
}

// Delete removes an owned recipe, its comments and favorites (via
// cascade), and its image files.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipe, ok := h.requireOwnedRecipe(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteRecipe(r.Context(), recipe.ID); err != nil {
		slog.Error("failed to delete recipe", "recipe_id", recipe.ID, "error", err)
		flashError(w, r, h.renderer, RouteMyRecipes, "Không thể xóa công thức. Vui lòng thử lại.")
		return
	}

	if recipe.Image != "" {
		if err := h.uploads.Remove(recipe.Image); err != nil {
			slog.Warn("failed to remove image of deleted recipe", "image", recipe.Image, "error", err)
		}
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryRecipe, "Recipe deleted",
		&user.ID, clientIP(r), map[string]any{"recipe_id": recipe.ID, "name": recipe.Name})

	flashSuccess(w, r, h.renderer, RouteMyRecipes, "Đã xóa công thức.")
}

// AddComment attaches a comment to a recipe.
func (h *RecipeHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound)
		return
	}

	recipe, ok := requireEntityWithRedirect(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound, id,
		func(id int64) (model.Recipe, error) { return h.queries.GetRecipeByID(r.Context(), id) })
	if !ok {
		return
	}
	recipeURL := recipePath(recipe.ID)

	if !parseFormOrRedirect(w, r, h.renderer, recipeURL) {
		return
	}

	body := strings.TrimSpace(r.FormValue("comment"))
	if body == "" {
		flashError(w, r, h.renderer, recipeURL, "Bình luận không được để trống.")
		return
	}

	_, err = h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		RecipeID:  recipe.ID,
		UserID:    user.ID,
		Body:      body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to create comment", "recipe_id", recipe.ID, "error", err)
		flashError(w, r, h.renderer, recipeURL, "Không thể gửi bình luận. Vui lòng thử lại.")
		return
	}

	flashSuccess(w, r, h.renderer, recipeURL, "Đã gửi bình luận.")
}

// DeleteComment removes one comment. Admin only; the route guard
// enforces the role, this handler just matches the comment to the
// recipe in the URL.
func (h *RecipeHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipeID, err := parseIDParam(r, "recipeID")
	if err != nil {
		flashError(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound)
		return
	}
	recipeURL := recipePath(recipeID)

	commentID, err := parseIDParam(r, "commentID")
	if err != nil {
		flashError(w, r, h.renderer, recipeURL, "Không tìm thấy bình luận.")
		return
	}

	comment, err := h.queries.GetCommentByID(r.Context(), commentID)
	if err != nil || comment.RecipeID != recipeID {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			slog.Error("failed to load comment", "comment_id", commentID, "error", err)
		}
		flashError(w, r, h.renderer, recipeURL, "Không tìm thấy bình luận.")
		return
	}

	if err := h.queries.DeleteComment(r.Context(), comment.ID); err != nil {
		slog.Error("failed to delete comment", "comment_id", comment.ID, "error", err)
		flashError(w, r, h.renderer, recipeURL, "Không thể xóa bình luận. Vui lòng thử lại.")
		return
	}

	_ = h.eventService.LogInfo(r.Context(), model.EventCategoryAdmin, "Comment deleted",
		&user.ID, clientIP(r), map[string]any{"comment_id": comment.ID, "recipe_id": recipeID})

	flashSuccess(w, r, h.renderer, recipeURL, "Đã xóa bình luận.")
}

// Favorite adds a recipe to the user's favorites. Adding twice is a
// no-op with a notice instead of an error.
func (h *RecipeHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound)
		return
	}

	recipe, ok := requireEntityWithRedirect(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound, id,
		func(id int64) (model.Recipe, error) { return h.queries.GetRecipeByID(r.Context(), id) })
	if !ok {
		return
	}
	recipeURL := recipePath(recipe.ID)

	added, err := h.queries.AddFavorite(r.Context(), store.AddFavoriteParams{
		UserID:    user.ID,
		RecipeID:  recipe.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to add favorite", "recipe_id", recipe.ID, "error", err)
		flashError(w, r, h.renderer, recipeURL, "Không thể lưu yêu thích. Vui lòng thử lại.")
		return
	}

	if !added {
		flashInfo(w, r, h.renderer, recipeURL, "Công thức đã có trong danh sách yêu thích.")
		return
	}
	flashSuccess(w, r, h.renderer, recipeURL, "Đã thêm vào yêu thích.")
}

// Unfavorite removes a recipe from the user's favorites.
func (h *RecipeHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteFavorites, msgRecipeNotFound)
		return
	}

	err = h.queries.RemoveFavorite(r.Context(), store.RemoveFavoriteParams{
		UserID:   user.ID,
		RecipeID: id,
	})
	if err != nil {
		slog.Error("failed to remove favorite", "recipe_id", id, "error", err)
		flashError(w, r, h.renderer, RouteFavorites, "Không thể bỏ yêu thích. Vui lòng thử lại.")
		return
	}

	flashSuccess(w, r, h.renderer, RouteFavorites, "Đã bỏ yêu thích.")
}

// Favorites lists the user's favorite recipes in the order they were
// added.
func (h *RecipeHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	recipes, err := h.queries.ListFavoriteRecipes(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to load favorites", "user_id", user.ID, "error", err)
		return
	}

	h.render(w, r, "favorites", "Yêu thích", map[string]any{
		"Recipes": recipes,
	})
}

// requireOwnedRecipe loads the recipe from the URL and enforces the
// owner-or-admin guard. A denial has already been written when ok is
// false.
func (h *RecipeHandler) requireOwnedRecipe(w http.ResponseWriter, r *http.Request) (model.Recipe, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		flashError(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound)
		return model.Recipe{}, false
	}

	recipe, ok := requireEntityWithRedirect(w, r, h.renderer, RouteExploreLatest, msgRecipeNotFound, id,
		func(id int64) (model.Recipe, error) { return h.queries.GetRecipeByID(r.Context(), id) })
	if !ok {
		return model.Recipe{}, false
	}

	user := middleware.GetUser(r)
	if !middleware.CanModifyRecipe(user, recipe).Apply(w, r, h.sessionManager) {
		return model.Recipe{}, false
	}

	return recipe, true
}

// uploadErrorMessage maps upload service errors to user-facing text.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoFile):
		return "Vui lòng chọn ảnh cho công thức."
	case errors.Is(err, service.ErrFileTooLarge):
		return "Ảnh vượt quá kích thước cho phép (10 MB)."
	case errors.Is(err, service.ErrUnsupportedType):
		return "Định dạng ảnh không được hỗ trợ."
	default:
		slog.Error("upload failed", "error", err)
		return "Không thể lưu ảnh. Vui lòng thử lại."
	}
}

func recipePath(id int64) string {
	return fmt.Sprintf("/recipe/%d", id)
}

func recipeEditPath(id int64) string {
	return fmt.Sprintf("/recipe/edit/%d", id)
}

// render wraps the renderer call with the current user attached.
func (h *RecipeHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	})
	if err != nil {
		logAndInternalError(w, "render failed", "template", name, "error", err)
	}
}
