// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers for the recipe site.
package handler

import (
	"database/sql"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// Per-page and per-row listing limits.
const (
	homeLatestLimit   = 5
	homeCategoryLimit = 3
	exploreLimit      = 20
	categoryPageLimit = 20
)

// msgRecipeNotFound is flashed when a recipe id resolves to nothing.
const msgRecipeNotFound = "Không tìm thấy công thức."

// FrontendHandler serves the public browsing pages.
type FrontendHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *FrontendHandler {
	return &FrontendHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// CategoryRow is one home-page row: a category and a few of its recipes.
type CategoryRow struct {
	Category string
	Recipes  []model.Recipe
}

// Home renders the landing page: the five newest recipes plus a short
// row per category.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	latest, err := h.queries.ListLatestRecipes(r.Context(), homeLatestLimit)
	if err != nil {
		logAndInternalError(w, "failed to load latest recipes", "error", err)
		return
	}

	var rows []CategoryRow
	for _, category := range model.Categories {
		recipes, err := h.queries.ListRecipesByCategory(r.Context(), store.ListRecipesByCategoryParams{
			Category: category,
			Limit:    homeCategoryLimit,
		})
		if err != nil {
			logAndInternalError(w, "failed to load category recipes", "category", category, "error", err)
			return
		}
		if len(recipes) > 0 {
			rows = append(rows, CategoryRow{Category: category, Recipes: recipes})
		}
	}

	h.render(w, r, "home", "Trang chủ", map[string]any{
		"Latest":       latest,
		"CategoryRows": rows,
	})
}

// Categories renders the category index.
func (h *FrontendHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "categories", "Danh mục", nil)
}

// Category renders the recipes of one category. The id parameter is the
// category name itself.
func (h *FrontendHandler) Category(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "id")
	if !model.IsValidCategory(category) {
		flashError(w, r, h.renderer, RouteCategories, "Danh mục không tồn tại.")
		return
	}

	recipes, err := h.queries.ListRecipesByCategory(r.Context(), store.ListRecipesByCategoryParams{
		Category: category,
		Limit:    categoryPageLimit,
	})
	if err != nil {
		logAndInternalError(w, "failed to load category", "category", category, "error", err)
		return
	}

	h.render(w, r, "category", category, map[string]any{
		"Category": category,
		"Recipes":  recipes,
	})
}

// Search runs the diacritic-sensitive substring search over recipe
// names and descriptions.
func (h *FrontendHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRoot) {
		return
	}

	term := strings.TrimSpace(r.FormValue("searchTerm"))

	var recipes []model.Recipe
	if term != "" {
		var err error
		recipes, err = h.queries.SearchRecipes(r.Context(), term)
		if err != nil {
			logAndInternalError(w, "search failed", "term", term, "error", err)
			return
		}
	}

	h.render(w, r, "search", "Tìm kiếm", map[string]any{
		"Term":    term,
		"Recipes": recipes,
	})
}

// ExploreLatest renders the newest recipes, paginated.
func (h *FrontendHandler) ExploreLatest(w http.ResponseWriter, r *http.Request) {
	count, err := h.queries.CountRecipes(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count recipes", "error", err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := BuildPagination(page, count, exploreLimit, RouteExploreLatest)

	recipes, err := h.queries.ListRecipesPage(r.Context(), store.ListRecipesPageParams{
		Limit:  int64(pagination.PerPage),
		Offset: pagination.Offset(),
	})
	if err != nil {
		logAndInternalError(w, "failed to load latest recipes", "error", err)
		return
	}

	h.render(w, r, "explore-latest", "Mới nhất", map[string]any{
		"Recipes":    recipes,
		"Pagination": pagination,
	})
}

// ExploreRandom shows a uniformly sampled recipe: count, pick an
// offset, fetch. Racy between count and fetch under concurrent writes,
// which is acceptable at this traffic level.
func (h *FrontendHandler) ExploreRandom(w http.ResponseWriter, r *http.Request) {
	count, err := h.queries.CountRecipes(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count recipes", "error", err)
		return
	}
	if count == 0 {
		flashInfo(w, r, h.renderer, RouteExploreLatest, "Chưa có công thức nào.")
		return
	}

	recipe, err := h.queries.GetRecipeByOffset(r.Context(), rand.Int63n(count))
	if err != nil {
		if err == sql.ErrNoRows {
			// A delete landed between count and fetch
			flashInfo(w, r, h.renderer, RouteExploreLatest, "Chưa có công thức nào.")
			return
		}
		logAndInternalError(w, "failed to load random recipe", "error", err)
		return
	}

	h.render(w, r, "explore-random", recipe.Name, map[string]any{
		"Recipe": recipe,
	})
}

// Recipe renders one recipe with its comments and favorite state.
func (h *FrontendHandler) Recipe(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.queries.ListCommentsByRecipe(r.Context(), recipe.ID)
	if err != nil {
		logAndInternalError(w, "failed to load comments", "recipe_id", recipe.ID, "error", err)
		return
	}

	isFavorite := false
	user := middleware.GetUser(r)
	if user != nil {
		isFavorite, err = h.queries.IsFavorite(r.Context(), store.IsFavoriteParams{
			UserID:   user.ID,
			RecipeID: recipe.ID,
		})
		if err != nil {
			slog.Error("failed to check favorite state", "recipe_id", recipe.ID, "error", err)
		}
	}

	h.render(w, r, "recipe", recipe.Name, map[string]any{
		"Recipe":     recipe,
		"Comments":   comments,
		"IsFavorite": isFavorite,
	})
}

// render wraps the renderer call with the current user attached.
func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	})
	if err != nil {
		logAndInternalError(w, "render failed", "template", name, "error", err)
	}
}
