// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
)

const recipeColumns = `id, name, description, owner_email, ingredients, category, image, created_at, updated_at`

func scanRecipe(row interface{ Scan(...any) error }) (model.Recipe, error) {
	var r model.Recipe
	var ingredients string
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.OwnerEmail, &ingredients,
		&r.Category, &r.Image, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return r, fmt.Errorf("decoding ingredients for recipe %d: %w", r.ID, err)
	}
	return r, nil
}

func (q *Queries) queryRecipes(ctx context.Context, query string, args ...any) ([]model.Recipe, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func encodeIngredients(ingredients []string) (string, error) {
	if ingredients == nil {
		ingredients = []string{}
	}
	b, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("encoding ingredients: %w", err)
	}
	return string(b), nil
}

// CreateRecipeParams holds parameters for CreateRecipe.
type CreateRecipeParams struct {
	Name        string
	Description string
	OwnerEmail  string
	Ingredients []string
	Category    string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateRecipe inserts a recipe. Name and description are stored in NFC
// so later searches compare like with like.
func (q *Queries) CreateRecipe(ctx context.Context, arg CreateRecipeParams) (model.Recipe, error) {
	ingredients, err := encodeIngredients(arg.Ingredients)
	if err != nil {
		return model.Recipe{}, err
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO recipes (name, description, owner_email, ingredients, category, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+recipeColumns,
		nfc(arg.Name), nfc(arg.Description), arg.OwnerEmail, ingredients,
		arg.Category, arg.Image, arg.CreatedAt, arg.UpdatedAt)
	return scanRecipe(row)
}

// GetRecipeByID fetches a recipe by primary key.
func (q *Queries) GetRecipeByID(ctx context.Context, id int64) (model.Recipe, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	return scanRecipe(row)
}

// UpdateRecipeParams holds parameters for UpdateRecipe.
type UpdateRecipeParams struct {
	Name        string
	Description string
	Ingredients []string
	Category    string
	Image       string
	UpdatedAt   time.Time
	ID          int64
}

// UpdateRecipe updates the mutable fields of a recipe. The owner email
// never changes after submission.
func (q *Queries) UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) error {
	ingredients, err := encodeIngredients(arg.Ingredients)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		UPDATE recipes
		SET name = ?, description = ?, ingredients = ?, category = ?, image = ?, updated_at = ?
		WHERE id = ?`,
		nfc(arg.Name), nfc(arg.Description), ingredients, arg.Category,
		arg.Image, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteRecipe removes a recipe; comments and favorites rows follow via
// ON DELETE CASCADE.
func (q *Queries) DeleteRecipe(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	return err
}

// ListRecipesByCategoryParams holds parameters for ListRecipesByCategory.
type ListRecipesByCategoryParams struct {
	Category string
	Limit    int64
}

// ListRecipesByCategory returns recipes whose category matches exactly,
// diacritics included.
func (q *Queries) ListRecipesByCategory(ctx context.Context, arg ListRecipesByCategoryParams) ([]model.Recipe, error) {
	return q.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE category = ? ORDER BY id DESC LIMIT ?`,
		nfc(arg.Category), arg.Limit)
}

// ListLatestRecipes returns the most recently submitted recipes.
func (q *Queries) ListLatestRecipes(ctx context.Context, limit int64) ([]model.Recipe, error) {
	return q.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY id DESC LIMIT ?`, limit)
}

// ListRecipesByOwner returns all recipes owned by the given email.
func (q *Queries) ListRecipesByOwner(ctx context.Context, email string) ([]model.Recipe, error) {
	return q.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE owner_email = ? ORDER BY id DESC`, email)
}

// SearchRecipes performs a substring match over name and description.
// The term is NFC-normalized but never stripped of diacritics: a search
// for "Việt" does not match "Viet". SQLite LIKE only case-folds ASCII, so
// accented text stays exact.
func (q *Queries) SearchRecipes(ctx context.Context, term string) ([]model.Recipe, error) {
	pattern := "%" + escapeLike(nfc(term)) + "%"
	return q.queryRecipes(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY id DESC`,
		pattern, pattern)
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// CountRecipes returns the total number of recipes.
func (q *Queries) CountRecipes(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}

// GetRecipeByOffset fetches the recipe at the given position in id order.
// Together with CountRecipes this implements the uniform random sample:
// count, pick an offset, fetch. The pair is not atomic, so a write landing
// between the two calls can shift the offset; that approximation is
// accepted for this site's traffic.
func (q *Queries) GetRecipeByOffset(ctx context.Context, offset int64) (model.Recipe, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY id LIMIT 1 OFFSET ?`, offset)
	return scanRecipe(row)
}

// ListRecipesPageParams holds parameters for ListRecipesPage.
type ListRecipesPageParams struct {
	Limit  int64
	Offset int64
}

// ListRecipesPage returns one page of recipes, newest first.
func (q *Queries) ListRecipesPage(ctx context.Context, arg ListRecipesPageParams) ([]model.Recipe, error) {
	return q.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

// ListRecipeImages returns every image filename currently referenced by a
// recipe. The upload sweeper uses this to identify orphaned files.
func (q *Queries) ListRecipeImages(ctx context.Context) (map[string]bool, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT image FROM recipes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make(map[string]bool)
	for rows.Next() {
		var image string
		if err := rows.Scan(&image); err != nil {
			return nil, err
		}
		images[image] = true
	}
	return images, rows.Err()
}
