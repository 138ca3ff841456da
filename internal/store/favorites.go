// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
)

// AddFavoriteParams holds parameters for AddFavorite.
type AddFavoriteParams struct {
	UserID    int64
	RecipeID  int64
	CreatedAt time.Time
}

// AddFavorite appends a recipe to the user's ordered favorites list.
// The add is idempotent: a pair already present is left untouched and
// reported via the return value so the handler can show a notice. The
// UNIQUE(user_id, recipe_id) key makes a duplicate impossible even when
// two requests race past the existence check.
func (q *Queries) AddFavorite(ctx context.Context, arg AddFavoriteParams) (added bool, err error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, recipe_id, position, created_at)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ?
		FROM favorites WHERE user_id = ?
		ON CONFLICT (user_id, recipe_id) DO NOTHING`,
		arg.UserID, arg.RecipeID, arg.CreatedAt, arg.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveFavoriteParams holds parameters for RemoveFavorite.
type RemoveFavoriteParams struct {
	UserID   int64
	RecipeID int64
}

// RemoveFavorite drops a recipe from the user's favorites. Removing an
// absent pair is a no-op.
func (q *Queries) RemoveFavorite(ctx context.Context, arg RemoveFavoriteParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND recipe_id = ?`,
		arg.UserID, arg.RecipeID)
	return err
}

// IsFavoriteParams holds parameters for IsFavorite.
type IsFavoriteParams struct {
	UserID   int64
	RecipeID int64
}

// IsFavorite reports whether the recipe is in the user's favorites.
func (q *Queries) IsFavorite(ctx context.Context, arg IsFavoriteParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND recipe_id = ?`,
		arg.UserID, arg.RecipeID).Scan(&n)
	return n > 0, err
}

// ListFavoriteRecipes resolves the user's favorites to full recipe
// records, in the order they were added.
func (q *Queries) ListFavoriteRecipes(ctx context.Context, userID int64) ([]model.Recipe, error) {
	return q.queryRecipes(ctx, `
		SELECT r.id, r.name, r.description, r.owner_email, r.ingredients,
		       r.category, r.image, r.created_at, r.updated_at
		FROM favorites f
		JOIN recipes r ON r.id = f.recipe_id
		WHERE f.user_id = ?
		ORDER BY f.position`,
		userID)
}

// CountFavorites returns the number of recipes in the user's favorites.
func (q *Queries) CountFavorites(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
