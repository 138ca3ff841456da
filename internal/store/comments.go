// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
)

// CreateCommentParams holds parameters for CreateComment.
type CreateCommentParams struct {
	RecipeID  int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// CreateComment appends a comment to a recipe.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	var c model.Comment
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO comments (recipe_id, user_id, body, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, recipe_id, user_id, body, created_at`,
		arg.RecipeID, arg.UserID, nfc(arg.Body), arg.CreatedAt)
	err := row.Scan(&c.ID, &c.RecipeID, &c.UserID, &c.Body, &c.CreatedAt)
	return c, err
}

// GetCommentByID fetches a comment by primary key.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	row := q.db.QueryRowContext(ctx,
		`SELECT id, recipe_id, user_id, body, created_at FROM comments WHERE id = ?`, id)
	err := row.Scan(&c.ID, &c.RecipeID, &c.UserID, &c.Body, &c.CreatedAt)
	return c, err
}

// ListCommentsByRecipe returns a recipe's comments in insertion order,
// joined with the author's display name.
func (q *Queries) ListCommentsByRecipe(ctx context.Context, recipeID int64) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.recipe_id, c.user_id, u.name, c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.recipe_id = ?
		ORDER BY c.id`,
		recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.RecipeID, &c.UserID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a single comment. Admin-only at the handler level.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}
