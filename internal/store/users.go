// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
)

const userColumns = `id, name, email, password_hash, role, google_id, picture, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.GoogleID, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure, the signal for a duplicate email or provider id at write time.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUserParams holds parameters for CreateUser.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a local account. A duplicate email fails the UNIQUE
// constraint on users.email (case-insensitive via COLLATE NOCASE).
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Name, strings.TrimSpace(arg.Email), arg.PasswordHash, arg.Role,
		arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// CreateFederatedUserParams holds parameters for CreateFederatedUser.
type CreateFederatedUserParams struct {
	Name      string
	Email     string
	GoogleID  string
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateFederatedUser inserts an account keyed by the identity provider's
// id. The password hash stays empty; the role defaults to user.
func (q *Queries) CreateFederatedUser(ctx context.Context, arg CreateFederatedUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role, google_id, picture, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Name, strings.TrimSpace(arg.Email), model.RoleUser, arg.GoogleID,
		arg.Picture, arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email))
	return scanUser(row)
}

// GetUserByGoogleID fetches a user by the federated provider id.
func (q *Queries) GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)
	return scanUser(row)
}

// UpdateUserProfileParams holds parameters for UpdateUserProfile.
type UpdateUserProfileParams struct {
	Name      string
	Email     string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserProfile updates the profile fields a user may edit about
// themselves. The password hash is deliberately untouched.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		arg.Name, strings.TrimSpace(arg.Email), arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserPasswordParams holds parameters for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserParams holds parameters for UpdateUser (admin edit).
type UpdateUserParams struct {
	Name      string
	Email     string
	Role      string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUser updates name, email and role. Admin-only operation.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, updated_at = ? WHERE id = ?`,
		arg.Name, strings.TrimSpace(arg.Email), arg.Role, arg.UpdatedAt, arg.ID)
	return err
}

// ListUsersParams holds parameters for ListUsers.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns a page of users ordered by id.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountUsersByRole returns the number of users holding the given role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}

// DeleteUserCascade removes a user together with everything they own:
// recipes keyed by the user's email (the owner-email denormalization has
// no foreign key, so the recipe sweep is explicit), and through those
// recipes their comments and favorites rows via ON DELETE CASCADE. The
// user's own comments and favorites go the same way when the user row is
// deleted. Runs in a single transaction.
func DeleteUserCascade(ctx context.Context, db *sql.DB, userID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := New(tx)

	user, err := qtx.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE owner_email = ?`, user.Email); err != nil {
		return fmt.Errorf("deleting owned recipes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return tx.Commit()
}

// UpdateUserProfileCascade updates a user's name and email and rewrites
// the owner email of their recipes in the same transaction, so recipe
// ownership follows the account through an email change.
func UpdateUserProfileCascade(ctx context.Context, db *sql.DB, arg UpdateUserProfileParams, oldEmail string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := New(tx).UpdateUserProfile(ctx, arg); err != nil {
		return err
	}

	newEmail := strings.TrimSpace(arg.Email)
	if !strings.EqualFold(newEmail, oldEmail) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET owner_email = ? WHERE owner_email = ?`, newEmail, oldEmail); err != nil {
			return fmt.Errorf("rewriting recipe owner email: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateUserCascade is the admin edit counterpart of
// UpdateUserProfileCascade: name, email and role plus the recipe
// owner-email rewrite, in one transaction.
func UpdateUserCascade(ctx context.Context, db *sql.DB, arg UpdateUserParams, oldEmail string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := New(tx).UpdateUser(ctx, arg); err != nil {
		return err
	}

	newEmail := strings.TrimSpace(arg.Email)
	if !strings.EqualFold(newEmail, oldEmail) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET owner_email = ? WHERE owner_email = ?`, newEmail, oldEmail); err != nil {
			return fmt.Errorf("rewriting recipe owner email: %w", err)
		}
	}

	return tx.Commit()
}
