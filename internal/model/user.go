// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and constants used throughout the
// application: users, recipes, comments, favorites and audit events.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleUser, RoleAdmin}

// User represents a registered account, local or federated.
type User struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // empty for federated-only accounts
	Role         string         `json:"role"`
	GoogleID     sql.NullString `json:"-"`
	Picture      string         `json:"picture,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFederated returns true if the account was created through a
// third-party identity provider and has no local password.
func (u *User) IsFederated() bool {
	return u.GoogleID.Valid && u.PasswordHash == ""
}
