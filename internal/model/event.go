// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth   = "auth"
	EventCategoryAdmin  = "admin"
	EventCategoryRecipe = "recipe"
	EventCategoryUpload = "upload"
	EventCategorySystem = "system"
)

// Event is an audit-log entry. Auth and admin actions write events
// directly; the logging package tees slog warnings and errors here too.
type Event struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    sql.NullInt64  `json:"user_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Metadata  sql.NullString `json:"metadata,omitempty"` // JSON object
	CreatedAt time.Time      `json:"created_at"`
}
