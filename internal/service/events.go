// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic for sign-in identities,
// recipe photo uploads, and the audit event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// EventService provides audit event logging.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry. Metadata is stored as JSON.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ip string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	var nullMetadata sql.NullString
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			nullMetadata = sql.NullString{String: string(jsonBytes), Valid: true}
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IP:        ip,
		Metadata:  nullMetadata,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to log event", "category", category, "error", err)
		return err
	}

	return nil
}

// LogInfo logs an informational event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ip string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, ip, metadata)
}

// LogWarning logs a warning event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ip string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, ip, metadata)
}

// LogError logs an error event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ip string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, userID, ip, metadata)
}
