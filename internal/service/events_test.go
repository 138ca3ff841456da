// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/store"
	"github.com/minhvu-dev/recipebook/internal/testutil"
)

func TestLogEvent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	userID := int64(0)
	u, err := store.New(db).CreateUser(ctx, store.CreateUserParams{
		Name: "An", Email: "an@example.com", Role: "user",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	userID = u.ID

	err = svc.LogInfo(ctx, model.EventCategoryAuth, "user logged in", &userID, "203.0.113.7",
		map[string]any{"browser": "Firefox", "mobile": false})
	if err != nil {
		t.Fatalf("LogInfo: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}

	e := events[0]
	if e.Level != model.EventLevelInfo || e.Category != model.EventCategoryAuth {
		t.Errorf("event = %s/%s", e.Level, e.Category)
	}
	if e.Message != "user logged in" {
		t.Errorf("message = %q", e.Message)
	}
	if !e.UserID.Valid || e.UserID.Int64 != userID {
		t.Errorf("user id = %+v", e.UserID)
	}
	if e.IP != "203.0.113.7" {
		t.Errorf("ip = %q", e.IP)
	}

	if !e.Metadata.Valid {
		t.Fatal("metadata not stored")
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata.String), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["browser"] != "Firefox" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestLogEvent_NoUserNoMetadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	if err := svc.LogWarning(ctx, model.EventCategoryAuth, "failed login", nil, "203.0.113.9", nil); err != nil {
		t.Fatalf("LogWarning: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	e := events[0]
	if e.UserID.Valid {
		t.Errorf("user id set: %+v", e.UserID)
	}
	if e.Metadata.Valid {
		t.Errorf("metadata set: %+v", e.Metadata)
	}
	if e.Level != model.EventLevelWarning {
		t.Errorf("level = %q", e.Level)
	}
}
