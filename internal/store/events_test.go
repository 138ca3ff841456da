// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"testing"
)

func TestCreateEvent_ListRecent(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userID := createTestUser(t, q, "An", "an@example.com")

	for _, msg := range []string{"user signed up", "user logged in", "recipe created"} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level:     "info",
			Category:  "auth",
			Message:   msg,
			UserID:    sql.NullInt64{Int64: userID, Valid: true},
			IP:        "203.0.113.7",
			Metadata:  sql.NullString{String: `{"browser":"Firefox"}`, Valid: true},
			CreatedAt: testNow(),
		}); err != nil {
			t.Fatalf("CreateEvent(%s): %v", msg, err)
		}
	}

	events, err := q.ListRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Message != "recipe created" {
		t.Errorf("newest event = %q", events[0].Message)
	}
	if !events[0].UserID.Valid || events[0].UserID.Int64 != userID {
		t.Errorf("event user id = %+v", events[0].UserID)
	}
}

func TestCreateEvent_UserNulledOnDelete(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userID := createTestUser(t, q, "An", "an@example.com")

	e, err := q.CreateEvent(ctx, CreateEventParams{
		Level:     "warning",
		Category:  "auth",
		Message:   "failed login",
		UserID:    sql.NullInt64{Int64: userID, Valid: true},
		CreatedAt: testNow(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := DeleteUserCascade(ctx, db, userID); err != nil {
		t.Fatalf("DeleteUserCascade: %v", err)
	}

	// The audit trail outlives the account; only the reference is cleared.
	events, err := q.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	var found bool
	for _, got := range events {
		if got.ID == e.ID {
			found = true
			if got.UserID.Valid {
				t.Errorf("event user id still set after user delete: %+v", got.UserID)
			}
		}
	}
	if !found {
		t.Error("event removed together with the user")
	}
}
