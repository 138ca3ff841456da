// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/minhvu-dev/recipebook/internal/auth"
)

func TestSeed_Disabled(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db, false); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	n, err := New(db).CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("disabled seed created %d users", n)
	}
}

func TestSeed_CreatesAdminOnce(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	if err := Seed(ctx, db, true); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, db, true); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	n, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Fatalf("seed ran twice and created %d users, want 1", n)
	}

	admin, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("seeded user role = %q", admin.Role)
	}

	ok, err := auth.CheckPassword(DefaultAdminPassword, admin.PasswordHash)
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if !ok {
		t.Error("seeded admin password does not verify")
	}
}
