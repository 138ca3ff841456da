// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"
)

func TestAddFavorite_Idempotent(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userID := createTestUser(t, q, "An", "an@example.com")
	recipeID := createTestRecipe(t, q, "Phở Bò", "an@example.com", "Việt")

	added, err := q.AddFavorite(ctx, AddFavoriteParams{UserID: userID, RecipeID: recipeID, CreatedAt: testNow()})
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if !added {
		t.Error("first add reported as duplicate")
	}

	added, err = q.AddFavorite(ctx, AddFavoriteParams{UserID: userID, RecipeID: recipeID, CreatedAt: testNow()})
	if err != nil {
		t.Fatalf("second AddFavorite: %v", err)
	}
	if added {
		t.Error("second add reported as new")
	}

	n, err := q.CountFavorites(ctx, userID)
	if err != nil {
		t.Fatalf("CountFavorites: %v", err)
	}
	if n != 1 {
		t.Errorf("favorites count = %d after double add, want 1", n)
	}
}

func TestListFavoriteRecipes_InsertionOrder(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userID := createTestUser(t, q, "An", "an@example.com")
	first := createTestRecipe(t, q, "Một", "an@example.com", "Việt")
	second := createTestRecipe(t, q, "Hai", "an@example.com", "Thái")
	third := createTestRecipe(t, q, "Ba", "an@example.com", "Mỹ")

	// Add out of id order; listing must follow add order, not id order.
	for _, id := range []int64{second, first, third} {
		if _, err := q.AddFavorite(ctx, AddFavoriteParams{UserID: userID, RecipeID: id, CreatedAt: testNow()}); err != nil {
			t.Fatalf("AddFavorite(%d): %v", id, err)
		}
	}

	favs, err := q.ListFavoriteRecipes(ctx, userID)
	if err != nil {
		t.Fatalf("ListFavoriteRecipes: %v", err)
	}
	if len(favs) != 3 {
		t.Fatalf("got %d favorites, want 3", len(favs))
	}
	if favs[0].ID != second || favs[1].ID != first || favs[2].ID != third {
		t.Errorf("favorites order = [%d %d %d], want [%d %d %d]",
			favs[0].ID, favs[1].ID, favs[2].ID, second, first, third)
	}
}

func TestRemoveFavorite(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userID := createTestUser(t, q, "An", "an@example.com")
	recipeID := createTestRecipe(t, q, "Phở Bò", "an@example.com", "Việt")

	if _, err := q.AddFavorite(ctx, AddFavoriteParams{UserID: userID, RecipeID: recipeID, CreatedAt: testNow()}); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	if err := q.RemoveFavorite(ctx, RemoveFavoriteParams{UserID: userID, RecipeID: recipeID}); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}

	fav, err := q.IsFavorite(ctx, IsFavoriteParams{UserID: userID, RecipeID: recipeID})
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if fav {
		t.Error("favorite still present after removal")
	}

	// Removing an absent pair is a silent no-op.
	if err := q.RemoveFavorite(ctx, RemoveFavoriteParams{UserID: userID, RecipeID: recipeID}); err != nil {
		t.Errorf("removing absent favorite: %v", err)
	}
}

func TestAddFavorite_SeparatePerUser(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	userA := createTestUser(t, q, "An", "an@example.com")
	userB := createTestUser(t, q, "Bình", "binh@example.com")
	recipeID := createTestRecipe(t, q, "Phở Bò", "an@example.com", "Việt")

	for _, uid := range []int64{userA, userB} {
		if _, err := q.AddFavorite(ctx, AddFavoriteParams{UserID: uid, RecipeID: recipeID, CreatedAt: testNow()}); err != nil {
			t.Fatalf("AddFavorite(user %d): %v", uid, err)
		}
	}

	if err := q.RemoveFavorite(ctx, RemoveFavoriteParams{UserID: userA, RecipeID: recipeID}); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}

	fav, err := q.IsFavorite(ctx, IsFavoriteParams{UserID: userB, RecipeID: recipeID})
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if !fav {
		t.Error("removing one user's favorite affected another user")
	}
}
