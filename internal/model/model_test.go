// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"testing"
)

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{"Việt with diacritics", "Việt", true},
		{"Viet without diacritics", "Viet", false},
		{"Thái", "Thái", true},
		{"Ấn Độ", "Ấn Độ", true},
		{"unknown category", "Nhật", false},
		{"empty string", "", false},
		{"lowercase variant", "việt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCategory(tt.category); got != tt.want {
				t.Errorf("IsValidCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("admin role not recognized")
	}

	regular := &User{Role: RoleUser}
	if regular.IsAdmin() {
		t.Error("user role treated as admin")
	}
}

func TestUserIsFederated(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			"google account without password",
			User{GoogleID: sql.NullString{String: "g-123", Valid: true}},
			true,
		},
		{
			"local account",
			User{PasswordHash: "$argon2id$..."},
			false,
		},
		{
			"google account that later set a password",
			User{GoogleID: sql.NullString{String: "g-123", Valid: true}, PasswordHash: "$argon2id$..."},
			false,
		},
		{
			"empty account",
			User{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsFederated(); got != tt.want {
				t.Errorf("IsFederated() = %v, want %v", got, tt.want)
			}
		})
	}
}
