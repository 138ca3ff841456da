// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Categories is the fixed set of recipe categories. Category values are
// compared exactly, diacritics included: "Việt" and "Viet" are distinct.
var Categories = []string{
	"Thái",
	"Mỹ",
	"Trung",
	"Mê-hi-cô",
	"Ấn Độ",
	"Tây Ban Nha",
	"Việt",
}

// IsValidCategory reports whether c is a member of the fixed category set.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Recipe represents a submitted recipe. OwnerEmail is a deliberate
// denormalization: ownership is the creator's email at submission time,
// not a foreign key to the users table.
type Recipe struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerEmail  string    `json:"owner_email"`
	Ingredients []string  `json:"ingredients"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment is a user comment on a recipe. Comments list in insertion order.
type Comment struct {
	ID         int64     `json:"id"`
	RecipeID   int64     `json:"recipe_id"`
	UserID     int64     `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
