// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/oauth"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// IdentityService resolves federated sign-in profiles to local accounts.
type IdentityService struct {
	queries *store.Queries
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(db *sql.DB) *IdentityService {
	return &IdentityService{
		queries: store.New(db),
	}
}

// LookupOrCreate maps a provider profile to a user. An existing account
// with the provider id wins; otherwise a new account is created with the
// profile's email and name. Returns the user and whether it was created.
func (s *IdentityService) LookupOrCreate(ctx context.Context, profile oauth.Profile) (model.User, bool, error) {
	user, err := s.queries.GetUserByGoogleID(ctx, profile.ProviderID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, fmt.Errorf("looking up federated user: %w", err)
	}

	now := time.Now()
	user, err = s.queries.CreateFederatedUser(ctx, store.CreateFederatedUserParams{
		Name:      profile.Name,
		Email:     profile.Email,
		GoogleID:  profile.ProviderID,
		Picture:   profile.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// A local account may already hold this email address
		if store.IsUniqueViolation(err) {
			return model.User{}, false, ErrEmailTaken
		}
		return model.User{}, false, fmt.Errorf("creating federated user: %w", err)
	}

	return user, true, nil
}

// ErrEmailTaken is returned when a federated profile's email collides
// with an existing local account.
var ErrEmailTaken = errors.New("email already registered")
