// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package oauth implements federated sign-in against third-party
// identity providers.
package oauth

import "context"

// Profile is the subset of a provider's user profile this application
// consumes. ProviderID is the stable key a federated account is stored
// under; Email and Name default the new account's fields on first login.
type Profile struct {
	ProviderID string
	Email      string
	Name       string
	Picture    string
}

// Token holds the access token returned by the code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// Provider abstracts an OAuth2 identity provider. Implementations handle
// the consent redirect, code exchange and profile retrieval; what happens
// to the profile (lookup-or-create, session setup) is the caller's job,
// so the first-login write stays observable on its own.
type Provider interface {
	// Name returns the provider's name (e.g. "google").
	Name() string

	// AuthURL returns the full authorization URL for redirecting the user.
	AuthURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*Token, error)

	// FetchProfile fetches the authenticated user's profile.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
