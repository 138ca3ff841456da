// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testGoogle() *Google {
	return NewGoogle("client-id", "client-secret", "http://localhost:4000/auth/google/callback")
}

func TestAuthURL(t *testing.T) {
	g := testGoogle()

	raw := g.AuthURL("state-token-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}

	if u.Host != "accounts.google.com" {
		t.Errorf("host = %q", u.Host)
	}

	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-token-123" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("scope") != "openid email profile" {
		t.Errorf("scope = %q", q.Get("scope"))
	}
	if q.Get("redirect_uri") != "http://localhost:4000/auth/google/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(Token{
			AccessToken: "access-123",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}))
	defer srv.Close()

	g := testGoogle()
	g.tokenURL = srv.URL

	token, err := g.Exchange(context.Background(), "auth-code-xyz")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	if token.AccessToken != "access-123" {
		t.Errorf("access token = %q", token.AccessToken)
	}
	if gotForm.Get("code") != "auth-code-xyz" {
		t.Errorf("code = %q", gotForm.Get("code"))
	}
	if gotForm.Get("grant_type") != "authorization_code" {
		t.Errorf("grant_type = %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("client_secret") != "client-secret" {
		t.Errorf("client_secret = %q", gotForm.Get("client_secret"))
	}
}

func TestExchange_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	g := testGoogle()
	g.tokenURL = srv.URL

	_, err := g.Exchange(context.Background(), "stale-code")
	if err == nil {
		t.Fatal("expected error for non-200 token response")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("error does not carry the provider response: %v", err)
	}
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-123" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"id": "google-sub-99",
			"email": "an@gmail.com",
			"name": "An Nguyễn",
			"picture": "https://lh3.googleusercontent.com/a/pic"
		}`))
	}))
	defer srv.Close()

	g := testGoogle()
	g.profileURL = srv.URL

	profile, err := g.FetchProfile(context.Background(), "access-123")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}

	if profile.ProviderID != "google-sub-99" {
		t.Errorf("ProviderID = %q", profile.ProviderID)
	}
	if profile.Email != "an@gmail.com" || profile.Name != "An Nguyễn" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestFetchProfile_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := testGoogle()
	g.profileURL = srv.URL

	if _, err := g.FetchProfile(context.Background(), "expired"); err == nil {
		t.Fatal("expected error for non-200 profile response")
	}
}

func TestName(t *testing.T) {
	if got := testGoogle().Name(); got != "google" {
		t.Errorf("Name() = %q", got)
	}
}
