// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func csrfTestKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func csrfHandler(cfg CSRFConfig) (http.Handler, *int) {
	var hits int
	h := CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	return h, &hits
}

func TestCSRF_AllowsGET(t *testing.T) {
	handler, hits := csrfHandler(DefaultCSRFConfig(csrfTestKey(), false))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipe/1", nil))

	if rec.Code != http.StatusOK || *hits != 1 {
		t.Errorf("GET blocked: status %d, hits %d", rec.Code, *hits)
	}
}

func TestCSRF_AllowsSameOriginPOST(t *testing.T) {
	handler, hits := csrfHandler(DefaultCSRFConfig(csrfTestKey(), false))

	req := httptest.NewRequest(http.MethodPost, "/recipe/1/comment", strings.NewReader("comment=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || *hits != 1 {
		t.Errorf("same-origin POST blocked: status %d, hits %d", rec.Code, *hits)
	}
}

func TestCSRF_BlocksCrossSitePOST(t *testing.T) {
	handler, hits := csrfHandler(DefaultCSRFConfig(csrfTestKey(), false))

	req := httptest.NewRequest(http.MethodPost, "/recipe/1/comment", strings.NewReader("comment=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status = %d, want 403", rec.Code)
	}
	if *hits != 0 {
		t.Error("cross-site POST reached the handler")
	}
}

func TestCSRF_CustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(csrfTestKey(), false)
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler, _ := csrfHandler(cfg)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=x"))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("custom error handler not used: status %d", rec.Code)
	}
}

func TestDefaultCSRFConfig_DevTrustsLocalhost(t *testing.T) {
	cfg := DefaultCSRFConfig(csrfTestKey(), true)
	if len(cfg.TrustedOrigins) != 2 {
		t.Fatalf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}

	cfg = DefaultCSRFConfig(csrfTestKey(), false)
	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("production trusts origins: %v", cfg.TrustedOrigins)
	}
}
