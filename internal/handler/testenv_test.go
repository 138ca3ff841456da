// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/minhvu-dev/recipebook/internal/auth"
	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/model"
	"github.com/minhvu-dev/recipebook/internal/oauth"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/store"
	"github.com/minhvu-dev/recipebook/internal/testutil"
	"github.com/minhvu-dev/recipebook/web"
)

// fakeProvider is a canned oauth.Provider for federated sign-in tests.
type fakeProvider struct {
	profile oauth.Profile
	failAt  string // "exchange" or "profile"
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthURL(state string) string {
	return "https://provider.example/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth.Token, error) {
	if p.failAt == "exchange" {
		return nil, errors.New("exchange refused")
	}
	return &oauth.Token{AccessToken: "access-" + code}, nil
}

func (p *fakeProvider) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	if p.failAt == "profile" {
		return nil, errors.New("profile refused")
	}
	profile := p.profile
	return &profile, nil
}

// testEnv wires the full router the way the binary does, minus the
// outer CSRF and security layers.
type testEnv struct {
	t        *testing.T
	queries  *store.Queries
	sm       *scs.SessionManager
	router   chi.Router
	uploads  string
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := scs.New()
	sm.Lifetime = time.Hour

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("locating templates: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("initializing renderer: %v", err)
	}

	uploadsDir := t.TempDir()
	uploads := service.NewUploadService(uploadsDir)
	provider := &fakeProvider{
		profile: oauth.Profile{
			ProviderID: "google-sub-1",
			Email:      "gg@gmail.com",
			Name:       "Người Dùng Google",
		},
	}

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 100,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	frontendHandler := NewFrontendHandler(db, renderer, sm)
	recipeHandler := NewRecipeHandler(db, renderer, sm, uploads)
	authHandler := NewAuthHandler(db, renderer, sm, lp, provider, true)
	profileHandler := NewProfileHandler(db, renderer, sm)
	adminHandler := NewAdminHandler(db, renderer, sm)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get(RouteRoot, frontendHandler.Home)
	r.Get(RouteCategories, frontendHandler.Categories)
	r.Get(RouteCategoryByID, frontendHandler.Category)
	r.Post(RouteSearch, frontendHandler.Search)
	r.Get(RouteExploreLatest, frontendHandler.ExploreLatest)
	r.Get(RouteExploreRandom, frontendHandler.ExploreRandom)

	r.Get(RouteSignup, authHandler.SignupForm)
	r.Post(RouteSignup, authHandler.Signup)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Get(RouteLogout, authHandler.Logout)
	r.Get(RouteAuthGoogle, authHandler.GoogleStart)
	r.Get(RouteAuthGoogleCallback, authHandler.GoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sm))

		r.Get(RouteRecipe, frontendHandler.Recipe)
		r.Get(RouteSubmitRecipe, recipeHandler.SubmitForm)
		r.Post(RouteSubmitRecipe, recipeHandler.Submit)
		r.Get(RouteRecipeEdit, recipeHandler.EditForm)
		r.Post(RouteRecipeEdit, recipeHandler.Edit)
		r.Get(RouteRecipeDelete, recipeHandler.Delete)
		r.Post(RouteRecipeComment, recipeHandler.AddComment)
		r.Get(RouteRecipeFavorite, recipeHandler.Favorite)
		r.Get(RouteRecipeUnfavorite, recipeHandler.Unfavorite)
		r.Get(RouteFavorites, recipeHandler.Favorites)

		r.Get(RouteProfile, profileHandler.Profile)
		r.Get(RouteEditProfile, profileHandler.EditProfileForm)
		r.Post(RouteEditProfile, profileHandler.EditProfile)
		r.Get(RouteChangePassword, profileHandler.ChangePasswordForm)
		r.Post(RouteChangePassword, profileHandler.ChangePassword)
		r.Get(RouteMyRecipes, profileHandler.MyRecipes)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(sm))

		r.Get(RouteAdminDashboard, adminHandler.Dashboard)
		r.Post(RouteAdminUserUpdate, adminHandler.UpdateUser)
		r.Get(RouteAdminUserDelete, adminHandler.DeleteUser)
		r.Get(RouteCommentDelete, recipeHandler.DeleteComment)
	})

	return &testEnv{
		t:        t,
		queries:  store.New(db),
		sm:       sm,
		router:   r,
		uploads:  uploadsDir,
		provider: provider,
	}
}

// createUser inserts a local account with the given role and password.
func (e *testEnv) createUser(name, email, password, role string) model.User {
	e.t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		e.t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now()
	user, err := e.queries.CreateUser(context.Background(), store.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		e.t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// createRecipe inserts a recipe owned by the given email.
func (e *testEnv) createRecipe(name, ownerEmail, category string) model.Recipe {
	e.t.Helper()

	now := time.Now()
	recipe, err := e.queries.CreateRecipe(context.Background(), store.CreateRecipeParams{
		Name:        name,
		Description: "Mô tả cho " + name,
		OwnerEmail:  ownerEmail,
		Ingredients: []string{"nguyên liệu"},
		Category:    category,
		Image:       "1700000000000-test.jpg",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		e.t.Fatalf("CreateRecipe: %v", err)
	}
	return recipe
}

// login posts the login form and returns the resulting session cookies.
func (e *testEnv) login(email, password string) []*http.Cookie {
	e.t.Helper()

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, RouteLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteRoot {
		e.t.Fatalf("login failed: status %d, location %q", rec.Code, rec.Header().Get("Location"))
	}
	return rec.Result().Cookies()
}

// sessionFor mints a session for the given user id without going
// through the login form.
func (e *testEnv) sessionFor(userID int64) []*http.Cookie {
	e.t.Helper()

	h := e.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.sm.Put(r.Context(), middleware.SessionKeyUserID, userID)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Result().Cookies()
}

// get performs a GET through the router.
func (e *testEnv) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// postForm performs a form POST through the router.
func (e *testEnv) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// popFlash reads and clears the pending flash message for the session.
func (e *testEnv) popFlash(cookies []*http.Cookie) (message, flashType string) {
	e.t.Helper()

	h := e.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		message = e.sm.PopString(r.Context(), middleware.SessionKeyFlash)
		flashType = e.sm.PopString(r.Context(), middleware.SessionKeyFlashType)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return message, flashType
}

// mergeCookies layers fresh cookies over the existing session cookies.
func mergeCookies(old, fresh []*http.Cookie) []*http.Cookie {
	byName := make(map[string]*http.Cookie)
	for _, c := range old {
		byName[c.Name] = c
	}
	for _, c := range fresh {
		byName[c.Name] = c
	}
	var out []*http.Cookie
	for _, c := range byName {
		out = append(out, c)
	}
	return out
}

// recipeForm builds a multipart submission with an attached JPEG.
func recipeForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if withImage {
		part, err := mw.CreateFormFile("image", "mon-an.jpg")
		if err != nil {
			t.Fatalf("creating image part: %v", err)
		}
		img := image.NewRGBA(image.Rect(0, 0, 320, 240))
		for y := 0; y < 240; y++ {
			for x := 0; x < 320; x++ {
				img.Set(x, y, color.RGBA{R: 220, G: 120, B: 60, A: 255})
			}
		}
		if err := jpeg.Encode(part, img, &jpeg.Options{Quality: 85}); err != nil {
			t.Fatalf("encoding image: %v", err)
		}
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

// postMultipart performs a multipart POST through the router.
func (e *testEnv) postMultipart(path string, body *bytes.Buffer, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// wantRedirect asserts a 303 to the given location.
func wantRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}
