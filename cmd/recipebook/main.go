// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Command recipebook runs the recipe sharing site.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/minhvu-dev/recipebook/internal/config"
	"github.com/minhvu-dev/recipebook/internal/handler"
	"github.com/minhvu-dev/recipebook/internal/logging"
	"github.com/minhvu-dev/recipebook/internal/middleware"
	"github.com/minhvu-dev/recipebook/internal/oauth"
	"github.com/minhvu-dev/recipebook/internal/render"
	"github.com/minhvu-dev/recipebook/internal/service"
	"github.com/minhvu-dev/recipebook/internal/session"
	"github.com/minhvu-dev/recipebook/internal/store"
	"github.com/minhvu-dev/recipebook/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and upload directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade the logger so WARN and ERROR records also land in the
	// events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("locating templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	var provider oauth.Provider
	if cfg.GoogleEnabled() {
		provider = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		slog.Info("google sign-in enabled")
	} else {
		slog.Info("google sign-in disabled, credentials not configured")
	}

	uploads := service.NewUploadService(cfg.UploadsDir)

	sweeper := service.NewSweeper(db, cfg.UploadsDir)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("starting upload sweeper: %w", err)
	}
	defer sweeper.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	frontendHandler := handler.NewFrontendHandler(db, renderer, sessionManager)
	recipeHandler := handler.NewRecipeHandler(db, renderer, sessionManager, uploads)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection, provider, cfg.IsDevelopment())
	profileHandler := handler.NewProfileHandler(db, renderer, sessionManager)
	adminHandler := handler.NewAdminHandler(db, renderer, sessionManager)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	// Public browsing
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteCategories, frontendHandler.Categories)
		r.Get(handler.RouteCategoryByID, frontendHandler.Category)
		r.Post(handler.RouteSearch, frontendHandler.Search)
		r.Get(handler.RouteExploreLatest, frontendHandler.ExploreLatest)
		r.Get(handler.RouteExploreRandom, frontendHandler.ExploreRandom)
	})

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Get(handler.RouteSignup, authHandler.SignupForm)
		r.Post(handler.RouteSignup, authHandler.Signup)
		r.With(loginProtection.Middleware()).Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Get(handler.RouteAuthGoogle, authHandler.GoogleStart)
		r.Get(handler.RouteAuthGoogleCallback, authHandler.GoogleCallback)
	})

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAuth(sessionManager))

		r.Get(handler.RouteRecipe, frontendHandler.Recipe)
		r.Get(handler.RouteSubmitRecipe, recipeHandler.SubmitForm)
		r.Post(handler.RouteSubmitRecipe, recipeHandler.Submit)
		r.Get(handler.RouteRecipeEdit, recipeHandler.EditForm)
		r.Post(handler.RouteRecipeEdit, recipeHandler.Edit)
		r.Get(handler.RouteRecipeDelete, recipeHandler.Delete)
		r.Post(handler.RouteRecipeComment, recipeHandler.AddComment)
		r.Get(handler.RouteRecipeFavorite, recipeHandler.Favorite)
		r.Get(handler.RouteRecipeUnfavorite, recipeHandler.Unfavorite)
		r.Get(handler.RouteFavorites, recipeHandler.Favorites)

		r.Get(handler.RouteProfile, profileHandler.Profile)
		r.Get(handler.RouteEditProfile, profileHandler.EditProfileForm)
		r.Post(handler.RouteEditProfile, profileHandler.EditProfile)
		r.Get(handler.RouteChangePassword, profileHandler.ChangePasswordForm)
		r.Post(handler.RouteChangePassword, profileHandler.ChangePassword)
		r.Get(handler.RouteMyRecipes, profileHandler.MyRecipes)
	})

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAdmin(sessionManager))

		r.Get(handler.RouteAdminDashboard, adminHandler.Dashboard)
		r.Post(handler.RouteAdminUserUpdate, adminHandler.UpdateUser)
		r.Get(handler.RouteAdminUserDelete, adminHandler.DeleteUser)
		r.Get(handler.RouteCommentDelete, recipeHandler.DeleteComment)
	})

	// Static assets and uploaded images
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("locating static assets: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
