// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/minhvu-dev/recipebook/internal/imaging"
	"github.com/minhvu-dev/recipebook/internal/store"
)

// orphanAge is how long an upload must sit unreferenced before the
// sweeper removes it. Generous enough to never race an in-flight
// submission.
const orphanAge = 24 * time.Hour

// Sweeper periodically removes uploaded photos no recipe references.
// Uploads become orphans when a submission fails after the file landed
// or a recipe is deleted.
type Sweeper struct {
	queries   *store.Queries
	uploadDir string
	cron      *cron.Cron
}

// NewSweeper creates a Sweeper over the upload directory.
func NewSweeper(db *sql.DB, uploadDir string) *Sweeper {
	return &Sweeper{
		queries:   store.New(db),
		uploadDir: uploadDir,
		cron:      cron.New(),
	}
}

// Start schedules the hourly sweep. Call Stop on shutdown.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			slog.Error("upload sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep removes files in the upload directory that are older than a day
// and not referenced by any recipe. Thumbnails follow their originals.
func (s *Sweeper) Sweep(ctx context.Context) error {
	referenced, err := s.queries.ListRecipeImages(ctx)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-orphanAge)
	var removed int

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		base := strings.TrimPrefix(name, imaging.ThumbPrefix)
		if referenced[base] {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil {
			slog.Warn("failed to remove orphaned upload", "file", name, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("removed orphaned uploads", "count", removed)
	}
	return nil
}
