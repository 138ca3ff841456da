// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/minhvu-dev/recipebook/internal/imaging"
)

// MaxUploadSize is the largest accepted recipe photo (10 MB).
const MaxUploadSize = 10 << 20

// Upload errors surfaced to the submit form.
var (
	ErrNoFile          = errors.New("no image uploaded")
	ErrFileTooLarge    = errors.New("image exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// unsafeChars matches filename characters replaced during
// sanitization.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadService stores recipe photos on disk.
type UploadService struct {
	processor *imaging.Processor
	now       func() time.Time
}

// NewUploadService creates an UploadService writing into uploadDir.
func NewUploadService(uploadDir string) *UploadService {
	return &UploadService{
		processor: imaging.NewProcessor(uploadDir),
		now:       time.Now,
	}
}

// SaveImage validates and stores one uploaded photo. The stored name is
// the upload's unix-millisecond timestamp joined to the sanitized
// original filename, which keeps names unique and collision-free.
// Returns the stored filename for the recipe row.
func (s *UploadService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", ErrNoFile
	}
	if header.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}

	// Sniff the real content type; the client-reported header is not
	// trusted
	sniff := make([]byte, 512)
	n, err := file.Read(sniff)
	if err != nil && n == 0 {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if !s.processor.IsSupportedType(s.processor.DetectMimeType(sniff[:n])) {
		return "", ErrUnsupportedType
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("rewinding upload: %w", err)
	}

	name := s.storedName(header.Filename)
	if _, err := s.processor.Process(file, name); err != nil {
		return "", fmt.Errorf("processing upload: %w", err)
	}

	return name, nil
}

// Remove deletes a stored photo and its thumbnail. Used to clean up
// when the recipe row cannot be written after the file already landed.
func (s *UploadService) Remove(filename string) error {
	return s.processor.Remove(filename)
}

// storedName builds the on-disk filename from the original one.
func (s *UploadService) storedName(original string) string {
	base := filepath.Base(original)
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image.jpg"
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + base
}
