// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"golang.org/x/text/unicode/norm"
)

// DBTX is the minimal database interface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes all database operations. Methods return sql.ErrNoRows
// when a requested record does not exist.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// nfc normalizes free text to Unicode NFC before it is stored or matched.
// Vietnamese input arrives in both composed and combining-mark spellings;
// normalizing both sides keeps matching diacritic-sensitive without being
// encoding-sensitive.
func nfc(s string) string {
	return norm.NFC.String(s)
}
