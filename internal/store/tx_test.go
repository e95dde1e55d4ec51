// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/testutil"
)

// setupMappingsTable creates the notion_mappings table on an in-memory
// database, without running the full migration set.
func setupMappingsTable(t *testing.T) *sql.DB {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	t.Cleanup(func() { _ = db.Close() })

	_, err := db.Exec(`
		CREATE TABLE notion_mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			notion_id TEXT NOT NULL UNIQUE,
			notion_type TEXT NOT NULL,
			post_id INTEGER NOT NULL,
			post_type TEXT NOT NULL,
			last_synced DATETIME NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func TestWithTxCommitsMapping(t *testing.T) {
	db := setupMappingsTable(t)
	ctx := context.Background()
	queries := store.New(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	err = queries.WithTx(tx).UpsertMapping(ctx, store.UpsertMappingParams{
		NotionID:   "19a52b5682188049b6c5da694d56c5bf",
		NotionType: "page",
		PostID:     7,
		PostType:   "post",
		LastSynced: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertMapping: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	mapping, err := queries.GetMappingByNotionID(ctx, "19a52b5682188049b6c5da694d56c5bf")
	if err != nil {
		t.Fatalf("GetMappingByNotionID: %v", err)
	}
	if mapping.PostID != 7 {
		t.Errorf("PostID = %d, want 7", mapping.PostID)
	}
}

func TestWithTxRollbackDiscardsMapping(t *testing.T) {
	db := setupMappingsTable(t)
	ctx := context.Background()
	queries := store.New(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	err = queries.WithTx(tx).UpsertMapping(ctx, store.UpsertMappingParams{
		NotionID:   "29a52b5682188049b6c5da694d56c5bf",
		NotionType: "page",
		PostID:     9,
		PostType:   "post",
		LastSynced: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertMapping: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	_, err = queries.GetMappingByNotionID(ctx, "29a52b5682188049b6c5da694d56c5bf")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetMappingByNotionID error = %v, want sql.ErrNoRows", err)
	}
}
