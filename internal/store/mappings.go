// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

const mappingColumns = "id, notion_id, notion_type, post_id, post_type, last_synced"

func scanMapping(row interface{ Scan(...any) error }) (model.Mapping, error) {
	var m model.Mapping
	err := row.Scan(&m.ID, &m.NotionID, &m.NotionType, &m.PostID, &m.PostType, &m.LastSynced)
	return m, err
}

// GetMappingByNotionID returns the mapping for a Notion object ID.
// Returns sql.ErrNoRows when no mapping exists.
func (q *Queries) GetMappingByNotionID(ctx context.Context, notionID string) (model.Mapping, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+mappingColumns+" FROM notion_mappings WHERE notion_id = ?", notionID)
	return scanMapping(row)
}

// GetMappingByPostID returns the mapping for a local post ID.
// Returns sql.ErrNoRows when no mapping exists.
func (q *Queries) GetMappingByPostID(ctx context.Context, postID int64) (model.Mapping, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+mappingColumns+" FROM notion_mappings WHERE post_id = ?", postID)
	return scanMapping(row)
}

// UpsertMappingParams holds the values for UpsertMapping.
type UpsertMappingParams struct {
	NotionID   string
	NotionType string
	PostID     int64
	PostType   string
	LastSynced time.Time
}

// UpsertMapping inserts a mapping or, when one already exists for the Notion
// ID, updates its post ID, post type and last-synced timestamp. The single
// INSERT ... ON CONFLICT statement keeps the one-mapping-per-notion-id
// invariant atomic.
func (q *Queries) UpsertMapping(ctx context.Context, arg UpsertMappingParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO notion_mappings (notion_id, notion_type, post_id, post_type, last_synced)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(notion_id) DO UPDATE SET
			post_id = excluded.post_id,
			post_type = excluded.post_type,
			last_synced = excluded.last_synced`,
		arg.NotionID, arg.NotionType, arg.PostID, arg.PostType, arg.LastSynced)
	return err
}

// ListMappings returns all mappings, most recently synced first.
func (q *Queries) ListMappings(ctx context.Context) ([]model.Mapping, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+mappingColumns+" FROM notion_mappings ORDER BY last_synced DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
