// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

// CreateSyncTargetParams holds the values for CreateSyncTarget.
type CreateSyncTargetParams struct {
	Kind      string
	NotionID  string
	PostType  string
	Position  int64
	CreatedAt time.Time
}

// CreateSyncTarget adds a configured sync target.
func (q *Queries) CreateSyncTarget(ctx context.Context, arg CreateSyncTargetParams) (model.SyncTarget, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sync_targets (kind, notion_id, post_type, position, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, kind, notion_id, post_type, position, created_at`,
		arg.Kind, arg.NotionID, arg.PostType, arg.Position, arg.CreatedAt)

	var t model.SyncTarget
	err := row.Scan(&t.ID, &t.Kind, &t.NotionID, &t.PostType, &t.Position, &t.CreatedAt)
	return t, err
}

// ListSyncTargets returns all configured targets, databases before individual
// pages, each group in position order. The orchestrator consumes this order
// directly.
func (q *Queries) ListSyncTargets(ctx context.Context) ([]model.SyncTarget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, kind, notion_id, post_type, position, created_at
		FROM sync_targets
		ORDER BY CASE kind WHEN 'database' THEN 0 ELSE 1 END, position, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var targets []model.SyncTarget
	for rows.Next() {
		var t model.SyncTarget
		if err := rows.Scan(&t.ID, &t.Kind, &t.NotionID, &t.PostType, &t.Position, &t.CreatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// DeleteSyncTarget removes a configured target. Mappings and log entries for
// content already synced from it are kept.
func (q *Queries) DeleteSyncTarget(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM sync_targets WHERE id = ?", id)
	return err
}
