// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

// DefaultSyncLogWindow is the default number of recent sync log entries returned.
const DefaultSyncLogWindow = 50

// CreateSyncLogParams holds the values for CreateSyncLog.
type CreateSyncLogParams struct {
	SyncTime time.Time
	NotionID string
	PostID   int64
	Status   string
	Message  string
}

// CreateSyncLog appends one sync log entry. Entries are never updated.
func (q *Queries) CreateSyncLog(ctx context.Context, arg CreateSyncLogParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO notion_sync_log (sync_time, notion_id, post_id, status, message)
		VALUES (?, ?, ?, ?, ?)`,
		arg.SyncTime, arg.NotionID, arg.PostID, arg.Status, arg.Message)
	return err
}

// ListRecentSyncLogs returns the most recent sync log entries, newest first.
// A limit of 0 or less falls back to DefaultSyncLogWindow.
func (q *Queries) ListRecentSyncLogs(ctx context.Context, limit int64) ([]model.SyncLogEntry, error) {
	if limit <= 0 {
		limit = DefaultSyncLogWindow
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, sync_time, notion_id, post_id, status, message
		FROM notion_sync_log ORDER BY sync_time DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.SyncLogEntry
	for rows.Next() {
		var e model.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.SyncTime, &e.NotionID, &e.PostID, &e.Status, &e.Message); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
