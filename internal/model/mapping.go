// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Notion object types stored in a mapping.
const (
	NotionTypePage     = "page"
	NotionTypeDatabase = "database"
)

// Sync statuses recorded in the sync log.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// Mapping links one Notion object to one local post. The notion_id column
// carries a UNIQUE constraint, so an object maps to at most one post.
type Mapping struct {
	ID         int64     `json:"id"`
	NotionID   string    `json:"notion_id"`
	NotionType string    `json:"notion_type"`
	PostID     int64     `json:"post_id"`
	PostType   string    `json:"post_type"`
	LastSynced time.Time `json:"last_synced"`
}

// SyncLogEntry is one append-only record of a sync attempt. PostID is 0 when
// the attempt produced no post.
type SyncLogEntry struct {
	ID       int64     `json:"id"`
	SyncTime time.Time `json:"sync_time"`
	NotionID string    `json:"notion_id"`
	PostID   int64     `json:"post_id"`
	Status   string    `json:"status"`
	Message  string    `json:"message"`
}

// IsSuccess returns true if the entry records a successful sync.
func (e *SyncLogEntry) IsSuccess() bool {
	return e.Status == SyncStatusSuccess
}
