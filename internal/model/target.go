// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Sync target kinds
const (
	TargetKindDatabase = "database"
	TargetKindPage     = "page"
)

// SyncTarget is a configured sync source: either a Notion database whose
// pages are synced in bulk, or a single Notion page. Targets are consumed
// read-only by the orchestrator.
type SyncTarget struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	NotionID  string    `json:"notion_id"`
	PostType  string    `json:"post_type"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// IsDatabase returns true for database targets.
func (t *SyncTarget) IsDatabase() bool {
	return t.Kind == TargetKindDatabase
}
