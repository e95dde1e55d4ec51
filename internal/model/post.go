// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Default post type for synced content.
const DefaultPostType = "post"

// Post represents a local CMS post. Synced posts carry the originating
// Notion page ID and its last_edited_time for change inspection.
type Post struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Body             string         `json:"body"`
	Excerpt          string         `json:"excerpt,omitempty"`
	Status           string         `json:"status"`
	PostType         string         `json:"post_type"`
	NotionID         sql.NullString `json:"notion_id,omitempty"`
	NotionLastEdited sql.NullString `json:"notion_last_edited,omitempty"`
	FeaturedMediaID  sql.NullInt64  `json:"featured_media_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}
