// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

const postColumns = `id, title, slug, body, excerpt, status, post_type,
	notion_id, notion_last_edited, featured_media_id, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Status, &p.PostType,
		&p.NotionID, &p.NotionLastEdited, &p.FeaturedMediaID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePostParams holds the values for CreatePost.
type CreatePostParams struct {
	Title            string
	Slug             string
	Body             string
	Excerpt          string
	Status           string
	PostType         string
	NotionID         sql.NullString
	NotionLastEdited sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreatePost inserts a new post and returns it.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, body, excerpt, status, post_type,
			notion_id, notion_last_edited, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+postColumns,
		arg.Title, arg.Slug, arg.Body, arg.Excerpt, arg.Status, arg.PostType,
		arg.NotionID, arg.NotionLastEdited, arg.CreatedAt, arg.UpdatedAt)
	return scanPost(row)
}

// UpdatePostParams holds the values for UpdatePost.
type UpdatePostParams struct {
	Title            string
	Body             string
	Excerpt          string
	NotionLastEdited sql.NullString
	UpdatedAt        time.Time
	ID               int64
}

// UpdatePost updates a post's synced fields and returns the updated row.
// Slug, status and post type are left untouched so local edits survive a re-sync.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE posts SET title = ?, body = ?, excerpt = ?, notion_last_edited = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+postColumns,
		arg.Title, arg.Body, arg.Excerpt, arg.NotionLastEdited, arg.UpdatedAt, arg.ID)
	return scanPost(row)
}

// GetPostByID returns a post by its ID. Returns sql.ErrNoRows when absent.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	return scanPost(row)
}

// GetPostBySlug returns a post by its slug. Returns sql.ErrNoRows when absent.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE slug = ?", slug)
	return scanPost(row)
}

// SetPostFeaturedMediaParams holds the values for SetPostFeaturedMedia.
type SetPostFeaturedMediaParams struct {
	FeaturedMediaID sql.NullInt64
	UpdatedAt       time.Time
	ID              int64
}

// SetPostFeaturedMedia attaches (or replaces) a post's featured image.
func (q *Queries) SetPostFeaturedMedia(ctx context.Context, arg SetPostFeaturedMediaParams) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE posts SET featured_media_id = ?, updated_at = ? WHERE id = ?",
		arg.FeaturedMediaID, arg.UpdatedAt, arg.ID)
	return err
}
