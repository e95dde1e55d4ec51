// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

// CreateMediaParams holds the values for CreateMedia.
type CreateMediaParams struct {
	UUID      string
	Filename  string
	MimeType  string
	Size      int64
	Width     sql.NullInt64
	Height    sql.NullInt64
	SourceURL string
	CreatedAt time.Time
}

// CreateMedia inserts a media record and returns it.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO media (uuid, filename, mime_type, size, width, height, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, uuid, filename, mime_type, size, width, height, source_url, created_at`,
		arg.UUID, arg.Filename, arg.MimeType, arg.Size, arg.Width, arg.Height,
		arg.SourceURL, arg.CreatedAt)

	var m model.Media
	err := row.Scan(&m.ID, &m.UUID, &m.Filename, &m.MimeType, &m.Size,
		&m.Width, &m.Height, &m.SourceURL, &m.CreatedAt)
	return m, err
}

// GetMediaByID returns a media record by its ID.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, uuid, filename, mime_type, size, width, height, source_url, created_at
		FROM media WHERE id = ?`, id)

	var m model.Media
	err := row.Scan(&m.ID, &m.UUID, &m.Filename, &m.MimeType, &m.Size,
		&m.Width, &m.Height, &m.SourceURL, &m.CreatedAt)
	return m, err
}
