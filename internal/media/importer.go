// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/store"
)

const (
	// downloadTimeout bounds one featured image download.
	downloadTimeout = 30 * time.Second
	// maxDownloadSize caps a single download at 20 MB.
	maxDownloadSize = 20 << 20
)

// Importer downloads remote images into the local media library and
// attaches them to posts as featured images. Failures here are best
// effort for callers: a failed import never fails the surrounding sync.
type Importer struct {
	queries   *store.Queries
	processor *Processor
	client    *http.Client
	logger    *slog.Logger
}

// NewImporter creates a media importer saving files under uploadDir.
func NewImporter(db *sql.DB, uploadDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		queries:   store.New(db),
		processor: NewProcessor(uploadDir),
		client:    &http.Client{Timeout: downloadTimeout},
		logger:    logger,
	}
}

// ImportFeaturedImage downloads the image at sourceURL, stores it in the
// media library and sets it as the post's featured image.
func (i *Importer) ImportFeaturedImage(ctx context.Context, postID int64, sourceURL string) (model.Media, error) {
	data, err := i.download(ctx, sourceURL)
	if err != nil {
		return model.Media{}, fmt.Errorf("downloading image: %w", err)
	}

	id := uuid.New().String()
	filename := filenameFromURL(sourceURL)

	result, err := i.processor.Process(data, id, filename)
	if err != nil {
		return model.Media{}, fmt.Errorf("processing image: %w", err)
	}

	m, err := i.queries.CreateMedia(ctx, store.CreateMediaParams{
		UUID:      id,
		Filename:  filename,
		MimeType:  result.MimeType,
		Size:      result.Size,
		Width:     sql.NullInt64{Int64: int64(result.Width), Valid: true},
		Height:    sql.NullInt64{Int64: int64(result.Height), Valid: true},
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return model.Media{}, fmt.Errorf("saving media record: %w", err)
	}

	err = i.queries.SetPostFeaturedMedia(ctx, store.SetPostFeaturedMediaParams{
		FeaturedMediaID: sql.NullInt64{Int64: m.ID, Valid: true},
		UpdatedAt:       time.Now(),
		ID:              postID,
	})
	if err != nil {
		return model.Media{}, fmt.Errorf("attaching featured image: %w", err)
	}

	i.logger.Info("imported featured image",
		"post_id", postID, "media_id", m.ID, "file", result.FilePath)
	return m, nil
}

// download fetches the URL body, enforcing the size cap.
func (i *Importer) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("image exceeds %d byte limit", maxDownloadSize)
	}
	return data, nil
}

// filenameFromURL derives a safe local filename from a source URL.
// Notion-hosted file URLs carry the original filename in the path.
func filenameFromURL(sourceURL string) string {
	name := "image"
	if u, err := url.Parse(sourceURL); err == nil {
		if base := filepath.Base(u.Path); base != "." && base != "/" && base != "" {
			name = base
		}
	}

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	name = replacer.Replace(name)

	if filepath.Ext(name) == "" {
		name += ".img"
	}
	return name
}
