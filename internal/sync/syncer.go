// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sync drives the end-to-end Notion content synchronization: fetch
// a page and its block tree, render it to HTML, create or update the local
// post and record the outcome in the mapping table and sync log.
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	gosync "sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/notionsync-go/internal/convert"
	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/notion"
	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/util"
)

// ErrSyncInFlight is returned when a sync is requested while another one
// is still running. At most one sync runs at a time.
var ErrSyncInFlight = errors.New("a sync is already in flight")

// NotionAPI is the client surface the syncer consumes.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, id string, filter json.RawMessage) ([]notion.Page, error)
	GetPage(ctx context.Context, id string) (*notion.Page, error)
	GetPageContent(ctx context.Context, id string) ([]notion.Block, error)
}

// MediaImporter downloads a remote image and attaches it to a post.
type MediaImporter interface {
	ImportFeaturedImage(ctx context.Context, postID int64, sourceURL string) (model.Media, error)
}

// Syncer orchestrates page, database and full-target syncs. Every attempt
// is recorded in the sync log; failures abort only the page they occurred
// on and are never propagated as errors past the syncer boundary.
type Syncer struct {
	api       NotionAPI
	db        *sql.DB
	queries   *store.Queries
	importer  MediaImporter
	logger    *slog.Logger
	sanitizer *bluemonday.Policy

	mu gosync.Mutex
}

// New creates a syncer. importer may be nil, disabling featured image import.
func New(api NotionAPI, db *sql.DB, importer MediaImporter, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		api:       api,
		db:        db,
		queries:   store.New(db),
		importer:  importer,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// SyncPage syncs a single Notion page into a local post of the given type.
// Returns the success flag, or ErrSyncInFlight when another sync is running.
func (s *Syncer) SyncPage(ctx context.Context, rawID, postType string) (bool, error) {
	if !s.mu.TryLock() {
		return false, ErrSyncInFlight
	}
	defer s.mu.Unlock()
	return s.syncPage(ctx, rawID, postType), nil
}

// SyncDatabase syncs every page of a Notion database. Returns true only if
// all pages synced, or ErrSyncInFlight when another sync is running.
func (s *Syncer) SyncDatabase(ctx context.Context, rawID, postType string) (bool, error) {
	if !s.mu.TryLock() {
		return false, ErrSyncInFlight
	}
	defer s.mu.Unlock()
	return s.syncDatabase(ctx, rawID, postType), nil
}

// SyncAll syncs every configured target, databases before individual pages.
// Each target is attempted independently; the result is the logical AND of
// the per-target results. Returns ErrSyncInFlight when another sync is running.
func (s *Syncer) SyncAll(ctx context.Context) (bool, error) {
	if !s.mu.TryLock() {
		return false, ErrSyncInFlight
	}
	defer s.mu.Unlock()

	targets, err := s.queries.ListSyncTargets(ctx)
	if err != nil {
		s.logger.Error("listing sync targets", "error", err)
		return false, nil
	}

	ok := true
	for _, target := range targets {
		if target.IsDatabase() {
			ok = s.syncDatabase(ctx, target.NotionID, target.PostType) && ok
		} else {
			ok = s.syncPage(ctx, target.NotionID, target.PostType) && ok
		}
	}

	s.recordRunOutcome(ctx, ok)
	return ok, nil
}

// Running reports whether a sync is currently in flight.
func (s *Syncer) Running() bool {
	if s.mu.TryLock() {
		s.mu.Unlock()
		return false
	}
	return true
}

// syncPage performs one page sync. Any failure is converted into an error
// log entry and a false return.
func (s *Syncer) syncPage(ctx context.Context, rawID, postType string) bool {
	id, err := notion.NormalizeID(rawID)
	if err != nil {
		s.logFailure(ctx, rawID, 0, fmt.Sprintf("invalid page id: %v", err))
		return false
	}
	if postType == "" {
		postType = model.DefaultPostType
	}

	page, err := s.api.GetPage(ctx, id)
	if err != nil {
		s.logFailure(ctx, id, 0, fmt.Sprintf("fetching page: %v", err))
		return false
	}

	blocks, err := s.api.GetPageContent(ctx, id)
	if err != nil {
		s.logFailure(ctx, id, 0, fmt.Sprintf("fetching page content: %v", err))
		return false
	}

	title := extractTitle(page, id)
	body := convert.Render(blocks)
	excerpt := s.extractExcerpt(page)
	lastEdited := util.NullStringFromValue(page.LastEditedTime)
	now := time.Now()

	var post model.Post
	mapping, err := s.queries.GetMappingByNotionID(ctx, id)
	switch {
	case err == nil:
		post, err = s.queries.UpdatePost(ctx, store.UpdatePostParams{
			Title:            title,
			Body:             body,
			Excerpt:          excerpt,
			NotionLastEdited: lastEdited,
			UpdatedAt:        now,
			ID:               mapping.PostID,
		})
		if err != nil {
			s.logFailure(ctx, id, mapping.PostID, fmt.Sprintf("updating post: %v", err))
			return false
		}
	case errors.Is(err, sql.ErrNoRows):
		post, err = s.queries.CreatePost(ctx, store.CreatePostParams{
			Title:            title,
			Slug:             s.uniqueSlug(ctx, title, id),
			Body:             body,
			Excerpt:          excerpt,
			Status:           model.PostStatusDraft,
			PostType:         postType,
			NotionID:         util.NullStringFromValue(id),
			NotionLastEdited: lastEdited,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			s.logFailure(ctx, id, 0, fmt.Sprintf("creating post: %v", err))
			return false
		}
	default:
		s.logFailure(ctx, id, 0, fmt.Sprintf("looking up mapping: %v", err))
		return false
	}

	// Best effort: a failed image import never fails the page sync.
	s.importFeaturedImage(ctx, page, post.ID)

	if err := s.queries.UpsertMapping(ctx, store.UpsertMappingParams{
		NotionID:   id,
		NotionType: model.NotionTypePage,
		PostID:     post.ID,
		PostType:   postType,
		LastSynced: now,
	}); err != nil {
		s.logFailure(ctx, id, post.ID, fmt.Sprintf("saving mapping: %v", err))
		return false
	}

	message := fmt.Sprintf("synced %q", title)
	if post.IsDraft() {
		message += " (draft)"
	}
	s.logSuccess(ctx, id, post.ID, message)
	return true
}

// syncDatabase queries all pages of a database and syncs each one. A query
// returning zero pages is treated as a failed fetch.
func (s *Syncer) syncDatabase(ctx context.Context, rawID, postType string) bool {
	id, err := notion.NormalizeID(rawID)
	if err != nil {
		s.logFailure(ctx, rawID, 0, fmt.Sprintf("invalid database id: %v", err))
		return false
	}

	pages, err := s.api.QueryDatabase(ctx, id, nil)
	if err != nil {
		s.logFailure(ctx, id, 0, fmt.Sprintf("querying database: %v", err))
		return false
	}
	if len(pages) == 0 {
		s.logFailure(ctx, id, 0, "failed to fetch database pages: empty result")
		return false
	}

	ok := true
	for _, page := range pages {
		ok = s.syncPage(ctx, page.ID, postType) && ok
	}
	return ok
}

func (s *Syncer) importFeaturedImage(ctx context.Context, page *notion.Page, postID int64) {
	if s.importer == nil {
		return
	}
	prop, found := page.Properties["featured_image"]
	if !found || len(prop.Files) == 0 {
		return
	}

	file := prop.Files[0]
	sourceURL := ""
	switch {
	case file.External != nil:
		sourceURL = file.External.URL
	case file.File != nil:
		sourceURL = file.File.URL
	}
	if sourceURL == "" {
		return
	}

	if _, err := s.importer.ImportFeaturedImage(ctx, postID, sourceURL); err != nil {
		s.logger.Warn("featured image import failed",
			"post_id", postID, "url", sourceURL, "error", err)
	}
}

// uniqueSlug derives a slug from the title, falling back to the Notion ID
// prefix, and suffixes the ID prefix on collision with an existing post.
func (s *Syncer) uniqueSlug(ctx context.Context, title, notionID string) string {
	slug := util.Slugify(title)
	if slug == "" {
		return "notion-" + notionID[:8]
	}
	if _, err := s.queries.GetPostBySlug(ctx, slug); errors.Is(err, sql.ErrNoRows) {
		return slug
	}
	return slug + "-" + notionID[:8]
}

// extractExcerpt pulls the optional excerpt property and strips any markup.
func (s *Syncer) extractExcerpt(page *notion.Page) string {
	prop, found := page.Properties["excerpt"]
	if !found || len(prop.RichText) == 0 {
		return ""
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(notion.PlainText(prop.RichText)))
}

// extractTitle resolves the post title: a property literally named "title",
// else one named "Name", else any title-typed property, else a fallback
// derived from the ID prefix.
func extractTitle(page *notion.Page, id string) string {
	if prop, found := page.Properties["title"]; found && len(prop.Title) > 0 {
		return notion.PlainText(prop.Title)
	}
	if prop, found := page.Properties["Name"]; found && len(prop.Title) > 0 {
		return notion.PlainText(prop.Title)
	}
	for _, prop := range page.Properties {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return notion.PlainText(prop.Title)
		}
	}
	return "Notion Page " + id[:8]
}

func (s *Syncer) logSuccess(ctx context.Context, notionID string, postID int64, message string) {
	s.appendLog(ctx, notionID, postID, model.SyncStatusSuccess, message)
	s.logger.Info("sync succeeded", "notion_id", notionID, "post_id", postID)
}

func (s *Syncer) logFailure(ctx context.Context, notionID string, postID int64, message string) {
	s.appendLog(ctx, notionID, postID, model.SyncStatusError, message)
	s.logger.Error("sync failed", "notion_id", notionID, "post_id", postID, "reason", message)
}

func (s *Syncer) appendLog(ctx context.Context, notionID string, postID int64, status, message string) {
	err := s.queries.CreateSyncLog(ctx, store.CreateSyncLogParams{
		SyncTime: time.Now(),
		NotionID: notionID,
		PostID:   postID,
		Status:   status,
		Message:  message,
	})
	if err != nil {
		s.logger.Error("writing sync log entry", "notion_id", notionID, "error", err)
	}
}

// recordRunOutcome persists the last-run settings after a full sync. Both
// keys are written in one transaction so a status read never sees a fresh
// timestamp next to a stale error.
func (s *Syncer) recordRunOutcome(ctx context.Context, ok bool) {
	now := time.Now()
	lastError := ""
	if !ok {
		lastError = "one or more sync targets failed"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("saving sync settings", "error", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	settings := []store.SetSettingParams{
		{Key: model.SettingKeyLastSyncAt, Value: now.Format(time.RFC3339), UpdatedAt: now},
		{Key: model.SettingKeyLastError, Value: lastError, UpdatedAt: now},
	}
	for _, arg := range settings {
		if err := qtx.SetSetting(ctx, arg); err != nil {
			s.logger.Error("saving sync settings", "key", arg.Key, "error", err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("saving sync settings", "error", err)
	}
}
