// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/notion"
	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/testutil"
)

const (
	pageID1 = "19a52b5682188049b6c5da694d56c5bf"
	pageID2 = "29a52b5682188049b6c5da694d56c5bf"
	dbID1   = "39a52b5682188049b6c5da694d56c5bf"
)

type fakeAPI struct {
	pages    map[string]*notion.Page
	blocks   map[string][]notion.Block
	dbPages  map[string][]notion.Page
	queryErr error
}

func (f *fakeAPI) QueryDatabase(_ context.Context, id string, _ json.RawMessage) ([]notion.Page, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.dbPages[id], nil
}

func (f *fakeAPI) GetPage(_ context.Context, id string) (*notion.Page, error) {
	page, found := f.pages[id]
	if !found {
		return nil, fmt.Errorf("page %s not found or not shared", id)
	}
	return page, nil
}

func (f *fakeAPI) GetPageContent(_ context.Context, id string) ([]notion.Block, error) {
	return f.blocks[id], nil
}

func apiPage(id, title string) *notion.Page {
	return &notion.Page{
		Object:         "page",
		ID:             id,
		LastEditedTime: "2026-01-02T03:04:05.000Z",
		Properties: map[string]notion.Property{
			"title": {Type: "title", Title: []notion.RichText{{PlainText: title}}},
		},
	}
}

func paragraph(text string) notion.Block {
	return notion.Block{
		Type:      notion.BlockTypeParagraph,
		Paragraph: &notion.RichTextBlock{RichText: []notion.RichText{{PlainText: text}}},
	}
}

func TestSyncPageCreatesThenUpdates(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	api := &fakeAPI{
		pages:  map[string]*notion.Page{pageID1: apiPage(pageID1, "First Post")},
		blocks: map[string][]notion.Block{pageID1: {paragraph("Hello")}},
	}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()
	queries := store.New(db)

	ok, err := syncer.SyncPage(ctx, pageID1, "post")
	if err != nil {
		t.Fatalf("SyncPage() error = %v", err)
	}
	if !ok {
		t.Fatal("SyncPage() = false, want true")
	}

	mapping, err := queries.GetMappingByNotionID(ctx, pageID1)
	if err != nil {
		t.Fatalf("GetMappingByNotionID: %v", err)
	}
	firstPostID := mapping.PostID

	post, err := queries.GetPostByID(ctx, firstPostID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.Title != "First Post" {
		t.Errorf("Title = %q, want %q", post.Title, "First Post")
	}
	if post.Body != "<p>Hello</p>" {
		t.Errorf("Body = %q, want %q", post.Body, "<p>Hello</p>")
	}
	if post.Status != model.PostStatusDraft {
		t.Errorf("Status = %q, want %q", post.Status, model.PostStatusDraft)
	}

	// Second sync of the same page must update, not create.
	api.pages[pageID1].Properties["title"] = notion.Property{
		Type: "title", Title: []notion.RichText{{PlainText: "First Post, revised"}},
	}
	ok, err = syncer.SyncPage(ctx, pageID1, "post")
	if err != nil || !ok {
		t.Fatalf("second SyncPage() = %v, %v, want true, nil", ok, err)
	}

	mappings, err := queries.ListMappings(ctx)
	if err != nil {
		t.Fatalf("ListMappings: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("len(mappings) = %d, want 1", len(mappings))
	}
	if mappings[0].PostID != firstPostID {
		t.Errorf("PostID = %d, want %d (update, not create)", mappings[0].PostID, firstPostID)
	}

	post, err = queries.GetPostByID(ctx, firstPostID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.Title != "First Post, revised" {
		t.Errorf("Title after re-sync = %q, want %q", post.Title, "First Post, revised")
	}

	logs, err := queries.ListRecentSyncLogs(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecentSyncLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("len(logs) = %d, want 2", len(logs))
	}
	// Synced posts stay drafts, and the log entries say so.
	for _, entry := range logs {
		if !strings.Contains(entry.Message, "(draft)") {
			t.Errorf("log message = %q, want draft marker", entry.Message)
		}
	}
}

func TestSyncPageInvalidID(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	syncer := New(&fakeAPI{}, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()

	ok, err := syncer.SyncPage(ctx, "not-an-id", "post")
	if err != nil {
		t.Fatalf("SyncPage() error = %v", err)
	}
	if ok {
		t.Fatal("SyncPage() = true, want false")
	}

	logs, err := store.New(db).ListRecentSyncLogs(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecentSyncLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].Status != model.SyncStatusError {
		t.Errorf("Status = %q, want %q", logs[0].Status, model.SyncStatusError)
	}
	if logs[0].PostID != 0 {
		t.Errorf("PostID = %d, want 0", logs[0].PostID)
	}
}

func TestSyncPageFetchFailureLogged(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	syncer := New(&fakeAPI{pages: map[string]*notion.Page{}}, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()

	ok, err := syncer.SyncPage(ctx, pageID1, "post")
	if err != nil {
		t.Fatalf("SyncPage() error = %v", err)
	}
	if ok {
		t.Fatal("SyncPage() = true, want false")
	}

	logs, _ := store.New(db).ListRecentSyncLogs(ctx, 0)
	if len(logs) != 1 || logs[0].IsSuccess() {
		t.Fatalf("logs = %+v, want one error entry", logs)
	}
}

func TestSyncDatabaseAggregatesWithoutFailFast(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	// pageID2 is listed in the database but its fetch fails.
	api := &fakeAPI{
		pages:  map[string]*notion.Page{pageID1: apiPage(pageID1, "Good Page")},
		blocks: map[string][]notion.Block{pageID1: {paragraph("body")}},
		dbPages: map[string][]notion.Page{
			dbID1: {{ID: pageID1}, {ID: pageID2}},
		},
	}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()

	ok, err := syncer.SyncDatabase(ctx, dbID1, "post")
	if err != nil {
		t.Fatalf("SyncDatabase() error = %v", err)
	}
	if ok {
		t.Fatal("SyncDatabase() = true, want false (one page failed)")
	}

	logs, err := store.New(db).ListRecentSyncLogs(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecentSyncLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2 (both pages attempted)", len(logs))
	}
	successes := 0
	for _, entry := range logs {
		if entry.IsSuccess() {
			successes++
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want 1", successes)
	}
}

func TestSyncDatabaseEmptyResultIsError(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	api := &fakeAPI{dbPages: map[string][]notion.Page{}}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()

	ok, err := syncer.SyncDatabase(ctx, dbID1, "post")
	if err != nil {
		t.Fatalf("SyncDatabase() error = %v", err)
	}
	if ok {
		t.Fatal("SyncDatabase() = true, want false for empty database")
	}

	logs, _ := store.New(db).ListRecentSyncLogs(ctx, 0)
	if len(logs) != 1 || logs[0].Status != model.SyncStatusError {
		t.Fatalf("logs = %+v, want one error entry for the database", logs)
	}
}

func TestSyncAllRunsEveryTarget(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	for _, arg := range []store.CreateSyncTargetParams{
		{Kind: model.TargetKindDatabase, NotionID: dbID1, PostType: "post", CreatedAt: time.Now()},
		{Kind: model.TargetKindPage, NotionID: pageID2, PostType: "page", CreatedAt: time.Now()},
	} {
		if _, err := queries.CreateSyncTarget(ctx, arg); err != nil {
			t.Fatalf("CreateSyncTarget: %v", err)
		}
	}

	api := &fakeAPI{
		pages: map[string]*notion.Page{
			pageID1: apiPage(pageID1, "From Database"),
			pageID2: apiPage(pageID2, "Standalone"),
		},
		blocks: map[string][]notion.Block{
			pageID1: {paragraph("a")},
			pageID2: {paragraph("b")},
		},
		dbPages: map[string][]notion.Page{dbID1: {{ID: pageID1}}},
	}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())

	ok, err := syncer.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if !ok {
		t.Fatal("SyncAll() = false, want true")
	}

	mappings, _ := queries.ListMappings(ctx)
	if len(mappings) != 2 {
		t.Errorf("len(mappings) = %d, want 2", len(mappings))
	}

	lastSync, err := queries.GetSettingValue(ctx, model.SettingKeyLastSyncAt)
	if err != nil {
		t.Fatalf("GetSettingValue: %v", err)
	}
	if lastSync == "" {
		t.Error("last sync timestamp was not recorded")
	}
	lastErr, _ := queries.GetSettingValue(ctx, model.SettingKeyLastError)
	if lastErr != "" {
		t.Errorf("last error = %q, want empty", lastErr)
	}
}

func TestSyncAllPartialFailure(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()
	queries := store.New(db)

	for _, arg := range []store.CreateSyncTargetParams{
		{Kind: model.TargetKindPage, NotionID: pageID1, PostType: "post", CreatedAt: time.Now()},
		{Kind: model.TargetKindPage, NotionID: pageID2, PostType: "post", CreatedAt: time.Now()},
	} {
		if _, err := queries.CreateSyncTarget(ctx, arg); err != nil {
			t.Fatalf("CreateSyncTarget: %v", err)
		}
	}

	api := &fakeAPI{
		pages:  map[string]*notion.Page{pageID1: apiPage(pageID1, "Only This One")},
		blocks: map[string][]notion.Block{pageID1: {paragraph("x")}},
	}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())

	ok, err := syncer.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if ok {
		t.Fatal("SyncAll() = true, want false")
	}

	logs, _ := queries.ListRecentSyncLogs(ctx, 0)
	if len(logs) != 2 {
		t.Errorf("len(logs) = %d, want 2 (no early termination)", len(logs))
	}

	lastErr, _ := queries.GetSettingValue(ctx, model.SettingKeyLastError)
	if lastErr == "" {
		t.Error("last error setting was not recorded")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		page *notion.Page
		want string
	}{
		{
			name: "title property",
			page: apiPage(pageID1, "Direct Title"),
			want: "Direct Title",
		},
		{
			name: "Name property",
			page: &notion.Page{ID: pageID1, Properties: map[string]notion.Property{
				"Name": {Type: "title", Title: []notion.RichText{{PlainText: "Named"}}},
			}},
			want: "Named",
		},
		{
			name: "any title-typed property",
			page: &notion.Page{ID: pageID1, Properties: map[string]notion.Property{
				"Seitentitel": {Type: "title", Title: []notion.RichText{{PlainText: "Localized"}}},
			}},
			want: "Localized",
		},
		{
			name: "fallback from id prefix",
			page: &notion.Page{ID: pageID1, Properties: map[string]notion.Property{}},
			want: "Notion Page 19a52b56",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.page, pageID1); got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSyncerRunning(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	syncer := New(&fakeAPI{}, db, nil, testutil.TestLoggerSilent())
	if syncer.Running() {
		t.Error("Running() = true for idle syncer")
	}
}

func TestSyncPageExcerptSanitized(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	page := apiPage(pageID1, "With Excerpt")
	page.Properties["excerpt"] = notion.Property{
		Type:     "rich_text",
		RichText: []notion.RichText{{PlainText: "clean <b>bold</b> text"}},
	}
	api := &fakeAPI{
		pages:  map[string]*notion.Page{pageID1: page},
		blocks: map[string][]notion.Block{pageID1: {paragraph("body")}},
	}
	syncer := New(api, db, nil, testutil.TestLoggerSilent())
	ctx := context.Background()

	ok, err := syncer.SyncPage(ctx, pageID1, "post")
	if err != nil || !ok {
		t.Fatalf("SyncPage() = %v, %v, want true, nil", ok, err)
	}

	queries := store.New(db)
	mapping, err := queries.GetMappingByNotionID(ctx, pageID1)
	if err != nil {
		t.Fatalf("GetMappingByNotionID: %v", err)
	}
	post, err := queries.GetPostByID(ctx, mapping.PostID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.Excerpt != "clean bold text" {
		t.Errorf("Excerpt = %q, want %q", post.Excerpt, "clean bold text")
	}
}

var errQuery = errors.New("query failed")

func TestSyncDatabaseQueryError(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	syncer := New(&fakeAPI{queryErr: errQuery}, db, nil, testutil.TestLoggerSilent())
	ok, err := syncer.SyncDatabase(context.Background(), dbID1, "post")
	if err != nil {
		t.Fatalf("SyncDatabase() error = %v", err)
	}
	if ok {
		t.Fatal("SyncDatabase() = true, want false")
	}
}
