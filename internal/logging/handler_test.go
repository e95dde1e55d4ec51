package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "notionsync-logging-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}

	return db, cleanup
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func latestEvents(t *testing.T, db *sql.DB) []model.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Handle_ErrorLevel(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Error("sync failed", "notion_id", "abc123", "reason", "timeout")

	events := latestEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelError)
	}
	if events[0].Message != "sync failed" {
		t.Errorf("Message = %q, want %q", events[0].Message, "sync failed")
	}
	if !strings.Contains(events[0].Metadata, `"notion_id":"abc123"`) {
		t.Errorf("Metadata = %q, want notion_id attribute", events[0].Metadata)
	}
}

func TestEventLogHandler_Handle_WarnLevel(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Warn("featured image import failed")

	events := latestEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Level != model.EventLevelWarning {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelWarning)
	}
}

func TestEventLogHandler_Handle_InfoNotForwarded(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Info("sync succeeded")

	if events := latestEvents(t, db); len(events) != 0 {
		t.Errorf("len(events) = %d, want 0 for info level", len(events))
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	handler := NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo)
	logger := slog.New(handler)
	logger.Info("scheduled sync started")

	events := latestEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelInfo)
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Error("something broke", "category", model.EventCategoryMedia)

	events := latestEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Category != model.EventCategoryMedia {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryMedia)
	}
	if strings.Contains(events[0].Metadata, "category") {
		t.Errorf("Metadata = %q, category attribute should be stripped", events[0].Metadata)
	}
}

func TestEventLogHandler_InferredCategory(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	tests := []struct {
		message string
		want    string
	}{
		{"sync failed", model.EventCategorySync},
		{"notion request rejected", model.EventCategoryNotion},
		{"image download failed", model.EventCategoryMedia},
		{"invalid setting value", model.EventCategoryConfig},
		{"disk almost full", model.EventCategorySystem},
	}

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	for _, tt := range tests {
		logger.Error(tt.message)
	}

	events := latestEvents(t, db)
	if len(events) != len(tests) {
		t.Fatalf("len(events) = %d, want %d", len(events), len(tests))
	}
	// ListRecentEvents returns newest first.
	for i, tt := range tests {
		got := events[len(events)-1-i]
		if got.Category != tt.want {
			t.Errorf("category for %q = %q, want %q", tt.message, got.Category, tt.want)
		}
	}
}

func TestEscapeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`with "quotes"`, `with \"quotes\"`},
		{"line\nbreak", `line\nbreak`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeJSON(tt.in); got != tt.want {
			t.Errorf("escapeJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
