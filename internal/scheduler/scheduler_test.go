// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/sync"
	"github.com/olegiv/notionsync-go/internal/testutil"
)

func TestStartManualIntervalSchedulesNothing(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	syncer := sync.New(nil, db, nil, testutil.TestLoggerSilent())
	s := New(db, syncer, model.SyncIntervalManual, testutil.TestLoggerSilent())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if entries := s.cron.Entries(); len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0 for manual interval", len(entries))
	}
}

func TestStartSchedulesJobPerInterval(t *testing.T) {
	for _, interval := range []string{model.SyncIntervalHourly, model.SyncIntervalDaily} {
		t.Run(interval, func(t *testing.T) {
			db, cleanup := testutil.TestDB(t)
			defer cleanup()

			syncer := sync.New(nil, db, nil, testutil.TestLoggerSilent())
			s := New(db, syncer, interval, testutil.TestLoggerSilent())

			if err := s.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer s.Stop()

			if entries := s.cron.Entries(); len(entries) != 1 {
				t.Errorf("len(entries) = %d, want 1", len(entries))
			}
		})
	}
}

func TestRunSyncRecordsEvent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	// No configured targets: the sync trivially succeeds.
	syncer := sync.New(nil, db, nil, testutil.TestLoggerSilent())
	s := New(db, syncer, model.SyncIntervalHourly, testutil.TestLoggerSilent())

	s.runSync()

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Category != model.EventCategorySync {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategorySync)
	}
	if events[0].Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelInfo)
	}
}

func TestRunSyncPrunesExpiredEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	queries := store.New(db)
	_, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategorySync,
		Message:   "stale",
		CreatedAt: time.Now().Add(-eventRetention - time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	syncer := sync.New(nil, db, nil, testutil.TestLoggerSilent())
	s := New(db, syncer, model.SyncIntervalHourly, testutil.TestLoggerSilent())

	s.runSync()

	events, err := queries.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1 after pruning", len(events))
	}
	if events[0].Message == "stale" {
		t.Error("expired event survived the pruning")
	}
}
