// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic full sync on the configured interval.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/sync"
)

// Cron expressions per sync interval. The manual interval schedules nothing.
const (
	hourlySpec = "0 * * * *"
	dailySpec  = "0 3 * * *"
)

// eventRetention is how long system events are kept before the scheduled
// sync prunes them.
const eventRetention = 30 * 24 * time.Hour

// Scheduler triggers full syncs on a cron schedule.
type Scheduler struct {
	db       *sql.DB
	syncer   *sync.Syncer
	interval string
	cron     *cron.Cron
	logger   *slog.Logger
}

// New creates a scheduler for the given interval: hourly, daily or manual.
func New(db *sql.DB, syncer *sync.Syncer, interval string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:       db,
		syncer:   syncer,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the sync job and starts the cron loop. With the manual
// interval no job is scheduled and Start is a no-op.
func (s *Scheduler) Start() error {
	spec := ""
	switch s.interval {
	case model.SyncIntervalHourly:
		spec = hourlySpec
	case model.SyncIntervalDaily:
		spec = dailySpec
	case model.SyncIntervalManual:
		s.logger.Info("scheduled sync disabled, manual interval configured")
		return nil
	}

	_, err := s.cron.AddFunc(spec, s.runSync)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runSync performs one scheduled full sync and records the outcome as an
// event. An already-running sync is skipped, not queued.
func (s *Scheduler) runSync() {
	ctx := context.Background()
	started := time.Now()

	ok, err := s.syncer.SyncAll(ctx)
	if err != nil {
		s.logger.Warn("scheduled sync skipped", "reason", err)
		return
	}

	level := model.EventLevelInfo
	message := "Scheduled sync completed"
	if !ok {
		level = model.EventLevelWarning
		message = "Scheduled sync completed with failures"
	}

	metadata, _ := json.Marshal(map[string]any{
		"ok":          ok,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	queries := store.New(s.db)
	_, err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  model.EventCategorySync,
		Message:   message,
		Metadata:  string(metadata),
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled sync event", "error", err)
	}

	if err := queries.DeleteOldEvents(ctx, time.Now().Add(-eventRetention)); err != nil {
		s.logger.Warn("failed to prune old events", "error", err)
	}
}
