// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Setting keys
const (
	SettingKeyLastSyncAt = "last_sync_at"
	SettingKeyLastError  = "last_error"
)

// Sync interval choices. Manual disables the scheduled job entirely.
const (
	SyncIntervalHourly = "hourly"
	SyncIntervalDaily  = "daily"
	SyncIntervalManual = "manual"
)

// Setting represents one persisted key-value configuration item.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
