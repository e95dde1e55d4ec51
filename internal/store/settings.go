// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/notionsync-go/internal/model"
)

// GetSetting returns one setting by key. Returns sql.ErrNoRows when unset.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM settings WHERE key = ?", key)

	var s model.Setting
	err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt)
	return s, err
}

// GetSettingValue returns a setting's value, or the empty string when unset.
func (q *Queries) GetSettingValue(ctx context.Context, key string) (string, error) {
	s, err := q.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

// SetSettingParams holds the values for SetSetting.
type SetSettingParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// SetSetting inserts or replaces a setting value.
func (q *Queries) SetSetting(ctx context.Context, arg SetSettingParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		arg.Key, arg.Value, arg.UpdatedAt)
	return err
}
