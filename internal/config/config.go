// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"NSYNC_DB_PATH" envDefault:"./data/notionsync.db"`
	ServerHost string `env:"NSYNC_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"NSYNC_SERVER_PORT" envDefault:"8090"`
	Env        string `env:"NSYNC_ENV" envDefault:"development"`
	LogLevel   string `env:"NSYNC_LOG_LEVEL" envDefault:"info"`

	// Notion API configuration
	NotionAPIToken string `env:"NSYNC_NOTION_API_TOKEN,required"`
	NotionBaseURL  string `env:"NSYNC_NOTION_BASE_URL" envDefault:"https://api.notion.com/v1/"`

	// Trigger API authentication. Requests to the sync endpoints must carry
	// this token in the Authorization header. Optional in development.
	AdminToken string `env:"NSYNC_ADMIN_TOKEN"`

	// Sync configuration
	SyncInterval string `env:"NSYNC_SYNC_INTERVAL" envDefault:"hourly"` // hourly|daily|manual

	// Media configuration
	UploadsDir string `env:"NSYNC_UPLOADS_DIR" envDefault:"./uploads"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// validSyncIntervals are the accepted NSYNC_SYNC_INTERVAL values.
var validSyncIntervals = []string{"hourly", "daily", "manual"}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if strings.TrimSpace(cfg.NotionAPIToken) == "" {
		return nil, fmt.Errorf("NSYNC_NOTION_API_TOKEN must not be blank")
	}

	valid := false
	for _, v := range validSyncIntervals {
		if cfg.SyncInterval == v {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("NSYNC_SYNC_INTERVAL must be one of %s, got %q",
			strings.Join(validSyncIntervals, "|"), cfg.SyncInterval)
	}

	return cfg, nil
}
