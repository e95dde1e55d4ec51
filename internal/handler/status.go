// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/notionsync-go/internal/model"
	"github.com/olegiv/notionsync-go/internal/store"
)

// statusResponse summarizes the sync service state.
type statusResponse struct {
	Version     string `json:"version"`
	Connected   bool   `json:"notion_connected"`
	SyncRunning bool   `json:"sync_running"`
	LastSyncAt  string `json:"last_sync_at,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// Status reports service health, Notion connectivity and last sync outcome.
// GET /status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lastSyncAt, err := h.queries.GetSettingValue(ctx, model.SettingKeyLastSyncAt)
	if err != nil {
		h.logger.Error("reading last sync setting", "error", err)
		WriteInternalError(w, "Failed to read sync state")
		return
	}
	lastError, err := h.queries.GetSettingValue(ctx, model.SettingKeyLastError)
	if err != nil {
		h.logger.Error("reading last error setting", "error", err)
		WriteInternalError(w, "Failed to read sync state")
		return
	}

	WriteSuccess(w, statusResponse{
		Version:     h.version,
		Connected:   h.notion.TestConnection(ctx) == nil,
		SyncRunning: h.syncer.Running(),
		LastSyncAt:  lastSyncAt,
		LastError:   lastError,
	})
}

// ListDatabases returns the Notion databases shared with the integration.
// GET /databases
func (h *Handler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	databases, err := h.notion.ListDatabases(r.Context())
	if err != nil {
		h.logger.Error("listing notion databases", "error", err)
		WriteInternalError(w, "Failed to list databases")
		return
	}

	type database struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url,omitempty"`
	}
	out := make([]database, 0, len(databases))
	for i := range databases {
		out = append(out, database{
			ID:    databases[i].ID,
			Title: databases[i].TitleText(),
			URL:   databases[i].URL,
		})
	}
	WriteSuccess(w, out)
}

// ListMappings returns all Notion-to-post mappings, most recently synced first.
// GET /mappings
func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.queries.ListMappings(r.Context())
	if err != nil {
		h.logger.Error("listing mappings", "error", err)
		WriteInternalError(w, "Failed to list mappings")
		return
	}
	WriteSuccess(w, mappings)
}

// ListLogs returns the recent sync log window, newest first.
// GET /logs?limit=50
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	logs, err := h.queries.ListRecentSyncLogs(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing sync logs", "error", err)
		WriteInternalError(w, "Failed to list sync logs")
		return
	}
	WriteSuccess(w, logs)
}

// ListEvents returns the recent system events, newest first.
// GET /events?limit=100
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	WriteSuccess(w, events)
}

// GetPost returns one local post for display purposes.
// GET /posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid post id")
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Post not found")
		return
	}
	if err != nil {
		h.logger.Error("reading post", "id", id, "error", err)
		WriteInternalError(w, "Failed to read post")
		return
	}
	WriteSuccess(w, post)
}

// ListTargets returns the configured sync targets.
// GET /targets
func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.queries.ListSyncTargets(r.Context())
	if err != nil {
		h.logger.Error("listing sync targets", "error", err)
		WriteInternalError(w, "Failed to list targets")
		return
	}
	WriteSuccess(w, targets)
}

// createTargetRequest is the body for adding a sync target.
type createTargetRequest struct {
	Kind     string `json:"kind"`
	NotionID string `json:"notion_id"`
	PostType string `json:"post_type,omitempty"`
	Position int64  `json:"position,omitempty"`
}

// CreateTarget adds a sync target.
// POST /targets {"kind": "database", "notion_id": "...", "post_type": "post"}
func (h *Handler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var req createTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Kind != model.TargetKindDatabase && req.Kind != model.TargetKindPage {
		WriteBadRequest(w, "kind must be database or page")
		return
	}
	if req.NotionID == "" {
		WriteBadRequest(w, "notion_id is required")
		return
	}
	if req.PostType == "" {
		req.PostType = model.DefaultPostType
	}

	target, err := h.queries.CreateSyncTarget(r.Context(), store.CreateSyncTargetParams{
		Kind:      req.Kind,
		NotionID:  req.NotionID,
		PostType:  req.PostType,
		Position:  req.Position,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("creating sync target", "error", err)
		WriteInternalError(w, "Failed to create target")
		return
	}
	WriteCreated(w, target)
}

// DeleteTarget removes a sync target. Existing mappings are untouched.
// DELETE /targets/{id}
func (h *Handler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid target id")
		return
	}

	if err := h.queries.DeleteSyncTarget(r.Context(), id); err != nil {
		h.logger.Error("deleting sync target", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete target")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
