// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/olegiv/notionsync-go/internal/sync"
)

// syncRequest is the body of the page and database sync triggers.
type syncRequest struct {
	ID       string `json:"id"`
	PostType string `json:"post_type,omitempty"`
}

// syncResult reports the outcome of a triggered sync.
type syncResult struct {
	OK bool `json:"ok"`
}

// SyncPage triggers a single page sync.
// POST /sync/page {"id": "...", "post_type": "post"}
func (h *Handler) SyncPage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSyncRequest(w, r)
	if !ok {
		return
	}

	result, err := h.syncer.SyncPage(r.Context(), req.ID, req.PostType)
	h.writeSyncResult(w, result, err)
}

// SyncDatabase triggers a sync of every page in a database.
// POST /sync/database {"id": "...", "post_type": "post"}
func (h *Handler) SyncDatabase(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSyncRequest(w, r)
	if !ok {
		return
	}

	result, err := h.syncer.SyncDatabase(r.Context(), req.ID, req.PostType)
	h.writeSyncResult(w, result, err)
}

// SyncAll triggers a sync of all configured targets.
// POST /sync/all
func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.SyncAll(r.Context())
	h.writeSyncResult(w, result, err)
}

func (h *Handler) decodeSyncRequest(w http.ResponseWriter, r *http.Request) (syncRequest, bool) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return req, false
	}
	if req.ID == "" {
		WriteBadRequest(w, "id is required")
		return req, false
	}
	return req, true
}

func (h *Handler) writeSyncResult(w http.ResponseWriter, ok bool, err error) {
	if err != nil {
		if errors.Is(err, sync.ErrSyncInFlight) {
			WriteConflict(w, "A sync is already in flight")
			return
		}
		h.logger.Error("sync trigger failed", "error", err)
		WriteInternalError(w, "Sync failed to start")
		return
	}
	WriteSuccess(w, syncResult{OK: ok})
}
