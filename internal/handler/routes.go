// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/notionsync-go/internal/middleware"
)

// Routes builds the service router. All endpoints except the health check
// require the admin token when one is configured.
func (h *Handler) Routes(adminToken string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(5 * time.Minute)) // database syncs can be slow

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminTokenAuth(adminToken))

		r.Post("/sync/page", h.SyncPage)
		r.Post("/sync/database", h.SyncDatabase)
		r.Post("/sync/all", h.SyncAll)

		r.Get("/status", h.Status)
		r.Get("/databases", h.ListDatabases)
		r.Get("/mappings", h.ListMappings)
		r.Get("/logs", h.ListLogs)
		r.Get("/events", h.ListEvents)
		r.Get("/posts/{id}", h.GetPost)

		r.Get("/targets", h.ListTargets)
		r.Post("/targets", h.CreateTarget)
		r.Delete("/targets/{id}", h.DeleteTarget)
	})

	return r
}
