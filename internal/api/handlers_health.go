// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package api

import (
	"net/http"
	"time"
)

// healthResponse is the data payload of GET /api/v1/healthz.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Movies        int    `json:"movies"`
	Users         int    `json:"users"`
}

// Healthz handles GET /api/v1/healthz. The service loads all data at
// startup, so a responding process is a healthy process.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Movies:        h.dataset.ItemCount(),
		Users:         h.dataset.UserCount(),
	})
}
