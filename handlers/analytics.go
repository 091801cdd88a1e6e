// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
)

type AnalyticsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAnalyticsHandler(db *sql.DB, cfg cliparse.Config) *AnalyticsHandler {
	return &AnalyticsHandler{db: db, cfg: cfg}
}

// Track wraps a handler and records a page-view event before serving it.
// IPs are stored hashed. A failed insert never blocks the request.
func (h *AnalyticsHandler) Track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		_, err := h.db.Exec(`
			INSERT INTO analytics_event (id, route, method, ip_hash, user_agent, occurred_on, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), route, r.Method,
			auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSalt),
			r.UserAgent(), now.Format("2006-01-02"), now)
		if err != nil {
			slog.Error("failed to record analytics event", "route", route, "error", err)
		}

		next(w, r)
	}
}

// Summary handles GET /analytics/summary
//
// Per-route daily hit counts for the last 30 days.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	since := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	rows, err := h.db.Query(`
		SELECT route, occurred_on, COUNT(*)
		FROM analytics_event
		WHERE occurred_on >= $1
		GROUP BY route, occurred_on
		ORDER BY occurred_on DESC, route
	`, since)
	if err != nil {
		slog.Error("failed to query analytics", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	buckets := []models.AnalyticsBucket{}
	for rows.Next() {
		var b models.AnalyticsBucket
		if err := rows.Scan(&b.Route, &b.Day, &b.Count); err != nil {
			slog.Error("failed to scan analytics bucket", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		buckets = append(buckets, b)
	}

	middleware.JSONResponse(w, http.StatusOK, buckets)
}
