// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
)

type VisitHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVisitHandler(db *sql.DB, cfg cliparse.Config) *VisitHandler {
	return &VisitHandler{db: db, cfg: cfg}
}

// RecordVisit handles POST /visits
func (h *VisitHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	var req models.RecordVisitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RestaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.VisitedOn); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "visited_on must be YYYY-MM-DD")
		return
	}

	var name string
	err := h.db.QueryRow(`SELECT name FROM restaurant WHERE id = $1`, req.RestaurantID).Scan(&name)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate visit ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record visit")
		return
	}

	visit := models.Visit{
		ID:             id,
		UserID:         user.ID,
		RestaurantID:   req.RestaurantID,
		RestaurantName: name,
		VisitedOn:      req.VisitedOn,
		CreatedAt:      time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO visit (id, user_id, restaurant_id, visited_on, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, visit.ID, visit.UserID, visit.RestaurantID, visit.VisitedOn, visit.CreatedAt)
	if err != nil {
		slog.Error("failed to insert visit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record visit")
		return
	}

	slog.Info("visit recorded", "user_id", user.ID, "restaurant_id", req.RestaurantID, "date", req.VisitedOn)

	middleware.JSONResponse(w, http.StatusCreated, visit)
}

// ListVisits handles GET /visits
//
// ?month=2026-08 narrows to one calendar month, which is what the frontend
// calendar view fetches.
func (h *VisitHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	query := `
		SELECT v.id, v.user_id, v.restaurant_id, r.name, v.visited_on, v.created_at
		FROM visit v
		JOIN restaurant r ON r.id = v.restaurant_id
		WHERE v.user_id = $1`
	args := []interface{}{user.ID}

	if month := r.URL.Query().Get("month"); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		// ISO dates sort lexically, so a prefix range covers the month.
		query += ` AND v.visited_on >= $2 AND v.visited_on < $3`
		args = append(args, month+"-01", month+"-32")
	}
	query += ` ORDER BY v.visited_on DESC, v.created_at DESC`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query visits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	visits := []models.Visit{}
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.UserID, &v.RestaurantID, &v.RestaurantName,
			&v.VisitedOn, &v.CreatedAt); err != nil {
			slog.Error("failed to scan visit", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if day, err := time.Parse("2006-01-02", v.VisitedOn); err == nil {
			v.Ago = humanize.Time(day)
		}
		visits = append(visits, v)
	}

	middleware.JSONResponse(w, http.StatusOK, visits)
}

// DeleteVisit handles DELETE /visits/:id
func (h *VisitHandler) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "visit_id is required")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM visit WHERE id = $1 AND user_id = $2
	`, id, user.ID)
	if err != nil {
		slog.Error("failed to delete visit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete visit")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Visit not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
