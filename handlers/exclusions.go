// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
)

type ExclusionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewExclusionHandler(db *sql.DB, cfg cliparse.Config) *ExclusionHandler {
	return &ExclusionHandler{db: db, cfg: cfg}
}

// AddExclusion handles POST /exclusions
//
// Adding the same restaurant twice updates the reason instead of failing.
func (h *ExclusionHandler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	var req models.AddExclusionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RestaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	var exists int
	err := h.db.QueryRow(`SELECT 1 FROM restaurant WHERE id = $1`, req.RestaurantID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO exclusion (user_id, restaurant_id, reason, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, restaurant_id) DO UPDATE SET reason = $3
	`, user.ID, req.RestaurantID, req.Reason, time.Now())
	if err != nil {
		slog.Error("failed to insert exclusion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add exclusion")
		return
	}

	slog.Info("exclusion added", "user_id", user.ID, "restaurant_id", req.RestaurantID)

	w.WriteHeader(http.StatusNoContent)
}

// ListExclusions handles GET /exclusions
func (h *ExclusionHandler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT e.user_id, e.restaurant_id, r.name, COALESCE(e.reason, ''), e.created_at
		FROM exclusion e
		JOIN restaurant r ON r.id = e.restaurant_id
		WHERE e.user_id = $1
		ORDER BY e.created_at
	`, user.ID)
	if err != nil {
		slog.Error("failed to query exclusions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	exclusions := []models.Exclusion{}
	for rows.Next() {
		var e models.Exclusion
		if err := rows.Scan(&e.UserID, &e.RestaurantID, &e.Restaurant, &e.Reason, &e.CreatedAt); err != nil {
			slog.Error("failed to scan exclusion", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		exclusions = append(exclusions, e)
	}

	middleware.JSONResponse(w, http.StatusOK, exclusions)
}

// RemoveExclusion handles DELETE /exclusions/:restaurantID
func (h *ExclusionHandler) RemoveExclusion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	restaurantID := r.PathValue("restaurantID")
	if restaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM exclusion WHERE user_id = $1 AND restaurant_id = $2
	`, user.ID, restaurantID)
	if err != nil {
		slog.Error("failed to delete exclusion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove exclusion")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Exclusion not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
