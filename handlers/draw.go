// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
	"github.com/lunchcrew/lunchpick/selection"
)

type DrawHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDrawHandler(db *sql.DB, cfg cliparse.Config) *DrawHandler {
	return &DrawHandler{db: db, cfg: cfg}
}

// Draw handles POST /draw
//
// Runs the eligibility filter over the caller's exclusions and recent
// visits, then picks uniformly at random. The winner is recorded as an
// outcome.
func (h *DrawHandler) Draw(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	// Body is optional; absent fields fall back to server defaults.
	var req models.DrawRequest
	_ = middleware.ParseJSONBody(r, &req)

	window := selection.RecencyWindow{Enabled: true, Days: h.cfg.RecencyDays}
	if req.RecencyEnabled != nil {
		window.Enabled = *req.RecencyEnabled
	}
	if req.RecencyDays != nil {
		if *req.RecencyDays < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "recency_days must be positive")
			return
		}
		window.Days = *req.RecencyDays
	}

	candidates, err := activeCandidates(h.db)
	if err != nil {
		slog.Error("failed to query restaurants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	excluded, err := excludedIDs(h.db, user.ID)
	if err != nil {
		slog.Error("failed to query exclusions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	recent, err := recentRestaurantIDs(h.db, user.ID, window.Days)
	if err != nil {
		slog.Error("failed to query recent visits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	eligible, err := selection.FilterEligible(candidates, excluded, window, recent)
	if errors.Is(err, selection.ErrNoEligibleCandidates) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No eligible restaurants")
		return
	}
	if err != nil {
		slog.Error("eligibility filter failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Draw failed")
		return
	}

	winner, err := selection.PickRandom(eligible, nil)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No eligible restaurants")
		return
	}

	if err := recordOutcome(h.db, user.ID, winner.ID, models.MethodDraw); err != nil {
		slog.Error("failed to record draw outcome", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record outcome")
		return
	}

	slog.Info("draw completed", "user_id", user.ID, "winner", winner.ID, "eligible", len(eligible))

	middleware.JSONResponse(w, http.StatusOK, models.DrawResponse{
		Winner:        winner,
		EligibleCount: len(eligible),
		LastVisited:   lastVisited(h.db, user.ID, winner.ID),
	})
}

// activeCandidates loads the live restaurant pool.
func activeCandidates(db *sql.DB) ([]selection.Candidate, error) {
	rows, err := db.Query(`SELECT id, name FROM restaurant WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []selection.Candidate
	for rows.Next() {
		var c selection.Candidate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}
	return pool, rows.Err()
}

func excludedIDs(db *sql.DB, userID string) ([]string, error) {
	rows, err := db.Query(`SELECT restaurant_id FROM exclusion WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// recentRestaurantIDs returns restaurants the user visited within the last
// `days` days. visited_on is ISO text, so string comparison orders
// correctly.
func recentRestaurantIDs(db *sql.DB, userID string, days int) ([]string, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := db.Query(`
		SELECT DISTINCT restaurant_id FROM visit
		WHERE user_id = $1 AND visited_on >= $2
	`, userID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func recordOutcome(db *sql.DB, userID, restaurantID, method string) error {
	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO selection_record (id, user_id, restaurant_id, method, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, restaurantID, method, time.Now())
	return err
}

// lastVisited humanizes the user's most recent visit to the restaurant, or
// returns "" if they have never been.
func lastVisited(db *sql.DB, userID, restaurantID string) string {
	var visitedOn string
	err := db.QueryRow(`
		SELECT MAX(visited_on) FROM visit
		WHERE user_id = $1 AND restaurant_id = $2
	`, userID, restaurantID).Scan(&visitedOn)
	if err != nil || visitedOn == "" {
		return ""
	}
	day, err := time.Parse("2006-01-02", visitedOn)
	if err != nil {
		return ""
	}
	return humanize.Time(day)
}
