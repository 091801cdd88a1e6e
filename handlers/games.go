// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
)

type GameHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewGameHandler(db *sql.DB, cfg cliparse.Config) *GameHandler {
	return &GameHandler{db: db, cfg: cfg}
}

// SubmitScore handles POST /games/:game/scores
func (h *GameHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	game := models.Game(r.PathValue("game"))
	if !models.ValidGame(game) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown game")
		return
	}

	var req models.SubmitScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Score < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be non-negative")
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate score ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit score")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO game_score (id, game, user_id, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, game, user.ID, req.Score, time.Now())
	if err != nil {
		slog.Error("failed to insert score", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit score")
		return
	}

	slog.Info("score submitted", "game", game, "user_id", user.ID, "score", req.Score)

	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /games/:game/leaderboard
//
// Ranks each user by their personal best, highest first; ties share order by
// name for a stable listing.
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	game := models.Game(r.PathValue("game"))
	if !models.ValidGame(game) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown game")
		return
	}

	rows, err := h.db.Query(`
		SELECT s.user_id, u.name, MAX(s.score) AS best
		FROM game_score s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.game = $1
		GROUP BY s.user_id, u.name
		ORDER BY best DESC, u.name
		LIMIT 20
	`, game)
	if err != nil {
		slog.Error("failed to query leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.Score); err != nil {
			slog.Error("failed to scan leaderboard entry", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
