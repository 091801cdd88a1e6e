// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
	"github.com/lunchcrew/lunchpick/selection"
)

// worldcupSession pins a running bracket to the user who started it.
type worldcupSession struct {
	userID  string
	bracket *selection.Bracket
}

// WorldcupHandler runs interactive tournaments. Brackets are held in memory
// only; a server restart abandons running tournaments, which matches how
// short-lived a lunch decision is.
type WorldcupHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	mu       sync.Mutex
	sessions map[string]*worldcupSession
}

func NewWorldcupHandler(db *sql.DB, cfg cliparse.Config) *WorldcupHandler {
	return &WorldcupHandler{
		db:       db,
		cfg:      cfg,
		sessions: make(map[string]*worldcupSession),
	}
}

// StartWorldcup handles POST /worldcup
//
// Builds the entrant pool the same way the draw does (exclusions applied,
// recency ignored), shuffles it, and opens the first round.
func (h *WorldcupHandler) StartWorldcup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
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

	pool, err := selection.FilterEligible(candidates, excluded, selection.RecencyWindow{}, nil)
	if errors.Is(err, selection.ErrNoEligibleCandidates) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No eligible restaurants")
		return
	}
	if err != nil {
		slog.Error("eligibility filter failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start tournament")
		return
	}

	bracket, err := selection.StartBracket(pool, nil)
	if errors.Is(err, selection.ErrInsufficientCandidates) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "At least 2 eligible restaurants required")
		return
	}
	if err != nil {
		slog.Error("failed to start bracket", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start tournament")
		return
	}

	sessionID := uuid.NewString()
	h.mu.Lock()
	h.sessions[sessionID] = &worldcupSession{userID: user.ID, bracket: bracket}
	resp := worldcupResponse(sessionID, bracket)
	h.mu.Unlock()

	slog.Info("worldcup started", "session_id", sessionID, "user_id", user.ID, "entrants", len(resp.State.Round))

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// GetWorldcup handles GET /worldcup/:id
func (h *WorldcupHandler) GetWorldcup(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	sess, sessionID, ok := h.session(w, r, user.ID)
	if !ok {
		return
	}

	h.mu.Lock()
	resp := worldcupResponse(sessionID, sess.bracket)
	h.mu.Unlock()

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// PickWinner handles POST /worldcup/:id/pick
//
// Resolves the current match. When the final resolves, the champion is
// recorded as an outcome and the session is dropped.
func (h *WorldcupHandler) PickWinner(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	sess, sessionID, ok := h.session(w, r, user.ID)
	if !ok {
		return
	}

	var req models.PickWinnerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.WinnerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "winner_id is required")
		return
	}

	h.mu.Lock()
	err := sess.bracket.ResolveMatch(req.WinnerID)
	completed := sess.bracket.State == selection.BracketCompleted
	resp := worldcupResponse(sessionID, sess.bracket)
	if completed {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if errors.Is(err, selection.ErrBracketCompleted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Tournament already completed")
		return
	}
	if errors.Is(err, selection.ErrNotInMatch) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "winner_id is not in the current match")
		return
	}
	if err != nil {
		slog.Error("failed to resolve match", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve match")
		return
	}

	if completed {
		winner := resp.State.Winner
		if err := recordOutcome(h.db, user.ID, winner.ID, models.MethodWorldcup); err != nil {
			slog.Error("failed to record worldcup outcome", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record outcome")
			return
		}
		slog.Info("worldcup completed", "session_id", sessionID, "winner", winner.ID)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// session looks up the caller's session, enforcing ownership.
func (h *WorldcupHandler) session(w http.ResponseWriter, r *http.Request, userID string) (*worldcupSession, string, bool) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return nil, "", false
	}

	h.mu.Lock()
	sess := h.sessions[sessionID]
	h.mu.Unlock()

	if sess == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Tournament not found")
		return nil, "", false
	}
	if sess.userID != userID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your tournament")
		return nil, "", false
	}
	return sess, sessionID, true
}

// worldcupResponse snapshots the bracket for encoding. The caller must hold
// h.mu: the JSON encoder runs after the lock is released, so handing it the
// live bracket would let a concurrent PickWinner mutate it mid-encode.
func worldcupResponse(sessionID string, b *selection.Bracket) models.WorldcupResponse {
	snap := b.Clone()
	resp := models.WorldcupResponse{SessionID: sessionID, State: snap}
	if left, right, err := snap.CurrentMatch(); err == nil {
		resp.Match = []selection.Candidate{left, right}
	}
	return resp
}
