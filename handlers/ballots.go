// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/models"
	"github.com/lunchcrew/lunchpick/selection"
)

type BallotHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config) *BallotHandler {
	return &BallotHandler{db: db, cfg: cfg}
}

// CreateBallot handles POST /ballots
func (h *BallotHandler) CreateBallot(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	var req models.CreateBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Kind != selection.KindRestaurant && req.Kind != selection.KindDate {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be restaurant or date")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.EndTime.IsZero() || !req.EndTime.After(time.Now()) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_time must be in the future")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options required")
		return
	}

	options, err := h.buildOptions(req.Kind, req.Options)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ballotID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate ballot ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create ballot")
		return
	}

	ballot := selection.Ballot{
		ID:            ballotID,
		Kind:          req.Kind,
		Title:         req.Title,
		CreatedBy:     user.ID,
		AllowMultiple: req.AllowMultiple,
		Status:        selection.BallotActive,
		EndTime:       req.EndTime,
		Options:       options,
		CreatedAt:     time.Now(),
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO ballot (id, kind, title, created_by, allow_multiple, status, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ballot.ID, ballot.Kind, ballot.Title, ballot.CreatedBy,
		boolInt(ballot.AllowMultiple), ballot.Status, ballot.EndTime, ballot.CreatedAt)
	if err != nil {
		slog.Error("failed to insert ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create ballot")
		return
	}

	for i, opt := range ballot.Options {
		var optionDate string
		if !opt.Key.Date.IsZero() {
			optionDate = opt.Key.Date.Format("2006-01-02")
		}
		_, err = tx.Exec(`
			INSERT INTO ballot_option (id, ballot_id, position, label, restaurant_id, option_date, slot_start, slot_end)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, opt.ID, ballot.ID, i, opt.Label, opt.Key.RestaurantID, optionDate, opt.Key.SlotStart, opt.Key.SlotEnd)
		if err != nil {
			slog.Error("failed to insert ballot option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create ballot")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create ballot")
		return
	}

	slog.Info("ballot created", "ballot_id", ballot.ID, "kind", ballot.Kind, "creator", user.ID)

	ballot.Recount()
	middleware.JSONResponse(w, http.StatusCreated, ballot)
}

// buildOptions validates option requests and resolves labels.
func (h *BallotHandler) buildOptions(kind selection.BallotKind, reqs []models.BallotOptionRequest) ([]selection.Option, error) {
	options := make([]selection.Option, 0, len(reqs))
	for i, req := range reqs {
		id, err := auth.GenerateID(12)
		if err != nil {
			return nil, errors.New("failed to generate option ID")
		}
		opt := selection.Option{ID: id}

		switch kind {
		case selection.KindRestaurant:
			if req.RestaurantID == "" {
				return nil, fmt.Errorf("option %d: restaurant_id is required", i)
			}
			var name string
			err := h.db.QueryRow(`SELECT name FROM restaurant WHERE id = $1`, req.RestaurantID).Scan(&name)
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("option %d: restaurant not found", i)
			}
			if err != nil {
				return nil, errors.New("database error")
			}
			opt.Label = name
			opt.Key = selection.OptionKey{RestaurantID: req.RestaurantID}

		case selection.KindDate:
			day, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return nil, fmt.Errorf("option %d: date must be YYYY-MM-DD", i)
			}
			opt.Label = req.Date
			if req.SlotStart != "" {
				opt.Label = req.Date + " " + req.SlotStart + "-" + req.SlotEnd
			}
			opt.Key = selection.OptionKey{Date: day, SlotStart: req.SlotStart, SlotEnd: req.SlotEnd}
		}

		options = append(options, opt)
	}
	return options, nil
}

// ListBallots handles GET /ballots
//
// Expired active ballots are closed before listing so status and winner are
// never stale.
func (h *BallotHandler) ListBallots(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	if err := h.closeExpired(); err != nil {
		slog.Error("failed to close expired ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`SELECT id FROM ballot ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("failed to query ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ids = append(ids, id)
	}

	ballots := []selection.Ballot{}
	for _, id := range ids {
		ballot, err := loadBallot(h.db, id)
		if err != nil {
			slog.Error("failed to load ballot", "ballot_id", id, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ballots = append(ballots, *ballot)
	}

	middleware.JSONResponse(w, http.StatusOK, ballots)
}

// GetBallot handles GET /ballots/:id
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	ballot, ok := h.loadOr404(w, r)
	if !ok {
		return
	}

	// Reads observe the deadline too: an expired ballot closes on first
	// access, not on the next vote.
	if ballot.EnsureClosed(time.Now()) {
		if err := persistBallot(h.db, ballot); err != nil {
			slog.Error("failed to persist closed ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// CastVote handles POST /ballots/:id/vote
func (h *BallotHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	ballot, ok := h.loadOr404(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	key := selection.OptionKey{
		RestaurantID: req.RestaurantID,
		SlotStart:    req.SlotStart,
		SlotEnd:      req.SlotEnd,
	}
	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		key.Date = day
	}

	err := ballot.CastOrRetractVote(user.ID, user.Name, key, time.Now())

	// The deadline transition mutates the ballot even though the vote is
	// rejected, so persist before reporting the conflict.
	if errors.Is(err, selection.ErrDeadlinePassed) {
		if perr := persistBallot(h.db, ballot); perr != nil {
			slog.Error("failed to persist closed ballot", "error", perr)
		}
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot deadline has passed")
		return
	}
	if errors.Is(err, selection.ErrBallotClosed) {
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot is closed")
		return
	}
	if errors.Is(err, selection.ErrUnknownOption) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Option not found")
		return
	}
	if err != nil {
		slog.Error("failed to apply vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	if err := persistBallot(h.db, ballot); err != nil {
		slog.Error("failed to persist ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// CloseBallot handles POST /ballots/:id/close
func (h *BallotHandler) CloseBallot(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	ballot, ok := h.loadOr404(w, r)
	if !ok {
		return
	}

	err := ballot.Close(user.ID, time.Now())
	if errors.Is(err, selection.ErrNotCreator) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the ballot creator may close it")
		return
	}
	if errors.Is(err, selection.ErrAlreadyClosed) {
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot already closed")
		return
	}
	if err != nil {
		slog.Error("failed to close ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close ballot")
		return
	}

	if err := persistBallot(h.db, ballot); err != nil {
		slog.Error("failed to persist ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close ballot")
		return
	}

	// A decided restaurant ballot is a lunch outcome like any other.
	if ballot.Kind == selection.KindRestaurant && ballot.WinnerOptionID != nil {
		for _, opt := range ballot.Options {
			if opt.ID == *ballot.WinnerOptionID {
				if err := recordOutcome(h.db, user.ID, opt.Key.RestaurantID, models.MethodBallot); err != nil {
					slog.Error("failed to record ballot outcome", "error", err)
				}
				break
			}
		}
	}

	slog.Info("ballot closed", "ballot_id", ballot.ID, "by", user.ID)

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// DeleteBallot handles DELETE /ballots/:id
func (h *BallotHandler) DeleteBallot(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	ballot, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	if ballot.CreatedBy != user.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the ballot creator may delete it")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM ballot WHERE id = $1`, ballot.ID); err != nil {
		slog.Error("failed to delete ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete ballot")
		return
	}

	slog.Info("ballot deleted", "ballot_id", ballot.ID, "by", user.ID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *BallotHandler) loadOr404(w http.ResponseWriter, r *http.Request) (*selection.Ballot, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return nil, false
	}

	ballot, err := loadBallot(h.db, id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Ballot not found")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load ballot", "ballot_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return ballot, true
}

// closeExpired lazily closes every active ballot whose deadline has passed.
func (h *BallotHandler) closeExpired() error {
	rows, err := h.db.Query(`
		SELECT id FROM ballot WHERE status = $1 AND end_time < $2
	`, selection.BallotActive, time.Now())
	if err != nil {
		return err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		ballot, err := loadBallot(h.db, id)
		if err != nil {
			return err
		}
		if ballot.EnsureClosed(time.Now()) {
			if err := persistBallot(h.db, ballot); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadBallot reads a full ballot: options in stored order, votes in cast
// order. Derived tallies are recomputed after loading.
func loadBallot(db *sql.DB, id string) (*selection.Ballot, error) {
	var b selection.Ballot
	var allowMultiple int
	var winnerID sql.NullString
	var closedAt sql.NullTime
	err := db.QueryRow(`
		SELECT id, kind, title, created_by, allow_multiple, status, end_time, winner_option_id, closed_at, created_at
		FROM ballot WHERE id = $1
	`, id).Scan(&b.ID, &b.Kind, &b.Title, &b.CreatedBy, &allowMultiple,
		&b.Status, &b.EndTime, &winnerID, &closedAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.AllowMultiple = allowMultiple != 0
	if winnerID.Valid {
		b.WinnerOptionID = &winnerID.String
	}
	if closedAt.Valid {
		t := closedAt.Time
		b.ClosedAt = &t
	}

	rows, err := db.Query(`
		SELECT id, label, COALESCE(restaurant_id, ''), COALESCE(option_date, ''),
		       COALESCE(slot_start, ''), COALESCE(slot_end, '')
		FROM ballot_option
		WHERE ballot_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var opt selection.Option
		var optionDate string
		if err := rows.Scan(&opt.ID, &opt.Label, &opt.Key.RestaurantID,
			&optionDate, &opt.Key.SlotStart, &opt.Key.SlotEnd); err != nil {
			return nil, err
		}
		if optionDate != "" {
			day, err := time.Parse("2006-01-02", optionDate)
			if err != nil {
				return nil, err
			}
			opt.Key.Date = day
		}
		b.Options = append(b.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range b.Options {
		vrows, err := db.Query(`
			SELECT voter_id, voter_name, cast_at
			FROM ballot_vote
			WHERE option_id = $1
			ORDER BY cast_at
		`, b.Options[i].ID)
		if err != nil {
			return nil, err
		}
		for vrows.Next() {
			var v selection.VoteRecord
			if err := vrows.Scan(&v.VoterID, &v.VoterName, &v.CastAt); err != nil {
				vrows.Close()
				return nil, err
			}
			b.Options[i].Votes = append(b.Options[i].Votes, v)
		}
		if err := vrows.Err(); err != nil {
			vrows.Close()
			return nil, err
		}
		vrows.Close()
	}

	b.Recount()
	return &b, nil
}

// persistBallot writes the ballot row and replaces its votes in one
// transaction. Concurrent writers are last-write-wins, which is acceptable
// for a handful of coworkers picking lunch.
func persistBallot(db *sql.DB, b *selection.Ballot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var winnerID interface{}
	if b.WinnerOptionID != nil {
		winnerID = *b.WinnerOptionID
	}
	var closedAt interface{}
	if b.ClosedAt != nil {
		closedAt = *b.ClosedAt
	}

	_, err = tx.Exec(`
		UPDATE ballot
		SET status = $1, winner_option_id = $2, closed_at = $3
		WHERE id = $4
	`, b.Status, winnerID, closedAt, b.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		DELETE FROM ballot_vote
		WHERE option_id IN (SELECT id FROM ballot_option WHERE ballot_id = $1)
	`, b.ID)
	if err != nil {
		return err
	}

	for _, opt := range b.Options {
		for _, v := range opt.Votes {
			_, err = tx.Exec(`
				INSERT INTO ballot_vote (option_id, voter_id, voter_name, cast_at)
				VALUES ($1, $2, $3, $4)
			`, opt.ID, v.VoterID, v.VoterName, v.CastAt)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
