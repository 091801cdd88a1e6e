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

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Login handles POST /login
//
// Display-name login: an unknown name creates a user, a known name returns
// the existing one. Either way the caller gets a session token derived from
// the user id; the same name always maps to the same account.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) > 40 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 40 characters or fewer")
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, name, created_at FROM app_user WHERE name = $1
	`, req.Name).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		id, genErr := auth.GenerateID(16)
		if genErr != nil {
			slog.Error("failed to generate user ID", "error", genErr)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
			return
		}
		user = models.User{ID: id, Name: req.Name, CreatedAt: time.Now()}

		_, err = h.db.Exec(`
			INSERT INTO app_user (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, user.ID, user.Name, user.CreatedAt)
		if err != nil {
			slog.Error("failed to insert user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
			return
		}

		// A concurrent login with the same name may have won the insert.
		err = h.db.QueryRow(`
			SELECT id, name, created_at FROM app_user WHERE name = $1
		`, req.Name).Scan(&user.ID, &user.Name, &user.CreatedAt)

		slog.Info("user created", "user_id", user.ID, "name", user.Name)
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		User:         user,
		SessionToken: auth.SessionToken(user.ID, h.cfg.SessionSalt),
	})
}

// requireUser validates the X-User-ID / X-Session-Token headers and loads
// the caller's account. On failure it writes the error response and returns
// ok=false.
func requireUser(db *sql.DB, cfg cliparse.Config, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	userID := r.Header.Get("X-User-ID")
	token := r.Header.Get("X-Session-Token")
	if userID == "" || token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing session headers")
		return models.User{}, false
	}

	if err := auth.ValidateSessionToken(userID, token, cfg.SessionSalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return models.User{}, false
	}

	var user models.User
	err := db.QueryRow(`
		SELECT id, name, created_at FROM app_user WHERE id = $1
	`, userID).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown user")
		return models.User{}, false
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.User{}, false
	}

	return user, true
}
