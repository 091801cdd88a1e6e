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

type ReviewHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewReviewHandler(db *sql.DB, cfg cliparse.Config) *ReviewHandler {
	return &ReviewHandler{db: db, cfg: cfg}
}

// CreateReview handles POST /restaurants/:id/reviews
//
// One review per user per restaurant; reviewing again replaces the earlier
// rating and comment.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	restaurantID := r.PathValue("id")
	if restaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	var req models.CreateReviewRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	var exists int
	err := h.db.QueryRow(`SELECT 1 FROM restaurant WHERE id = $1`, restaurantID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	review := models.Review{
		RestaurantID: restaurantID,
		UserID:       user.ID,
		UserName:     user.Name,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now(),
	}

	// Replace any earlier review by the same user.
	var existingID string
	err = h.db.QueryRow(`
		SELECT id FROM review WHERE restaurant_id = $1 AND user_id = $2
	`, restaurantID, user.ID).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		review.ID, err = auth.GenerateID(12)
		if err != nil {
			slog.Error("failed to generate review ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save review")
			return
		}
		_, err = h.db.Exec(`
			INSERT INTO review (id, restaurant_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, review.ID, review.RestaurantID, review.UserID, review.Rating, review.Comment, review.CreatedAt)

	case err == nil:
		review.ID = existingID
		_, err = h.db.Exec(`
			UPDATE review SET rating = $1, comment = $2, created_at = $3 WHERE id = $4
		`, review.Rating, review.Comment, review.CreatedAt, review.ID)

	default:
		slog.Error("failed to query review", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err != nil {
		slog.Error("failed to save review", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save review")
		return
	}

	slog.Info("review saved", "restaurant_id", restaurantID, "user_id", user.ID, "rating", req.Rating)

	middleware.JSONResponse(w, http.StatusCreated, review)
}

// ListReviews handles GET /restaurants/:id/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.PathValue("id")
	if restaurantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT v.id, v.restaurant_id, v.user_id, u.name, v.rating, COALESCE(v.comment, ''), v.created_at
		FROM review v
		JOIN app_user u ON u.id = v.user_id
		WHERE v.restaurant_id = $1
		ORDER BY v.created_at DESC
	`, restaurantID)
	if err != nil {
		slog.Error("failed to query reviews", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.RestaurantID, &rev.UserID, &rev.UserName,
			&rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			slog.Error("failed to scan review", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		reviews = append(reviews, rev)
	}

	middleware.JSONResponse(w, http.StatusOK, reviews)
}
