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

type RestaurantHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewRestaurantHandler(db *sql.DB, cfg cliparse.Config) *RestaurantHandler {
	return &RestaurantHandler{db: db, cfg: cfg}
}

// selectRestaurant is the shared projection: one row with review aggregates.
const selectRestaurant = `
	SELECT r.id, r.name, r.category, r.active, r.created_at,
	       COALESCE(AVG(v.rating), 0), COUNT(v.id)
	FROM restaurant r
	LEFT JOIN review v ON v.restaurant_id = r.id
`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (models.Restaurant, error) {
	var rest models.Restaurant
	var active int
	err := row.Scan(&rest.ID, &rest.Name, &rest.Category, &active,
		&rest.CreatedAt, &rest.AvgRating, &rest.ReviewCount)
	rest.Active = active != 0
	return rest, err
}

// CreateRestaurant handles POST /restaurants
func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	var req models.CreateRestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if !models.ValidCategory(req.Category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid category")
		return
	}

	id, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate restaurant ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create restaurant")
		return
	}

	rest := models.Restaurant{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Active:    true,
		CreatedAt: time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO restaurant (id, name, category, active, created_at)
		VALUES ($1, $2, $3, 1, $4)
	`, rest.ID, rest.Name, rest.Category, rest.CreatedAt)
	if err != nil {
		slog.Error("failed to insert restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create restaurant")
		return
	}

	slog.Info("restaurant created", "restaurant_id", rest.ID, "name", rest.Name)

	middleware.JSONResponse(w, http.StatusCreated, rest)
}

// ListRestaurants handles GET /restaurants
//
// Returns active restaurants with review aggregates. ?all=true includes
// deactivated entries.
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	query := selectRestaurant
	if r.URL.Query().Get("all") != "true" {
		query += ` WHERE r.active = 1`
	}
	query += ` GROUP BY r.id, r.name, r.category, r.active, r.created_at ORDER BY r.name`

	rows, err := h.db.Query(query)
	if err != nil {
		slog.Error("failed to query restaurants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			slog.Error("failed to scan restaurant", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		restaurants = append(restaurants, rest)
	}

	middleware.JSONResponse(w, http.StatusOK, restaurants)
}

// GetRestaurant handles GET /restaurants/:id
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	row := h.db.QueryRow(selectRestaurant+`
		WHERE r.id = $1
		GROUP BY r.id, r.name, r.category, r.active, r.created_at
	`, id)

	rest, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rest)
}

// UpdateRestaurant handles PUT /restaurants/:id
func (h *RestaurantHandler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	var req models.UpdateRestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if !models.ValidCategory(req.Category) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid category")
		return
	}

	res, err := h.db.Exec(`
		UPDATE restaurant SET name = $1, category = $2 WHERE id = $3
	`, req.Name, req.Category, id)
	if err != nil {
		slog.Error("failed to update restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update restaurant")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	h.GetRestaurant(w, r)
}

// DeleteRestaurant handles DELETE /restaurants/:id
//
// Deactivates rather than deletes: history (visits, reviews, outcomes) keeps
// referring to the row, it just stops being offered.
func (h *RestaurantHandler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(h.db, h.cfg, w, r); !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	res, err := h.db.Exec(`UPDATE restaurant SET active = 0 WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to deactivate restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete restaurant")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	slog.Info("restaurant deactivated", "restaurant_id", id)

	w.WriteHeader(http.StatusNoContent)
}
