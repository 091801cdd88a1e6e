// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/handlers"
	"github.com/lunchcrew/lunchpick/metrics"
	"github.com/lunchcrew/lunchpick/middleware"
	"github.com/lunchcrew/lunchpick/ratelimit"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	restaurantHandler := handlers.NewRestaurantHandler(db, cfg)
	exclusionHandler := handlers.NewExclusionHandler(db, cfg)
	drawHandler := handlers.NewDrawHandler(db, cfg)
	worldcupHandler := handlers.NewWorldcupHandler(db, cfg)
	ballotHandler := handlers.NewBallotHandler(db, cfg)
	reviewHandler := handlers.NewReviewHandler(db, cfg)
	visitHandler := handlers.NewVisitHandler(db, cfg)
	gameHandler := handlers.NewGameHandler(db, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)

	m := metrics.New()
	limiter := ratelimit.New(cfg.RateLimit, time.Duration(cfg.RateWindowS)*time.Second, time.Now)

	// Every route gets logging, metrics, rate limiting, and page-view
	// tracking, in that order.
	wrap := func(route string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(
			middleware.WithMetrics(m, route,
				middleware.WithRateLimit(limiter,
					analyticsHandler.Track(route, h))))
	}

	// Health check and metrics scrape skip the middleware stack
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Sessions
	mux.HandleFunc("POST /login", wrap("/login", userHandler.Login))

	// Restaurant catalog
	mux.HandleFunc("POST /restaurants", wrap("/restaurants", restaurantHandler.CreateRestaurant))
	mux.HandleFunc("GET /restaurants", wrap("/restaurants", restaurantHandler.ListRestaurants))
	mux.HandleFunc("GET /restaurants/{id}", wrap("/restaurants/{id}", restaurantHandler.GetRestaurant))
	mux.HandleFunc("PUT /restaurants/{id}", wrap("/restaurants/{id}", restaurantHandler.UpdateRestaurant))
	mux.HandleFunc("DELETE /restaurants/{id}", wrap("/restaurants/{id}", restaurantHandler.DeleteRestaurant))

	// Reviews
	mux.HandleFunc("POST /restaurants/{id}/reviews", wrap("/restaurants/{id}/reviews", reviewHandler.CreateReview))
	mux.HandleFunc("GET /restaurants/{id}/reviews", wrap("/restaurants/{id}/reviews", reviewHandler.ListReviews))

	// Per-user exclusions
	mux.HandleFunc("POST /exclusions", wrap("/exclusions", exclusionHandler.AddExclusion))
	mux.HandleFunc("GET /exclusions", wrap("/exclusions", exclusionHandler.ListExclusions))
	mux.HandleFunc("DELETE /exclusions/{restaurantID}", wrap("/exclusions/{restaurantID}", exclusionHandler.RemoveExclusion))

	// Selection flows
	mux.HandleFunc("POST /draw", wrap("/draw", drawHandler.Draw))
	mux.HandleFunc("POST /worldcup", wrap("/worldcup", worldcupHandler.StartWorldcup))
	mux.HandleFunc("GET /worldcup/{id}", wrap("/worldcup/{id}", worldcupHandler.GetWorldcup))
	mux.HandleFunc("POST /worldcup/{id}/pick", wrap("/worldcup/{id}/pick", worldcupHandler.PickWinner))

	// Ballots
	mux.HandleFunc("POST /ballots", wrap("/ballots", ballotHandler.CreateBallot))
	mux.HandleFunc("GET /ballots", wrap("/ballots", ballotHandler.ListBallots))
	mux.HandleFunc("GET /ballots/{id}", wrap("/ballots/{id}", ballotHandler.GetBallot))
	mux.HandleFunc("POST /ballots/{id}/vote", wrap("/ballots/{id}/vote", ballotHandler.CastVote))
	mux.HandleFunc("POST /ballots/{id}/close", wrap("/ballots/{id}/close", ballotHandler.CloseBallot))
	mux.HandleFunc("DELETE /ballots/{id}", wrap("/ballots/{id}", ballotHandler.DeleteBallot))

	// Visit calendar
	mux.HandleFunc("POST /visits", wrap("/visits", visitHandler.RecordVisit))
	mux.HandleFunc("GET /visits", wrap("/visits", visitHandler.ListVisits))
	mux.HandleFunc("DELETE /visits/{id}", wrap("/visits/{id}", visitHandler.DeleteVisit))

	// Mini-games
	mux.HandleFunc("POST /games/{game}/scores", wrap("/games/{game}/scores", gameHandler.SubmitScore))
	mux.HandleFunc("GET /games/{game}/leaderboard", wrap("/games/{game}/leaderboard", gameHandler.Leaderboard))

	// Analytics
	mux.HandleFunc("GET /analytics/summary", wrap("/analytics/summary", analyticsHandler.Summary))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("lunchpick API v1"))
	})

	return mux
}
