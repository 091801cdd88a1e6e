// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Lunchpick API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health and observability:

	GET /health
	GET /metrics

Sessions:

	POST /login - Display-name login, returns session token

Restaurant catalog (mutations require session headers):

	POST   /restaurants               - Add restaurant
	GET    /restaurants               - List (?all=true includes inactive)
	GET    /restaurants/{id}          - Details with review aggregates
	PUT    /restaurants/{id}          - Update name/category
	DELETE /restaurants/{id}          - Deactivate
	POST   /restaurants/{id}/reviews  - Add or replace own review
	GET    /restaurants/{id}/reviews  - List reviews

Per-user exclusions:

	POST   /exclusions                  - Never offer a restaurant
	GET    /exclusions                  - List own exclusions
	DELETE /exclusions/{restaurantID}   - Lift an exclusion

Selection flows:

	POST /draw                  - Filtered random pick
	POST /worldcup              - Start a tournament
	GET  /worldcup/{id}         - Tournament state
	POST /worldcup/{id}/pick    - Decide the current match

Ballots:

	POST   /ballots             - Open a vote
	GET    /ballots             - List (expired ones close lazily)
	GET    /ballots/{id}        - Ballot with tallies
	POST   /ballots/{id}/vote   - Cast, move, or retract a vote
	POST   /ballots/{id}/close  - Close early (creator only)
	DELETE /ballots/{id}        - Delete (creator only)

Visits, games, analytics:

	POST   /visits                     - Record a visit
	GET    /visits                     - List (?month=YYYY-MM)
	DELETE /visits/{id}                - Remove own visit
	POST   /games/{game}/scores        - Submit mini-game score
	GET    /games/{game}/leaderboard   - Personal bests, ranked
	GET    /analytics/summary          - Per-route daily hit counts

# Middleware Stack

Every API route is wrapped, outermost first, in request logging, Prometheus
metrics, per-IP rate limiting, and page-view tracking. /health and /metrics
skip the stack.
*/
package router
