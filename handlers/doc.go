// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Lunchpick API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - UserHandler: Display-name login
  - RestaurantHandler: Restaurant catalog CRUD
  - ExclusionHandler: Per-user "never offer me this" lists
  - DrawHandler: Filtered random pick
  - WorldcupHandler: Interactive elimination tournaments
  - BallotHandler: Group votes on restaurants or dates
  - ReviewHandler: Ratings and comments
  - VisitHandler: Visit calendar
  - GameHandler: Mini-game leaderboards
  - AnalyticsHandler: Page-view tracking

Handlers are created via constructor functions that accept *sql.DB and Config:

	drawHandler := handlers.NewDrawHandler(db, cfg)

# Sessions

Login returns a deterministic session token for the account:

	POST /login → LoginResponse{user, session_token}

Authenticated operations require the X-User-ID and X-Session-Token headers;
requireUser validates them and loads the account.

# Selection Flows

The three ways a group decides lunch:

	POST /draw                 → one eligible restaurant, uniformly at random
	POST /worldcup             → start a bracket; resolve with /worldcup/{id}/pick
	POST /ballots              → open a vote; cast with /ballots/{id}/vote

All three record their outcome in selection_record. The selection package
holds the underlying deterministic logic; handlers only load state, apply
it, and persist.

# Lazy Ballot Closing

A ballot past its deadline closes on the next read or write that touches it.
Handlers that load ballots call EnsureClosed and persist the transition, so
no background job is needed.
*/
package handlers
