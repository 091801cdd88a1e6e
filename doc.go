// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Lunchpick API server.

Lunchpick is a group lunch-decision service: a shared restaurant catalog
with three ways to settle "where do we eat" — a filtered random draw, an
elimination tournament decided by taps, and ballots with live tallies.

# Starting the Server

The server runs out of the box on an embedded SQLite file:

	SESSION_SALT=secret go run main.go

Or against PostgreSQL:

	SESSION_SALT=secret go run main.go -t postgres -d "postgres://..."

# Configuration

Required settings:

  - SESSION_SALT (--session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3180)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:lunchpick.db)
  - RATE_LIMIT / RATE_WINDOW_SEC: Per-IP request budget (default: 120/60s)
  - RECENCY_DAYS: Default draw recency window (default: 7)

A .env file in the working directory is loaded first.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - selection: Deterministic core (eligibility, draw, bracket, tally)
  - handlers: HTTP request handlers over the selection core
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, rate limiting, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Engine selection and schema creation
  - ratelimit: Sliding-window per-IP limiter
  - metrics: Prometheus registry and scrape handler
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
