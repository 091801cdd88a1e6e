// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open maps the configured database type to its driver:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, pure Go) and "postgres"
(lib/pq). The drivers are blank imported by main and by testutil.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is restricted to the dialect subset SQLite and PostgreSQL share.

# Tables

The schema includes:

  - restaurant: Candidate restaurants (soft-deleted via active flag)
  - app_user: Users identified by display name
  - exclusion: Per-user hard exclusion entries
  - visit: Visit calendar, feeds the recency filter
  - review: Ratings and comments per restaurant
  - selection_record: Outcomes of draws, worldcups, and ballots
  - ballot / ballot_option / ballot_vote: Polls
  - game_score: Mini-game leaderboards
  - analytics_event: Page-view events

# Relationships

	app_user 1──* exclusion *──1 restaurant
	app_user 1──* visit *──1 restaurant
	app_user 1──* review *──1 restaurant
	ballot 1──* ballot_option 1──* ballot_vote

All foreign keys use ON DELETE CASCADE.
*/
package db
