// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Open connects to the configured database engine. Drivers must be blank
// imported by the caller (lib/pq for postgres, modernc.org/sqlite for
// sqlite).
func Open(databaseType, url string) (*sql.DB, error) {
	var driver string
	switch databaseType {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", databaseType, err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the dialect subset both engines share: TEXT/INTEGER/REAL
// types, $N placeholders, ON CONFLICT upserts. Booleans are INTEGER 0/1,
// calendar dates are TEXT in 2006-01-02 form.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Restaurants
CREATE TABLE IF NOT EXISTS restaurant (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_restaurant_active ON restaurant(active);

-- Users (login by display name)
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Per-user "never offer me this" entries
CREATE TABLE IF NOT EXISTS exclusion (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
    reason TEXT,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, restaurant_id)
);

CREATE INDEX IF NOT EXISTS idx_exclusion_user ON exclusion(user_id);

-- Visit calendar
CREATE TABLE IF NOT EXISTS visit (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
    visited_on TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visit_user_date ON visit(user_id, visited_on);

-- Reviews
CREATE TABLE IF NOT EXISTS review (
    id TEXT PRIMARY KEY,
    restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
    comment TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_restaurant ON review(restaurant_id);

-- Outcomes recorded by the draw / worldcup / ballot flows
CREATE TABLE IF NOT EXISTS selection_record (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    restaurant_id TEXT NOT NULL REFERENCES restaurant(id) ON DELETE CASCADE,
    method TEXT NOT NULL CHECK (method IN ('draw', 'worldcup', 'ballot')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selection_user ON selection_record(user_id);

-- Ballots
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('restaurant', 'date')),
    title TEXT NOT NULL,
    created_by TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    allow_multiple INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed')),
    end_time TIMESTAMP NOT NULL,
    winner_option_id TEXT,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ballot_status ON ballot(status);

-- Ballot options; position fixes the stored iteration order
CREATE TABLE IF NOT EXISTS ballot_option (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    restaurant_id TEXT,
    option_date TEXT,
    slot_start TEXT,
    slot_end TEXT
);

CREATE INDEX IF NOT EXISTS idx_ballot_option_ballot ON ballot_option(ballot_id, position);

-- Votes: at most one per (option, voter)
CREATE TABLE IF NOT EXISTS ballot_vote (
    option_id TEXT NOT NULL REFERENCES ballot_option(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    voter_name TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    PRIMARY KEY (option_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_vote_option ON ballot_vote(option_id);

-- Mini-game scores
CREATE TABLE IF NOT EXISTS game_score (
    id TEXT PRIMARY KEY,
    game TEXT NOT NULL CHECK (game IN ('snake', 'jump')),
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    score INTEGER NOT NULL CHECK (score >= 0),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_score_game ON game_score(game, score);

-- Page-view analytics
CREATE TABLE IF NOT EXISTS analytics_event (
    id TEXT PRIMARY KEY,
    route TEXT NOT NULL,
    method TEXT NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    occurred_on TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analytics_route_day ON analytics_event(route, occurred_on);
`
