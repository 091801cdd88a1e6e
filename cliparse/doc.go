// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded (via godotenv) before the
environment is consulted.

# Config Fields

  - Port: Server listen port (default: 3180)
  - DatabaseType: "sqlite" (default) or "postgres"
  - DatabaseURL: connection string (default: file:lunchpick.db for sqlite;
    required for postgres)
  - SessionSalt: Secret for session token HMAC (required)
  - RateLimit / RateWindowS: requests per client per window (default: 120/60s)
  - RecencyDays: default recency exclusion window for draws (default: 7)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type (sqlite or postgres)
	-session-salt  Session token salt
	-rate-limit    Requests allowed per client per window
	-rate-window   Rate limit window in seconds
	-recency-days  Default recency exclusion window for draws

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SALT    → -session-salt
	RATE_LIMIT      → -rate-limit
	RATE_WINDOW_SEC → -rate-window
	RECENCY_DAYS    → -recency-days

CLI flags take precedence over environment variables.

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(dbConn, cfg)
*/
package cliparse
