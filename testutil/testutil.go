// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lunchcrew/lunchpick/auth"
	"github.com/lunchcrew/lunchpick/cliparse"
	"github.com/lunchcrew/lunchpick/db"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens a fresh in-memory database with the full schema. Each
// test gets its own database; nothing leaks between tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// An in-memory database exists per connection; a second connection
	// would see an empty database.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3180,
		DatabaseType: "sqlite",
		DatabaseURL:  ":memory:",
		SessionSalt:  "test-session-salt",
		RateLimit:    1000,
		RateWindowS:  60,
		RecencyDays:  7,
	}
}

// CreateTestUser inserts a user and returns its ID and session token.
func CreateTestUser(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string) (userID, token string) {
	t.Helper()

	userID, _ = auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO app_user (id, name, created_at)
		VALUES ($1, $2, $3)
	`, userID, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID, auth.SessionToken(userID, cfg.SessionSalt)
}

// CreateTestRestaurant inserts an active restaurant and returns its ID.
func CreateTestRestaurant(t *testing.T, conn *sql.DB, name, category string) string {
	t.Helper()

	id, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO restaurant (id, name, category, active, created_at)
		VALUES ($1, $2, $3, 1, $4)
	`, id, name, category, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test restaurant: %v", err)
	}

	return id
}

// AddTestExclusion marks a restaurant as never-offer for a user.
func AddTestExclusion(t *testing.T, conn *sql.DB, userID, restaurantID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO exclusion (user_id, restaurant_id, reason, created_at)
		VALUES ($1, $2, '', $3)
	`, userID, restaurantID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test exclusion: %v", err)
	}
}

// AddTestVisit records a visit on the given ISO date (2006-01-02).
func AddTestVisit(t *testing.T, conn *sql.DB, userID, restaurantID, visitedOn string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO visit (id, user_id, restaurant_id, visited_on, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, restaurantID, visitedOn, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test visit: %v", err)
	}

	return id
}

// CreateTestBallot inserts a ballot row and returns its ID.
// kind is "restaurant" or "date"; endTime controls deadline behavior.
func CreateTestBallot(t *testing.T, conn *sql.DB, createdBy, kind string, allowMultiple bool, endTime time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	multi := 0
	if allowMultiple {
		multi = 1
	}
	_, err := conn.Exec(`
		INSERT INTO ballot (id, kind, title, created_by, allow_multiple, status, end_time, created_at)
		VALUES ($1, $2, 'Test Ballot', $3, $4, 'active', $5, $6)
	`, id, kind, createdBy, multi, endTime, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return id
}

// AddTestBallotOption appends an option to a ballot and returns its ID.
// restaurantID and optionDate fill the key for the respective ballot kind;
// pass "" for the one that does not apply.
func AddTestBallotOption(t *testing.T, conn *sql.DB, ballotID string, position int, label, restaurantID, optionDate string) string {
	t.Helper()

	id, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO ballot_option (id, ballot_id, position, label, restaurant_id, option_date, slot_start, slot_end)
		VALUES ($1, $2, $3, $4, $5, $6, '', '')
	`, id, ballotID, position, label, restaurantID, optionDate)
	if err != nil {
		t.Fatalf("Failed to create test ballot option: %v", err)
	}

	return id
}

// AddTestVote casts a vote directly into storage.
func AddTestVote(t *testing.T, conn *sql.DB, optionID, voterID, voterName string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO ballot_vote (option_id, voter_id, voter_name, cast_at)
		VALUES ($1, $2, $3, $4)
	`, optionID, voterID, voterName, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// SessionHeaders builds the auth headers for a user.
func SessionHeaders(userID, token string) map[string]string {
	return map[string]string{
		"X-User-ID":       userID,
		"X-Session-Token": token,
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
