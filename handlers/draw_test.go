// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lunchcrew/lunchpick/models"
	"github.com/lunchcrew/lunchpick/testutil"
)

func TestDraw_PicksFromPool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	ids := map[string]bool{
		testutil.CreateTestRestaurant(t, db, "A", "korean"):  true,
		testutil.CreateTestRestaurant(t, db, "B", "chinese"): true,
		testutil.CreateTestRestaurant(t, db, "C", "western"): true,
	}

	req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
	w := httptest.NewRecorder()
	handler.Draw(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.DrawResponse
	testutil.AssertJSON(t, w, &resp)

	if !ids[resp.Winner.ID] {
		t.Errorf("Winner %s not in pool", resp.Winner.ID)
	}
	if resp.EligibleCount != 3 {
		t.Errorf("Expected 3 eligible, got %d", resp.EligibleCount)
	}

	// Outcome recorded
	var method string
	db.QueryRow(`SELECT method FROM selection_record WHERE user_id = $1`, userID).Scan(&method)
	if method != models.MethodDraw {
		t.Errorf("Expected recorded draw outcome, got '%s'", method)
	}
}

func TestDraw_RespectsExclusions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	keepID := testutil.CreateTestRestaurant(t, db, "Keep", "korean")
	banID := testutil.CreateTestRestaurant(t, db, "Banned", "chinese")
	testutil.AddTestExclusion(t, db, userID, banID)

	// Exclusions are absolute, so every draw must land on the other one.
	for i := 0; i < 10; i++ {
		req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
		w := httptest.NewRecorder()
		handler.Draw(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.DrawResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Winner.ID != keepID {
			t.Fatalf("Draw %d: expected %s, got %s", i, keepID, resp.Winner.ID)
		}
	}
}

func TestDraw_RecencyWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	freshID := testutil.CreateTestRestaurant(t, db, "Fresh", "korean")
	recentID := testutil.CreateTestRestaurant(t, db, "Recent", "chinese")

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	testutil.AddTestVisit(t, db, userID, recentID, yesterday)

	t.Run("recent visit filtered out", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
			w := httptest.NewRecorder()
			handler.Draw(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.DrawResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Winner.ID != freshID {
				t.Fatalf("Draw %d: expected %s, got %s", i, freshID, resp.Winner.ID)
			}
			if resp.EligibleCount != 1 {
				t.Fatalf("Expected 1 eligible, got %d", resp.EligibleCount)
			}
		}
	})

	t.Run("recency can be disabled", func(t *testing.T) {
		off := false
		req := testutil.MakeRequest("POST", "/draw",
			models.DrawRequest{RecencyEnabled: &off},
			testutil.SessionHeaders(userID, token))
		w := httptest.NewRecorder()
		handler.Draw(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.DrawResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.EligibleCount != 2 {
			t.Errorf("Expected 2 eligible with recency off, got %d", resp.EligibleCount)
		}
	})

	t.Run("invalid recency_days rejected", func(t *testing.T) {
		days := 0
		req := testutil.MakeRequest("POST", "/draw",
			models.DrawRequest{RecencyDays: &days},
			testutil.SessionHeaders(userID, token))
		w := httptest.NewRecorder()
		handler.Draw(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestDraw_AllRecentWaivesWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	// Both restaurants visited yesterday: the window alone would empty the
	// pool, so it is waived and both stay eligible.
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	for _, name := range []string{"A", "B"} {
		id := testutil.CreateTestRestaurant(t, db, name, "korean")
		testutil.AddTestVisit(t, db, userID, id, yesterday)
	}

	req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
	w := httptest.NewRecorder()
	handler.Draw(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.DrawResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.EligibleCount != 2 {
		t.Errorf("Expected waived window to keep 2 eligible, got %d", resp.EligibleCount)
	}
	if resp.LastVisited == "" {
		t.Error("Expected humanized last visit for a visited winner")
	}
}

func TestDraw_NoEligible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewDrawHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	t.Run("empty catalog", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
		w := httptest.NewRecorder()
		handler.Draw(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("everything excluded", func(t *testing.T) {
		restID := testutil.CreateTestRestaurant(t, db, "Only", "korean")
		testutil.AddTestExclusion(t, db, userID, restID)

		req := testutil.MakeRequest("POST", "/draw", nil, testutil.SessionHeaders(userID, token))
		w := httptest.NewRecorder()
		handler.Draw(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
