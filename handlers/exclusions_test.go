// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunchcrew/lunchpick/models"
	"github.com/lunchcrew/lunchpick/testutil"
)

func TestAddExclusion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewExclusionHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")
	restID := testutil.CreateTestRestaurant(t, db, "Spicy Hut", "korean")

	req := testutil.MakeRequest("POST", "/exclusions",
		models.AddExclusionRequest{RestaurantID: restID, Reason: "too spicy"},
		testutil.SessionHeaders(userID, token))
	w := httptest.NewRecorder()
	handler.AddExclusion(w, req)

	testutil.AssertStatus(t, w, http.StatusNoContent)

	var reason string
	db.QueryRow(`SELECT reason FROM exclusion WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restID).Scan(&reason)
	if reason != "too spicy" {
		t.Errorf("Expected reason 'too spicy', got '%s'", reason)
	}
}

func TestAddExclusion_DuplicateUpdatesReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewExclusionHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")
	restID := testutil.CreateTestRestaurant(t, db, "Spicy Hut", "korean")
	headers := testutil.SessionHeaders(userID, token)

	for _, reason := range []string{"first", "second"} {
		req := testutil.MakeRequest("POST", "/exclusions",
			models.AddExclusionRequest{RestaurantID: restID, Reason: reason}, headers)
		w := httptest.NewRecorder()
		handler.AddExclusion(w, req)
		testutil.AssertStatus(t, w, http.StatusNoContent)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM exclusion WHERE user_id = $1`, userID).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 exclusion row, got %d", count)
	}

	var reason string
	db.QueryRow(`SELECT reason FROM exclusion WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restID).Scan(&reason)
	if reason != "second" {
		t.Errorf("Expected updated reason 'second', got '%s'", reason)
	}
}

func TestAddExclusion_UnknownRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewExclusionHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")

	req := testutil.MakeRequest("POST", "/exclusions",
		models.AddExclusionRequest{RestaurantID: "nope"},
		testutil.SessionHeaders(userID, token))
	w := httptest.NewRecorder()
	handler.AddExclusion(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestListExclusions_OnlyOwn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewExclusionHandler(db, cfg)

	aliceID, aliceToken := testutil.CreateTestUser(t, db, cfg, "Alice")
	bobID, _ := testutil.CreateTestUser(t, db, cfg, "Bob")
	restA := testutil.CreateTestRestaurant(t, db, "A", "korean")
	restB := testutil.CreateTestRestaurant(t, db, "B", "chinese")

	testutil.AddTestExclusion(t, db, aliceID, restA)
	testutil.AddTestExclusion(t, db, bobID, restB)

	req := testutil.MakeRequest("GET", "/exclusions", nil, testutil.SessionHeaders(aliceID, aliceToken))
	w := httptest.NewRecorder()
	handler.ListExclusions(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var list []models.Exclusion
	testutil.AssertJSON(t, w, &list)

	if len(list) != 1 || list[0].RestaurantID != restA {
		t.Errorf("Expected only Alice's exclusion, got %+v", list)
	}
	if list[0].Restaurant != "A" {
		t.Errorf("Expected restaurant name joined in, got '%s'", list[0].Restaurant)
	}
}

func TestRemoveExclusion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewExclusionHandler(db, cfg)
	userID, token := testutil.CreateTestUser(t, db, cfg, "Alice")
	restID := testutil.CreateTestRestaurant(t, db, "A", "korean")
	testutil.AddTestExclusion(t, db, userID, restID)

	req := testutil.MakeRequest("DELETE", "/exclusions/"+restID, nil, testutil.SessionHeaders(userID, token))
	req.SetPathValue("restaurantID", restID)
	w := httptest.NewRecorder()
	handler.RemoveExclusion(w, req)

	testutil.AssertStatus(t, w, http.StatusNoContent)

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM exclusion WHERE user_id = $1`, userID).Scan(&count)
	if count != 0 {
		t.Errorf("Expected exclusion removed, found %d rows", count)
	}

	// Removing again is a 404
	req = testutil.MakeRequest("DELETE", "/exclusions/"+restID, nil, testutil.SessionHeaders(userID, token))
	req.SetPathValue("restaurantID", restID)
	w = httptest.NewRecorder()
	handler.RemoveExclusion(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
