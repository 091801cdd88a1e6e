// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: name
  - CreateRestaurantRequest / UpdateRestaurantRequest: name, category
  - AddExclusionRequest: restaurant_id, reason
  - DrawRequest: recency_enabled, recency_days (both optional)
  - PickWinnerRequest: winner_id
  - CreateBallotRequest: kind, title, end_time, allow_multiple, options
  - CastVoteRequest: restaurant_id, or date + slot_start + slot_end
  - CreateReviewRequest: rating (1-5), comment
  - RecordVisitRequest: restaurant_id, visited_on
  - SubmitScoreRequest: score

# Response Types

  - LoginResponse: user, session_token
  - DrawResponse: winner, eligible_count, last_visited
  - WorldcupResponse: session_id, state, match
  - LeaderboardEntry: user_id, user_name, score, rank
  - AnalyticsBucket: route, day, count
  - ErrorResponse: error, message

# Domain Types

  - User, Restaurant, Exclusion, Visit, Review

Ballot and bracket types live in the selection package; handlers persist and
serve them directly.

# Enumerations

Categories, games, and selection methods are closed sets validated at the
request boundary:

	Category: korean, chinese, japanese, western, snack, other
	Game:     snake, jump
	Method:   draw, worldcup, ballot
*/
package models
