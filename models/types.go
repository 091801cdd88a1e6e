package models

import (
	"time"

	"github.com/lunchcrew/lunchpick/selection"
)

// Restaurant categories. Free-form strings are rejected at the boundary so
// invalid categories never reach the database.
type Category string

const (
	CategoryKorean   Category = "korean"
	CategoryChinese  Category = "chinese"
	CategoryJapanese Category = "japanese"
	CategoryWestern  Category = "western"
	CategorySnack    Category = "snack"
	CategoryOther    Category = "other"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryKorean, CategoryChinese, CategoryJapanese, CategoryWestern, CategorySnack, CategoryOther:
		return true
	}
	return false
}

// Mini-games with leaderboards
type Game string

const (
	GameSnake Game = "snake"
	GameJump  Game = "jump"
)

func ValidGame(g Game) bool {
	return g == GameSnake || g == GameJump
}

// Selection methods recorded for outcomes
const (
	MethodDraw     = "draw"
	MethodWorldcup = "worldcup"
	MethodBallot   = "ballot"
)

// Request types

type LoginRequest struct {
	Name string `json:"name"`
}

type CreateRestaurantRequest struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type UpdateRestaurantRequest struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type AddExclusionRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Reason       string `json:"reason,omitempty"`
}

type DrawRequest struct {
	RecencyEnabled *bool `json:"recency_enabled,omitempty"`
	RecencyDays    *int  `json:"recency_days,omitempty"`
}

type PickWinnerRequest struct {
	WinnerID string `json:"winner_id"`
}

type BallotOptionRequest struct {
	RestaurantID string `json:"restaurant_id,omitempty"`
	Date         string `json:"date,omitempty"` // 2006-01-02
	SlotStart    string `json:"slot_start,omitempty"`
	SlotEnd      string `json:"slot_end,omitempty"`
}

type CreateBallotRequest struct {
	Kind          selection.BallotKind  `json:"kind"`
	Title         string                `json:"title"`
	EndTime       time.Time             `json:"end_time"`
	AllowMultiple bool                  `json:"allow_multiple"`
	Options       []BallotOptionRequest `json:"options"`
}

type CastVoteRequest struct {
	RestaurantID string `json:"restaurant_id,omitempty"`
	Date         string `json:"date,omitempty"` // 2006-01-02
	SlotStart    string `json:"slot_start,omitempty"`
	SlotEnd      string `json:"slot_end,omitempty"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type RecordVisitRequest struct {
	RestaurantID string `json:"restaurant_id"`
	VisitedOn    string `json:"visited_on"` // 2006-01-02
}

type SubmitScoreRequest struct {
	Score int `json:"score"`
}

// Response types

type LoginResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

type DrawResponse struct {
	Winner        selection.Candidate `json:"winner"`
	EligibleCount int                 `json:"eligible_count"`
	LastVisited   string              `json:"last_visited,omitempty"` // humanized, e.g. "3 days ago"
}

type WorldcupResponse struct {
	SessionID string                `json:"session_id"`
	State     *selection.Bracket    `json:"state"`
	Match     []selection.Candidate `json:"match,omitempty"`
}

type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type AnalyticsBucket struct {
	Route string `json:"route"`
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Restaurant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Active      bool      `json:"active"`
	AvgRating   float64   `json:"avg_rating"`
	ReviewCount int       `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Exclusion struct {
	UserID       string    `json:"user_id"`
	RestaurantID string    `json:"restaurant_id"`
	Restaurant   string    `json:"restaurant,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Visit struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name,omitempty"`
	VisitedOn      string    `json:"visited_on"` // 2006-01-02
	Ago            string    `json:"ago,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
