// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"errors"
	"testing"
	"time"
)

var tallyNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func restaurantBallot(allowMultiple bool) *Ballot {
	return &Ballot{
		ID:            "ballot-1",
		Kind:          KindRestaurant,
		Title:         "Friday lunch",
		CreatedBy:     "creator",
		AllowMultiple: allowMultiple,
		Status:        BallotActive,
		EndTime:       tallyNow.Add(24 * time.Hour),
		Options: []Option{
			{ID: "opt-a", Label: "A", Key: OptionKey{RestaurantID: "a"}},
			{ID: "opt-b", Label: "B", Key: OptionKey{RestaurantID: "b"}},
		},
	}
}

func keyFor(id string) OptionKey {
	return OptionKey{RestaurantID: id}
}

func TestCastVoteExampleScenario(t *testing.T) {
	b := restaurantBallot(false)

	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("u1 vote failed: %v", err)
	}
	if b.Options[0].Count != 1 || b.Options[1].Count != 0 || b.TotalVoters != 1 {
		t.Fatalf("After u1->A: counts %d/%d, voters %d", b.Options[0].Count, b.Options[1].Count, b.TotalVoters)
	}

	if err := b.CastOrRetractVote("u2", "Ben", keyFor("b"), tallyNow); err != nil {
		t.Fatalf("u2 vote failed: %v", err)
	}
	if b.Options[0].Count != 1 || b.Options[1].Count != 1 || b.TotalVoters != 2 {
		t.Fatalf("After u2->B: counts %d/%d, voters %d", b.Options[0].Count, b.Options[1].Count, b.TotalVoters)
	}

	// Exclusive-choice move: u1 switches from A to B.
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("b"), tallyNow); err != nil {
		t.Fatalf("u1 switch failed: %v", err)
	}
	if b.Options[0].Count != 0 || b.Options[1].Count != 2 || b.TotalVoters != 2 {
		t.Fatalf("After u1 switch: counts %d/%d, voters %d", b.Options[0].Count, b.Options[1].Count, b.TotalVoters)
	}

	if err := b.Close("creator", tallyNow); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.WinnerOptionID == nil || *b.WinnerOptionID != "opt-b" {
		t.Errorf("Expected winner opt-b, got %v", b.WinnerOptionID)
	}
}

func TestVoteToggleRetracts(t *testing.T) {
	b := restaurantBallot(false)

	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("First vote failed: %v", err)
	}
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow.Add(time.Minute)); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if b.Options[0].Count != 0 || b.TotalVoters != 0 {
		t.Errorf("Expected pre-vote state after toggle, got count %d voters %d", b.Options[0].Count, b.TotalVoters)
	}
}

func TestMultipleChoicesAccumulate(t *testing.T) {
	b := restaurantBallot(true)

	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("Vote A failed: %v", err)
	}
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("b"), tallyNow); err != nil {
		t.Fatalf("Vote B failed: %v", err)
	}
	if b.Options[0].Count != 1 || b.Options[1].Count != 1 {
		t.Errorf("Expected both options voted, got %d/%d", b.Options[0].Count, b.Options[1].Count)
	}
	if b.TotalVoters != 1 {
		t.Errorf("Expected 1 distinct voter, got %d", b.TotalVoters)
	}
}

func TestVoteUnknownOption(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("zzz"), tallyNow); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Expected ErrUnknownOption, got %v", err)
	}
}

func TestVoteOnClosedBallot(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if err := b.Close("creator", tallyNow); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	err := b.CastOrRetractVote("u2", "Ben", keyFor("b"), tallyNow)
	if !errors.Is(err, ErrBallotClosed) {
		t.Fatalf("Expected ErrBallotClosed, got %v", err)
	}
	if b.Options[0].Count != 1 || b.Options[1].Count != 0 {
		t.Errorf("Counts changed on rejected vote: %d/%d", b.Options[0].Count, b.Options[1].Count)
	}
}

func TestVoteAfterDeadlineClosesLazily(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	late := b.EndTime.Add(time.Second)
	err := b.CastOrRetractVote("u2", "Ben", keyFor("b"), late)
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("Expected ErrDeadlinePassed, got %v", err)
	}

	// The rejection closes the ballot and computes the winner as a side
	// effect, without counting the rejected vote.
	if b.Status != BallotDone {
		t.Errorf("Expected ballot closed, got %s", b.Status)
	}
	if b.WinnerOptionID == nil || *b.WinnerOptionID != "opt-a" {
		t.Errorf("Expected winner opt-a, got %v", b.WinnerOptionID)
	}
	if b.Options[1].Count != 0 {
		t.Errorf("Rejected vote was counted: %d", b.Options[1].Count)
	}
}

func TestCloseTieBreakFirstOptionWins(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.CastOrRetractVote("u1", "Ana", keyFor("a"), tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if err := b.CastOrRetractVote("u2", "Ben", keyFor("b"), tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if err := b.Close("creator", tallyNow); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.WinnerOptionID == nil || *b.WinnerOptionID != "opt-a" {
		t.Errorf("Expected first-listed option to win the tie, got %v", b.WinnerOptionID)
	}
}

func TestCloseWithoutVotesLeavesNoWinner(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.Close("creator", tallyNow); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.WinnerOptionID != nil {
		t.Errorf("Expected no winner on a voteless ballot, got %v", *b.WinnerOptionID)
	}
}

func TestCloseAuthorization(t *testing.T) {
	b := restaurantBallot(false)
	if err := b.Close("someone-else", tallyNow); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("Expected ErrNotCreator, got %v", err)
	}
	if err := b.Close("creator", tallyNow); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close("creator", tallyNow); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Expected ErrAlreadyClosed, got %v", err)
	}
}

func TestEnsureClosed(t *testing.T) {
	b := restaurantBallot(false)
	if b.EnsureClosed(tallyNow) {
		t.Error("Ballot before deadline should not close")
	}
	if !b.EnsureClosed(b.EndTime.Add(time.Second)) {
		t.Error("Ballot past deadline should close on read")
	}
	if b.Status != BallotDone || b.ClosedAt == nil {
		t.Errorf("Expected closed ballot with timestamp, got %s", b.Status)
	}
	// Second read is a no-op.
	if b.EnsureClosed(b.EndTime.Add(time.Hour)) {
		t.Error("Already-closed ballot reported a transition")
	}
}

func TestDateBallotMatchingAndAggregates(t *testing.T) {
	mon := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	tue := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	b := &Ballot{
		ID:        "ballot-2",
		Kind:      KindDate,
		Title:     "Team dinner",
		CreatedBy: "creator",
		Status:    BallotActive,
		EndTime:   tallyNow.Add(24 * time.Hour),
		Options: []Option{
			{ID: "opt-1", Key: OptionKey{Date: mon, SlotStart: "11:30", SlotEnd: "12:30"}},
			{ID: "opt-2", Key: OptionKey{Date: mon, SlotStart: "12:30", SlotEnd: "13:30"}},
			{ID: "opt-3", Key: OptionKey{Date: tue, SlotStart: "11:30", SlotEnd: "12:30"}},
		},
	}

	// Date matching ignores the time-of-day component.
	monAfternoon := OptionKey{Date: mon.Add(15 * time.Hour), SlotStart: "11:30", SlotEnd: "12:30"}
	if err := b.CastOrRetractVote("u1", "Ana", monAfternoon, tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if b.Options[0].Count != 1 {
		t.Fatalf("Expected Monday 11:30 slot to match, counts %d/%d/%d",
			b.Options[0].Count, b.Options[1].Count, b.Options[2].Count)
	}

	if err := b.CastOrRetractVote("u2", "Ben", OptionKey{Date: mon, SlotStart: "12:30", SlotEnd: "13:30"}, tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if err := b.CastOrRetractVote("u3", "Cho", OptionKey{Date: tue, SlotStart: "11:30", SlotEnd: "12:30"}, tallyNow); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	if got := b.DateTotals["2026-08-03"]; got != 2 {
		t.Errorf("Expected 2 votes aggregated for Monday, got %d", got)
	}
	if got := b.DateTotals["2026-08-04"]; got != 1 {
		t.Errorf("Expected 1 vote aggregated for Tuesday, got %d", got)
	}
	if b.TotalVoters != 3 {
		t.Errorf("Expected 3 distinct voters, got %d", b.TotalVoters)
	}
}
