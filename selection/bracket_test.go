// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 0))
}

// playOut resolves every match by always picking the first contestant, and
// returns the champion.
func playOut(t *testing.T, b *Bracket) Candidate {
	t.Helper()
	for b.State == BracketInProgress {
		first, _, err := b.CurrentMatch()
		if err != nil {
			t.Fatalf("CurrentMatch failed: %v", err)
		}
		if err := b.ResolveMatch(first.ID); err != nil {
			t.Fatalf("ResolveMatch failed: %v", err)
		}
	}
	if b.Winner == nil {
		t.Fatal("Completed bracket has no winner")
	}
	return *b.Winner
}

func comparisons(b *Bracket) int {
	n := 0
	for _, h := range b.History {
		if !h.AutoAdvance {
			n++
		}
	}
	return n
}

func byes(b *Bracket) int {
	return len(b.History) - comparisons(b)
}

func TestStartBracketTooFewCandidates(t *testing.T) {
	for _, pool := range [][]Candidate{nil, candidates("a")} {
		if _, err := StartBracket(pool, testRNG()); !errors.Is(err, ErrInsufficientCandidates) {
			t.Errorf("Pool of %d: expected ErrInsufficientCandidates, got %v", len(pool), err)
		}
	}
}

func TestBracketRoundNames(t *testing.T) {
	tests := []struct {
		entrants int
		want     string
	}{
		{2, "final"},
		{3, "final"}, // bye removed before naming
		{4, "semifinal"},
		{8, "quarterfinal"},
		{16, "round of 16"},
		{32, "round of 32"},
	}
	for _, tt := range tests {
		pool := make([]Candidate, tt.entrants)
		for i := range pool {
			pool[i] = Candidate{ID: string(rune('a' + i)), Name: "r"}
		}
		b, err := StartBracket(pool, testRNG())
		if err != nil {
			t.Fatalf("StartBracket(%d) failed: %v", tt.entrants, err)
		}
		if b.RoundName != tt.want {
			t.Errorf("%d entrants: expected round %q, got %q", tt.entrants, tt.want, b.RoundName)
		}
	}
}

func TestBracketEvenPool(t *testing.T) {
	b, err := StartBracket(candidates("a", "b", "c", "d"), testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}
	if len(b.Round) != 4 || b.MatchIndex != 0 {
		t.Fatalf("Expected round of 4 at match 0, got %d at %d", len(b.Round), b.MatchIndex)
	}

	playOut(t, b)

	if got := comparisons(b); got != 3 {
		t.Errorf("Expected 3 comparisons, got %d", got)
	}
	if got := byes(b); got != 0 {
		t.Errorf("Expected no byes, got %d", got)
	}
}

func TestBracketOddPoolBye(t *testing.T) {
	b, err := StartBracket(candidates("a", "b", "c", "d", "e"), testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}

	// 5 entrants: one set aside, first round pairs the remaining 4.
	if len(b.Round) != 4 {
		t.Fatalf("Expected 4 paired candidates in round 1, got %d", len(b.Round))
	}
	if got := byes(b); got != 1 {
		t.Fatalf("Expected 1 bye after start, got %d", got)
	}
	byeID := b.History[0].Winner.ID

	// The first-round bye plays in round 2 rather than being set aside again.
	if err := b.ResolveMatch(b.Round[0].ID); err != nil {
		t.Fatalf("ResolveMatch failed: %v", err)
	}
	if err := b.ResolveMatch(b.Round[2].ID); err != nil {
		t.Fatalf("ResolveMatch failed: %v", err)
	}
	if b.Round[0].ID != byeID {
		t.Errorf("Expected first-round bye %q to open round 2, got %q", byeID, b.Round[0].ID)
	}

	playOut(t, b)

	// 5 entrants always take 4 comparisons; the odd-round rule fires once
	// more when the 3-entry second round forms.
	if got := comparisons(b); got != 4 {
		t.Errorf("Expected 4 comparisons, got %d", got)
	}
	if got := byes(b); got != 2 {
		t.Errorf("Expected 2 byes for a 5-candidate bracket, got %d", got)
	}
}

func TestBracketDeterministicGivenSeedAndPicks(t *testing.T) {
	pool := candidates("a", "b", "c", "d", "e", "f", "g")

	run := func() (Candidate, int) {
		b, err := StartBracket(pool, rand.New(rand.NewPCG(99, 1)))
		if err != nil {
			t.Fatalf("StartBracket failed: %v", err)
		}
		w := playOut(t, b)
		return w, len(b.History)
	}

	w1, h1 := run()
	w2, h2 := run()
	if w1.ID != w2.ID {
		t.Errorf("Same seed and picks produced different winners: %q vs %q", w1.ID, w2.ID)
	}
	if h1 != h2 {
		t.Errorf("Same seed and picks produced different history lengths: %d vs %d", h1, h2)
	}
}

func TestBracketComparisonCountMatchesPoolSize(t *testing.T) {
	for n := 2; n <= 12; n++ {
		pool := make([]Candidate, n)
		for i := range pool {
			pool[i] = Candidate{ID: string(rune('a' + i)), Name: "r"}
		}
		b, err := StartBracket(pool, testRNG())
		if err != nil {
			t.Fatalf("StartBracket(%d) failed: %v", n, err)
		}
		playOut(t, b)
		if got := comparisons(b); got != n-1 {
			t.Errorf("%d entrants: expected %d comparisons, got %d", n, n-1, got)
		}
	}
}

func TestBracketTruncatesOversizedPool(t *testing.T) {
	pool := make([]Candidate, 40)
	for i := range pool {
		pool[i] = Candidate{ID: string(rune('A' + i)), Name: "r"}
	}
	b, err := StartBracket(pool, testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}
	if len(b.Round) != MaxBracketEntrants {
		t.Fatalf("Expected %d entrants after truncation, got %d", MaxBracketEntrants, len(b.Round))
	}
	playOut(t, b)
	if got := comparisons(b); got != MaxBracketEntrants-1 {
		t.Errorf("Expected %d comparisons, got %d", MaxBracketEntrants-1, got)
	}
}

func TestResolveMatchRejectsOutsiders(t *testing.T) {
	b, err := StartBracket(candidates("a", "b", "c", "d"), testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}
	if err := b.ResolveMatch("nope"); !errors.Is(err, ErrNotInMatch) {
		t.Errorf("Expected ErrNotInMatch, got %v", err)
	}
	// Third contestant is not in the current match either.
	if err := b.ResolveMatch(b.Round[2].ID); !errors.Is(err, ErrNotInMatch) {
		t.Errorf("Expected ErrNotInMatch for non-current contestant, got %v", err)
	}
}

func TestResolveMatchAfterCompletion(t *testing.T) {
	b, err := StartBracket(candidates("a", "b"), testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}
	playOut(t, b)
	if err := b.ResolveMatch("a"); !errors.Is(err, ErrBracketCompleted) {
		t.Errorf("Expected ErrBracketCompleted, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := StartBracket(candidates("a", "b", "c", "d"), testRNG())
	if err != nil {
		t.Fatalf("StartBracket failed: %v", err)
	}

	snap := b.Clone()
	playOut(t, b)

	if snap.State != BracketInProgress {
		t.Errorf("Snapshot state changed to %q", snap.State)
	}
	if snap.Winner != nil {
		t.Error("Snapshot gained a winner from the original's progress")
	}
	if snap.MatchIndex != 0 || len(snap.History) != 0 {
		t.Errorf("Snapshot advanced: match_index=%d history=%d", snap.MatchIndex, len(snap.History))
	}
	if len(snap.Round) != 4 {
		t.Errorf("Expected snapshot to keep the opening round of 4, got %d", len(snap.Round))
	}

	// And the other direction: mutating the snapshot leaves the original's
	// completed state alone.
	done := b.Clone()
	done.Winner.Name = "tampered"
	done.Round[0].Name = "tampered"
	if b.Winner.Name == "tampered" || b.Round[0].Name == "tampered" {
		t.Error("Snapshot shares memory with the original")
	}
}
