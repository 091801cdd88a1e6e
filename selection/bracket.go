// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// MaxBracketEntrants caps a tournament; larger shuffled pools are truncated.
const MaxBracketEntrants = 32

type BracketState string

const (
	BracketInProgress BracketState = "in_progress"
	BracketCompleted  BracketState = "completed"
)

// HistoryEntry records one resolved match, or one auto-advance (bye).
// Bye entries carry no loser and MatchIndex -1.
type HistoryEntry struct {
	Round       string     `json:"round"`
	MatchIndex  int        `json:"match_index"`
	Winner      Candidate  `json:"winner"`
	Loser       *Candidate `json:"loser,omitempty"`
	AutoAdvance bool       `json:"auto_advance,omitempty"`
}

// Bracket is a single-elimination tournament driven by human picks. It lives
// only in the caller's memory; an interrupted tournament is simply lost.
type Bracket struct {
	Round      []Candidate    `json:"round"`
	RoundName  string         `json:"round_name"`
	MatchIndex int            `json:"match_index"`
	Next       []Candidate    `json:"-"`
	History    []HistoryEntry `json:"history"`
	Winner     *Candidate     `json:"winner,omitempty"`
	State      BracketState   `json:"state"`
}

// StartBracket shuffles the pool with a uniform permutation, truncates it to
// MaxBracketEntrants, and opens the first round. rng may be nil to use the
// shared global source.
func StartBracket(pool []Candidate, rng *rand.Rand) (*Bracket, error) {
	if len(pool) < 2 {
		return nil, ErrInsufficientCandidates
	}

	shuffled := slices.Clone(pool)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	if len(shuffled) > MaxBracketEntrants {
		shuffled = shuffled[:MaxBracketEntrants]
	}

	b := &Bracket{State: BracketInProgress}
	b.beginRound(shuffled)
	return b, nil
}

// Clone returns an independent snapshot of the bracket. Callers that share a
// bracket across goroutines serialize writes themselves; Clone lets them hand
// out read copies without holding their lock while the copy is consumed.
func (b *Bracket) Clone() *Bracket {
	c := *b
	c.Round = slices.Clone(b.Round)
	c.Next = slices.Clone(b.Next)
	c.History = slices.Clone(b.History)
	if b.Winner != nil {
		winner := *b.Winner
		c.Winner = &winner
	}
	return &c
}

// CurrentMatch returns the pair the caller must decide next.
func (b *Bracket) CurrentMatch() (Candidate, Candidate, error) {
	if b.State != BracketInProgress {
		return Candidate{}, Candidate{}, ErrBracketCompleted
	}
	return b.Round[2*b.MatchIndex], b.Round[2*b.MatchIndex+1], nil
}

// ResolveMatch records the human's pick for the current match. The other
// contestant is eliminated and logged; the winner advances. When the last
// match of a round resolves, the next round opens, or the tournament
// completes if a single entrant remains.
func (b *Bracket) ResolveMatch(winnerID string) error {
	first, second, err := b.CurrentMatch()
	if err != nil {
		return err
	}

	var winner, loser Candidate
	switch winnerID {
	case first.ID:
		winner, loser = first, second
	case second.ID:
		winner, loser = second, first
	default:
		return ErrNotInMatch
	}

	b.History = append(b.History, HistoryEntry{
		Round:      b.RoundName,
		MatchIndex: b.MatchIndex,
		Winner:     winner,
		Loser:      &loser,
	})
	b.Next = append(b.Next, winner)

	if b.MatchIndex+1 < len(b.Round)/2 {
		b.MatchIndex++
		return nil
	}

	next := b.Next
	b.Next = nil
	if len(next) == 1 {
		b.Winner = &next[0]
		b.Round = next
		b.RoundName = roundName(1)
		b.State = BracketCompleted
		return nil
	}
	b.beginRound(next)
	return nil
}

// beginRound installs entries as the current round. An odd pool sets aside
// its last entry as a bye; the bye is placed first in the accumulator so it
// cannot be chosen as a bye twice in a row.
func (b *Bracket) beginRound(entries []Candidate) {
	b.Next = nil
	if len(entries)%2 == 1 {
		bye := entries[len(entries)-1]
		entries = entries[:len(entries)-1]
		b.Next = []Candidate{bye}
		b.History = append(b.History, HistoryEntry{
			Round:       roundName(len(entries)),
			MatchIndex:  -1,
			Winner:      bye,
			AutoAdvance: true,
		})
	}
	b.Round = entries
	b.RoundName = roundName(len(entries))
	b.MatchIndex = 0
}

// roundName maps the contestant count of the current round (byes excluded)
// to a display name.
func roundName(k int) string {
	switch {
	case k <= 1:
		return "champion"
	case k == 2:
		return "final"
	case k <= 4:
		return "semifinal"
	case k <= 8:
		return "quarterfinal"
	case k <= 16:
		return "round of 16"
	case k <= 32:
		return "round of 32"
	default:
		return fmt.Sprintf("round of %d", k)
	}
}
