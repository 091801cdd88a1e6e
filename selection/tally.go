// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import "time"

type BallotStatus string

const (
	BallotActive BallotStatus = "active"
	BallotDone   BallotStatus = "closed"
)

type BallotKind string

const (
	KindRestaurant BallotKind = "restaurant"
	KindDate       BallotKind = "date"
)

// OptionKey identifies an option: a restaurant id for restaurant ballots, or
// a (date, timeslot) triple for date ballots. Dates match by calendar day
// only; any time-of-day component is ignored.
type OptionKey struct {
	RestaurantID string    `json:"restaurant_id,omitempty"`
	Date         time.Time `json:"date,omitzero"`
	SlotStart    string    `json:"slot_start,omitempty"`
	SlotEnd      string    `json:"slot_end,omitempty"`
}

// VoteRecord is one voter's choice with timestamp.
type VoteRecord struct {
	VoterID   string    `json:"voter_id"`
	VoterName string    `json:"voter_name"`
	CastAt    time.Time `json:"cast_at"`
}

// Option is a selectable outcome accumulating votes. Count is derived and
// kept in sync by the ballot mutations.
type Option struct {
	ID    string       `json:"id"`
	Label string       `json:"label"`
	Key   OptionKey    `json:"key"`
	Votes []VoteRecord `json:"votes"`
	Count int          `json:"count"`
}

// Ballot is a poll over options. Stored option order is significant: the
// close-time tie-break picks the first option among those tied for the
// maximum vote count.
type Ballot struct {
	ID             string         `json:"id"`
	Kind           BallotKind     `json:"kind"`
	Title          string         `json:"title"`
	CreatedBy      string         `json:"created_by"`
	AllowMultiple  bool           `json:"allow_multiple"`
	Status         BallotStatus   `json:"status"`
	EndTime        time.Time      `json:"end_time"`
	Options        []Option       `json:"options"`
	TotalVoters    int            `json:"total_voters"`
	DateTotals     map[string]int `json:"date_totals,omitempty"`
	WinnerOptionID *string        `json:"winner_option_id,omitempty"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CastOrRetractVote applies one voter action at the given time.
//
// Voting for an option the voter already holds retracts that vote (the
// "click again to cancel" behavior). With AllowMultiple off, a vote for a
// different option moves the voter's existing vote. With AllowMultiple on,
// votes accumulate across options independently.
//
// A vote against a ballot whose deadline has passed transitions the ballot
// to closed (winner computed) as a side effect and returns
// ErrDeadlinePassed; callers must persist the mutated ballot even on that
// error.
func (b *Ballot) CastOrRetractVote(voterID, voterName string, key OptionKey, now time.Time) error {
	if b.Status != BallotActive {
		return ErrBallotClosed
	}
	if now.After(b.EndTime) {
		b.close(now)
		return ErrDeadlinePassed
	}

	idx := b.optionIndex(key)
	if idx < 0 {
		return ErrUnknownOption
	}

	if hasVote(b.Options[idx].Votes, voterID) {
		b.Options[idx].Votes = removeVote(b.Options[idx].Votes, voterID)
		b.recount()
		return nil
	}

	if !b.AllowMultiple {
		for i := range b.Options {
			b.Options[i].Votes = removeVote(b.Options[i].Votes, voterID)
		}
	}
	b.Options[idx].Votes = append(b.Options[idx].Votes, VoteRecord{
		VoterID:   voterID,
		VoterName: voterName,
		CastAt:    now,
	})
	b.recount()
	return nil
}

// Close closes the ballot on behalf of callerID and computes the winner.
func (b *Ballot) Close(callerID string, now time.Time) error {
	if callerID != b.CreatedBy {
		return ErrNotCreator
	}
	if b.Status != BallotActive {
		return ErrAlreadyClosed
	}
	b.close(now)
	return nil
}

// EnsureClosed performs the lazy close-on-read transition: an active ballot
// whose deadline has passed is closed and its winner computed. Returns true
// if the ballot transitioned, so the caller knows to persist it. There is no
// background scheduler; a ballot never read again is never closed.
func (b *Ballot) EnsureClosed(now time.Time) bool {
	if b.Status == BallotActive && now.After(b.EndTime) {
		b.close(now)
		return true
	}
	return false
}

func (b *Ballot) close(now time.Time) {
	b.Status = BallotDone
	t := now
	b.ClosedAt = &t
	b.recount()

	// First option in stored order wins ties: strictly-greater scan.
	best := -1
	bestCount := 0
	for i := range b.Options {
		if len(b.Options[i].Votes) > bestCount {
			best = i
			bestCount = len(b.Options[i].Votes)
		}
	}
	if best >= 0 {
		id := b.Options[best].ID
		b.WinnerOptionID = &id
	}
}

// Recount recomputes every derived figure: per-option counts, per-date
// aggregates for date ballots, and the distinct-voter total.
func (b *Ballot) Recount() { b.recount() }

func (b *Ballot) recount() {
	voters := make(map[string]bool)
	var dateTotals map[string]int
	if b.Kind == KindDate {
		dateTotals = make(map[string]int)
	}
	for i := range b.Options {
		o := &b.Options[i]
		o.Count = len(o.Votes)
		for _, v := range o.Votes {
			voters[v.VoterID] = true
		}
		if dateTotals != nil {
			dateTotals[o.Key.Date.Format("2006-01-02")] += o.Count
		}
	}
	b.TotalVoters = len(voters)
	b.DateTotals = dateTotals
}

func (b *Ballot) optionIndex(key OptionKey) int {
	for i := range b.Options {
		if b.keyMatches(b.Options[i].Key, key) {
			return i
		}
	}
	return -1
}

func (b *Ballot) keyMatches(a, k OptionKey) bool {
	if b.Kind == KindDate {
		return sameDay(a.Date, k.Date) && a.SlotStart == k.SlotStart && a.SlotEnd == k.SlotEnd
	}
	return a.RestaurantID == k.RestaurantID
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func hasVote(votes []VoteRecord, voterID string) bool {
	for _, v := range votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

func removeVote(votes []VoteRecord, voterID string) []VoteRecord {
	kept := votes[:0]
	for _, v := range votes {
		if v.VoterID != voterID {
			kept = append(kept, v)
		}
	}
	return kept
}
