// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package selection implements the restaurant decision engine: eligibility
filtering, the random draw, the worldcup bracket, and ballot tallying.

Everything here is a pure, synchronous computation over data the caller has
already loaded. The package performs no I/O and no logging; failures are
sentinel errors the HTTP layer translates into responses.

# Draw

	pool, err := selection.FilterEligible(candidates, excludedIDs, window, recentIDs)
	winner, err := selection.PickRandom(pool, nil)

The filter removes hard-excluded candidates, then recently visited ones.
Recency is waived when it would empty the pool.

# Worldcup bracket

	b, err := selection.StartBracket(candidates, nil)
	a, c, _ := b.CurrentMatch()
	err = b.ResolveMatch(a.ID)

Single elimination with uniform shuffle, a 32-entrant cap, and a bye for odd
rounds. State lives in memory only.

# Ballots

	err := ballot.CastOrRetractVote(voterID, voterName, key, time.Now())
	err := ballot.Close(callerID, time.Now())
	changed := ballot.EnsureClosed(time.Now())

Votes toggle; with AllowMultiple off they move between options. Ballots past
their deadline close lazily on the next read or vote.

# Concurrency

Callers apply ballot mutations in a read-modify-write cycle against the
database; concurrent writers are last-write-wins.
*/
package selection
