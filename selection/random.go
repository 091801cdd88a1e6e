// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import "math/rand/v2"

// PickRandom draws one candidate uniformly from the eligible pool. Each call
// is independent; there is no memory of prior draws.
//
// rng may be nil, in which case the shared global source is used. Tests pass
// a seeded *rand.Rand.
func PickRandom(eligible []Candidate, rng *rand.Rand) (Candidate, error) {
	if len(eligible) == 0 {
		return Candidate{}, ErrNoEligibleCandidates
	}
	var idx int
	if rng != nil {
		idx = rng.IntN(len(eligible))
	} else {
		idx = rand.IntN(len(eligible))
	}
	return eligible[idx], nil
}
