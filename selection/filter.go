// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

// Candidate is a selectable restaurant. The engine treats candidates as
// immutable values for the duration of one operation; lifecycle (creation,
// deactivation) belongs to the persistence layer.
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecencyWindow excludes candidates visited within the trailing Days days.
// The exclusion is soft: it is waived for a draw that it would otherwise
// leave with an empty pool.
type RecencyWindow struct {
	Enabled bool `json:"enabled"`
	Days    int  `json:"days"`
}

// FilterEligible prunes candidates by the hard exclusion list, then by the
// recency window. Callers must pass only active candidates; activity is not
// re-checked here.
//
// If the recency step empties the pool, the recency exclusion alone is
// dropped and the post-exclusion pool is returned instead. If the hard
// exclusion list already removed everything, ErrNoEligibleCandidates is
// returned and the caller should surface a "nothing available" condition
// rather than retry.
func FilterEligible(candidates []Candidate, excludedIDs []string, window RecencyWindow, recentIDs []string) ([]Candidate, error) {
	excluded := idSet(excludedIDs)

	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !excluded[c.ID] {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoEligibleCandidates
	}

	if !window.Enabled {
		return pool, nil
	}

	recent := idSet(recentIDs)
	fresh := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if !recent[c.ID] {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		// Recency is a preference, not a rule: never offer nothing
		// just because everything was visited lately.
		return pool, nil
	}
	return fresh, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
