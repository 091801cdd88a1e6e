// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import "errors"

// Recoverable conditions signalled to the caller; the caller decides how
// they surface to the user. Nothing here is retried or logged internally.
var (
	ErrNoEligibleCandidates   = errors.New("no eligible candidates")
	ErrInsufficientCandidates = errors.New("at least 2 candidates required")
	ErrBracketCompleted       = errors.New("bracket already completed")
	ErrNotInMatch             = errors.New("candidate is not in the current match")
	ErrUnknownOption          = errors.New("option not found on ballot")
	ErrBallotClosed           = errors.New("ballot is closed")
	ErrDeadlinePassed         = errors.New("ballot deadline has passed")
	ErrNotCreator             = errors.New("only the ballot creator may do this")
	ErrAlreadyClosed          = errors.New("ballot already closed")
)
