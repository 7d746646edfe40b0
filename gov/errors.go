package gov

import "errors"

var (
	ErrUnknownProposal   = errors.New("proposal noexists")
	ErrDuplicateProposal = errors.New("duplicate proposal")
	ErrBelowThreshold    = errors.New("proposer below threshold")
	ErrVotingClosed      = errors.New("voting not active")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidSupport    = errors.New("invalid vote support")
	ErrNotSucceeded      = errors.New("proposal not succeeded")
	ErrAlreadyQueued     = errors.New("proposal already queued")
	ErrNotQueued         = errors.New("proposal not queued")
	ErrNotReady          = errors.New("operation not ready")
	ErrNotProposer       = errors.New("not the proposer")
	ErrNotCancelable     = errors.New("proposal not cancelable")
)
