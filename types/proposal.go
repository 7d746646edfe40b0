package types

import (
	"github.com/ethereum/go-ethereum/common"
)

type ProposalState uint64

const (
	ProposalStateUnknown   ProposalState = 0
	ProposalStatePending   ProposalState = 1
	ProposalStateActive    ProposalState = 2
	ProposalStateCanceled  ProposalState = 3
	ProposalStateDefeated  ProposalState = 4
	ProposalStateSucceeded ProposalState = 5
	ProposalStateQueued    ProposalState = 6
	ProposalStateExecuted  ProposalState = 7
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStatePending:
		return "pending"
	case ProposalStateActive:
		return "active"
	case ProposalStateCanceled:
		return "canceled"
	case ProposalStateDefeated:
		return "defeated"
	case ProposalStateSucceeded:
		return "succeeded"
	case ProposalStateQueued:
		return "queued"
	case ProposalStateExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// Terminal states are never left again.
func (s ProposalState) Terminal() bool {
	return s == ProposalStateCanceled || s == ProposalStateDefeated || s == ProposalStateExecuted
}

type VoteSupport uint8

const (
	VoteAgainst VoteSupport = 0
	VoteFor     VoteSupport = 1
	VoteAbstain VoteSupport = 2
)

func (v VoteSupport) Valid() bool {
	return v <= VoteAbstain
}

// Tally buckets only grow, and only while the proposal is active.
type Tally struct {
	Against uint64 `json:"against"`
	For     uint64 `json:"for"`
	Abstain uint64 `json:"abstain"`
}

type Receipt struct {
	Support VoteSupport `json:"support"`
	Weight  uint64      `json:"weight"`
	Reason  string      `json:"reason,omitempty"`
}

type Proposal struct {
	ID              common.Hash                `json:"id"`
	Proposer        common.Address             `json:"proposer"`
	Actions         []Action                   `json:"actions"`
	Description     string                     `json:"description"`
	DescriptionHash common.Hash                `json:"descriptionHash"`
	Snapshot        uint64                     `json:"snapshot"`
	VotingStart     uint64                     `json:"votingStart"`
	VotingEnd       uint64                     `json:"votingEnd"`
	Tally           Tally                      `json:"tally"`
	Receipts        map[common.Address]Receipt `json:"receipts"`
	Canceled        bool                       `json:"canceled"`

	// OperationID and ReadyAt are set once the proposal is queued.
	OperationID common.Hash `json:"operationId"`
	ReadyAt     uint64      `json:"readyAt"`
}

func (p *Proposal) HasVoted(account common.Address) bool {
	_, ok := p.Receipts[account]
	return ok
}

func (p *Proposal) IsQueued() bool {
	return p.OperationID != (common.Hash{})
}

func (p *Proposal) Clone() *Proposal {
	n := *p
	n.Actions = append([]Action(nil), p.Actions...)
	n.Receipts = make(map[common.Address]Receipt, len(p.Receipts))
	for k, v := range p.Receipts {
		n.Receipts[k] = v
	}
	return &n
}
