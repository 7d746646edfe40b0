package types

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	EventTypeProposalCreated   = "proposal_created"
	EventTypeVoteCast          = "vote_cast"
	EventTypeProposalQueued    = "proposal_queued"
	EventTypeProposalExecuted  = "proposal_executed"
	EventTypeProposalCanceled  = "proposal_canceled"
	EventTypeOperationSchedule = "operation_scheduled"
	EventTypeOperationExecuted = "operation_executed"
	EventTypeOperationCanceled = "operation_canceled"
	EventTypeRoleChanged       = "role_changed"
)

type Event interface {
	EventType() string
}

// EventSink receives every event a component emits on a successful
// mutation. Sinks must not block.
type EventSink interface {
	Emit(ev Event)
}

type NopSink struct{}

func (NopSink) Emit(Event) {}

type EventProposalCreated struct {
	Proposal    common.Hash    `json:"proposal"`
	Proposer    common.Address `json:"proposer"`
	Snapshot    uint64         `json:"snapshot"`
	VotingStart uint64         `json:"votingStart"`
	VotingEnd   uint64         `json:"votingEnd"`
	Description string         `json:"description"`
}

func (EventProposalCreated) EventType() string { return EventTypeProposalCreated }

type EventVoteCast struct {
	Proposal common.Hash    `json:"proposal"`
	Voter    common.Address `json:"voter"`
	Support  VoteSupport    `json:"support"`
	Weight   uint64         `json:"weight"`
	Reason   string         `json:"reason,omitempty"`
	Time     uint64         `json:"time"`
}

func (EventVoteCast) EventType() string { return EventTypeVoteCast }

type EventProposalQueued struct {
	Proposal  common.Hash `json:"proposal"`
	Operation common.Hash `json:"operation"`
	ReadyAt   uint64      `json:"readyAt"`
}

func (EventProposalQueued) EventType() string { return EventTypeProposalQueued }

type EventProposalExecuted struct {
	Proposal  common.Hash `json:"proposal"`
	Operation common.Hash `json:"operation"`
	Time      uint64      `json:"time"`
}

func (EventProposalExecuted) EventType() string { return EventTypeProposalExecuted }

type EventProposalCanceled struct {
	Proposal common.Hash `json:"proposal"`
	Time     uint64      `json:"time"`
}

func (EventProposalCanceled) EventType() string { return EventTypeProposalCanceled }

type EventOperationScheduled struct {
	Operation   common.Hash `json:"operation"`
	Predecessor common.Hash `json:"predecessor"`
	Salt        common.Hash `json:"salt"`
	ReadyAt     uint64      `json:"readyAt"`
	Actions     int         `json:"actions"`
}

func (EventOperationScheduled) EventType() string { return EventTypeOperationSchedule }

type EventOperationExecuted struct {
	Operation common.Hash `json:"operation"`
	Time      uint64      `json:"time"`
}

func (EventOperationExecuted) EventType() string { return EventTypeOperationExecuted }

type EventOperationCanceled struct {
	Operation common.Hash `json:"operation"`
	Time      uint64      `json:"time"`
}

func (EventOperationCanceled) EventType() string { return EventTypeOperationCanceled }

type EventRoleChanged struct {
	Role    Role           `json:"role"`
	Account common.Address `json:"account"`
	Granted bool           `json:"granted"`
}

func (EventRoleChanged) EventType() string { return EventTypeRoleChanged }
