package types

import (
	"github.com/ethereum/go-ethereum/common"
)

type OperationState uint64

const (
	OperationStateUnset   OperationState = 0
	OperationStatePending OperationState = 1
	OperationStateDone    OperationState = 2
)

func (s OperationState) String() string {
	switch s {
	case OperationStatePending:
		return "pending"
	case OperationStateDone:
		return "done"
	default:
		return "unset"
	}
}

// Operation is one scheduled batch in the timelock gateway's table.
// A canceled operation is removed entirely, so Unset doubles as the
// state of ids never scheduled and of ids canceled while pending.
type Operation struct {
	ID          common.Hash `json:"id"`
	Actions     []Action    `json:"actions"`
	Predecessor common.Hash `json:"predecessor"`
	Salt        common.Hash `json:"salt"`
	ReadyAt     uint64      `json:"readyAt"`
	Done        bool        `json:"done"`
}

func (op *Operation) State() OperationState {
	if op == nil {
		return OperationStateUnset
	}
	if op.Done {
		return OperationStateDone
	}
	return OperationStatePending
}

type Role uint8

const (
	RoleProposer Role = 1
	RoleExecutor Role = 2
	RoleAdmin    Role = 3
)

func (r Role) Valid() bool {
	return r >= RoleProposer && r <= RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleProposer:
		return "proposer"
	case RoleExecutor:
		return "executor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// AddressAnyone is the open-access sentinel: granting a role to it
// grants the role to every caller.
var AddressAnyone = common.Address{}
