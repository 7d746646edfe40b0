package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Checkpoint is one point of a voting-weight history. Reads at a past
// timepoint bind to the latest checkpoint at or before it.
type Checkpoint struct {
	Timepoint uint64 `json:"timepoint"`
	Weight    uint64 `json:"weight"`
}

// TokenState is the voting token's full persistent record: balances,
// delegation and every weight history. Snapshot reads of old proposals
// depend on it surviving restarts the same way proposals do.
type TokenState struct {
	Balances    map[common.Address]uint64         `json:"balances"`
	Delegatees  map[common.Address]common.Address `json:"delegatees"`
	Checkpoints map[common.Address][]Checkpoint   `json:"checkpoints"`
	Supply      []Checkpoint                      `json:"supply"`
}
