package types

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrEmptyBatch = errors.New("empty action batch")
)

// Action is one (target, value, payload) call of a proposal's batch.
// The payload is opaque to the registry and the gateway; only the
// target contract interprets it.
type Action struct {
	Target  common.Address `json:"target"`
	Value   uint64         `json:"value"`
	Payload []byte         `json:"payload"`
}

type actionBatch struct {
	Targets  []common.Address
	Values   []uint64
	Payloads [][]byte
}

func newActionBatch(actions []Action) actionBatch {
	b := actionBatch{
		Targets:  make([]common.Address, len(actions)),
		Values:   make([]uint64, len(actions)),
		Payloads: make([][]byte, len(actions)),
	}
	for i, act := range actions {
		b.Targets[i] = act.Target
		b.Values[i] = act.Value
		b.Payloads[i] = act.Payload
	}
	return b
}

// HashActions is the canonical digest of an action batch. The registry
// and the gateway both derive their ids from it, so the two sides agree
// on which operation a queued proposal refers to.
func HashActions(actions []Action) common.Hash {
	dat, err := rlp.EncodeToBytes(newActionBatch(actions))
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(dat)
}

func DescriptionHash(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

type proposalPreimage struct {
	Batch           actionBatch
	DescriptionHash common.Hash
}

func ProposalID(actions []Action, descriptionHash common.Hash) common.Hash {
	dat, err := rlp.EncodeToBytes(proposalPreimage{
		Batch:           newActionBatch(actions),
		DescriptionHash: descriptionHash,
	})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(dat)
}

type operationPreimage struct {
	Batch       actionBatch
	Predecessor common.Hash
	Salt        common.Hash
}

func OperationID(actions []Action, predecessor, salt common.Hash) common.Hash {
	dat, err := rlp.EncodeToBytes(operationPreimage{
		Batch:       newActionBatch(actions),
		Predecessor: predecessor,
		Salt:        salt,
	})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(dat)
}
