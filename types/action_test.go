package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActions() []Action {
	return []Action{
		{Target: common.HexToAddress("0x01"), Value: 0, Payload: []byte(`{"op":"set","key":"a","value":"1"}`)},
		{Target: common.HexToAddress("0x02"), Value: 5, Payload: []byte(`{"op":"del","key":"b"}`)},
	}
}

func TestProposalIDDeterministic(t *testing.T) {
	desc := DescriptionHash("raise the quorum")
	id1 := ProposalID(testActions(), desc)
	id2 := ProposalID(testActions(), desc)
	require.Equal(t, id1, id2)

	other := ProposalID(testActions(), DescriptionHash("raise the quorum!"))
	assert.NotEqual(t, id1, other)
}

func TestProposalIDOrderSensitive(t *testing.T) {
	desc := DescriptionHash("swap")
	actions := testActions()
	id1 := ProposalID(actions, desc)

	swapped := []Action{actions[1], actions[0]}
	id2 := ProposalID(swapped, desc)
	assert.NotEqual(t, id1, id2)
}

func TestProposalIDPayloadSensitive(t *testing.T) {
	desc := DescriptionHash("d")
	actions := testActions()
	id1 := ProposalID(actions, desc)

	actions[0].Payload = []byte(`{"op":"set","key":"a","value":"2"}`)
	id2 := ProposalID(actions, desc)
	assert.NotEqual(t, id1, id2)
}

func TestOperationIDSaltAndPredecessor(t *testing.T) {
	actions := testActions()
	base := OperationID(actions, common.Hash{}, common.Hash{})

	salted := OperationID(actions, common.Hash{}, common.HexToHash("0x01"))
	assert.NotEqual(t, base, salted)

	ordered := OperationID(actions, common.HexToHash("0x02"), common.Hash{})
	assert.NotEqual(t, base, ordered)

	again := OperationID(actions, common.Hash{}, common.Hash{})
	assert.Equal(t, base, again)
}

func TestHashActionsStable(t *testing.T) {
	h1 := HashActions(testActions())
	h2 := HashActions(testActions())
	require.Equal(t, h1, h2)
	assert.NotEqual(t, common.Hash{}, h1)
}

func TestProposalStateTerminal(t *testing.T) {
	assert.True(t, ProposalStateCanceled.Terminal())
	assert.True(t, ProposalStateDefeated.Terminal())
	assert.True(t, ProposalStateExecuted.Terminal())
	assert.False(t, ProposalStatePending.Terminal())
	assert.False(t, ProposalStateActive.Terminal())
	assert.False(t, ProposalStateSucceeded.Terminal())
	assert.False(t, ProposalStateQueued.Terminal())
}

func TestOperationStateNilSafe(t *testing.T) {
	var op *Operation
	assert.Equal(t, OperationStateUnset, op.State())

	op = &Operation{ID: common.HexToHash("0x01")}
	assert.Equal(t, OperationStatePending, op.State())

	op.Done = true
	assert.Equal(t, OperationStateDone, op.State())
}

func TestVoteSupportValid(t *testing.T) {
	assert.True(t, VoteAgainst.Valid())
	assert.True(t, VoteFor.Valid())
	assert.True(t, VoteAbstain.Valid())
	assert.False(t, VoteSupport(3).Valid())
}
