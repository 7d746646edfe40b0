package gov

import (
	"testing"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daoforge/govern/power"
	"github.com/daoforge/govern/timelock"
	"github.com/daoforge/govern/types"
)

type testClock struct {
	now uint64
}

func (c *testClock) Now() uint64 { return c.now }

type stubCaller struct {
	calls int
}

func (s *stubCaller) CallBatch(actions []types.Action) error {
	s.calls++
	return nil
}

var (
	self     = common.HexToAddress("0x5e1f")
	alice    = common.HexToAddress("0xa1")
	bob      = common.HexToAddress("0xb0")
	stranger = common.HexToAddress("0xff")
)

type fixture struct {
	clk      *testClock
	token    *power.Token
	gateway  *timelock.Gateway
	registry *Registry
	caller   *stubCaller
}

func defaultParams() Params {
	return Params{
		VotingDelay:       60,
		VotingPeriod:      600,
		ProposalThreshold: 0,
		QuorumNumerator:   4,
	}
}

// newFixture wires a registry to a real gateway and token. Alice holds
// 60 of a 100 supply, bob 40, both self-delegated at t=1000.
func newFixture(t *testing.T, params Params) *fixture {
	t.Helper()
	logger := cmtlog.NewNopLogger()
	clk := &testClock{now: 1000}
	caller := &stubCaller{}

	token, err := power.NewToken(clk, nil, logger)
	require.NoError(t, err)
	token.Mint(alice, 60)
	token.Delegate(alice, alice)
	token.Mint(bob, 40)
	token.Delegate(bob, bob)

	gw, err := timelock.NewGateway(300, []common.Address{self}, clk, caller, nil, nil, logger)
	require.NoError(t, err)
	require.NoError(t, gw.GrantRole(self, types.RoleProposer, self))
	require.NoError(t, gw.GrantRole(self, types.RoleExecutor, self))

	r, err := NewRegistry(params, self, clk, token, gw, nil, nil, logger)
	require.NoError(t, err)

	clk.now = 1100
	return &fixture{clk: clk, token: token, gateway: gw, registry: r, caller: caller}
}

func testActions() []types.Action {
	return []types.Action{{Target: common.HexToAddress("0x10"), Payload: []byte(`{"op":"set","key":"k","value":"v"}`)}}
}

func (f *fixture) propose(t *testing.T, description string) *types.Proposal {
	t.Helper()
	p, err := f.registry.Propose(alice, testActions(), description)
	require.NoError(t, err)
	return p
}

func TestProposeWindows(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	assert.Equal(t, uint64(1100), p.Snapshot)
	assert.Equal(t, uint64(1160), p.VotingStart)
	assert.Equal(t, uint64(1760), p.VotingEnd)
	assert.Equal(t, types.ProposalStatePending, f.registry.State(p.ID))
}

func TestProposeRejects(t *testing.T) {
	f := newFixture(t, defaultParams())

	_, err := f.registry.Propose(alice, nil, "empty")
	assert.ErrorIs(t, err, types.ErrEmptyBatch)

	p := f.propose(t, "dup")
	_, err = f.registry.Propose(alice, testActions(), "dup")
	assert.ErrorIs(t, err, ErrDuplicateProposal)
	assert.Equal(t, types.ProposalStatePending, f.registry.State(p.ID))
}

func TestProposeThreshold(t *testing.T) {
	params := defaultParams()
	params.ProposalThreshold = 50
	f := newFixture(t, params)

	_, err := f.registry.Propose(bob, testActions(), "below")
	assert.ErrorIs(t, err, ErrBelowThreshold)

	_, err = f.registry.Propose(alice, testActions(), "above")
	assert.NoError(t, err)
}

func TestQuorumFromSnapshotSupply(t *testing.T) {
	f := newFixture(t, defaultParams())
	assert.Equal(t, uint64(4), f.registry.Quorum(1100))
}

func TestLifecycleHappyPath(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	f.clk.now = p.VotingStart
	assert.Equal(t, types.ProposalStateActive, f.registry.State(p.ID))

	weight, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), weight)

	f.clk.now = p.VotingEnd
	assert.Equal(t, types.ProposalStateSucceeded, f.registry.State(p.ID))

	readyAt, err := f.registry.Queue(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.VotingEnd+300, readyAt)
	assert.Equal(t, types.ProposalStateQueued, f.registry.State(p.ID))

	err = f.registry.Execute(p.ID)
	assert.ErrorIs(t, err, ErrNotReady)

	f.clk.now = readyAt
	require.NoError(t, f.registry.Execute(p.ID))
	assert.Equal(t, 1, f.caller.calls)
	assert.Equal(t, types.ProposalStateExecuted, f.registry.State(p.ID))

	err = f.registry.Execute(p.ID)
	assert.ErrorIs(t, err, ErrNotQueued)
	assert.Equal(t, 1, f.caller.calls)
}

func TestVoteWindowEnforced(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	_, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	assert.ErrorIs(t, err, ErrVotingClosed)

	f.clk.now = p.VotingEnd
	_, err = f.registry.CastVote(alice, p.ID, types.VoteFor)
	assert.ErrorIs(t, err, ErrVotingClosed)

	_, err = f.registry.CastVote(alice, common.HexToHash("0xdead"), types.VoteFor)
	assert.ErrorIs(t, err, ErrUnknownProposal)
}

func TestVoteValidation(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingStart

	_, err := f.registry.CastVote(alice, p.ID, types.VoteSupport(9))
	assert.ErrorIs(t, err, ErrInvalidSupport)

	_, err = f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	_, err = f.registry.CastVote(alice, p.ID, types.VoteAgainst)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	got, ok := f.registry.Proposal(p.ID)
	require.True(t, ok)
	assert.Equal(t, uint64(60), got.Tally.For)
	assert.Equal(t, uint64(0), got.Tally.Against)
}

func TestVoteUsesSnapshotWeight(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	// Weight minted after the snapshot must not count.
	f.clk.now = p.VotingStart
	f.token.Mint(alice, 1000)

	weight, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), weight)
}

func TestZeroWeightVoteRecorded(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingStart

	weight, err := f.registry.CastVote(stranger, p.ID, types.VoteFor)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), weight)

	got, _ := f.registry.Proposal(p.ID)
	assert.True(t, got.HasVoted(stranger))
	assert.Equal(t, uint64(0), got.Tally.For)
}

func TestDefeatedOnTie(t *testing.T) {
	f := newFixture(t, defaultParams())
	f.token.Mint(bob, 20)

	p := f.propose(t, "tie")
	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	_, err = f.registry.CastVote(bob, p.ID, types.VoteAgainst)
	require.NoError(t, err)

	f.clk.now = p.VotingEnd
	assert.Equal(t, types.ProposalStateDefeated, f.registry.State(p.ID))
}

func TestDefeatedWithoutVotes(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "nobody cares")
	f.clk.now = p.VotingEnd
	assert.Equal(t, types.ProposalStateDefeated, f.registry.State(p.ID))
}

func TestDefeatedWithZeroQuorumZeroVotes(t *testing.T) {
	params := defaultParams()
	params.QuorumNumerator = 0
	f := newFixture(t, params)

	p := f.propose(t, "still needs a majority")
	f.clk.now = p.VotingEnd
	// Quorum of zero is trivially reached, but zero For does not beat
	// zero Against.
	assert.Equal(t, types.ProposalStateDefeated, f.registry.State(p.ID))
}

func TestAbstainCountsTowardQuorumOnly(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "abstain")
	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(bob, p.ID, types.VoteAbstain)
	require.NoError(t, err)
	_, err = f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)

	f.clk.now = p.VotingEnd
	assert.Equal(t, types.ProposalStateSucceeded, f.registry.State(p.ID))
}

func TestQueueRequiresSucceeded(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	_, err := f.registry.Queue(p.ID)
	assert.ErrorIs(t, err, ErrNotSucceeded)

	_, err = f.registry.Queue(common.HexToHash("0xdead"))
	assert.ErrorIs(t, err, ErrUnknownProposal)

	f.clk.now = p.VotingStart
	_, err = f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	f.clk.now = p.VotingEnd
	_, err = f.registry.Queue(p.ID)
	require.NoError(t, err)

	_, err = f.registry.Queue(p.ID)
	assert.ErrorIs(t, err, ErrAlreadyQueued)
}

func TestReproposeAfterDefeat(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "again")
	f.clk.now = p.VotingEnd
	require.Equal(t, types.ProposalStateDefeated, f.registry.State(p.ID))

	p2, err := f.registry.Propose(alice, testActions(), "again")
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID)
	assert.Equal(t, types.ProposalStatePending, f.registry.State(p.ID))
	assert.Equal(t, uint64(0), p2.Tally.For)
}

func TestCancelByProposerOnly(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")

	assert.ErrorIs(t, f.registry.Cancel(bob, p.ID), ErrNotProposer)
	require.NoError(t, f.registry.Cancel(alice, p.ID))
	assert.Equal(t, types.ProposalStateCanceled, f.registry.State(p.ID))

	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(bob, p.ID, types.VoteFor)
	assert.ErrorIs(t, err, ErrVotingClosed)

	assert.ErrorIs(t, f.registry.Cancel(alice, p.ID), ErrNotCancelable)
}

func TestCancelQueuedCancelsOperation(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	f.clk.now = p.VotingEnd
	_, err = f.registry.Queue(p.ID)
	require.NoError(t, err)

	got, _ := f.registry.Proposal(p.ID)
	require.NoError(t, f.registry.Cancel(alice, p.ID))
	assert.Equal(t, types.ProposalStateCanceled, f.registry.State(p.ID))
	assert.Equal(t, types.OperationStateUnset, f.gateway.OperationState(got.OperationID))
}

func TestCancelDefeatedRejected(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingEnd
	assert.ErrorIs(t, f.registry.Cancel(alice, p.ID), ErrNotCancelable)
}

func TestGatewayCancelAllowsRequeue(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	f.clk.now = p.VotingEnd
	_, err = f.registry.Queue(p.ID)
	require.NoError(t, err)

	// An admin cancels the operation behind the registry's back; the
	// proposal falls back to its vote-derived state.
	got, _ := f.registry.Proposal(p.ID)
	require.NoError(t, f.gateway.Cancel(self, got.OperationID))
	assert.Equal(t, types.ProposalStateSucceeded, f.registry.State(p.ID))

	_, err = f.registry.Queue(p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ProposalStateQueued, f.registry.State(p.ID))
}

func TestOperationIDReproducible(t *testing.T) {
	f := newFixture(t, defaultParams())
	p := f.propose(t, "set k")
	f.clk.now = p.VotingStart
	_, err := f.registry.CastVote(alice, p.ID, types.VoteFor)
	require.NoError(t, err)
	f.clk.now = p.VotingEnd
	_, err = f.registry.Queue(p.ID)
	require.NoError(t, err)

	got, _ := f.registry.Proposal(p.ID)
	want := types.OperationID(got.Actions, common.Hash{}, got.DescriptionHash)
	assert.Equal(t, want, got.OperationID)
}
