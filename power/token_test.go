package power

import (
	"testing"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daoforge/govern/store"
)

type testClock struct {
	now uint64
}

func (c *testClock) Now() uint64 { return c.now }

var (
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0")
	carol = common.HexToAddress("0xca")
)

func newTestToken(t *testing.T, clk *testClock) *Token {
	t.Helper()
	tok, err := NewToken(clk, nil, cmtlog.NewNopLogger())
	require.NoError(t, err)
	return tok
}

func TestMintWithoutDelegationHasNoWeight(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 50)
	assert.Equal(t, uint64(50), tok.BalanceOf(alice))
	assert.Equal(t, uint64(0), tok.VotingPowerAt(alice, 100))
	assert.Equal(t, uint64(50), tok.TotalSupplyAt(100))
}

func TestSelfDelegationActivatesWeight(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 50)
	tok.Delegate(alice, alice)
	assert.Equal(t, uint64(50), tok.VotingPowerAt(alice, 100))

	// Minting to a delegated account moves straight into weight.
	clk.now = 110
	tok.Mint(alice, 10)
	assert.Equal(t, uint64(60), tok.VotingPowerAt(alice, 110))
}

func TestDelegationMovesWeight(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 40)
	tok.Delegate(alice, bob)
	assert.Equal(t, uint64(0), tok.VotingPowerAt(alice, 100))
	assert.Equal(t, uint64(40), tok.VotingPowerAt(bob, 100))

	clk.now = 120
	tok.Delegate(alice, carol)
	assert.Equal(t, uint64(0), tok.VotingPowerAt(bob, 120))
	assert.Equal(t, uint64(40), tok.VotingPowerAt(carol, 120))
	// History is untouched.
	assert.Equal(t, uint64(40), tok.VotingPowerAt(bob, 119))
}

func TestTransferTracksDelegatees(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 100)
	tok.Delegate(alice, alice)
	tok.Delegate(bob, bob)

	clk.now = 110
	require.NoError(t, tok.Transfer(alice, bob, 30))
	assert.Equal(t, uint64(70), tok.BalanceOf(alice))
	assert.Equal(t, uint64(30), tok.BalanceOf(bob))
	assert.Equal(t, uint64(70), tok.VotingPowerAt(alice, 110))
	assert.Equal(t, uint64(30), tok.VotingPowerAt(bob, 110))

	assert.ErrorIs(t, tok.Transfer(alice, bob, 1000), ErrInsufficientBalance)
}

func TestHistoricalLookupAtOrBefore(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 10)
	tok.Delegate(alice, alice)
	clk.now = 200
	tok.Mint(alice, 20)
	clk.now = 300
	tok.Mint(alice, 30)

	assert.Equal(t, uint64(0), tok.VotingPowerAt(alice, 99))
	assert.Equal(t, uint64(10), tok.VotingPowerAt(alice, 100))
	assert.Equal(t, uint64(10), tok.VotingPowerAt(alice, 199))
	assert.Equal(t, uint64(30), tok.VotingPowerAt(alice, 200))
	assert.Equal(t, uint64(60), tok.VotingPowerAt(alice, 300))
	assert.Equal(t, uint64(60), tok.VotingPowerAt(alice, 1000))

	assert.Equal(t, uint64(0), tok.TotalSupplyAt(99))
	assert.Equal(t, uint64(10), tok.TotalSupplyAt(150))
	assert.Equal(t, uint64(30), tok.TotalSupplyAt(250))
	assert.Equal(t, uint64(60), tok.TotalSupplyAt(350))
}

func TestWeightAcquiredAfterSnapshotDoesNotLeak(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 10)
	tok.Delegate(alice, alice)

	snapshot := uint64(150)
	clk.now = 200
	tok.Mint(alice, 90)

	assert.Equal(t, uint64(10), tok.VotingPowerAt(alice, snapshot))
	assert.Equal(t, uint64(100), tok.VotingPowerAt(alice, 200))
}

// Weight history must survive a restart, or snapshot reads of old
// proposals change underneath them.
func TestTokenStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	clk := &testClock{now: 100}

	db, err := store.NewDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)
	tok, err := NewToken(clk, db, cmtlog.NewNopLogger())
	require.NoError(t, err)
	assert.True(t, tok.Fresh())

	require.NoError(t, tok.Mint(alice, 60))
	require.NoError(t, tok.Delegate(alice, alice))
	clk.now = 200
	require.NoError(t, tok.Mint(bob, 40))
	require.NoError(t, tok.Delegate(bob, carol))
	require.NoError(t, db.Close())

	db2, err := store.NewDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)
	defer db2.Close()
	tok2, err := NewToken(clk, db2, cmtlog.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, tok2.Fresh())

	assert.Equal(t, uint64(60), tok2.BalanceOf(alice))
	assert.Equal(t, uint64(40), tok2.BalanceOf(bob))
	assert.Equal(t, carol, tok2.Delegatee(bob))
	assert.Equal(t, uint64(60), tok2.VotingPowerAt(alice, 100))
	assert.Equal(t, uint64(40), tok2.VotingPowerAt(carol, 200))
	assert.Equal(t, uint64(60), tok2.TotalSupplyAt(150))
	assert.Equal(t, uint64(100), tok2.TotalSupplyAt(200))
}

func TestSameTimepointCheckpointCollapses(t *testing.T) {
	clk := &testClock{now: 100}
	tok := newTestToken(t, clk)

	tok.Mint(alice, 10)
	tok.Delegate(alice, alice)
	tok.Mint(alice, 10)
	tok.Mint(alice, 10)

	assert.Equal(t, uint64(30), tok.VotingPowerAt(alice, 100))
	assert.Equal(t, uint64(0), tok.VotingPowerAt(alice, 99))
}
