package api

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daoforge/govern/types"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	env := &Envelope{
		Version: TxVersion1,
		Type:    TxTypeVote,
		Nonce:   3,
		Sender:  common.HexToAddress("0xa1"),
		Tx: VoteTx{
			Proposal: common.HexToHash("0x01"),
			Support:  types.VoteFor,
			Reason:   "looks good",
		},
	}
	dat, err := MarshalEnvelope(env)
	require.NoError(t, err)

	got, err := UnmarshalEnvelope(dat)
	require.NoError(t, err)
	assert.Equal(t, env.Version, got.Version)
	assert.Equal(t, env.Type, got.Type)
	assert.Equal(t, env.Nonce, got.Nonce)
	assert.Equal(t, env.Sender, got.Sender)

	wtx, ok := got.Tx.(*VoteTx)
	require.True(t, ok)
	assert.Equal(t, common.HexToHash("0x01"), wtx.Proposal)
	assert.Equal(t, types.VoteFor, wtx.Support)
	assert.Equal(t, "looks good", wtx.Reason)
}

func TestUnmarshalEnvelopeTypes(t *testing.T) {
	cases := []struct {
		typ TxType
		tx  any
	}{
		{TxTypeRegister, RegisterTx{PubKey: []byte{1}}},
		{TxTypePropose, ProposeTx{Actions: []types.Action{{Target: common.HexToAddress("0x10")}}}},
		{TxTypeQueue, QueueTx{Proposal: common.HexToHash("0x01")}},
		{TxTypeExecute, ExecuteTx{Proposal: common.HexToHash("0x01")}},
		{TxTypeCancel, CancelTx{Proposal: common.HexToHash("0x01")}},
		{TxTypeSchedule, ScheduleTx{Actions: []types.Action{{Target: common.HexToAddress("0x10")}}, Delay: 300}},
		{TxTypeExecuteOperation, ExecuteOperationTx{Operation: common.HexToHash("0x02")}},
		{TxTypeCancelOperation, CancelOperationTx{Operation: common.HexToHash("0x02")}},
		{TxTypeRole, RoleTx{Role: types.RoleProposer, Account: common.HexToAddress("0xa1")}},
		{TxTypeSetMinDelay, SetMinDelayTx{Delay: 600}},
	}
	for _, c := range cases {
		dat, err := MarshalEnvelope(&Envelope{Version: TxVersion1, Type: c.typ, Tx: c.tx})
		require.NoError(t, err)
		got, err := UnmarshalEnvelope(dat)
		require.NoError(t, err, "type %v", c.typ)
		assert.Equal(t, c.typ, got.Type)
		require.NotNil(t, got.Tx)
	}
}

func TestUnmarshalEnvelopeUnknownType(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte(`{"type":99}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalEnvelope([]byte(`not json`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataBindsServiceID(t *testing.T) {
	priv := ed25519.GenPrivKey()
	pub := priv.PubKey().Bytes()
	sender := types.AddressFromPubKey(pub)

	env := &Envelope{
		Version: TxVersion1,
		Type:    TxTypeQueue,
		Nonce:   1,
		Sender:  sender,
		Tx:      QueueTx{Proposal: common.HexToHash("0x01")},
	}
	dat, err := env.SigData([]byte("govern-local"))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	env.Sig = [][]byte{sig}

	acct := types.Account{Address: sender, PubKey: pub}
	assert.True(t, acct.Verify(dat, env.Sig))

	// A different deployment produces different bytes to sign.
	other, err := env.SigData([]byte("govern-other"))
	require.NoError(t, err)
	assert.False(t, acct.Verify(other, env.Sig))

	// SigData is independent of any signatures already attached.
	again, err := env.SigData([]byte("govern-local"))
	require.NoError(t, err)
	assert.Equal(t, dat, again)
}

func TestSigDataCoversNonce(t *testing.T) {
	priv := ed25519.GenPrivKey()
	pub := priv.PubKey().Bytes()

	env := &Envelope{
		Version: TxVersion1,
		Type:    TxTypeQueue,
		Nonce:   1,
		Sender:  types.AddressFromPubKey(pub),
		Tx:      QueueTx{Proposal: common.HexToHash("0x01")},
	}
	dat, err := env.SigData([]byte("govern-local"))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)

	env.Nonce = 2
	replayed, err := env.SigData([]byte("govern-local"))
	require.NoError(t, err)
	acct := types.Account{PubKey: pub}
	assert.False(t, acct.Verify(replayed, [][]byte{sig}))
}
