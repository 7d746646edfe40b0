package api

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daoforge/govern/types"
)

func TestAccountRegisterAndNonce(t *testing.T) {
	a, err := NewAccounts(nil, cmtlog.NewNopLogger())
	require.NoError(t, err)

	pub := ed25519.GenPrivKey().PubKey().Bytes()
	acct, err := a.Register(pub, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.AddressFromPubKey(pub), acct.Address)
	assert.Equal(t, uint64(0), acct.Nonce)

	_, err = a.Register(pub, "alice again")
	assert.ErrorIs(t, err, ErrAccountExists)

	require.NoError(t, a.BumpNonce(acct.Address))
	got, ok := a.Get(acct.Address)
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.Nonce)

	// Get returns a copy, not the live record.
	got.Nonce = 99
	again, _ := a.Get(acct.Address)
	assert.Equal(t, uint64(1), again.Nonce)
}

func TestAccountUnknown(t *testing.T) {
	a, err := NewAccounts(nil, cmtlog.NewNopLogger())
	require.NoError(t, err)

	addr := types.AddressFromPubKey(ed25519.GenPrivKey().PubKey().Bytes())
	_, ok := a.Get(addr)
	assert.False(t, ok)
	assert.ErrorIs(t, a.BumpNonce(addr), ErrAccountNoexists)
}
