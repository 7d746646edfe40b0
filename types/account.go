package types

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
)

// Account is a registered signer. The nonce orders its requests and
// makes replays detectable.
type Account struct {
	Address common.Address `json:"address"`
	PubKey  []byte         `json:"pubKey"`
	Name    string         `json:"name,omitempty"`
	Nonce   uint64         `json:"nonce"`
}

func AddressFromPubKey(pubkey []byte) common.Address {
	pk := ed25519.PubKey(pubkey)
	return common.BytesToAddress(pk.Address().Bytes())
}

func (a *Account) Verify(msg []byte, sigs [][]byte) bool {
	if len(sigs) != 1 {
		return false
	}
	pk := ed25519.PubKey(a.PubKey)
	return pk.VerifySignature(msg, sigs[0])
}

func (a *Account) Clone() *Account {
	n := *a
	n.PubKey = append([]byte(nil), a.PubKey...)
	return &n
}
