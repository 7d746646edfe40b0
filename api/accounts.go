package api

import (
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/daoforge/govern/store"
	"github.com/daoforge/govern/types"
)

// Accounts is the signer table behind the write API: pubkey, display
// name and the nonce that orders a signer's requests.
type Accounts struct {
	mtx sync.Mutex

	logger cmtlog.Logger
	db     *store.DB
	m      map[common.Address]*types.Account
}

func NewAccounts(db *store.DB, logger cmtlog.Logger) (a *Accounts, err error) {
	a = &Accounts{
		logger: logger.With("module", "accounts"),
		db:     db,
		m:      make(map[common.Address]*types.Account),
	}
	if db != nil {
		var accounts []*types.Account
		accounts, err = db.LoadAccounts()
		if err != nil {
			return nil, err
		}
		for _, acct := range accounts {
			a.m[acct.Address] = acct
		}
	}
	return
}

func (a *Accounts) Register(pubkey []byte, name string) (acct *types.Account, err error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	addr := types.AddressFromPubKey(pubkey)
	if _, ok := a.m[addr]; ok {
		return nil, ErrAccountExists
	}
	acct = &types.Account{
		Address: addr,
		PubKey:  append([]byte(nil), pubkey...),
		Name:    name,
	}
	a.m[addr] = acct
	if err = a.save(acct); err != nil {
		delete(a.m, addr)
		return nil, err
	}
	a.logger.Info("account registered", "address", addr, "name", name)
	return acct.Clone(), nil
}

func (a *Accounts) Get(addr common.Address) (acct *types.Account, ok bool) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	aa, ok := a.m[addr]
	if !ok {
		return nil, false
	}
	return aa.Clone(), true
}

func (a *Accounts) BumpNonce(addr common.Address) (err error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	acct, ok := a.m[addr]
	if !ok {
		return ErrAccountNoexists
	}
	acct.Nonce += 1
	if err = a.save(acct); err != nil {
		acct.Nonce -= 1
	}
	return
}

func (a *Accounts) save(acct *types.Account) (err error) {
	if a.db == nil {
		return nil
	}
	if err = a.db.SetAccount(acct); err != nil {
		return
	}
	_, err = a.db.Commit()
	return
}
