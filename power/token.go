package power

import (
	"errors"
	"sort"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/daoforge/govern/store"
	"github.com/daoforge/govern/types"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Token tracks balances, delegation and a per-account history of voting
// weight. Balances carry no voting weight until delegated; delegating to
// oneself activates it. All reads against a past timepoint bind to the
// latest checkpoint at or before it, so weight acquired later never
// leaks into an earlier snapshot. The full state persists alongside the
// proposals that reference it; a proposal resolved before a restart
// reads the same snapshot weights after it.
type Token struct {
	mtx sync.RWMutex

	logger cmtlog.Logger
	clock  types.Clock
	db     *store.DB
	fresh  bool

	balances   map[common.Address]uint64
	delegatees map[common.Address]common.Address
	ckpts      map[common.Address][]types.Checkpoint
	supply     []types.Checkpoint
}

func NewToken(clock types.Clock, db *store.DB, logger cmtlog.Logger) (t *Token, err error) {
	t = &Token{
		logger:     logger.With("module", "power"),
		clock:      clock,
		db:         db,
		fresh:      true,
		balances:   make(map[common.Address]uint64),
		delegatees: make(map[common.Address]common.Address),
		ckpts:      make(map[common.Address][]types.Checkpoint),
		supply:     nil,
	}
	if db == nil {
		return
	}
	st, err := db.TokenState()
	if err == store.ErrNotFound {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	t.fresh = false
	if st.Balances != nil {
		t.balances = st.Balances
	}
	if st.Delegatees != nil {
		t.delegatees = st.Delegatees
	}
	if st.Checkpoints != nil {
		t.ckpts = st.Checkpoints
	}
	t.supply = st.Supply
	t.logger.Info("token loaded", "accounts", len(t.balances), "supply", t.latest(t.supply))
	return
}

// Fresh reports whether the store held no token state; genesis balances
// are applied only then.
func (t *Token) Fresh() bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.fresh
}

func (t *Token) Mint(to common.Address, amount uint64) (err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	now := t.clock.Now()
	t.balances[to] += amount
	t.writeSupply(now, t.latest(t.supply)+amount)
	if d, ok := t.delegatees[to]; ok {
		t.moveWeight(now, common.Address{}, d, amount)
	}
	t.logger.Debug("mint", "to", to, "amount", amount)
	return t.save()
}

func (t *Token) Transfer(from, to common.Address, amount uint64) (err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.balances[from] < amount {
		return ErrInsufficientBalance
	}
	now := t.clock.Now()
	t.balances[from] -= amount
	t.balances[to] += amount
	var src, dst common.Address
	if d, ok := t.delegatees[from]; ok {
		src = d
	}
	if d, ok := t.delegatees[to]; ok {
		dst = d
	}
	t.moveWeight(now, src, dst, amount)
	return t.save()
}

func (t *Token) Delegate(account, delegatee common.Address) (err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	now := t.clock.Now()
	var prev common.Address
	if d, ok := t.delegatees[account]; ok {
		prev = d
	}
	t.delegatees[account] = delegatee
	t.moveWeight(now, prev, delegatee, t.balances[account])
	t.logger.Debug("delegate", "account", account, "delegatee", delegatee)
	return t.save()
}

func (t *Token) BalanceOf(account common.Address) uint64 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.balances[account]
}

func (t *Token) Delegatee(account common.Address) common.Address {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.delegatees[account]
}

func (t *Token) VotingPowerAt(account common.Address, timepoint uint64) uint64 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return lookup(t.ckpts[account], timepoint)
}

func (t *Token) TotalSupplyAt(timepoint uint64) uint64 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return lookup(t.supply, timepoint)
}

// moveWeight shifts amount of voting weight between delegatees. The zero
// address stands for "no delegatee" and gets no checkpoint.
func (t *Token) moveWeight(now uint64, from, to common.Address, amount uint64) {
	if amount == 0 || from == to {
		return
	}
	if from != (common.Address{}) {
		t.ckpts[from] = push(t.ckpts[from], now, t.latest(t.ckpts[from])-amount)
	}
	if to != (common.Address{}) {
		t.ckpts[to] = push(t.ckpts[to], now, t.latest(t.ckpts[to])+amount)
	}
}

func (t *Token) writeSupply(now, weight uint64) {
	t.supply = push(t.supply, now, weight)
}

func (t *Token) latest(ckpts []types.Checkpoint) uint64 {
	if len(ckpts) == 0 {
		return 0
	}
	return ckpts[len(ckpts)-1].Weight
}

// save writes the whole token state; a failed commit is healed by the
// next successful one since the record is replaced wholesale.
func (t *Token) save() (err error) {
	if t.db == nil {
		return nil
	}
	st := &types.TokenState{
		Balances:    t.balances,
		Delegatees:  t.delegatees,
		Checkpoints: t.ckpts,
		Supply:      t.supply,
	}
	if err = t.db.SetTokenState(st); err != nil {
		return
	}
	_, err = t.db.Commit()
	return
}

func push(ckpts []types.Checkpoint, now, weight uint64) []types.Checkpoint {
	if n := len(ckpts); n > 0 && ckpts[n-1].Timepoint == now {
		ckpts[n-1].Weight = weight
		return ckpts
	}
	return append(ckpts, types.Checkpoint{Timepoint: now, Weight: weight})
}

// lookup returns the weight of the latest checkpoint at or before the
// given timepoint.
func lookup(ckpts []types.Checkpoint, timepoint uint64) uint64 {
	i := sort.Search(len(ckpts), func(i int) bool {
		return ckpts[i].Timepoint > timepoint
	})
	if i == 0 {
		return 0
	}
	return ckpts[i-1].Weight
}
