package timelock

import (
	"fmt"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/daoforge/govern/store"
	"github.com/daoforge/govern/types"
)

// BatchCaller performs an action batch all-or-nothing against the
// target contracts. A returned error means nothing was applied.
type BatchCaller interface {
	CallBatch(actions []types.Action) error
}

// Gateway is the delayed-execution queue. Operations move
// Unset -> Pending -> Done; cancel removes a pending operation so the
// same parameters can be scheduled again.
type Gateway struct {
	mtx sync.Mutex

	logger cmtlog.Logger
	clock  types.Clock
	caller BatchCaller
	db     *store.DB
	sink   types.EventSink

	minDelay uint64
	roles    map[types.Role]map[common.Address]bool
	ops      map[common.Hash]*types.Operation
}

// NewGateway builds the gateway, loading persisted operations, roles and
// the minimum delay when a store is supplied. On a fresh store the given
// admins seed the role table; after that the table on disk is the truth,
// so an admin who revoked every admin stays locked out across restarts.
func NewGateway(minDelay uint64, admins []common.Address, clock types.Clock, caller BatchCaller,
	db *store.DB, sink types.EventSink, logger cmtlog.Logger) (g *Gateway, err error) {
	logger = logger.With("module", "timelock")
	if sink == nil {
		sink = types.NopSink{}
	}
	g = &Gateway{
		logger:   logger,
		clock:    clock,
		caller:   caller,
		db:       db,
		sink:     sink,
		minDelay: minDelay,
		roles: map[types.Role]map[common.Address]bool{
			types.RoleProposer: {},
			types.RoleExecutor: {},
			types.RoleAdmin:    {},
		},
		ops: make(map[common.Hash]*types.Operation),
	}
	if db == nil {
		for _, a := range admins {
			g.roles[types.RoleAdmin][a] = true
		}
		return
	}

	delay, err := db.MinDelay()
	if err == nil {
		g.minDelay = delay
	} else if err == store.ErrNotFound {
		if err = db.SetMinDelay(minDelay); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}

	roles, err := db.LoadRoles()
	if err != nil {
		return nil, err
	}
	seeded := false
	for _, m := range roles {
		if len(m) > 0 {
			seeded = true
			break
		}
	}
	if seeded {
		g.roles = roles
	} else {
		for _, a := range admins {
			g.roles[types.RoleAdmin][a] = true
			if err = db.SetRole(types.RoleAdmin, a, true); err != nil {
				return nil, err
			}
		}
	}

	ops, err := db.LoadOperations()
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		g.ops[op.ID] = op
	}
	if _, err = db.Commit(); err != nil {
		return nil, err
	}
	logger.Info("gateway loaded", "operations", len(g.ops), "minDelay", g.minDelay)
	return
}

func (g *Gateway) hasRole(role types.Role, account common.Address) bool {
	m := g.roles[role]
	return m[account] || m[types.AddressAnyone]
}

func (g *Gateway) HasRole(role types.Role, account common.Address) bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.hasRole(role, account)
}

func (g *Gateway) MinDelay() uint64 {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.minDelay
}

func (g *Gateway) SetMinDelay(sender common.Address, delay uint64) (err error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if !g.hasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	prev := g.minDelay
	g.minDelay = delay
	if g.db != nil {
		if err = g.db.SetMinDelay(delay); err == nil {
			_, err = g.db.Commit()
		}
		if err != nil {
			g.minDelay = prev
			return
		}
	}
	g.logger.Info("min delay updated", "from", prev, "to", delay, "by", sender)
	return
}

func (g *Gateway) GrantRole(sender common.Address, role types.Role, account common.Address) error {
	return g.setRole(sender, role, account, true)
}

// RevokeRole removes a grant. An admin may revoke its own admin role;
// once no admin remains the role table is frozen forever.
func (g *Gateway) RevokeRole(sender common.Address, role types.Role, account common.Address) error {
	return g.setRole(sender, role, account, false)
}

func (g *Gateway) setRole(sender common.Address, role types.Role, account common.Address, granted bool) (err error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if !role.Valid() {
		return ErrInvalidRole
	}
	if !g.hasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	prev := g.roles[role][account]
	if granted {
		g.roles[role][account] = true
	} else {
		delete(g.roles[role], account)
	}
	if g.db != nil {
		if err = g.db.SetRole(role, account, granted); err == nil {
			_, err = g.db.Commit()
		}
		if err != nil {
			if prev {
				g.roles[role][account] = true
			} else {
				delete(g.roles[role], account)
			}
			return
		}
	}
	g.logger.Info("role changed", "role", role, "account", account, "granted", granted, "by", sender)
	g.sink.Emit(types.EventRoleChanged{Role: role, Account: account, Granted: granted})
	return
}

func (g *Gateway) Schedule(sender common.Address, actions []types.Action,
	predecessor, salt common.Hash, delay uint64) (op *types.Operation, err error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if !g.hasRole(types.RoleProposer, sender) {
		return nil, ErrUnauthorized
	}
	if len(actions) == 0 {
		return nil, types.ErrEmptyBatch
	}
	if delay < g.minDelay {
		return nil, fmt.Errorf("%w: %d < %d", ErrDelayTooShort, delay, g.minDelay)
	}
	id := types.OperationID(actions, predecessor, salt)
	if _, ok := g.ops[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOperation, id)
	}
	now := g.clock.Now()
	op = &types.Operation{
		ID:          id,
		Actions:     actions,
		Predecessor: predecessor,
		Salt:        salt,
		ReadyAt:     now + delay,
	}
	g.ops[id] = op
	if err = g.saveOp(op); err != nil {
		delete(g.ops, id)
		return nil, err
	}
	g.logger.Debug("operation scheduled", "id", id, "readyAt", op.ReadyAt, "actions", len(actions))
	g.sink.Emit(types.EventOperationScheduled{
		Operation:   id,
		Predecessor: predecessor,
		Salt:        salt,
		ReadyAt:     op.ReadyAt,
		Actions:     len(actions),
	})
	return
}

func (g *Gateway) Execute(sender common.Address, id common.Hash) (err error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if !g.hasRole(types.RoleExecutor, sender) {
		return ErrUnauthorized
	}
	op, ok := g.ops[id]
	if !ok {
		return fmt.Errorf("%w: operation %s unset", ErrInvalidState, id)
	}
	if op.Done {
		return fmt.Errorf("%w: operation %s already done", ErrInvalidState, id)
	}
	now := g.clock.Now()
	if now < op.ReadyAt {
		return fmt.Errorf("%w: ready at %d, now %d", ErrNotReady, op.ReadyAt, now)
	}
	if op.Predecessor != (common.Hash{}) {
		pred := g.ops[op.Predecessor]
		if pred.State() != types.OperationStateDone {
			return fmt.Errorf("%w: %s", ErrOrderingViolation, op.Predecessor)
		}
	}
	// A failed batch leaves the operation pending and retriable.
	if err = g.caller.CallBatch(op.Actions); err != nil {
		g.logger.Info("operation execution failed", "id", id, "err", err)
		return fmt.Errorf("%w: %v", ErrActionFailure, err)
	}
	op.Done = true
	if err = g.saveOp(op); err != nil {
		op.Done = false
		return
	}
	g.logger.Info("operation executed", "id", id)
	g.sink.Emit(types.EventOperationExecuted{Operation: id, Time: now})
	return
}

func (g *Gateway) Cancel(sender common.Address, id common.Hash) (err error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	if !g.hasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	now := g.clock.Now()
	op, ok := g.ops[id]
	if !ok || op.Done {
		return fmt.Errorf("%w: operation %s not pending", ErrInvalidState, id)
	}
	delete(g.ops, id)
	if g.db != nil {
		if err = g.db.DeleteOperation(id); err == nil {
			_, err = g.db.Commit()
		}
		if err != nil {
			g.ops[id] = op
			return
		}
	}
	g.logger.Info("operation canceled", "id", id)
	g.sink.Emit(types.EventOperationCanceled{Operation: id, Time: now})
	return
}

func (g *Gateway) OperationState(id common.Hash) types.OperationState {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.ops[id].State()
}

func (g *Gateway) Operation(id common.Hash) (op *types.Operation, ok bool) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	o, ok := g.ops[id]
	if !ok {
		return nil, false
	}
	n := *o
	n.Actions = append([]types.Action(nil), o.Actions...)
	return &n, true
}

func (g *Gateway) saveOp(op *types.Operation) (err error) {
	if g.db == nil {
		return nil
	}
	if err = g.db.SetOperation(op); err != nil {
		return
	}
	_, err = g.db.Commit()
	return
}
