package gov

import (
	"fmt"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/daoforge/govern/store"
	"github.com/daoforge/govern/types"
)

// Power provides historical voting weight. The registry always reads at
// a proposal's snapshot timepoint, never at the current one.
type Power interface {
	VotingPowerAt(account common.Address, timepoint uint64) uint64
	TotalSupplyAt(timepoint uint64) uint64
}

// Gateway is the slice of the timelock gateway the registry drives.
type Gateway interface {
	MinDelay() uint64
	Schedule(sender common.Address, actions []types.Action, predecessor, salt common.Hash, delay uint64) (*types.Operation, error)
	Execute(sender common.Address, id common.Hash) error
	Cancel(sender common.Address, id common.Hash) error
	OperationState(id common.Hash) types.OperationState
}

type Params struct {
	VotingDelay       uint64
	VotingPeriod      uint64
	ProposalThreshold uint64
	QuorumNumerator   uint64 // percent of total supply, 0..100
}

// Registry is the authoritative proposal table and lifecycle machine.
// Time-gated states are never stored; State derives them from the
// stored fields and a single clock reading per call.
type Registry struct {
	mtx sync.Mutex

	logger cmtlog.Logger
	clock  types.Clock
	power  Power
	gw     Gateway
	db     *store.DB
	sink   types.EventSink

	// self is the address the registry acts under on the gateway; it
	// must hold the proposer, executor and admin roles there.
	self   common.Address
	params Params

	proposals map[common.Hash]*types.Proposal
}

func NewRegistry(params Params, self common.Address, clock types.Clock, power Power,
	gw Gateway, db *store.DB, sink types.EventSink, logger cmtlog.Logger) (r *Registry, err error) {
	logger = logger.With("module", "gov")
	if sink == nil {
		sink = types.NopSink{}
	}
	r = &Registry{
		logger:    logger,
		clock:     clock,
		power:     power,
		gw:        gw,
		db:        db,
		sink:      sink,
		self:      self,
		params:    params,
		proposals: make(map[common.Hash]*types.Proposal),
	}
	if db != nil {
		var proposals []*types.Proposal
		proposals, err = db.LoadProposals()
		if err != nil {
			return nil, err
		}
		for _, p := range proposals {
			r.proposals[p.ID] = p
		}
		logger.Info("registry loaded", "proposals", len(r.proposals))
	}
	return
}

func (r *Registry) VotingDelay() uint64       { return r.params.VotingDelay }
func (r *Registry) VotingPeriod() uint64      { return r.params.VotingPeriod }
func (r *Registry) ProposalThreshold() uint64 { return r.params.ProposalThreshold }
func (r *Registry) Self() common.Address      { return r.self }

// Quorum is the minimum participating weight at the given timepoint.
func (r *Registry) Quorum(timepoint uint64) uint64 {
	return r.power.TotalSupplyAt(timepoint) * r.params.QuorumNumerator / 100
}

func (r *Registry) Propose(proposer common.Address, actions []types.Action, description string) (p *types.Proposal, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	now := r.clock.Now()
	if len(actions) == 0 {
		return nil, types.ErrEmptyBatch
	}
	if t := r.params.ProposalThreshold; t > 0 {
		if w := r.power.VotingPowerAt(proposer, now); w < t {
			return nil, fmt.Errorf("%w: weight %d < %d", ErrBelowThreshold, w, t)
		}
	}
	descHash := types.DescriptionHash(description)
	id := types.ProposalID(actions, descHash)
	if prev, ok := r.proposals[id]; ok {
		if !r.stateAt(prev, now).Terminal() {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProposal, id)
		}
	}
	p = &types.Proposal{
		ID:              id,
		Proposer:        proposer,
		Actions:         actions,
		Description:     description,
		DescriptionHash: descHash,
		Snapshot:        now,
		VotingStart:     now + r.params.VotingDelay,
		VotingEnd:       now + r.params.VotingDelay + r.params.VotingPeriod,
		Receipts:        make(map[common.Address]types.Receipt),
	}
	r.proposals[id] = p
	if err = r.save(p); err != nil {
		delete(r.proposals, id)
		return nil, err
	}
	r.logger.Info("proposal created", "id", id, "proposer", proposer,
		"snapshot", p.Snapshot, "start", p.VotingStart, "end", p.VotingEnd)
	r.sink.Emit(types.EventProposalCreated{
		Proposal:    id,
		Proposer:    proposer,
		Snapshot:    p.Snapshot,
		VotingStart: p.VotingStart,
		VotingEnd:   p.VotingEnd,
		Description: description,
	})
	return p.Clone(), nil
}

func (r *Registry) CastVote(voter common.Address, id common.Hash, support types.VoteSupport) (uint64, error) {
	return r.CastVoteWithReason(voter, id, support, "")
}

// CastVoteWithReason counts the voter's snapshot weight into the tally.
// A zero weight is valid and recorded.
func (r *Registry) CastVoteWithReason(voter common.Address, id common.Hash,
	support types.VoteSupport, reason string) (weight uint64, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	now := r.clock.Now()
	p, ok := r.proposals[id]
	if !ok {
		return 0, ErrUnknownProposal
	}
	if st := r.stateAt(p, now); st != types.ProposalStateActive {
		return 0, fmt.Errorf("%w: state %s", ErrVotingClosed, st)
	}
	if !support.Valid() {
		return 0, ErrInvalidSupport
	}
	if p.HasVoted(voter) {
		return 0, fmt.Errorf("%w: %s on %s", ErrAlreadyVoted, voter, id)
	}
	weight = r.power.VotingPowerAt(voter, p.Snapshot)
	prevTally := p.Tally
	switch support {
	case types.VoteAgainst:
		p.Tally.Against += weight
	case types.VoteFor:
		p.Tally.For += weight
	case types.VoteAbstain:
		p.Tally.Abstain += weight
	}
	p.Receipts[voter] = types.Receipt{Support: support, Weight: weight, Reason: reason}
	if err = r.save(p); err != nil {
		p.Tally = prevTally
		delete(p.Receipts, voter)
		return 0, err
	}
	r.logger.Debug("vote cast", "proposal", id, "voter", voter, "support", support, "weight", weight)
	r.sink.Emit(types.EventVoteCast{
		Proposal: id,
		Voter:    voter,
		Support:  support,
		Weight:   weight,
		Reason:   reason,
		Time:     now,
	})
	return weight, nil
}

// State derives the proposal's lifecycle state from its stored fields
// and the current time.
func (r *Registry) State(id common.Hash) types.ProposalState {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return types.ProposalStateUnknown
	}
	return r.stateAt(p, r.clock.Now())
}

func (r *Registry) stateAt(p *types.Proposal, now uint64) types.ProposalState {
	if p.Canceled {
		return types.ProposalStateCanceled
	}
	if p.IsQueued() {
		switch r.gw.OperationState(p.OperationID) {
		case types.OperationStateDone:
			return types.ProposalStateExecuted
		case types.OperationStatePending:
			return types.ProposalStateQueued
		}
		// The operation was canceled on the gateway side; the proposal
		// falls back to its vote-derived state and may be re-queued.
	}
	if now < p.VotingStart {
		return types.ProposalStatePending
	}
	if now < p.VotingEnd {
		return types.ProposalStateActive
	}
	quorum := r.power.TotalSupplyAt(p.Snapshot) * r.params.QuorumNumerator / 100
	participating := p.Tally.For + p.Tally.Against + p.Tally.Abstain
	if participating >= quorum && p.Tally.For > p.Tally.Against {
		return types.ProposalStateSucceeded
	}
	return types.ProposalStateDefeated
}

// Queue hands the proposal's batch to the gateway under the minimum
// delay, using the description hash as the salt so the operation id is
// reproducible from the proposal alone.
func (r *Registry) Queue(id common.Hash) (readyAt uint64, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	now := r.clock.Now()
	p, ok := r.proposals[id]
	if !ok {
		return 0, ErrUnknownProposal
	}
	switch st := r.stateAt(p, now); st {
	case types.ProposalStateQueued, types.ProposalStateExecuted:
		return 0, fmt.Errorf("%w: %s", ErrAlreadyQueued, id)
	case types.ProposalStateSucceeded:
	default:
		return 0, fmt.Errorf("%w: state %s", ErrNotSucceeded, st)
	}
	op, err := r.gw.Schedule(r.self, p.Actions, common.Hash{}, p.DescriptionHash, r.gw.MinDelay())
	if err != nil {
		return 0, err
	}
	prevOp, prevReady := p.OperationID, p.ReadyAt
	p.OperationID = op.ID
	p.ReadyAt = op.ReadyAt
	if err = r.save(p); err != nil {
		p.OperationID, p.ReadyAt = prevOp, prevReady
		return 0, err
	}
	r.logger.Info("proposal queued", "id", id, "operation", op.ID, "readyAt", op.ReadyAt)
	r.sink.Emit(types.EventProposalQueued{Proposal: id, Operation: op.ID, ReadyAt: op.ReadyAt})
	return op.ReadyAt, nil
}

// Execute triggers the queued operation. The gateway call is atomic; on
// failure the proposal stays queued and execute may be retried.
func (r *Registry) Execute(id common.Hash) (err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	now := r.clock.Now()
	p, ok := r.proposals[id]
	if !ok {
		return ErrUnknownProposal
	}
	if st := r.stateAt(p, now); st != types.ProposalStateQueued {
		return fmt.Errorf("%w: state %s", ErrNotQueued, st)
	}
	if now < p.ReadyAt {
		return fmt.Errorf("%w: ready at %d, now %d", ErrNotReady, p.ReadyAt, now)
	}
	if err = r.gw.Execute(r.self, p.OperationID); err != nil {
		return err
	}
	r.logger.Info("proposal executed", "id", id, "operation", p.OperationID)
	r.sink.Emit(types.EventProposalExecuted{Proposal: id, Operation: p.OperationID, Time: now})
	return nil
}

// Cancel is restricted to the proposer and to proposals that have not
// resolved to a terminal or already-executing state. Canceling a queued
// proposal also cancels the gateway operation so the two tables never
// diverge.
func (r *Registry) Cancel(sender common.Address, id common.Hash) (err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	now := r.clock.Now()
	p, ok := r.proposals[id]
	if !ok {
		return ErrUnknownProposal
	}
	if sender != p.Proposer {
		return ErrNotProposer
	}
	st := r.stateAt(p, now)
	switch st {
	case types.ProposalStatePending, types.ProposalStateActive, types.ProposalStateSucceeded:
	case types.ProposalStateQueued:
		if err = r.gw.Cancel(r.self, p.OperationID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: state %s", ErrNotCancelable, st)
	}
	p.Canceled = true
	if err = r.save(p); err != nil {
		p.Canceled = false
		return
	}
	r.logger.Info("proposal canceled", "id", id, "state", st)
	r.sink.Emit(types.EventProposalCanceled{Proposal: id, Time: now})
	return nil
}

func (r *Registry) Proposal(id common.Hash) (p *types.Proposal, ok bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	pp, ok := r.proposals[id]
	if !ok {
		return nil, false
	}
	return pp.Clone(), true
}

func (r *Registry) Proposals() (proposals []*types.Proposal) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, p := range r.proposals {
		proposals = append(proposals, p.Clone())
	}
	return
}

func (r *Registry) save(p *types.Proposal) (err error) {
	if r.db == nil {
		return nil
	}
	if err = r.db.SetProposal(p); err != nil {
		return
	}
	_, err = r.db.Commit()
	return
}
