package index

import (
	"context"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/daoforge/govern/types"
)

const eventBuffer = 1024

// Indexer maintains sqlite read models of governance activity. It is
// wired as the event sink of the registry and the gateway; the write
// path never waits on it.
type Indexer struct {
	logger cmtlog.Logger
	db     *gorm.DB
	events chan types.Event
}

func NewIndexer(dbPath string, logger cmtlog.Logger) (*Indexer, error) {
	logger = logger.With("module", "indexer")
	logger.Info("NewIndexer", "dbPath", dbPath)
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Proposal{}, &Vote{}, &Operation{}, &RoleChange{}).Error; err != nil {
		return nil, err
	}
	return &Indexer{
		logger: logger,
		db:     db,
		events: make(chan types.Event, eventBuffer),
	}, nil
}

// Emit implements types.EventSink without blocking; if the buffer is
// full the event is dropped and the read model lags until restart.
func (ix *Indexer) Emit(ev types.Event) {
	select {
	case ix.events <- ev:
	default:
		ix.logger.Error("event buffer full, dropping", "type", ev.EventType())
	}
}

func (ix *Indexer) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ix.events:
			if err := ix.handle(ev); err != nil {
				ix.logger.Error("index event fail", "type", ev.EventType(), "err", err)
			}
		}
	}
}

func (ix *Indexer) Close() error {
	return ix.db.Close()
}

func (ix *Indexer) handle(ev types.Event) error {
	switch e := ev.(type) {
	case types.EventProposalCreated:
		row := Proposal{
			Id:              e.Proposal.Hex(),
			Proposer:        e.Proposer.Hex(),
			Description:     e.Description,
			Snapshot:        e.Snapshot,
			VotingStart:     e.VotingStart,
			VotingEnd:       e.VotingEnd,
			CreateTimestamp: time.Now().Unix(),
		}
		// A terminal proposal may be re-proposed under the same id; the
		// fresh run replaces the stale row and its votes.
		ix.db.Delete(&Vote{}, "proposal = ?", row.Id)
		ix.db.Delete(&Proposal{}, "id = ?", row.Id)
		return ix.db.Create(&row).Error
	case types.EventVoteCast:
		row := Vote{
			Proposal: e.Proposal.Hex(),
			Voter:    e.Voter.Hex(),
			Support:  uint64(e.Support),
			Weight:   e.Weight,
			Reason:   e.Reason,
			Time:     e.Time,
		}
		if err := ix.db.Create(&row).Error; err != nil {
			return err
		}
		col := "abstain_weight"
		switch e.Support {
		case types.VoteAgainst:
			col = "against_weight"
		case types.VoteFor:
			col = "for_weight"
		}
		return ix.db.Model(&Proposal{}).Where("id = ?", e.Proposal.Hex()).
			Update(col, gorm.Expr(col+" + ?", e.Weight)).Error
	case types.EventProposalQueued:
		return ix.db.Model(&Proposal{}).Where("id = ?", e.Proposal.Hex()).
			Updates(map[string]any{"operation_id": e.Operation.Hex(), "ready_at": e.ReadyAt}).Error
	case types.EventProposalExecuted:
		return ix.db.Model(&Proposal{}).Where("id = ?", e.Proposal.Hex()).
			Update("executed", true).Error
	case types.EventProposalCanceled:
		return ix.db.Model(&Proposal{}).Where("id = ?", e.Proposal.Hex()).
			Update("canceled", true).Error
	case types.EventOperationScheduled:
		row := Operation{
			Id:          e.Operation.Hex(),
			Predecessor: e.Predecessor.Hex(),
			Salt:        e.Salt.Hex(),
			ReadyAt:     e.ReadyAt,
			Actions:     e.Actions,
		}
		// Re-scheduling after a cancel reuses the id; replace the row.
		ix.db.Delete(&Operation{}, "id = ?", row.Id)
		return ix.db.Create(&row).Error
	case types.EventOperationExecuted:
		return ix.db.Model(&Operation{}).Where("id = ?", e.Operation.Hex()).
			Update("done", true).Error
	case types.EventOperationCanceled:
		return ix.db.Model(&Operation{}).Where("id = ?", e.Operation.Hex()).
			Update("canceled", true).Error
	case types.EventRoleChanged:
		row := RoleChange{
			Role:    e.Role.String(),
			Account: e.Account.Hex(),
			Granted: e.Granted,
		}
		return ix.db.Create(&row).Error
	default:
		ix.logger.Debug("unhandled event", "type", ev.EventType())
		return nil
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 50
	}
	if page < 0 {
		page = 0
	}
	return page, pageSize
}

func (ix *Indexer) GetProposals(page, pageSize int) (rows []Proposal, total uint64, err error) {
	page, pageSize = normalizePage(page, pageSize)
	var count int
	if err = ix.db.Model(&Proposal{}).Count(&count).Error; err != nil {
		return
	}
	total = uint64(count)
	err = ix.db.Order("create_timestamp desc").
		Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	return
}

func (ix *Indexer) GetProposalById(id string) (row Proposal, err error) {
	err = ix.db.Where("id = ?", id).First(&row).Error
	return
}

func (ix *Indexer) GetProposalsByProposer(proposer string, page, pageSize int) (rows []Proposal, total uint64, err error) {
	page, pageSize = normalizePage(page, pageSize)
	var count int
	q := ix.db.Model(&Proposal{}).Where("proposer = ?", proposer)
	if err = q.Count(&count).Error; err != nil {
		return
	}
	total = uint64(count)
	err = ix.db.Where("proposer = ?", proposer).Order("create_timestamp desc").
		Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	return
}

func (ix *Indexer) GetVotesByProposal(proposal string, page, pageSize int) (rows []Vote, total uint64, err error) {
	page, pageSize = normalizePage(page, pageSize)
	var count int
	q := ix.db.Model(&Vote{}).Where("proposal = ?", proposal)
	if err = q.Count(&count).Error; err != nil {
		return
	}
	total = uint64(count)
	err = ix.db.Where("proposal = ?", proposal).Order("id asc").
		Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	return
}

func (ix *Indexer) GetOperations(page, pageSize int) (rows []Operation, total uint64, err error) {
	page, pageSize = normalizePage(page, pageSize)
	var count int
	if err = ix.db.Model(&Operation{}).Count(&count).Error; err != nil {
		return
	}
	total = uint64(count)
	err = ix.db.Order("ready_at asc").Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
	return
}

func (ix *Indexer) GetOperationById(id string) (row Operation, err error) {
	err = ix.db.Where("id = ?", id).First(&row).Error
	return
}
