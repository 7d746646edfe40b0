package node

import (
	"context"
	"errors"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/config"
	"github.com/daoforge/govern/gov"
	"github.com/daoforge/govern/index"
	"github.com/daoforge/govern/power"
	"github.com/daoforge/govern/store"
	"github.com/daoforge/govern/target"
	"github.com/daoforge/govern/timelock"
	"github.com/daoforge/govern/types"
)

// Well-known addresses of the in-process contracts.
var (
	RegistryAddress = deriveAddress("govern/registry")
	KVStoreAddress  = deriveAddress("govern/target/kvstore")
)

func deriveAddress(name string) common.Address {
	return common.BytesToAddress(eth_crypto.Keccak256([]byte(name))[12:])
}

// Node assembles the full stack: persistent store, voting token, target
// dispatcher, timelock gateway, proposal registry, read-model indexer
// and the HTTP API.
type Node struct {
	cfg    *config.Config
	logger cmtlog.Logger

	db       *store.DB
	token    *power.Token
	kv       *target.KVStore
	gateway  *timelock.Gateway
	registry *gov.Registry
	accounts *api.Accounts
	indexer  *index.Indexer
	service  *api.Service

	cancel context.CancelFunc
}

func NewNode(cfg *config.Config, logger cmtlog.Logger) (n *Node, err error) {
	logger = logger.With("module", "node")
	clock := types.SystemClock{}

	db, err := store.NewDB(cfg.DataDir(), logger)
	if err != nil {
		return nil, err
	}

	indexer, err := index.NewIndexer(cfg.IndexFile(), logger)
	if err != nil {
		return nil, err
	}

	token, err := power.NewToken(clock, db, logger)
	if err != nil {
		return nil, err
	}
	// Genesis balances seed a fresh store only; on a restart the
	// persisted histories are already the truth.
	if token.Fresh() {
		for _, g := range cfg.Genesis {
			addr := common.HexToAddress(g.Address)
			if err = token.Mint(addr, g.Balance); err != nil {
				return nil, err
			}
			if err = token.Delegate(addr, addr); err != nil {
				return nil, err
			}
		}
	}

	kv := target.NewKVStore()
	dispatcher := target.NewDispatcher(logger)
	dispatcher.Register(KVStoreAddress, kv)

	admins := []common.Address{RegistryAddress}
	for _, a := range cfg.Timelock.Admins {
		admins = append(admins, common.HexToAddress(a))
	}
	gateway, err := timelock.NewGateway(cfg.Timelock.MinDelay, admins, clock, dispatcher, db, indexer, logger)
	if err != nil {
		return nil, err
	}
	if err = bootstrapRoles(gateway, cfg, logger); err != nil {
		return nil, err
	}

	registry, err := gov.NewRegistry(gov.Params{
		VotingDelay:       cfg.Governance.VotingDelay,
		VotingPeriod:      cfg.Governance.VotingPeriod,
		ProposalThreshold: cfg.Governance.ProposalThreshold,
		QuorumNumerator:   cfg.Governance.QuorumNumerator,
	}, RegistryAddress, clock, token, gateway, db, indexer, logger)
	if err != nil {
		return nil, err
	}

	accounts, err := api.NewAccounts(db, logger)
	if err != nil {
		return nil, err
	}

	service := api.NewService(cfg.ListenAddr, cfg.ServiceID, clock, registry, gateway, accounts, indexer, logger)

	n = &Node{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		token:    token,
		kv:       kv,
		gateway:  gateway,
		registry: registry,
		accounts: accounts,
		indexer:  indexer,
		service:  service,
	}
	return
}

// bootstrapRoles grants the registry the roles it needs to drive the
// gateway, plus open execution when configured. Existing grants are
// skipped, and on a frozen role table (every admin relinquished) a
// refused grant is not fatal: the node starts and serves whatever the
// remaining grants allow.
func bootstrapRoles(g *timelock.Gateway, cfg *config.Config, logger cmtlog.Logger) error {
	grants := []struct {
		role    types.Role
		account common.Address
	}{
		{types.RoleProposer, RegistryAddress},
		{types.RoleExecutor, RegistryAddress},
	}
	if cfg.Timelock.OpenExecutor {
		grants = append(grants, struct {
			role    types.Role
			account common.Address
		}{types.RoleExecutor, types.AddressAnyone})
	}
	for _, gr := range grants {
		if g.HasRole(gr.role, gr.account) {
			continue
		}
		if err := g.GrantRole(RegistryAddress, gr.role, gr.account); err != nil {
			if errors.Is(err, timelock.ErrUnauthorized) {
				logger.Error("role grant refused, role table frozen", "role", gr.role, "account", gr.account)
				continue
			}
			return err
		}
	}
	return nil
}

func (n *Node) Registry() *gov.Registry    { return n.registry }
func (n *Node) Gateway() *timelock.Gateway { return n.gateway }
func (n *Node) Token() *power.Token        { return n.token }
func (n *Node) KVStore() *target.KVStore   { return n.kv }

func (n *Node) Start(ctx context.Context) error {
	ctx, n.cancel = context.WithCancel(ctx)
	go n.indexer.Start(ctx)
	n.logger.Info("node started", "listen", n.cfg.ListenAddr, "serviceId", n.cfg.ServiceID)
	return n.service.Start()
}

func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	if err := n.indexer.Close(); err != nil {
		n.logger.Error("close indexer fail", "err", err)
	}
	if err := n.db.Close(); err != nil {
		n.logger.Error("close db fail", "err", err)
	}
	n.logger.Info("node stopped")
}
