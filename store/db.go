package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/daoforge/govern/types"
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyProposal  = "p%x"
	KeyOperation = "o%x"
	KeyAccount   = "a%x"
	KeyRole      = "r%v:%x"
	KeyMinDelay  = "d"
	KeyToken     = "t"
)

// DB persists governance records in an iavl tree over goleveldb. Each
// record body is a JSON blob under a printf-style prefixed key.
type DB struct {
	mtx sync.Mutex

	dir    string
	logger cmtlog.Logger
	ldb    dbm.DB
	tree   *iavl.MutableTree
}

func NewDB(dir string, logger cmtlog.Logger) (db *DB, err error) {
	logger = logger.With("module", "store")
	ldb, err := dbm.NewDB("govern", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tree := iavl.NewMutableTree(ldb, 128, true, newIAVLLogger(logger))
	version, err := tree.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	db = &DB{
		dir:    dir,
		logger: logger,
		ldb:    ldb,
		tree:   tree,
	}
	return
}

// Close shuts down the tree and the backing leveldb. The tree does not
// close the database it was given, so the handle is closed here or its
// lock file outlives the DB.
func (db *DB) Close() (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	if err = db.tree.Close(); err != nil {
		return
	}
	return db.ldb.Close()
}

func (db *DB) get(key string) (val []byte, err error) {
	val, err = db.tree.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if val == nil {
		return nil, ErrNotFound
	}
	return
}

func (db *DB) setJSON(key string, v any) (err error) {
	dat, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, err = db.tree.Set([]byte(key), dat)
	return
}

func (db *DB) SetProposal(p *types.Proposal) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.setJSON(fmt.Sprintf(KeyProposal, p.ID), p)
}

func (db *DB) GetProposal(id common.Hash) (p *types.Proposal, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	val, err := db.get(fmt.Sprintf(KeyProposal, id))
	if err != nil {
		return
	}
	p = new(types.Proposal)
	err = json.Unmarshal(val, p)
	if err != nil {
		p = nil
	}
	return
}

func (db *DB) LoadProposals() (proposals []*types.Proposal, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	err = db.iteratePrefix("p", func(val []byte) error {
		p := new(types.Proposal)
		if err := json.Unmarshal(val, p); err != nil {
			return err
		}
		proposals = append(proposals, p)
		return nil
	})
	return
}

func (db *DB) SetOperation(op *types.Operation) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.setJSON(fmt.Sprintf(KeyOperation, op.ID), op)
}

func (db *DB) DeleteOperation(id common.Hash) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	_, _, err = db.tree.Remove([]byte(fmt.Sprintf(KeyOperation, id)))
	return
}

func (db *DB) LoadOperations() (ops []*types.Operation, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	err = db.iteratePrefix("o", func(val []byte) error {
		op := new(types.Operation)
		if err := json.Unmarshal(val, op); err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	})
	return
}

func (db *DB) SetAccount(a *types.Account) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.setJSON(fmt.Sprintf(KeyAccount, a.Address), a)
}

func (db *DB) LoadAccounts() (accounts []*types.Account, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	err = db.iteratePrefix("a", func(val []byte) error {
		a := new(types.Account)
		if err := json.Unmarshal(val, a); err != nil {
			return err
		}
		accounts = append(accounts, a)
		return nil
	})
	return
}

func (db *DB) SetRole(role types.Role, account common.Address, granted bool) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	key := []byte(fmt.Sprintf(KeyRole, uint8(role), account))
	if granted {
		_, err = db.tree.Set(key, []byte{1})
	} else {
		_, _, err = db.tree.Remove(key)
	}
	return
}

func (db *DB) LoadRoles() (roles map[types.Role]map[common.Address]bool, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	roles = make(map[types.Role]map[common.Address]bool)
	for _, role := range []types.Role{types.RoleProposer, types.RoleExecutor, types.RoleAdmin} {
		roles[role] = make(map[common.Address]bool)
		prefix := fmt.Sprintf("r%v:", uint8(role))
		err = db.iteratePrefixKeys(prefix, func(key, _ []byte) error {
			addr := common.HexToAddress(string(key[len(prefix):]))
			roles[role][addr] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return
}

func (db *DB) SetTokenState(st *types.TokenState) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.setJSON(KeyToken, st)
}

func (db *DB) TokenState() (st *types.TokenState, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	val, err := db.get(KeyToken)
	if err != nil {
		return
	}
	st = new(types.TokenState)
	err = json.Unmarshal(val, st)
	if err != nil {
		st = nil
	}
	return
}

func (db *DB) SetMinDelay(delay uint64) (err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	_, err = db.tree.Set([]byte(KeyMinDelay), new(big.Int).SetUint64(delay).Bytes())
	return
}

func (db *DB) MinDelay() (delay uint64, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	val, err := db.get(KeyMinDelay)
	if err != nil {
		return 0, err
	}
	delay = new(big.Int).SetBytes(val).Uint64()
	return
}

// Commit writes a new tree version to disk and returns the state hash.
func (db *DB) Commit() (h common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	rootHash, _, err := db.tree.SaveVersion()
	if err != nil {
		db.tree.Rollback()
		return
	}
	h = eth_crypto.Keccak256Hash(rootHash)
	return
}

func (db *DB) iteratePrefix(prefix string, fn func(val []byte) error) error {
	return db.iteratePrefixKeys(prefix, func(_, val []byte) error {
		return fn(val)
	})
}

func (db *DB) iteratePrefixKeys(prefix string, fn func(key, val []byte) error) error {
	start := []byte(prefix)
	end := PrefixEndBytes(start)
	it, err := db.tree.Iterator(start, end, true)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
