package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/daoforge/govern/types"
)

// TxResponse mirrors the shape of a chain tx result: a zero code is
// success, anything else carries the failure in Log.
type TxResponse struct {
	Code uint32 `json:"code"`
	Log  string `json:"log,omitempty"`
	Data any    `json:"data,omitempty"`
}

func txFail(c *gin.Context, err error) {
	c.JSON(http.StatusOK, TxResponse{Code: 1, Log: err.Error()})
}

func txOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, TxResponse{Code: 0, Data: data})
}

func (s *Service) handleTx(c *gin.Context) {
	dat, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	env, err := UnmarshalEnvelope(dat)
	if err != nil {
		txFail(c, err)
		return
	}
	if env.Version != TxVersion1 {
		txFail(c, ErrUnsupportedTxType)
		return
	}
	sigDat, err := env.SigData([]byte(s.serviceID))
	if err != nil {
		txFail(c, err)
		return
	}

	if env.Type == TxTypeRegister {
		s.handleRegister(c, env, sigDat)
		return
	}

	acct, ok := s.accounts.Get(env.Sender)
	if !ok {
		txFail(c, ErrAccountNoexists)
		return
	}
	if acct.Nonce != env.Nonce {
		txFail(c, ErrNonceInvalid)
		return
	}
	if !acct.Verify(sigDat, env.Sig) {
		txFail(c, ErrSigInvalid)
		return
	}

	data, err := s.dispatch(env)
	if err != nil {
		s.logger.Info("tx fail", "type", env.Type, "sender", env.Sender, "err", err)
		txFail(c, err)
		return
	}
	if err := s.accounts.BumpNonce(env.Sender); err != nil {
		txFail(c, err)
		return
	}
	txOK(c, data)
}

// Registration is self-signed: the carried pubkey must both derive the
// sender address and verify the envelope signature.
func (s *Service) handleRegister(c *gin.Context, env *Envelope, sigDat []byte) {
	rtx := env.Tx.(*RegisterTx)
	if types.AddressFromPubKey(rtx.PubKey) != env.Sender {
		txFail(c, ErrSenderMismatch)
		return
	}
	if env.Nonce != 0 {
		txFail(c, ErrNonceInvalid)
		return
	}
	signer := types.Account{PubKey: rtx.PubKey}
	if !signer.Verify(sigDat, env.Sig) {
		txFail(c, ErrSigInvalid)
		return
	}
	acct, err := s.accounts.Register(rtx.PubKey, rtx.Name)
	if err != nil {
		txFail(c, err)
		return
	}
	txOK(c, acct)
}

func (s *Service) dispatch(env *Envelope) (data any, err error) {
	switch env.Type {
	case TxTypePropose:
		wtx := env.Tx.(*ProposeTx)
		p, err := s.registry.Propose(env.Sender, wtx.Actions, wtx.Description)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"proposal":    p.ID,
			"snapshot":    p.Snapshot,
			"votingStart": p.VotingStart,
			"votingEnd":   p.VotingEnd,
		}, nil
	case TxTypeVote:
		wtx := env.Tx.(*VoteTx)
		weight, err := s.registry.CastVoteWithReason(env.Sender, wtx.Proposal, wtx.Support, wtx.Reason)
		if err != nil {
			return nil, err
		}
		return gin.H{"weight": weight}, nil
	case TxTypeQueue:
		wtx := env.Tx.(*QueueTx)
		readyAt, err := s.registry.Queue(wtx.Proposal)
		if err != nil {
			return nil, err
		}
		return gin.H{"readyAt": readyAt}, nil
	case TxTypeExecute:
		wtx := env.Tx.(*ExecuteTx)
		if err := s.registry.Execute(wtx.Proposal); err != nil {
			return nil, err
		}
		return gin.H{"executed": wtx.Proposal}, nil
	case TxTypeCancel:
		wtx := env.Tx.(*CancelTx)
		if err := s.registry.Cancel(env.Sender, wtx.Proposal); err != nil {
			return nil, err
		}
		return gin.H{"canceled": wtx.Proposal}, nil
	case TxTypeSchedule:
		wtx := env.Tx.(*ScheduleTx)
		op, err := s.gateway.Schedule(env.Sender, wtx.Actions, wtx.Predecessor, wtx.Salt, wtx.Delay)
		if err != nil {
			return nil, err
		}
		return gin.H{"operation": op.ID, "readyAt": op.ReadyAt}, nil
	case TxTypeExecuteOperation:
		wtx := env.Tx.(*ExecuteOperationTx)
		if err := s.gateway.Execute(env.Sender, wtx.Operation); err != nil {
			return nil, err
		}
		return gin.H{"executed": wtx.Operation}, nil
	case TxTypeCancelOperation:
		wtx := env.Tx.(*CancelOperationTx)
		if err := s.gateway.Cancel(env.Sender, wtx.Operation); err != nil {
			return nil, err
		}
		return gin.H{"canceled": wtx.Operation}, nil
	case TxTypeRole:
		wtx := env.Tx.(*RoleTx)
		if wtx.Revoke {
			err = s.gateway.RevokeRole(env.Sender, wtx.Role, wtx.Account)
		} else {
			err = s.gateway.GrantRole(env.Sender, wtx.Role, wtx.Account)
		}
		if err != nil {
			return nil, err
		}
		return gin.H{"role": wtx.Role.String(), "account": wtx.Account, "granted": !wtx.Revoke}, nil
	case TxTypeSetMinDelay:
		wtx := env.Tx.(*SetMinDelayTx)
		if err := s.gateway.SetMinDelay(env.Sender, wtx.Delay); err != nil {
			return nil, err
		}
		return gin.H{"minDelay": wtx.Delay}, nil
	default:
		return nil, ErrUnsupportedTxType
	}
}

func hashFromHex(s string) common.Hash {
	return common.HexToHash(s)
}

func addressFromHex(s string) common.Address {
	return common.HexToAddress(s)
}
