package api

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/daoforge/govern/types"
)

type TxType uint8

const (
	TxTypeUnknown          TxType = 0
	TxTypeRegister         TxType = 1
	TxTypePropose          TxType = 2
	TxTypeVote             TxType = 3
	TxTypeQueue            TxType = 4
	TxTypeExecute          TxType = 5
	TxTypeCancel           TxType = 6
	TxTypeSchedule         TxType = 7
	TxTypeExecuteOperation TxType = 8
	TxTypeCancelOperation  TxType = 9
	TxTypeRole             TxType = 10
	TxTypeSetMinDelay      TxType = 11
)

const (
	TxVersion1 uint8 = 1
)

var (
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrNonceInvalid      = errors.New("nonce invalid")
	ErrSigInvalid        = errors.New("signature invalid")
	ErrAccountNoexists   = errors.New("account noexists")
	ErrAccountExists     = errors.New("account already exists")
	ErrSenderMismatch    = errors.New("sender mismatch")
)

// Envelope is the signed wrapper of every write request. The signature
// covers the envelope with the service id substituted for the signature
// list, binding each request to one deployment and one nonce.
type Envelope struct {
	Version uint8          `json:"version"`
	Type    TxType         `json:"type"`
	Nonce   uint64         `json:"nonce"`
	Sender  common.Address `json:"sender"`
	Tx      any            `json:"tx"`
	Sig     [][]byte       `json:"sig"`
}

type RegisterTx struct {
	PubKey []byte `json:"pubKey"`
	Name   string `json:"name,omitempty"`
}

type ProposeTx struct {
	Actions     []types.Action `json:"actions"`
	Description string         `json:"description"`
}

type VoteTx struct {
	Proposal common.Hash       `json:"proposal"`
	Support  types.VoteSupport `json:"support"`
	Reason   string            `json:"reason,omitempty"`
}

type QueueTx struct {
	Proposal common.Hash `json:"proposal"`
}

type ExecuteTx struct {
	Proposal common.Hash `json:"proposal"`
}

type CancelTx struct {
	Proposal common.Hash `json:"proposal"`
}

type ScheduleTx struct {
	Actions     []types.Action `json:"actions"`
	Predecessor common.Hash    `json:"predecessor"`
	Salt        common.Hash    `json:"salt"`
	Delay       uint64         `json:"delay"`
}

type ExecuteOperationTx struct {
	Operation common.Hash `json:"operation"`
}

type CancelOperationTx struct {
	Operation common.Hash `json:"operation"`
}

type RoleTx struct {
	Role    types.Role     `json:"role"`
	Account common.Address `json:"account"`
	Revoke  bool           `json:"revoke,omitempty"`
}

type SetMinDelayTx struct {
	Delay uint64 `json:"delay"`
}

type envelopeTmpl[Tx any] struct {
	Version uint8          `json:"version"`
	Type    TxType         `json:"type"`
	Nonce   uint64         `json:"nonce"`
	Sender  common.Address `json:"sender"`
	Tx      Tx             `json:"tx"`
	Sig     [][]byte       `json:"sig"`
}

// SigData is the byte string signatures are made over: the envelope
// with the signature list replaced by the service id.
func (e *Envelope) SigData(serviceID []byte) (dat []byte, err error) {
	ne := *e
	ne.Sig = [][]byte{serviceID}
	dat, err = json.Marshal(ne)
	return
}

func parseTxType(dat []byte) TxType {
	var e struct {
		Type TxType `json:"type"`
	}
	err := json.Unmarshal(dat, &e)
	if err != nil {
		return TxTypeUnknown
	}
	return e.Type
}

func unmarshalEnvelope[Tx any](dat []byte) (env *Envelope, err error) {
	var et envelopeTmpl[Tx]
	err = json.Unmarshal(dat, &et)
	if err != nil {
		return
	}
	env = new(Envelope)
	env.Version = et.Version
	env.Type = et.Type
	env.Nonce = et.Nonce
	env.Sender = et.Sender
	env.Tx = &et.Tx
	env.Sig = et.Sig
	return
}

func UnmarshalEnvelope(dat []byte) (env *Envelope, err error) {
	switch parseTxType(dat) {
	case TxTypeRegister:
		return unmarshalEnvelope[RegisterTx](dat)
	case TxTypePropose:
		return unmarshalEnvelope[ProposeTx](dat)
	case TxTypeVote:
		return unmarshalEnvelope[VoteTx](dat)
	case TxTypeQueue:
		return unmarshalEnvelope[QueueTx](dat)
	case TxTypeExecute:
		return unmarshalEnvelope[ExecuteTx](dat)
	case TxTypeCancel:
		return unmarshalEnvelope[CancelTx](dat)
	case TxTypeSchedule:
		return unmarshalEnvelope[ScheduleTx](dat)
	case TxTypeExecuteOperation:
		return unmarshalEnvelope[ExecuteOperationTx](dat)
	case TxTypeCancelOperation:
		return unmarshalEnvelope[CancelOperationTx](dat)
	case TxTypeRole:
		return unmarshalEnvelope[RoleTx](dat)
	case TxTypeSetMinDelay:
		return unmarshalEnvelope[SetMinDelayTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalEnvelope(env *Envelope) (dat []byte, err error) {
	return json.Marshal(env)
}
