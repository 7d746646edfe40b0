package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
)

type cancelArguments struct {
	Url       string
	Nonce     uint64
	Skey      string
	Proposal  string
	Operation string
	NoSend    bool
}

var cancelArgs cancelArguments

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a proposal, or a pending operation by id",
	Long:  ``,
	Run:   cancelRun,
}

func init() {
	urlFlag(cancelCmd, &cancelArgs.Url)
	skeyFlag(cancelCmd, &cancelArgs.Skey)
	nonceFlag(cancelCmd, &cancelArgs.Nonce)
	noSendFlag(cancelCmd, &cancelArgs.NoSend)
	cancelCmd.Flags().StringVarP(&cancelArgs.Proposal, "proposal", "p", "", "proposal id")
	cancelCmd.Flags().StringVarP(&cancelArgs.Operation, "operation", "o", "", "operation id")
}

func cancelRun(cmd *cobra.Command, args []string) {
	if cancelArgs.Operation != "" {
		stx := api.CancelOperationTx{Operation: common.HexToHash(cancelArgs.Operation)}
		signAndSend(cancelArgs.Url, cancelArgs.Skey, cancelArgs.Nonce, api.TxTypeCancelOperation, stx, cancelArgs.NoSend)
		return
	}
	stx := api.CancelTx{Proposal: common.HexToHash(cancelArgs.Proposal)}
	signAndSend(cancelArgs.Url, cancelArgs.Skey, cancelArgs.Nonce, api.TxTypeCancel, stx, cancelArgs.NoSend)
}
