package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
)

type executeArguments struct {
	Url       string
	Nonce     uint64
	Skey      string
	Proposal  string
	Operation string
	NoSend    bool
}

var executeArgs executeArguments

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a queued proposal, or a raw operation by id",
	Long:  ``,
	Run:   executeRun,
}

func init() {
	urlFlag(executeCmd, &executeArgs.Url)
	skeyFlag(executeCmd, &executeArgs.Skey)
	nonceFlag(executeCmd, &executeArgs.Nonce)
	noSendFlag(executeCmd, &executeArgs.NoSend)
	executeCmd.Flags().StringVarP(&executeArgs.Proposal, "proposal", "p", "", "proposal id")
	executeCmd.Flags().StringVarP(&executeArgs.Operation, "operation", "o", "", "operation id")
}

func executeRun(cmd *cobra.Command, args []string) {
	if executeArgs.Operation != "" {
		stx := api.ExecuteOperationTx{Operation: common.HexToHash(executeArgs.Operation)}
		signAndSend(executeArgs.Url, executeArgs.Skey, executeArgs.Nonce, api.TxTypeExecuteOperation, stx, executeArgs.NoSend)
		return
	}
	stx := api.ExecuteTx{Proposal: common.HexToHash(executeArgs.Proposal)}
	signAndSend(executeArgs.Url, executeArgs.Skey, executeArgs.Nonce, api.TxTypeExecute, stx, executeArgs.NoSend)
}
