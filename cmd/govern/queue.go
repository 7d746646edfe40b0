package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
)

type queueArguments struct {
	Url      string
	Nonce    uint64
	Skey     string
	Proposal string
	NoSend   bool
}

var queueArgs queueArguments

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Queue a succeeded proposal on the timelock",
	Long:  ``,
	Run:   queueRun,
}

func init() {
	urlFlag(queueCmd, &queueArgs.Url)
	skeyFlag(queueCmd, &queueArgs.Skey)
	nonceFlag(queueCmd, &queueArgs.Nonce)
	noSendFlag(queueCmd, &queueArgs.NoSend)
	queueCmd.Flags().StringVarP(&queueArgs.Proposal, "proposal", "p", "", "proposal id")
}

func queueRun(cmd *cobra.Command, args []string) {
	stx := api.QueueTx{Proposal: common.HexToHash(queueArgs.Proposal)}
	signAndSend(queueArgs.Url, queueArgs.Skey, queueArgs.Nonce, api.TxTypeQueue, stx, queueArgs.NoSend)
}
