package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/types"
)

type voteArguments struct {
	Url      string
	Nonce    uint64
	Skey     string
	Proposal string
	Support  uint8
	Reason   string
	NoSend   bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast a vote on an active proposal",
	Long:  `Support: 0 against, 1 for, 2 abstain.`,
	Run:   voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	skeyFlag(voteCmd, &voteArgs.Skey)
	nonceFlag(voteCmd, &voteArgs.Nonce)
	noSendFlag(voteCmd, &voteArgs.NoSend)
	voteCmd.Flags().StringVarP(&voteArgs.Proposal, "proposal", "p", "", "proposal id")
	voteCmd.Flags().Uint8VarP(&voteArgs.Support, "support", "", uint8(types.VoteFor), "vote support")
	voteCmd.Flags().StringVarP(&voteArgs.Reason, "reason", "r", "", "vote reason")
}

func voteRun(cmd *cobra.Command, args []string) {
	support := types.VoteSupport(voteArgs.Support)
	if !support.Valid() {
		fmt.Printf("invalid support:%v\n", voteArgs.Support)
		return
	}
	stx := api.VoteTx{
		Proposal: common.HexToHash(voteArgs.Proposal),
		Support:  support,
		Reason:   voteArgs.Reason,
	}
	signAndSend(voteArgs.Url, voteArgs.Skey, voteArgs.Nonce, api.TxTypeVote, stx, voteArgs.NoSend)
}
