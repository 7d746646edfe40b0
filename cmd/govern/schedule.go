package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/types"
)

type scheduleArguments struct {
	Url         string
	Nonce       uint64
	Skey        string
	Actions     string
	Predecessor string
	Salt        string
	Delay       uint64
	NoSend      bool
}

var scheduleArgs scheduleArguments

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule an operation on the timelock directly",
	Long:  `Requires the proposer role on the gateway.`,
	Run:   scheduleRun,
}

func init() {
	urlFlag(scheduleCmd, &scheduleArgs.Url)
	skeyFlag(scheduleCmd, &scheduleArgs.Skey)
	nonceFlag(scheduleCmd, &scheduleArgs.Nonce)
	noSendFlag(scheduleCmd, &scheduleArgs.NoSend)
	scheduleCmd.Flags().StringVarP(&scheduleArgs.Actions, "actions", "a", "", "action batch json")
	scheduleCmd.Flags().StringVarP(&scheduleArgs.Predecessor, "predecessor", "", "", "operation id that must be done first")
	scheduleCmd.Flags().StringVarP(&scheduleArgs.Salt, "salt", "", "", "salt distinguishing identical batches")
	scheduleCmd.Flags().Uint64VarP(&scheduleArgs.Delay, "delay", "", 0, "delay in seconds, 0 uses the gateway minimum")
}

func scheduleRun(cmd *cobra.Command, args []string) {
	actions, err := parseActions(scheduleArgs.Actions)
	if err != nil {
		fmt.Printf("parse actions err:%v\n", err)
		return
	}
	delay := scheduleArgs.Delay
	if delay == 0 {
		info, err := queryInfo(scheduleArgs.Url)
		if err != nil {
			return
		}
		delay = info.MinDelay
	}
	predecessor := common.HexToHash(scheduleArgs.Predecessor)
	salt := common.HexToHash(scheduleArgs.Salt)
	stx := api.ScheduleTx{
		Actions:     actions,
		Predecessor: predecessor,
		Salt:        salt,
		Delay:       delay,
	}
	id := types.OperationID(actions, predecessor, salt)
	fmt.Printf("operation id:%v\n", id.Hex())
	signAndSend(scheduleArgs.Url, scheduleArgs.Skey, scheduleArgs.Nonce, api.TxTypeSchedule, stx, scheduleArgs.NoSend)
}
