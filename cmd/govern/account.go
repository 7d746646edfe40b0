package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

type accountArguments struct {
	Url     string
	Address string
}

var accountArgs accountArguments

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "",
	Long:  ``,
	Run:   accountRun,
}

func init() {
	urlFlag(accountCmd, &accountArgs.Url)
	accountCmd.Flags().StringVarP(&accountArgs.Address, "address", "a", "", "account address")
}

func accountRun(cmd *cobra.Command, args []string) {
	act, err := queryAccount(accountArgs.Url, accountArgs.Address)
	if err != nil {
		return
	}
	fmt.Printf("nonce:%v name:%v pk:%v addr:%v\n",
		act.Nonce, act.Name, common.Bytes2Hex(act.PubKey), act.Address.Hex())
}
