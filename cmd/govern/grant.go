package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/types"
)

type grantArguments struct {
	Url      string
	Nonce    uint64
	Skey     string
	Role     uint8
	Account  string
	Revoke   bool
	MinDelay uint64
	NoSend   bool
}

var grantArgs grantArguments

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant or revoke a gateway role, or change the minimum delay",
	Long:  `Roles: 1 proposer, 2 executor, 3 admin. Requires the admin role.`,
	Run:   grantRun,
}

func init() {
	urlFlag(grantCmd, &grantArgs.Url)
	skeyFlag(grantCmd, &grantArgs.Skey)
	nonceFlag(grantCmd, &grantArgs.Nonce)
	noSendFlag(grantCmd, &grantArgs.NoSend)
	grantCmd.Flags().Uint8VarP(&grantArgs.Role, "role", "r", 0, "role to grant")
	grantCmd.Flags().StringVarP(&grantArgs.Account, "account", "a", "", "account address, zero address means anyone")
	grantCmd.Flags().BoolVarP(&grantArgs.Revoke, "revoke", "", false, "revoke instead of grant")
	grantCmd.Flags().Uint64VarP(&grantArgs.MinDelay, "minDelay", "", 0, "set a new minimum delay instead of a role change")
}

func grantRun(cmd *cobra.Command, args []string) {
	if grantArgs.MinDelay != 0 {
		stx := api.SetMinDelayTx{Delay: grantArgs.MinDelay}
		signAndSend(grantArgs.Url, grantArgs.Skey, grantArgs.Nonce, api.TxTypeSetMinDelay, stx, grantArgs.NoSend)
		return
	}
	role := types.Role(grantArgs.Role)
	if !role.Valid() {
		fmt.Printf("invalid role:%v\n", grantArgs.Role)
		return
	}
	stx := api.RoleTx{
		Role:    role,
		Account: common.HexToAddress(grantArgs.Account),
		Revoke:  grantArgs.Revoke,
	}
	signAndSend(grantArgs.Url, grantArgs.Skey, grantArgs.Nonce, api.TxTypeRole, stx, grantArgs.NoSend)
}
