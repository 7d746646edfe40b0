package main

import (
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/crypto"
)

type registerArguments struct {
	Url    string
	Skey   string
	Name   string
	NoSend bool
}

var registerArgs registerArguments

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the key file's account with the node",
	Long:  ``,
	Run:   registerRun,
}

func init() {
	urlFlag(registerCmd, &registerArgs.Url)
	skeyFlag(registerCmd, &registerArgs.Skey)
	noSendFlag(registerCmd, &registerArgs.NoSend)
	registerCmd.Flags().StringVarP(&registerArgs.Name, "name", "", "", "display name")
}

func registerRun(cmd *cobra.Command, args []string) {
	pv := crypto.LoadFilePV(registerArgs.Skey)
	stx := api.RegisterTx{
		PubKey: pv.PublicKey(),
		Name:   registerArgs.Name,
	}
	signAndSend(registerArgs.Url, registerArgs.Skey, 0, api.TxTypeRegister, stx, registerArgs.NoSend)
}
