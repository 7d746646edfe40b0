package main

import "github.com/spf13/cobra"

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:8547", "govern service url")
}

func skeyFlag(cmd *cobra.Command, skey *string) {
	cmd.Flags().StringVarP(skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
}

func nonceFlag(cmd *cobra.Command, nonce *uint64) {
	cmd.Flags().Uint64VarP(nonce, "nonce", "n", 0, "account nonce, 0 queries the node")
}

func noSendFlag(cmd *cobra.Command, noSend *bool) {
	cmd.Flags().BoolVarP(noSend, "nosend", "", false, "not send transaction but print signature")
}
