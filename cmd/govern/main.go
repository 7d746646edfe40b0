package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(registerCmd)
	clCmd.AddCommand(accountCmd)
	clCmd.AddCommand(proposeCmd)
	clCmd.AddCommand(voteCmd)
	clCmd.AddCommand(queueCmd)
	clCmd.AddCommand(executeCmd)
	clCmd.AddCommand(cancelCmd)
	clCmd.AddCommand(scheduleCmd)
	clCmd.AddCommand(grantCmd)
	clCmd.AddCommand(pubkeyCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
