package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daoforge/govern/api"
	"github.com/daoforge/govern/types"
)

type proposeArguments struct {
	Url         string
	Nonce       uint64
	Skey        string
	Actions     string
	Description string
	NoSend      bool
}

var proposeArgs proposeArguments

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Submit a proposal",
	Long:  `Actions are a JSON array of {target, value, payload} objects.`,
	Run:   proposeRun,
}

func init() {
	urlFlag(proposeCmd, &proposeArgs.Url)
	skeyFlag(proposeCmd, &proposeArgs.Skey)
	nonceFlag(proposeCmd, &proposeArgs.Nonce)
	noSendFlag(proposeCmd, &proposeArgs.NoSend)
	proposeCmd.Flags().StringVarP(&proposeArgs.Actions, "actions", "a", "", "action batch json")
	proposeCmd.Flags().StringVarP(&proposeArgs.Description, "description", "m", "", "proposal description")
}

func proposeRun(cmd *cobra.Command, args []string) {
	actions, err := parseActions(proposeArgs.Actions)
	if err != nil {
		fmt.Printf("parse actions err:%v\n", err)
		return
	}
	stx := api.ProposeTx{
		Actions:     actions,
		Description: proposeArgs.Description,
	}
	id := types.ProposalID(actions, types.DescriptionHash(proposeArgs.Description))
	fmt.Printf("proposal id:%v\n", id.Hex())
	signAndSend(proposeArgs.Url, proposeArgs.Skey, proposeArgs.Nonce, api.TxTypePropose, stx, proposeArgs.NoSend)
}

func parseActions(dat string) ([]types.Action, error) {
	var actions []types.Action
	if err := json.Unmarshal([]byte(dat), &actions); err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, types.ErrEmptyBatch
	}
	return actions, nil
}
