package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/daoforge/govern/config"
)

type initArguments struct {
	Home      string
	ServiceID string
}

var initArgs initArguments

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the node key and configuration file",
	Long:  `Creates the home directory, generates the node key and writes config.toml.`,
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().StringVarP(&initArgs.Home, "homedir", "d", "", "home directory")
	initCmd.Flags().StringVarP(&initArgs.ServiceID, "serviceId", "", "", "service id mixed into every signature")
}

func initRun(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig(initArgs.Home)
	if initArgs.ServiceID != "" {
		cfg.ServiceID = initArgs.ServiceID
	}

	pv, err := config.InitializeNodeKey(cfg)
	if err != nil {
		return err
	}
	config.WriteConfigFile(cfg.ConfigFile(), cfg)

	pubKey, err := pv.GetPubKey()
	if err != nil {
		return err
	}
	addr := common.BytesToAddress(pubKey.Address().Bytes())
	fmt.Printf("home:%v\nserviceId:%v\naddress:%v\n", cfg.Home, cfg.ServiceID, addr.Hex())
	return nil
}
