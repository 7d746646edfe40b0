package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daoforge/govern/config"
	"github.com/daoforge/govern/node"
)

var homeDir string

var clCmd = &cobra.Command{
	Use:   "govern",
	Short: "govern runs a governance node",
	Long: `A proposal registry and timelock gateway behind a signed
HTTP API. Run with no subcommand to start the node.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	clCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func run(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig(homeDir)

	viper.SetConfigFile(cfg.ConfigFile())
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Reading config: %v", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Decoding config: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err := cmtflags.ParseLogLevel(cfg.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	n, err := node.NewNode(cfg, logger)
	if err != nil {
		log.Fatalf("new node err:%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := n.Start(ctx); err != nil {
			log.Fatalf("start node err %s", err.Error())
		}
	}()

	defer func() {
		log.Println("shut done...")
		done := make(chan struct{})
		go func() {
			defer close(done)
			n.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
