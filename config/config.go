package config

import (
	"os"
	"path/filepath"

	"github.com/cometbft/cometbft/privval"
)

const (
	DefaultConfigDir      = "config"
	DefaultDataDir        = "data"
	DefaultConfigFileName = "config.toml"
	DefaultKeyFileName    = "priv_validator_key.json"
	DefaultKeyStateName   = "priv_validator_state.json"
	DefaultIndexFileName  = "indexer.db"
)

type GovernanceConfig struct {
	VotingDelay       uint64 `mapstructure:"voting_delay"`
	VotingPeriod      uint64 `mapstructure:"voting_period"`
	ProposalThreshold uint64 `mapstructure:"proposal_threshold"`
	QuorumNumerator   uint64 `mapstructure:"quorum_numerator"`
}

type TimelockConfig struct {
	MinDelay     uint64   `mapstructure:"min_delay"`
	Admins       []string `mapstructure:"admins"`
	OpenExecutor bool     `mapstructure:"open_executor"`
}

// GenesisAccount receives an initial balance when the store is fresh.
// Balances are self-delegated so the account votes with its own weight
// from the start.
type GenesisAccount struct {
	Address string `mapstructure:"address"`
	Balance uint64 `mapstructure:"balance"`
}

type Config struct {
	Home       string `mapstructure:"-"`
	ListenAddr string `mapstructure:"listen_addr"`
	ServiceID  string `mapstructure:"service_id"`
	LogLevel   string `mapstructure:"log_level"`

	Governance GovernanceConfig `mapstructure:"governance"`
	Timelock   TimelockConfig   `mapstructure:"timelock"`
	Genesis    []GenesisAccount `mapstructure:"genesis"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.govern")
	}
	return &Config{
		Home:       home,
		ListenAddr: "127.0.0.1:8547",
		ServiceID:  "govern-local",
		LogLevel:   "info",
		Governance: GovernanceConfig{
			VotingDelay:       60,
			VotingPeriod:      600,
			ProposalThreshold: 0,
			QuorumNumerator:   4,
		},
		Timelock: TimelockConfig{
			MinDelay:     300,
			OpenExecutor: true,
		},
	}
}

func (c *Config) ConfigDir() string {
	return filepath.Join(c.Home, DefaultConfigDir)
}

func (c *Config) ConfigFile() string {
	return filepath.Join(c.ConfigDir(), DefaultConfigFileName)
}

func (c *Config) KeyFile() string {
	return filepath.Join(c.ConfigDir(), DefaultKeyFileName)
}

func (c *Config) KeyStateFile() string {
	return filepath.Join(c.Home, DefaultDataDir, DefaultKeyStateName)
}

func (c *Config) DataDir() string {
	return filepath.Join(c.Home, DefaultDataDir)
}

func (c *Config) IndexFile() string {
	return filepath.Join(c.Home, DefaultIndexFileName)
}

// InitializeNodeKey creates the node's key file if it does not exist
// and returns the loaded signer.
func InitializeNodeKey(c *Config) (*privval.FilePV, error) {
	if err := os.MkdirAll(c.ConfigDir(), 0o700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.DataDir(), 0o700); err != nil {
		return nil, err
	}
	pv := privval.LoadOrGenFilePV(c.KeyFile(), c.KeyStateFile())
	return pv, nil
}
