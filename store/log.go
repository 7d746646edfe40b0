package store

import (
	cosmoslog "cosmossdk.io/log"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// iavlLogger bridges the tree's cosmossdk.io logger interface onto the
// node's cmtlog logger so store output lands in the same stream.
type iavlLogger struct {
	lg cmtlog.Logger
}

func newIAVLLogger(lg cmtlog.Logger) cosmoslog.Logger {
	return iavlLogger{lg: lg}
}

func (l iavlLogger) Info(msg string, keyVals ...any) {
	l.lg.Info(msg, keyVals...)
}

func (l iavlLogger) Error(msg string, keyVals ...any) {
	l.lg.Error(msg, keyVals...)
}

func (l iavlLogger) Debug(msg string, keyVals ...any) {
	l.lg.Debug(msg, keyVals...)
}

func (l iavlLogger) With(keyVals ...any) cosmoslog.Logger {
	return iavlLogger{lg: l.lg.With(keyVals...)}
}

func (l iavlLogger) Impl() any {
	return l.lg
}
