package main

import (
	"time"

	"github.com/spf13/viper"
)

type (
	flagType interface {
		string | uint64 | time.Duration
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

// Defaults here are zero values: real defaults come from the embedded config, and a
// flag only overrides them when it is set explicitly.
var (
	stringFlags = []flagDef[string]{
		{"network", "network", "", "Network profile to use (key under networks)"},
		{"log-level", "log-level", "", "Log level (debug, info, warn, error)"},
		{"relayer-private-key", "relayer-private-key", "", "Hex private key of the deploying relayer"},
		{"funder-private-key", "funder-private-key", "", "Hex private key holding the reward tokens (fund command)"},
		{"artifacts", "artifacts", "", "Path to the compiled contracts JSON"},
		{"output-dir", "output-dir", "", "Directory for deployment records"},
	}

	durationFlags = []flagDef[time.Duration]{
		{"tx-timeout", "tx-timeout", 0, "Maximum time to wait for each transaction (0 waits indefinitely)"},
	}

	uint64Flags = []flagDef[uint64]{
		{"gas-limit", "gas-limit", 0, "Gas limit per transaction (0 estimates)"},
	}
)

func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a persistent flag and binds it to a viper key.
func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	flags := rootCmd.PersistentFlags()
	switch value := any(defaultValue).(type) {
	case string:
		flags.String(flagName, value, description)
	case uint64:
		flags.Uint64(flagName, value, description)
	case time.Duration:
		flags.Duration(flagName, value, description)
	}
	return viper.BindPFlag(viperKey, flags.Lookup(flagName))
}
