package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/diamond"
	"github.com/gltr-farm/deployer/internal/gauge"
	"github.com/gltr-farm/deployer/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "farmctl"
	envPrefix = "FARMCTL"
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Deploy and inspect the diamond liquidity-mining farm",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelInfo)

		viper.SetConfigType("yaml")
		if err := configs.SetDefaults(viper.GetViper()); err != nil {
			return err
		}

		viper.SetConfigName("config")
		if execPath, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(execPath))
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// A missing config file is fine: the embedded profiles, env and flags cover everything.
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
			slog.Debug("no config file found, using embedded defaults")
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
		viper.AutomaticEnv()

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		level, err := logger.ParseLevel(configs.Values.LogLevel)
		if err != nil {
			return err
		}
		logger.Initialize(level)

		slog.With("network", configs.Values.Network).Debug("configuration loaded")

		return nil
	},
}

func init() {
	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(durationFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(uint64Flags); err != nil {
		panic(err)
	}
}

func main() {
	rootCmd.AddCommand(diamond.DeployCMD)
	rootCmd.AddCommand(diamond.FundCMD)
	rootCmd.AddCommand(diamond.InspectCMD)
	rootCmd.AddCommand(diamond.CompileCMD)
	rootCmd.AddCommand(gauge.CMD)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
