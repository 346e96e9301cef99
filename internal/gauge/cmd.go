package gauge

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/chain"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "gauges [pool...]",
	Short: "Print gauge, token0 and token1 for the configured pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := configs.Values.Active()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			network.Pools = args
		}
		if err := network.ValidateLookup(configs.Values.Network); err != nil {
			return err
		}

		addresses := make([]common.Address, 0, len(network.Pools))
		for _, pool := range network.Pools {
			addresses = append(addresses, common.HexToAddress(pool))
		}

		reader, err := chain.DialReader(cmd.Context(), network.RPCURL)
		if err != nil {
			return err
		}
		defer reader.Close()

		results, err := NewLookup(reader, os.Stdout).Run(cmd.Context(), addresses)
		if err != nil {
			return fmt.Errorf("gauge lookup interrupted: %w", err)
		}

		slog.With("pools", len(addresses)).With("succeeded", len(results)).Info("gauge lookup finished")
		return nil
	},
}
