package diamond

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/configs"
	"github.com/spf13/cobra"
)

var (
	DeployCMD = &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the diamond farm, register pools and hand over ownership",
		RunE: func(cmd *cobra.Command, args []string) error {
			rehearse, err := cmd.Flags().GetBool("rehearse")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}

			slog.With("network", configs.Values.Network).With("rehearse", rehearse).Info("starting deployment")

			if err := deploy(cmd.Context(), configs.Values, deployOptions{rehearse: rehearse, force: force}); err != nil {
				return fmt.Errorf("deployment failed: %w", err)
			}

			return nil
		},
	}

	FundCMD = &cobra.Command{
		Use:   "fund",
		Short: "Transfer the funder's reward-token balance to the diamond",
		RunE: func(cmd *cobra.Command, args []string) error {
			diamond, err := diamondFlag(cmd, true)
			if err != nil {
				return err
			}

			if err := fund(cmd.Context(), configs.Values, diamond); err != nil {
				return fmt.Errorf("funding failed: %w", err)
			}

			return nil
		},
	}

	InspectCMD = &cobra.Command{
		Use:   "inspect",
		Short: "Read back owner and pools of a deployed farm and compare them with the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			diamond, err := diamondFlag(cmd, false)
			if err != nil {
				return err
			}

			return inspect(cmd.Context(), configs.Values, diamond)
		},
	}
)

func init() {
	DeployCMD.Flags().Bool("rehearse", false, "Run the deployment against a local anvil fork of the network")
	DeployCMD.Flags().Bool("force", false, "Archive the record of an unfinished deployment and start over")
	FundCMD.Flags().String("diamond", "", "Diamond address to fund")
	InspectCMD.Flags().String("diamond", "", "Diamond address to inspect (defaults to the recorded deployment)")
}

func diamondFlag(cmd *cobra.Command, required bool) (common.Address, error) {
	value, err := cmd.Flags().GetString("diamond")
	if err != nil {
		return common.Address{}, err
	}
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("--diamond is required")
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid diamond address '%s'", value)
	}
	return common.HexToAddress(value), nil
}
