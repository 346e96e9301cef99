package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/artifacts"
	"github.com/gltr-farm/deployer/internal/farm"
	"github.com/gltr-farm/deployer/internal/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "summary.yaml"

type (
	writer interface {
		WriteBytes(path string, data []byte) error
	}

	Input struct {
		Network   string
		ChainID   int64
		Strategy  string
		Result    farm.Result
		Contracts map[artifacts.ContractName]artifacts.CompiledContract
	}

	Generator struct {
		outputDir string
		writer    writer
		logger    *slog.Logger
	}
)

func NewGenerator(outputDir string, writer writer) *Generator {
	return &Generator{outputDir: outputDir, writer: writer, logger: logger.Named("summary_generator")}
}

// Generate writes <output-dir>/<network>/summary.yaml and returns its path.
func (g *Generator) Generate(input Input) (string, error) {
	data, err := yaml.Marshal(Build(input))
	if err != nil {
		return "", fmt.Errorf("could not marshal deployment summary: %w", err)
	}

	path := filepath.Join(g.outputDir, input.Network, FileName)
	if err := g.writer.WriteBytes(path, data); err != nil {
		return "", fmt.Errorf("could not write deployment summary: %w", err)
	}

	g.logger.With("path", path).Info("deployment summary written")
	return path, nil
}

// Build maps a deployment result to the summary document.
func Build(input Input) *Summary {
	result := input.Result

	summary := &Summary{
		Network: input.Network,
		ChainID: input.ChainID,
		Relayer: result.Relayer,
		Owner:   result.Owner,
		Farm: Farm{
			StartBlock:  result.InitParams.StartBlock,
			DecayPeriod: result.InitParams.DecayPeriod,
			Strategy:    input.Strategy,
			TotalPoints: farm.TotalPoints(result.Registered),
		},
		Allocations: Allocations{
			Registered: make([]Pool, 0, len(result.Registered)),
		},
		Contracts: map[string]ContractConfig{},
	}

	for i, allocation := range result.Registered {
		pid := i
		summary.Allocations.Registered = append(summary.Allocations.Registered, Pool{
			PID:     &pid,
			Label:   allocation.Label,
			Address: allocation.Address,
			Points:  allocation.Points,
		})
	}
	for _, allocation := range result.Skipped {
		summary.Allocations.Skipped = append(summary.Allocations.Skipped, Pool{
			Label:   allocation.Label,
			Address: allocation.Address,
			Points:  allocation.Points,
			Reason:  allocation.Reason,
		})
	}

	addresses := result.Addresses
	// The diamond answers the farm facet's functions, so it is published with that ABI.
	summary.add("diamond", addresses.Diamond, input.Contracts[artifacts.ContractNameFarmFacet].RawABI)
	summary.add("reward-token", addresses.RewardToken, "")
	summary.add("diamond-cut-facet", addresses.DiamondCutFacet, "")
	summary.add("diamond-loupe-facet", addresses.DiamondLoupeFacet, "")
	summary.add("ownership-facet", addresses.OwnershipFacet, "")
	summary.add("farm-facet", addresses.FarmFacet, "")
	summary.add("farm-init", addresses.FarmInit, "")
	summary.add("reentrancy-guard-init", addresses.ReentrancyGuardInit, "")
	summary.add("farm-and-gltr-deployer", result.FarmDeployer, "")

	return summary
}

func (s *Summary) add(name string, address common.Address, rawABI string) {
	if address == (common.Address{}) {
		return
	}
	s.Contracts[name] = ContractConfig{Address: address, ABI: SingleQuotedString(compactJSON(rawABI))}
}

func compactJSON(jsonStr string) string {
	if jsonStr == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(jsonStr)); err != nil {
		return jsonStr
	}
	return buf.String()
}
