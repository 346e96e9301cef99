package diamond

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/artifacts"
	"github.com/gltr-farm/deployer/internal/chain"
	"github.com/gltr-farm/deployer/internal/farm"
	"github.com/gltr-farm/deployer/internal/infra/docker"
	fsjson "github.com/gltr-farm/deployer/internal/infra/filesystem/json"
	"github.com/gltr-farm/deployer/internal/output"
)

const (
	rehearsalSuffix     = "-rehearsal"
	rehearsalRPCTimeout = time.Minute
)

// rehearsalBalance is what the relayer is given on the fork: 100 ETH.
var rehearsalBalance = new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))

// BuildPlan turns a network profile into the input of a deployment run.
func BuildPlan(network configs.Network) (farm.Plan, error) {
	allocations, err := farm.AllocationsFromConfig(network.Allocations)
	if err != nil {
		return farm.Plan{}, err
	}

	registrar, err := farm.NewRegistrar(network.Strategy)
	if err != nil {
		return farm.Plan{}, err
	}

	return farm.Plan{
		RewardToken: common.HexToAddress(network.RewardToken),
		NewOwner:    common.HexToAddress(network.Owner),
		InitParams: farm.InitParams{
			StartBlock:  network.FarmInit.StartBlock,
			DecayPeriod: network.FarmInit.DecayPeriod,
		},
		Allocations: allocations,
		Registrar:   registrar,
	}, nil
}

type deployOptions struct {
	rehearse bool
	force    bool
}

func deploy(ctx context.Context, cfg configs.Config, opts deployOptions) error {
	if err := cfg.ValidateDeploy(); err != nil {
		return err
	}

	network, err := cfg.Active()
	if err != nil {
		return err
	}

	plan, err := BuildPlan(network)
	if err != nil {
		return err
	}

	contracts, err := artifacts.Load(cfg.Artifacts)
	if err != nil {
		return err
	}

	name := string(cfg.Network)
	if opts.rehearse {
		name += rehearsalSuffix
	}

	writer := fsjson.NewWriter()
	recorder := farm.NewFileRecorder(cfg.OutputDir, name, writer)
	archived, err := recorder.Prepare(fsjson.NewReader(), opts.force, time.Now())
	if err != nil {
		return err
	}
	if archived != "" {
		slog.With("archived", archived).Info("previous deployment record archived")
	}

	rpcURL := network.RPCURL
	if opts.rehearse {
		fork, stop, err := startRehearsal(ctx, cfg, network)
		if err != nil {
			return err
		}
		defer stop()

		rpcURL = fork.RPCURL
	}

	client, err := chain.Dial(ctx, rpcURL, cfg.RelayerPrivateKey, chain.Options{
		ChainID:   network.ChainID,
		GasLimit:  cfg.GasLimit,
		TxTimeout: cfg.TxTimeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := farm.NewOrchestrator(client, contracts, recorder).Run(ctx, plan)
	if err != nil {
		var stepErr *farm.StepError
		if errors.As(err, &stepErr) {
			slog.With("progress_file", recorder.Path()).
				With("steps_completed", stepErr.Completed).
				Error("deployment aborted, partial addresses recorded")
		}
		return err
	}

	for contract, address := range result.Addresses.Map() {
		slog.With("contract", contract).With("address", address).Info("deployed address")
	}
	slog.With("farm_deployer", result.FarmDeployer.Hex()).With("owner", result.Owner.Hex()).Info("farm deployed")

	summaryPath, err := output.NewGenerator(cfg.OutputDir, writer).Generate(output.Input{
		Network:   name,
		ChainID:   network.ChainID,
		Strategy:  string(network.Strategy),
		Result:    result,
		Contracts: contracts,
	})
	if err != nil {
		return err
	}

	slog.With("summary", summaryPath).With("progress", recorder.Path()).Info("deployment records written")
	return nil
}

// startRehearsal forks the network in an anvil container and funds the relayer on it.
func startRehearsal(ctx context.Context, cfg configs.Config, network configs.Network) (docker.Fork, func(), error) {
	_, relayer, err := chain.ParsePrivateKey(cfg.RelayerPrivateKey)
	if err != nil {
		return docker.Fork{}, nil, err
	}

	client, err := docker.New()
	if err != nil {
		return docker.Fork{}, nil, err
	}

	fork, err := client.StartFork(ctx, docker.ForkOptions{
		Image:    cfg.Rehearsal.Image,
		ForkURL:  network.RPCURL,
		ChainID:  network.ChainID,
		HostPort: cfg.Rehearsal.Port,
	})
	if err != nil {
		client.Close()
		return docker.Fork{}, nil, err
	}

	stop := func() {
		if err := client.StopFork(context.WithoutCancel(ctx), fork); err != nil {
			slog.With("err", err.Error()).Warn("failed to remove fork container")
		}
		client.Close()
	}

	if err := chain.WaitForRPC(ctx, fork.RPCURL, rehearsalRPCTimeout); err != nil {
		stop()
		return docker.Fork{}, nil, err
	}

	if err := chain.SetBalance(ctx, fork.RPCURL, relayer, rehearsalBalance); err != nil {
		stop()
		return docker.Fork{}, nil, err
	}

	slog.With("relayer", relayer.Hex()).With("rpc_url", fork.RPCURL).Info("rehearsal fork ready")
	return fork, stop, nil
}

func fund(ctx context.Context, cfg configs.Config, diamond common.Address) error {
	if cfg.FunderPrivateKey == "" {
		return errors.New("funder-private-key is required")
	}

	network, err := cfg.Active()
	if err != nil {
		return err
	}
	if !common.IsHexAddress(network.RewardToken) {
		return fmt.Errorf("networks.%s.reward-token must be a hex address", cfg.Network)
	}

	client, err := chain.Dial(ctx, network.RPCURL, cfg.FunderPrivateKey, chain.Options{
		ChainID:   network.ChainID,
		GasLimit:  cfg.GasLimit,
		TxTimeout: cfg.TxTimeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := farm.NewFunder(client).Fund(ctx, common.HexToAddress(network.RewardToken), diamond)
	if err != nil {
		return err
	}

	slog.With("amount", result.Amount).With("diamond_balance", result.DiamondBalance).Info("diamond funded")
	return nil
}

func inspect(ctx context.Context, cfg configs.Config, diamond common.Address) error {
	network, err := cfg.Active()
	if err != nil {
		return err
	}

	if diamond == (common.Address{}) {
		progress, err := farm.LoadProgress(fsjson.NewReader(), cfg.OutputDir, string(cfg.Network))
		if err != nil {
			return fmt.Errorf("no --diamond given and no recorded deployment: %w", err)
		}
		recorded, ok := progress.Addresses["diamond"]
		if !ok {
			return errors.New("recorded deployment has no diamond address")
		}
		diamond = common.HexToAddress(recorded)
	}

	allocations, err := farm.AllocationsFromConfig(network.Allocations)
	if err != nil {
		return err
	}

	reader, err := chain.DialReader(ctx, network.RPCURL)
	if err != nil {
		return err
	}
	defer reader.Close()

	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return err
	}
	if chainID != network.ChainID {
		return fmt.Errorf("rpc %s serves chain %d, network '%s' expects %d", network.RPCURL, chainID, cfg.Network, network.ChainID)
	}
	slog.With("chain_id", chainID).With("diamond", diamond.Hex()).Info("inspecting farm")

	state, err := farm.NewInspector(reader).Inspect(ctx, diamond)
	if err != nil {
		return err
	}

	for pid, pool := range state.Pools {
		slog.With("pid", pid).
			With("lp_token", pool.LpToken.Hex()).
			With("alloc_point", pool.AllocPoint).
			Info("pool")
	}

	var expectedOwner common.Address
	if common.IsHexAddress(network.Owner) {
		expectedOwner = common.HexToAddress(network.Owner)
	}
	if err := state.Compare(allocations, expectedOwner); err != nil {
		return fmt.Errorf("farm state does not match networks.%s: %w", cfg.Network, err)
	}

	slog.With("diamond", diamond.Hex()).Info("farm state matches configuration")
	return nil
}
