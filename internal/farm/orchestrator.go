package farm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/artifacts"
	"github.com/gltr-farm/deployer/internal/chain"
	"github.com/gltr-farm/deployer/internal/farm/facets"
	"github.com/gltr-farm/deployer/internal/logger"
)

type Step string

const (
	StepResolveSigner     Step = "resolve-signer"
	StepDeployFacets      Step = "deploy-facets"
	StepDeployDiamond     Step = "deploy-diamond"
	StepInitializeFarm    Step = "initialize-farm"
	StepBindFarmFacet     Step = "bind-farm-facet"
	StepRegisterPools     Step = "register-pools"
	StepTransferOwnership Step = "transfer-ownership"
)

// Steps is the fixed sequence. Each step consumes addresses produced by the ones before it.
var Steps = []Step{
	StepResolveSigner,
	StepDeployFacets,
	StepDeployDiamond,
	StepInitializeFarm,
	StepBindFarmFacet,
	StepRegisterPools,
	StepTransferOwnership,
}

type (
	recorder interface {
		Record(progress Progress) error
	}

	// Plan is the per-network input of a deployment run.
	Plan struct {
		RewardToken common.Address
		NewOwner    common.Address
		InitParams  InitParams
		Allocations []Allocation
		Registrar   Registrar
	}

	Result struct {
		Relayer      common.Address
		Addresses    DeployedAddresses
		FarmDeployer common.Address
		InitParams   InitParams
		Registered   []Allocation
		Skipped      []Allocation
		Owner        common.Address
	}

	// Progress is persisted after every completed step so an aborted run can be resumed by hand.
	Progress struct {
		StepsCompleted int               `json:"stepsCompleted"`
		StepsTotal     int               `json:"stepsTotal"`
		LastStep       Step              `json:"lastStep"`
		Relayer        string            `json:"relayer"`
		FarmDeployer   string            `json:"farmDeployer,omitempty"`
		Addresses      map[string]string `json:"addresses"`
		Registered     int               `json:"registered"`
		Owner          string            `json:"owner,omitempty"`
		// FailedStep and Error are set when the run aborted; the rest holds what was already mined.
		FailedStep Step   `json:"failedStep,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	// Orchestrator runs the deployment sequence strictly in order with a single signer.
	Orchestrator struct {
		backend   chain.Backend
		contracts map[artifacts.ContractName]artifacts.CompiledContract
		recorder  recorder
		logger    *slog.Logger
	}

	// deployment holds the state of one run as it is built up step by step.
	deployment struct {
		*Orchestrator
		plan   Plan
		result Result
		farm   *facets.Farm
	}
)

func NewOrchestrator(backend chain.Backend, contracts map[artifacts.ContractName]artifacts.CompiledContract, recorder recorder) *Orchestrator {
	return &Orchestrator{
		backend:   backend,
		contracts: contracts,
		recorder:  recorder,
		logger:    logger.Named("farm_orchestrator"),
	}
}

// Run executes every step in order. On failure it returns the partial result together with
// a *StepError; nothing already on-chain is undone.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (Result, error) {
	d := &deployment{
		Orchestrator: o,
		plan:         plan,
		result:       Result{InitParams: plan.InitParams},
	}

	handlers := map[Step]func(context.Context) error{
		StepResolveSigner:     d.resolveSigner,
		StepDeployFacets:      d.deployFacets,
		StepDeployDiamond:     d.deployDiamond,
		StepInitializeFarm:    d.initializeFarm,
		StepBindFarmFacet:     d.bindFarmFacet,
		StepRegisterPools:     d.registerPools,
		StepTransferOwnership: d.transferOwnership,
	}

	for i, step := range Steps {
		o.logger.With("step", step).With("index", i+1).With("total", len(Steps)).Info("running step")

		if err := handlers[step](ctx); err != nil {
			o.logger.With("step", step).With("err", err.Error()).Error("step failed")
			d.record(Progress{StepsCompleted: i, LastStep: lastStep(i), FailedStep: step, Error: err.Error()})
			return d.result, &StepError{Step: step, Completed: i, Total: len(Steps), Err: err}
		}

		d.record(Progress{StepsCompleted: i + 1, LastStep: step})
	}

	o.logger.With("owner", d.result.Owner.Hex()).Info("deployment finished")

	return d.result, nil
}

func (d *deployment) resolveSigner(_ context.Context) error {
	if d.plan.RewardToken == (common.Address{}) {
		return errors.New("reward token address is not set for this network")
	}
	if d.plan.NewOwner == (common.Address{}) {
		return errors.New("new owner address is not set for this network")
	}
	if d.plan.Registrar == nil {
		return errors.New("registration strategy is not set")
	}
	if len(Active(d.plan.Allocations)) == 0 {
		return errors.New("allocation table has no pools to register")
	}
	for name := range artifacts.Contracts {
		if _, ok := d.contracts[name]; !ok {
			return fmt.Errorf("missing compiled artifact for %s", name)
		}
	}

	d.result.Relayer = d.backend.From()
	d.result.Addresses.RewardToken = d.plan.RewardToken

	d.logger.
		With("relayer", d.result.Relayer.Hex()).
		With("reward_token", d.plan.RewardToken.Hex()).
		Info("resolved signer and network constants")

	return nil
}

func (d *deployment) deployFacets(ctx context.Context) error {
	for _, name := range artifacts.FacetOrder {
		address, err := d.backend.Deploy(ctx, name, d.contracts[name])
		if err != nil {
			return fmt.Errorf("failed to deploy %s: %w", name, err)
		}

		switch name {
		case artifacts.ContractNameDiamondCutFacet:
			d.result.Addresses.DiamondCutFacet = address
		case artifacts.ContractNameDiamondLoupeFacet:
			d.result.Addresses.DiamondLoupeFacet = address
		case artifacts.ContractNameOwnershipFacet:
			d.result.Addresses.OwnershipFacet = address
		case artifacts.ContractNameFarmFacet:
			d.result.Addresses.FarmFacet = address
		case artifacts.ContractNameFarmInit:
			d.result.Addresses.FarmInit = address
		case artifacts.ContractNameReentrancyGuardInit:
			d.result.Addresses.ReentrancyGuardInit = address
		case artifacts.ContractNameFarmDeployer:
			d.result.FarmDeployer = address
		}

		d.logger.Info("deployed", "contract", name, "address", address.Hex())
	}

	return nil
}

func (d *deployment) deployDiamond(ctx context.Context) error {
	address, err := d.backend.Deploy(
		ctx,
		artifacts.ContractNameDiamond,
		d.contracts[artifacts.ContractNameDiamond],
		d.result.FarmDeployer,
		d.result.Addresses.DiamondCutFacet,
	)
	if err != nil {
		return fmt.Errorf("failed to deploy %s: %w", artifacts.ContractNameDiamond, err)
	}

	d.result.Addresses.Diamond = address
	d.logger.Info("deployed", "contract", artifacts.ContractNameDiamond, "address", address.Hex())

	return nil
}

func (d *deployment) initializeFarm(ctx context.Context) error {
	if err := d.result.Addresses.Validate(); err != nil {
		return err
	}

	d.logger.
		With("start_block", d.plan.InitParams.StartBlock).
		With("decay_period", d.plan.InitParams.DecayPeriod).
		Info("deploying farm and reward wiring")

	helper := facets.NewFarmDeployer(d.backend, d.result.FarmDeployer)
	receipt, err := helper.DeployFarmAndGLTR(ctx, d.result.Addresses.tuple(), d.plan.InitParams.tuple())
	if err != nil {
		return fmt.Errorf("failed to initialize farm: %w", err)
	}

	d.logger.With("tx_hash", receipt.TxHash.Hex()).Info("farm initialized")

	return nil
}

func (d *deployment) bindFarmFacet(_ context.Context) error {
	d.farm = facets.NewFarm(d.backend, d.result.Addresses.Diamond)
	return nil
}

func (d *deployment) registerPools(ctx context.Context) error {
	active := Active(d.plan.Allocations)

	for _, allocation := range d.plan.Allocations {
		if allocation.Skip {
			d.result.Skipped = append(d.result.Skipped, allocation)
			d.logger.
				With("label", allocation.Label).
				With("address", allocation.Address.Hex()).
				With("reason", allocation.Reason).
				Warn("allocation skipped")
		}
	}

	confirmed, err := d.plan.Registrar.Register(ctx, d.farm, active)
	d.result.Registered = active[:confirmed]
	if err != nil {
		return err
	}

	d.logger.
		With("pools", len(active)).
		With("total_points", TotalPoints(active)).
		Info("pools registered")

	return nil
}

func (d *deployment) transferOwnership(ctx context.Context) error {
	ownership := facets.NewOwnership(d.backend, d.result.Addresses.Diamond)

	d.logger.With("new_owner", d.plan.NewOwner.Hex()).Info("transferring ownership from relayer")

	if _, err := ownership.TransferOwnership(ctx, d.plan.NewOwner); err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	owner, err := ownership.Owner(ctx)
	if err != nil {
		return fmt.Errorf("failed to read owner: %w", err)
	}
	if owner != d.plan.NewOwner {
		return fmt.Errorf("owner is %s after transfer, expected %s", owner.Hex(), d.plan.NewOwner.Hex())
	}

	d.result.Owner = owner
	d.logger.Info("ownership transferred", "owner", owner.Hex())

	return nil
}

// lastStep is the step completed before the one at index i, if any.
func lastStep(i int) Step {
	if i == 0 {
		return ""
	}
	return Steps[i-1]
}

// record persists what d.result holds so far, on top of the step bookkeeping in progress.
func (d *deployment) record(progress Progress) {
	if d.recorder == nil {
		return
	}

	progress.StepsTotal = len(Steps)
	progress.Relayer = d.result.Relayer.Hex()
	progress.Addresses = d.result.Addresses.Map()
	progress.Registered = len(d.result.Registered)
	if d.result.FarmDeployer != (common.Address{}) {
		progress.FarmDeployer = d.result.FarmDeployer.Hex()
	}
	if d.result.Owner != (common.Address{}) {
		progress.Owner = d.result.Owner.Hex()
	}

	if err := d.recorder.Record(progress); err != nil {
		d.logger.With("step", progress.LastStep).With("err", err.Error()).Warn("failed to record progress")
	}
}
