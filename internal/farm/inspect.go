package farm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/farm/facets"
	"github.com/gltr-farm/deployer/internal/logger"
)

type (
	caller interface {
		Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
	}

	// State is the registration state read back from a deployed diamond.
	State struct {
		Diamond         common.Address
		Owner           common.Address
		TotalAllocPoint *big.Int
		Pools           []facets.PoolInfo
	}

	Inspector struct {
		caller caller
		logger *slog.Logger
	}
)

func NewInspector(caller caller) *Inspector {
	return &Inspector{caller: caller, logger: logger.Named("farm_inspector")}
}

// Inspect reads owner, pool list and total weight through the diamond.
func (i *Inspector) Inspect(ctx context.Context, diamond common.Address) (State, error) {
	reader := facets.NewFarmReader(i.caller, diamond)

	owner, err := facets.NewOwnershipReader(i.caller, diamond).Owner(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to read owner: %w", err)
	}

	length, err := reader.PoolLength(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to read pool length: %w", err)
	}

	pools := make([]facets.PoolInfo, 0, length)
	for pid := range length {
		info, err := reader.PoolInfo(ctx, pid)
		if err != nil {
			return State{}, fmt.Errorf("failed to read pool %d: %w", pid, err)
		}
		pools = append(pools, info)
	}

	total, err := reader.TotalAllocPoint(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to read total alloc point: %w", err)
	}

	i.logger.
		With("diamond", diamond.Hex()).
		With("owner", owner.Hex()).
		With("pools", len(pools)).
		With("total_alloc_point", total).
		Info("farm state read")

	return State{Diamond: diamond, Owner: owner, TotalAllocPoint: total, Pools: pools}, nil
}

// Compare checks the on-chain pools against the submitted part of an allocation table:
// same count, same order, same weights, same total, and the expected owner.
func (s State) Compare(allocations []Allocation, expectedOwner common.Address) error {
	var errs []error
	active := Active(allocations)

	if expectedOwner != (common.Address{}) && s.Owner != expectedOwner {
		errs = append(errs, fmt.Errorf("owner is %s, expected %s", s.Owner.Hex(), expectedOwner.Hex()))
	}
	if len(s.Pools) != len(active) {
		errs = append(errs, fmt.Errorf("farm has %d pools, table has %d", len(s.Pools), len(active)))
	}

	for pid := range min(len(s.Pools), len(active)) {
		pool, want := s.Pools[pid], active[pid]
		if pool.LpToken != want.Address {
			errs = append(errs, fmt.Errorf("pool %d is %s, expected %s (%s)", pid, pool.LpToken.Hex(), want.Address.Hex(), want.Label))
		}
		if pool.AllocPoint == nil || !pool.AllocPoint.IsUint64() || pool.AllocPoint.Uint64() != want.Points {
			errs = append(errs, fmt.Errorf("pool %d has %v points, expected %d", pid, pool.AllocPoint, want.Points))
		}
	}

	total := new(big.Int).SetUint64(TotalPoints(allocations))
	if s.TotalAllocPoint == nil || s.TotalAllocPoint.Cmp(total) != 0 {
		errs = append(errs, fmt.Errorf("total alloc point is %v, expected %s", s.TotalAllocPoint, total))
	}

	return errors.Join(errs...)
}
