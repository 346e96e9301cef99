package farm

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/logger"
)

type (
	// Registry is the pool-registration surface of the farm facet.
	Registry interface {
		BatchAdd(ctx context.Context, points []*big.Int, lpTokens []common.Address) (*types.Receipt, error)
		Add(ctx context.Context, points *big.Int, lpToken common.Address) (*types.Receipt, error)
	}

	// Registrar submits allocations to the farm. Implementations must keep table order:
	// pool ids are assigned in registration order. Register returns how many leading
	// allocations were confirmed on-chain, also when it fails.
	Registrar interface {
		Register(ctx context.Context, registry Registry, allocations []Allocation) (int, error)
	}

	batchRegistrar struct {
		logger *slog.Logger
	}

	iterativeRegistrar struct {
		logger *slog.Logger
	}
)

// NewRegistrar returns the registrar for the configured strategy.
func NewRegistrar(strategy configs.Strategy) (Registrar, error) {
	switch strategy {
	case configs.StrategyBatch:
		return &batchRegistrar{logger: logger.Named("batch_registrar")}, nil
	case configs.StrategyIterative:
		return &iterativeRegistrar{logger: logger.Named("iterative_registrar")}, nil
	default:
		return nil, fmt.Errorf("unknown registration strategy '%s'", strategy)
	}
}

// Register submits every allocation in a single batchAdd transaction.
func (r *batchRegistrar) Register(ctx context.Context, registry Registry, allocations []Allocation) (int, error) {
	points, lpTokens := parallelLists(allocations)

	receipt, err := registry.BatchAdd(ctx, points, lpTokens)
	if err != nil {
		return 0, fmt.Errorf("failed to batch add %d pools: %w", len(allocations), err)
	}

	r.logger.
		With("pools", len(allocations)).
		With("tx_hash", receipt.TxHash.Hex()).
		Info("added farms in a single transaction")

	return len(allocations), nil
}

// Register submits one add transaction per allocation, each confirmed before the next.
func (r *iterativeRegistrar) Register(ctx context.Context, registry Registry, allocations []Allocation) (int, error) {
	for i, allocation := range allocations {
		receipt, err := registry.Add(ctx, new(big.Int).SetUint64(allocation.Points), allocation.Address)
		if err != nil {
			return i, fmt.Errorf("failed to add pool %d (%s): %w", i, allocation.Address.Hex(), err)
		}

		r.logger.
			With("pid", i).
			With("label", allocation.Label).
			With("address", allocation.Address.Hex()).
			With("points", allocation.Points).
			With("tx_hash", receipt.TxHash.Hex()).
			Info("added farm")
	}

	return len(allocations), nil
}
