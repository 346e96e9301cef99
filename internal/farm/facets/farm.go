package facets

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// FarmReader binds the FarmFacet view functions at the diamond address.
	FarmReader struct {
		caller  caller
		address common.Address
	}

	// Farm adds the owner-only pool registration functions.
	Farm struct {
		*FarmReader
		backend transactor
	}
)

func NewFarmReader(backend caller, diamond common.Address) *FarmReader {
	return &FarmReader{caller: backend, address: diamond}
}

func NewFarm(backend transactor, diamond common.Address) *Farm {
	return &Farm{FarmReader: NewFarmReader(backend, diamond), backend: backend}
}

// BatchAdd registers every pool in one transaction; points[i] belongs to lpTokens[i].
func (f *Farm) BatchAdd(ctx context.Context, points []*big.Int, lpTokens []common.Address) (*types.Receipt, error) {
	if len(points) != len(lpTokens) {
		return nil, fmt.Errorf("batchAdd needs parallel lists, got %d points and %d tokens", len(points), len(lpTokens))
	}

	calldata, err := FuncBatchAdd.EncodeArgs(points, lpTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batchAdd: %w", err)
	}

	return f.backend.Transact(ctx, f.address, calldata)
}

func (f *Farm) Add(ctx context.Context, points *big.Int, lpToken common.Address) (*types.Receipt, error) {
	calldata, err := FuncAdd.EncodeArgs(points, lpToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encode add: %w", err)
	}

	return f.backend.Transact(ctx, f.address, calldata)
}

func (f *FarmReader) PoolLength(ctx context.Context) (uint64, error) {
	var length *big.Int
	if err := call(ctx, f.caller, f.address, FuncPoolLength, &length); err != nil {
		return 0, err
	}
	if !length.IsUint64() {
		return 0, fmt.Errorf("poolLength %s out of range", length)
	}
	return length.Uint64(), nil
}

func (f *FarmReader) TotalAllocPoint(ctx context.Context) (*big.Int, error) {
	var total *big.Int
	if err := call(ctx, f.caller, f.address, FuncTotalAllocPoint, &total); err != nil {
		return nil, err
	}
	return total, nil
}

func (f *FarmReader) PoolInfo(ctx context.Context, pid uint64) (PoolInfo, error) {
	var info PoolInfo
	if err := call(ctx, f.caller, f.address, FuncPoolInfo, &info, new(big.Int).SetUint64(pid)); err != nil {
		return PoolInfo{}, err
	}
	return info, nil
}
