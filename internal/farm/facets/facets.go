// Package facets binds the farm diamond's external functions to calldata.
//
// Every facet is addressed through the diamond once it has been cut, so the
// bindings here take the diamond address, not the facet implementation address.
package facets

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
)

var (
	FuncDeployFarmAndGLTR = w3.MustNewFunc(
		"deployFarmAndGLTR("+
			"(address diamond,address rewardToken,address diamondCutFacet,address diamondLoupeFacet,"+
			"address ownershipFacet,address farmFacet,address farmInit,address reentrancyGuardInit) _addresses,"+
			"(uint256 startBlock,uint256 decayPeriod) _initParams)",
		"",
	)

	FuncBatchAdd        = w3.MustNewFunc("batchAdd(uint256[] _allocPoints,address[] _lpTokens)", "")
	FuncAdd             = w3.MustNewFunc("add(uint256 _allocPoint,address _lpToken)", "")
	FuncPoolLength      = w3.MustNewFunc("poolLength()", "uint256")
	FuncTotalAllocPoint = w3.MustNewFunc("totalAllocPoint()", "uint256")
	FuncPoolInfo        = w3.MustNewFunc(
		"poolInfo(uint256 _pid)",
		"(address lpToken,uint256 allocPoint,uint256 lastRewardBlock,uint256 accERC20PerShare) info",
	)

	FuncTransferOwnership = w3.MustNewFunc("transferOwnership(address _newOwner)", "")
	FuncOwner             = w3.MustNewFunc("owner()", "address")

	FuncBalanceOf = w3.MustNewFunc("balanceOf(address _owner)", "uint256")
	FuncTransfer  = w3.MustNewFunc("transfer(address _to,uint256 _value)", "bool")
)

type (
	caller interface {
		Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
	}
	transactor interface {
		caller
		Transact(ctx context.Context, to common.Address, calldata []byte) (*types.Receipt, error)
	}

	// DeployAddresses mirrors the helper's address tuple; field names follow the ABI.
	DeployAddresses struct {
		Diamond             common.Address
		RewardToken         common.Address
		DiamondCutFacet     common.Address
		DiamondLoupeFacet   common.Address
		OwnershipFacet      common.Address
		FarmFacet           common.Address
		FarmInit            common.Address
		ReentrancyGuardInit common.Address
	}

	InitParams struct {
		StartBlock  *big.Int
		DecayPeriod *big.Int
	}

	PoolInfo struct {
		LpToken          common.Address
		AllocPoint       *big.Int
		LastRewardBlock  *big.Int
		AccERC20PerShare *big.Int
	}
)

// call runs a view function and decodes its single return value into result.
func call(ctx context.Context, backend caller, to common.Address, fn *w3.Func, result any, args ...any) error {
	calldata, err := fn.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}

	output, err := backend.Call(ctx, to, calldata)
	if err != nil {
		return err
	}

	if err := fn.DecodeReturns(output, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", fn.Signature, err)
	}

	return nil
}
