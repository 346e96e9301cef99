package facets

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrTransferRejected is returned when transfer would return false instead of reverting.
var ErrTransferRejected = errors.New("token rejected transfer")

// ERC20 is the subset of the reward token used to fund the farm.
type ERC20 struct {
	backend transactor
	address common.Address
}

func NewERC20(backend transactor, token common.Address) *ERC20 {
	return &ERC20{backend: backend, address: token}
}

func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := call(ctx, t.backend, t.address, FuncBalanceOf, &balance, account); err != nil {
		return nil, err
	}
	return balance, nil
}

// Transfer simulates the call first and only sends it when the token would return true.
// Tokens that return nothing are accepted.
func (t *ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	calldata, err := FuncTransfer.EncodeArgs(to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer: %w", err)
	}

	output, err := t.backend.Call(ctx, t.address, calldata)
	if err != nil {
		return nil, fmt.Errorf("transfer simulation failed: %w", err)
	}
	if len(output) > 0 {
		var ok bool
		if err := FuncTransfer.DecodeReturns(output, &ok); err != nil {
			return nil, fmt.Errorf("failed to decode %s result: %w", FuncTransfer.Signature, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s to %s", ErrTransferRejected, amount, to.Hex())
		}
	}

	return t.backend.Transact(ctx, t.address, calldata)
}
