package facets

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// OwnershipReader binds the ERC-173 owner() view at the diamond address.
	OwnershipReader struct {
		caller  caller
		address common.Address
	}

	Ownership struct {
		*OwnershipReader
		backend transactor
	}
)

func NewOwnershipReader(backend caller, diamond common.Address) *OwnershipReader {
	return &OwnershipReader{caller: backend, address: diamond}
}

func NewOwnership(backend transactor, diamond common.Address) *Ownership {
	return &Ownership{OwnershipReader: NewOwnershipReader(backend, diamond), backend: backend}
}

func (o *Ownership) TransferOwnership(ctx context.Context, newOwner common.Address) (*types.Receipt, error) {
	calldata, err := FuncTransferOwnership.EncodeArgs(newOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transferOwnership: %w", err)
	}

	return o.backend.Transact(ctx, o.address, calldata)
}

func (o *OwnershipReader) Owner(ctx context.Context) (common.Address, error) {
	var owner common.Address
	if err := call(ctx, o.caller, o.address, FuncOwner, &owner); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}
