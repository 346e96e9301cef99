package facets

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FarmDeployer is the helper contract that cuts the diamond and runs the farm initializer
// in a single transaction.
type FarmDeployer struct {
	backend transactor
	address common.Address
}

func NewFarmDeployer(backend transactor, address common.Address) *FarmDeployer {
	return &FarmDeployer{backend: backend, address: address}
}

func (d *FarmDeployer) DeployFarmAndGLTR(ctx context.Context, addresses DeployAddresses, params InitParams) (*types.Receipt, error) {
	calldata, err := FuncDeployFarmAndGLTR.EncodeArgs(&addresses, &params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deployFarmAndGLTR: %w", err)
	}

	return d.backend.Transact(ctx, d.address, calldata)
}
