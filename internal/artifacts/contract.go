package artifacts

import "github.com/ethereum/go-ethereum/accounts/abi"

type (
	ContractName     string
	CompiledContract struct {
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}
)

const (
	ContractNameDiamondCutFacet     ContractName = "DiamondCutFacet"
	ContractNameDiamondLoupeFacet   ContractName = "DiamondLoupeFacet"
	ContractNameOwnershipFacet      ContractName = "OwnershipFacet"
	ContractNameFarmFacet           ContractName = "FarmFacet"
	ContractNameFarmInit            ContractName = "FarmInit"
	ContractNameReentrancyGuardInit ContractName = "ReentrancyGuardInit"
	ContractNameFarmDeployer        ContractName = "FarmAndGLTRDeployer"
	ContractNameDiamond             ContractName = "Diamond"
)

// FacetOrder is the order in which the standalone contracts are deployed before the diamond.
// Later steps consume the addresses (and nonces) of earlier ones, so it must not change.
var FacetOrder = []ContractName{
	ContractNameDiamondCutFacet,
	ContractNameDiamondLoupeFacet,
	ContractNameOwnershipFacet,
	ContractNameFarmFacet,
	ContractNameFarmInit,
	ContractNameReentrancyGuardInit,
	ContractNameFarmDeployer,
}

// Contracts lists every contract the deployment needs an artifact for.
var Contracts = map[ContractName]struct{}{
	ContractNameDiamondCutFacet:     {},
	ContractNameDiamondLoupeFacet:   {},
	ContractNameOwnershipFacet:      {},
	ContractNameFarmFacet:           {},
	ContractNameFarmInit:            {},
	ContractNameReentrancyGuardInit: {},
	ContractNameFarmDeployer:        {},
	ContractNameDiamond:             {},
}
