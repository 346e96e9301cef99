package farm

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/farm/facets"
)

var ErrMissingAddress = errors.New("deployed address record is incomplete")

type (
	// DeployedAddresses is filled in deployment order and handed once to the farm initializer.
	DeployedAddresses struct {
		Diamond             common.Address `json:"diamond" yaml:"diamond"`
		RewardToken         common.Address `json:"rewardToken" yaml:"reward-token"`
		DiamondCutFacet     common.Address `json:"diamondCutFacet" yaml:"diamond-cut-facet"`
		DiamondLoupeFacet   common.Address `json:"diamondLoupeFacet" yaml:"diamond-loupe-facet"`
		OwnershipFacet      common.Address `json:"ownershipFacet" yaml:"ownership-facet"`
		FarmFacet           common.Address `json:"farmFacet" yaml:"farm-facet"`
		FarmInit            common.Address `json:"farmInit" yaml:"farm-init"`
		ReentrancyGuardInit common.Address `json:"reentrancyGuardInit" yaml:"reentrancy-guard-init"`
	}

	InitParams struct {
		StartBlock  uint64 `json:"startBlock" yaml:"start-block"`
		DecayPeriod uint64 `json:"decayPeriod" yaml:"decay-period"`
	}
)

// Missing lists the logical names that are still the zero address.
func (a DeployedAddresses) Missing() []string {
	var missing []string
	for _, entry := range a.entries() {
		if entry.address == (common.Address{}) {
			missing = append(missing, entry.name)
		}
	}
	return missing
}

// Validate fails with ErrMissingAddress if any logical name is unresolved.
func (a DeployedAddresses) Validate() error {
	if missing := a.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingAddress, strings.Join(missing, ", "))
	}
	return nil
}

// Map returns the record keyed by logical name, skipping unresolved entries.
func (a DeployedAddresses) Map() map[string]string {
	resolved := make(map[string]string)
	for _, entry := range a.entries() {
		if entry.address != (common.Address{}) {
			resolved[entry.name] = entry.address.Hex()
		}
	}
	return resolved
}

type addressEntry struct {
	name    string
	address common.Address
}

func (a DeployedAddresses) entries() []addressEntry {
	return []addressEntry{
		{"diamond", a.Diamond},
		{"rewardToken", a.RewardToken},
		{"diamondCutFacet", a.DiamondCutFacet},
		{"diamondLoupeFacet", a.DiamondLoupeFacet},
		{"ownershipFacet", a.OwnershipFacet},
		{"farmFacet", a.FarmFacet},
		{"farmInit", a.FarmInit},
		{"reentrancyGuardInit", a.ReentrancyGuardInit},
	}
}

func (a DeployedAddresses) tuple() facets.DeployAddresses {
	return facets.DeployAddresses{
		Diamond:             a.Diamond,
		RewardToken:         a.RewardToken,
		DiamondCutFacet:     a.DiamondCutFacet,
		DiamondLoupeFacet:   a.DiamondLoupeFacet,
		OwnershipFacet:      a.OwnershipFacet,
		FarmFacet:           a.FarmFacet,
		FarmInit:            a.FarmInit,
		ReentrancyGuardInit: a.ReentrancyGuardInit,
	}
}

func (p InitParams) tuple() facets.InitParams {
	return facets.InitParams{
		StartBlock:  new(big.Int).SetUint64(p.StartBlock),
		DecayPeriod: new(big.Int).SetUint64(p.DecayPeriod),
	}
}
