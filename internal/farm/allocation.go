package farm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/configs"
)

// Allocation is one liquidity pool's share of reward emission.
type Allocation struct {
	Label   string
	Points  uint64
	Address common.Address
	// Skip keeps a row in the table without submitting it.
	Skip   bool
	Reason string
}

// AllocationsFromConfig converts configured rows, keeping their order and duplicates.
func AllocationsFromConfig(rows []configs.Allocation) ([]Allocation, error) {
	allocations := make([]Allocation, 0, len(rows))
	for i, row := range rows {
		if !common.IsHexAddress(row.Address) {
			return nil, fmt.Errorf("allocation %d (%s): invalid address '%s'", i, row.Label, row.Address)
		}
		allocations = append(allocations, Allocation{
			Label:   row.Label,
			Points:  row.Points,
			Address: common.HexToAddress(row.Address),
			Skip:    row.Skip,
			Reason:  row.Reason,
		})
	}
	return allocations, nil
}

// Active returns the rows that will be submitted, in table order.
func Active(allocations []Allocation) []Allocation {
	active := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		if !allocation.Skip {
			active = append(active, allocation)
		}
	}
	return active
}

// TotalPoints sums the points of the rows that will be submitted.
func TotalPoints(allocations []Allocation) uint64 {
	var total uint64
	for _, allocation := range Active(allocations) {
		total += allocation.Points
	}
	return total
}

// parallelLists splits allocations into the two ordered lists batchAdd expects.
func parallelLists(allocations []Allocation) ([]*big.Int, []common.Address) {
	points := make([]*big.Int, len(allocations))
	addresses := make([]common.Address, len(allocations))
	for i, allocation := range allocations {
		points[i] = new(big.Int).SetUint64(allocation.Points)
		addresses[i] = allocation.Address
	}
	return points, addresses
}
