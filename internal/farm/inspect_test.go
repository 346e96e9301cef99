package farm_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/farm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deployedFarm(t *testing.T) (*fakeChain, farm.Result) {
	t.Helper()

	backend := newFakeChain(relayer)
	result, err := farm.NewOrchestrator(backend, compiledContracts(), nil).
		Run(context.Background(), newPlan(t, configs.StrategyBatch, sixPoolTable()))
	require.NoError(t, err)

	return backend, result
}

func TestInspectReadsRegisteredState(t *testing.T) {
	backend, result := deployedFarm(t)

	state, err := farm.NewInspector(backend).Inspect(context.Background(), result.Addresses.Diamond)
	require.NoError(t, err)

	assert.Equal(t, newOwner, state.Owner)
	assert.EqualValues(t, 16, state.TotalAllocPoint.Uint64())
	require.Len(t, state.Pools, 6)
	for i, allocation := range sixPoolTable() {
		assert.Equal(t, allocation.Address, state.Pools[i].LpToken)
		assert.EqualValues(t, allocation.Points, state.Pools[i].AllocPoint.Uint64())
	}

	assert.NoError(t, state.Compare(sixPoolTable(), newOwner))
}

func TestCompareReportsEveryMismatch(t *testing.T) {
	backend, result := deployedFarm(t)
	backend.pools[1].points = big.NewInt(3)

	state, err := farm.NewInspector(backend).Inspect(context.Background(), result.Addresses.Diamond)
	require.NoError(t, err)

	err = state.Compare(sixPoolTable(), common.HexToAddress("0x0000000000000000000000000000000000000001"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "owner is")
	assert.ErrorContains(t, err, "pool 1 has 3 points, expected 2")
	assert.ErrorContains(t, err, "total alloc point is 17, expected 16")
}

func TestCompareReportsPoolCount(t *testing.T) {
	backend, result := deployedFarm(t)
	backend.pools = backend.pools[:5]

	state, err := farm.NewInspector(backend).Inspect(context.Background(), result.Addresses.Diamond)
	require.NoError(t, err)

	err = state.Compare(sixPoolTable(), common.Address{})
	assert.ErrorContains(t, err, "farm has 5 pools, table has 6")
}
