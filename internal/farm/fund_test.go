package farm_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/farm"
	"github.com/gltr-farm/deployer/internal/farm/facets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	funder  = common.HexToAddress("0x0000000000000000000000000000000000f0f0f0")
	diamond = common.HexToAddress("0x0000000000000000000000000000000000d1a000")
)

func TestFundTransfersWholeBalance(t *testing.T) {
	backend := newFakeChain(funder)
	amount, ok := new(big.Int).SetString("1000000000000000000000000", 10)
	require.True(t, ok)
	backend.setBalance(rewardToken, funder, amount)

	result, err := farm.NewFunder(backend).Fund(context.Background(), rewardToken, diamond)
	require.NoError(t, err)

	assert.Equal(t, 0, amount.Cmp(result.Amount))
	assert.Equal(t, 0, amount.Cmp(result.DiamondBalance))
	assert.Zero(t, backend.balanceOf(rewardToken, funder).Sign())
	assert.Equal(t, []string{"call:balanceOf", "call:transfer", "tx:transfer", "call:balanceOf"}, backend.log)
}

func TestFundRejectsEmptyBalance(t *testing.T) {
	backend := newFakeChain(funder)

	_, err := farm.NewFunder(backend).Fund(context.Background(), rewardToken, diamond)
	assert.ErrorIs(t, err, farm.ErrNothingToFund)
	assert.Equal(t, -1, backend.indexOf("tx:transfer"))
}

func TestFundStopsWhenTokenRejectsTransfer(t *testing.T) {
	backend := newFakeChain(funder)
	backend.rejectTransfer = true
	backend.setBalance(rewardToken, funder, big.NewInt(500))

	_, err := farm.NewFunder(backend).Fund(context.Background(), rewardToken, diamond)
	require.ErrorIs(t, err, facets.ErrTransferRejected)

	assert.Equal(t, -1, backend.indexOf("tx:transfer"))
	assert.Equal(t, int64(500), backend.balanceOf(rewardToken, funder).Int64())
	assert.Zero(t, backend.balanceOf(rewardToken, diamond).Sign())
}
