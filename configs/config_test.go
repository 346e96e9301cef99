package configs

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken = "0x00000000000000000000000000000000000c0ffe"
	testOwner = "0x0000000000000000000000000000000000b0b0b0"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, NetworkName("base"), cfg.Network)
	assert.Equal(t, 5*time.Minute, cfg.TxTimeout)
	assert.Equal(t, 18545, cfg.Rehearsal.Port)
	require.Contains(t, cfg.Networks, NetworkName("base"))
	require.Contains(t, cfg.Networks, NetworkName("base-iterative"))

	base := cfg.Networks["base"]
	assert.Equal(t, StrategyBatch, base.Strategy)
	assert.EqualValues(t, 8453, base.ChainID)
	assert.EqualValues(t, 35515184, base.FarmInit.StartBlock)
	assert.EqualValues(t, 15804500, base.FarmInit.DecayPeriod)
	assert.Len(t, base.Allocations, 7)
	assert.True(t, base.Allocations[4].Skip)
	assert.NotEmpty(t, base.Allocations[4].Reason)

	iterative := cfg.Networks["base-iterative"]
	assert.Equal(t, StrategyIterative, iterative.Strategy)
	for _, allocation := range iterative.Allocations {
		assert.False(t, allocation.Skip)
	}
}

func TestDefaultProfilesValidateOnceConstantsAreSet(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	for name, network := range cfg.Networks {
		err := network.Validate(name)
		require.Error(t, err, "reward token and owner are operator supplied")
		assert.ErrorContains(t, err, "reward-token must be a hex address")
		assert.ErrorContains(t, err, "owner must be a hex address")

		network.RewardToken = testToken
		network.Owner = testOwner
		assert.NoError(t, network.Validate(name), name)
		assert.NoError(t, network.ValidateLookup(name), name)
	}
}

func validNetwork() Network {
	return Network{
		RPCURL:      "http://127.0.0.1:8545",
		ChainID:     31337,
		RewardToken: testToken,
		Owner:       testOwner,
		Strategy:    StrategyBatch,
		FarmInit:    FarmInit{StartBlock: 1, DecayPeriod: 100},
		Allocations: []Allocation{
			{Label: "a", Points: 2, Address: "0x00000000000000000000000000000000000000a1"},
			{Label: "b", Points: 4, Address: "0x00000000000000000000000000000000000000a2"},
			{Label: "cl", Points: 4, Address: "0x00000000000000000000000000000000000000a3", Skip: true},
		},
		TotalPoints: 6,
	}
}

func TestNetworkValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Network)
		wantErr string
	}{
		{"valid", func(*Network) {}, ""},
		{"total ignores skipped rows", func(n *Network) { n.TotalPoints = 10 }, "total-points is 10 but allocations sum to 6"},
		{"total is optional", func(n *Network) { n.TotalPoints = 0 }, ""},
		{"zero points", func(n *Network) { n.Allocations[0].Points = 0 }, "allocations[0].points must be greater than 0"},
		{"bad address", func(n *Network) { n.Allocations[1].Address = "nope" }, "allocations[1].address must be a hex address"},
		{"all skipped", func(n *Network) {
			n.Allocations[0].Skip = true
			n.Allocations[1].Skip = true
			n.TotalPoints = 0
		}, "allocations must contain at least one pool"},
		{"unknown strategy", func(n *Network) { n.Strategy = "parallel" }, "strategy must be either 'batch' or 'iterative'"},
		{"missing farm init", func(n *Network) { n.FarmInit = FarmInit{} }, "farm-init.start-block is required"},
		{"missing rpc", func(n *Network) { n.RPCURL = "" }, "networks.test.rpc-url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network := validNetwork()
			tt.mutate(&network)

			err := network.Validate("test")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateDeployCollectsErrors(t *testing.T) {
	cfg := Config{Network: "missing"}

	err := cfg.ValidateDeploy()
	require.Error(t, err)
	assert.ErrorContains(t, err, "relayer-private-key is required")
	assert.ErrorContains(t, err, "artifacts is required")
	assert.ErrorContains(t, err, "networks.missing is not configured")
}

func TestSetDefaultsLetsConfigOverride(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, SetDefaults(v))

	override := `
network: base-iterative
networks:
  base-iterative:
    reward-token: "` + testToken + `"
`
	require.NoError(t, v.MergeConfig(strings.NewReader(override)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	network, err := cfg.Active()
	require.NoError(t, err)
	assert.Equal(t, testToken, network.RewardToken)
	assert.Equal(t, StrategyIterative, network.Strategy)
	assert.Len(t, network.Allocations, 7)
	assert.Equal(t, "./deployments", cfg.OutputDir)
}
