package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var Values Config

type (
	NetworkName string
	Strategy    string

	Config struct {
		Network           NetworkName             `mapstructure:"network"`
		LogLevel          string                  `mapstructure:"log-level"`
		RelayerPrivateKey string                  `mapstructure:"relayer-private-key"`
		FunderPrivateKey  string                  `mapstructure:"funder-private-key"`
		Artifacts         string                  `mapstructure:"artifacts"`
		OutputDir         string                  `mapstructure:"output-dir"`
		TxTimeout         time.Duration           `mapstructure:"tx-timeout"`
		GasLimit          uint64                  `mapstructure:"gas-limit"`
		Networks          map[NetworkName]Network `mapstructure:"networks"`
		Compile           Compile                 `mapstructure:"compile"`
		Rehearsal         Rehearsal               `mapstructure:"rehearsal"`
	}

	// Network is one deployment profile: chain endpoint, constants and the allocation table.
	Network struct {
		RPCURL      string       `mapstructure:"rpc-url"`
		ChainID     int64        `mapstructure:"chain-id"`
		RewardToken string       `mapstructure:"reward-token"`
		Owner       string       `mapstructure:"owner"`
		Strategy    Strategy     `mapstructure:"strategy"`
		FarmInit    FarmInit     `mapstructure:"farm-init"`
		Allocations []Allocation `mapstructure:"allocations"`
		TotalPoints uint64       `mapstructure:"total-points"`
		Pools       []string     `mapstructure:"pools"`
	}

	FarmInit struct {
		StartBlock  uint64 `mapstructure:"start-block"`
		DecayPeriod uint64 `mapstructure:"decay-period"`
	}

	Allocation struct {
		Label   string `mapstructure:"label"`
		Points  uint64 `mapstructure:"points"`
		Address string `mapstructure:"address"`
		Skip    bool   `mapstructure:"skip"`
		Reason  string `mapstructure:"reason"`
	}

	Compile struct {
		RepositoryURL string `mapstructure:"repository-url"`
		Branch        string `mapstructure:"branch"`
		Subdir        string `mapstructure:"subdir"`
		WorkDir       string `mapstructure:"work-dir"`
	}

	Rehearsal struct {
		Image string `mapstructure:"image"`
		Port  int    `mapstructure:"port"`
	}
)

const (
	StrategyBatch     Strategy = "batch"
	StrategyIterative Strategy = "iterative"
)

// Active returns the profile selected by Network.
func (c *Config) Active() (Network, error) {
	if c.Network == "" {
		return Network{}, errors.New("network is required")
	}
	network, ok := c.Networks[c.Network]
	if !ok {
		return Network{}, fmt.Errorf("networks.%s is not configured", c.Network)
	}
	return network, nil
}

// ValidateDeploy checks everything the deploy command needs.
func (c *Config) ValidateDeploy() error {
	var errs []error

	if c.RelayerPrivateKey == "" {
		errs = append(errs, errors.New("relayer-private-key is required"))
	}
	if c.Artifacts == "" {
		errs = append(errs, errors.New("artifacts is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output-dir is required"))
	}

	network, err := c.Active()
	if err != nil {
		errs = append(errs, err)
	} else if err := network.Validate(c.Network); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("deploy configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Validate checks a deployment profile. The prefix is used in error messages.
func (n *Network) Validate(name NetworkName) error {
	var errs []error
	prefix := fmt.Sprintf("networks.%s", name)

	if n.RPCURL == "" {
		errs = append(errs, fmt.Errorf("%s.rpc-url is required", prefix))
	}
	if n.ChainID == 0 {
		errs = append(errs, fmt.Errorf("%s.chain-id is required", prefix))
	}
	if !common.IsHexAddress(n.RewardToken) {
		errs = append(errs, fmt.Errorf("%s.reward-token must be a hex address", prefix))
	}
	if !common.IsHexAddress(n.Owner) {
		errs = append(errs, fmt.Errorf("%s.owner must be a hex address", prefix))
	}
	if n.Strategy != StrategyBatch && n.Strategy != StrategyIterative {
		errs = append(errs, fmt.Errorf("%s.strategy must be either '%s' or '%s'", prefix, StrategyBatch, StrategyIterative))
	}
	if n.FarmInit.StartBlock == 0 {
		errs = append(errs, fmt.Errorf("%s.farm-init.start-block is required", prefix))
	}
	if n.FarmInit.DecayPeriod == 0 {
		errs = append(errs, fmt.Errorf("%s.farm-init.decay-period is required", prefix))
	}

	var (
		active int
		sum    uint64
	)
	for i, allocation := range n.Allocations {
		if !common.IsHexAddress(allocation.Address) {
			errs = append(errs, fmt.Errorf("%s.allocations[%d].address must be a hex address", prefix, i))
		}
		if allocation.Skip {
			continue
		}
		if allocation.Points == 0 {
			errs = append(errs, fmt.Errorf("%s.allocations[%d].points must be greater than 0", prefix, i))
		}
		active++
		sum += allocation.Points
	}
	if active == 0 {
		errs = append(errs, fmt.Errorf("%s.allocations must contain at least one pool", prefix))
	}
	if n.TotalPoints != 0 && n.TotalPoints != sum {
		errs = append(errs, fmt.Errorf("%s.total-points is %d but allocations sum to %d", prefix, n.TotalPoints, sum))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ValidateLookup checks the gauge lookup inputs.
func (n *Network) ValidateLookup(name NetworkName) error {
	var errs []error

	if n.RPCURL == "" {
		errs = append(errs, fmt.Errorf("networks.%s.rpc-url is required", name))
	}
	if len(n.Pools) == 0 {
		errs = append(errs, fmt.Errorf("networks.%s.pools must list at least one pool", name))
	}
	for i, pool := range n.Pools {
		if !common.IsHexAddress(pool) {
			errs = append(errs, fmt.Errorf("networks.%s.pools[%d] must be a hex address", name, i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("gauge lookup configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Compile) Validate() error {
	var errs []error

	if c.RepositoryURL == "" {
		errs = append(errs, errors.New("compile.repository-url is required"))
	}
	if c.Branch == "" {
		errs = append(errs, errors.New("compile.branch is required"))
	}
	if c.WorkDir == "" {
		errs = append(errs, errors.New("compile.work-dir is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("compile configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
