package output

import (
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type (
	Summary struct {
		Network     string                    `yaml:"network"`
		ChainID     int64                     `yaml:"chain-id"`
		Relayer     common.Address            `yaml:"relayer"`
		Owner       common.Address            `yaml:"owner"`
		Farm        Farm                      `yaml:"farm"`
		Allocations Allocations               `yaml:"allocations"`
		Contracts   map[string]ContractConfig `yaml:"contracts"`
	}

	Farm struct {
		StartBlock  uint64 `yaml:"start-block"`
		DecayPeriod uint64 `yaml:"decay-period"`
		Strategy    string `yaml:"strategy"`
		TotalPoints uint64 `yaml:"total-points"`
	}

	Allocations struct {
		Registered []Pool `yaml:"registered"`
		Skipped    []Pool `yaml:"skipped,omitempty"`
	}

	Pool struct {
		PID     *int           `yaml:"pid,omitempty"`
		Label   string         `yaml:"label"`
		Address common.Address `yaml:"address"`
		Points  uint64         `yaml:"points"`
		Reason  string         `yaml:"reason,omitempty"`
	}

	ContractConfig struct {
		Address common.Address     `yaml:"address"`
		ABI     SingleQuotedString `yaml:"abi,omitempty"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}
