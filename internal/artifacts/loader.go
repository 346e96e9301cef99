package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const FileName = "contracts.json"

// Load reads a contracts.json produced by the compile command.
func Load(path string) (map[ContractName]CompiledContract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}

	loaded, err := parseContracts(data)
	if err != nil {
		return nil, err
	}

	if err := checkComplete(loaded); err != nil {
		return nil, fmt.Errorf("artifacts at '%s' are incomplete: %w", path, err)
	}

	return loaded, nil
}

// parseContracts parses contract JSON data into CompiledContract map. Unknown contracts are ignored.
func parseContracts(data []byte) (map[ContractName]CompiledContract, error) {
	var result map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	loadedContracts := make(map[ContractName]CompiledContract)

	for name, contract := range result {
		if _, ok := Contracts[ContractName(name)]; !ok {
			continue
		}

		parsedABI, err := abi.JSON(strings.NewReader(string(contract.ABI)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
		}

		bytecode := common.FromHex(contract.Bytecode)
		if len(bytecode) == 0 {
			return nil, fmt.Errorf("empty bytecode for %s", name)
		}

		loadedContracts[ContractName(name)] = CompiledContract{
			ABI:      parsedABI,
			RawABI:   string(contract.ABI),
			Bytecode: bytecode,
		}
	}

	return loadedContracts, nil
}

func checkComplete(loaded map[ContractName]CompiledContract) error {
	var missing []string
	for name := range Contracts {
		if _, ok := loaded[name]; !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)
	return errors.New("missing " + strings.Join(missing, ", "))
}
