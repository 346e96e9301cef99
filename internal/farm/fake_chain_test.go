package farm_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gltr-farm/deployer/internal/artifacts"
	"github.com/gltr-farm/deployer/internal/chain"
	"github.com/gltr-farm/deployer/internal/farm"
	"github.com/gltr-farm/deployer/internal/farm/facets"
	"github.com/lmittmann/w3"
)

var errBoom = errors.New("boom")

type (
	pool struct {
		lpToken common.Address
		points  *big.Int
	}

	// fakeChain is an in-memory stand-in for the relayer's connection. It mimics just enough
	// of the diamond to check what the orchestrator submits and in which order.
	fakeChain struct {
		from  common.Address
		owner common.Address
		log   []string

		deployed    map[artifacts.ContractName]common.Address
		diamondArgs []any
		initialized bool
		initArgs    facets.DeployAddresses
		initParams  facets.InitParams
		pools       []pool
		balances    map[common.Address]map[common.Address]*big.Int

		failDeploy artifacts.ContractName
		failTx     *w3.Func
		// failAddAt reverts the n-th add transaction (1-based); 0 disables it.
		failAddAt int
		// rejectTransfer makes transfer return false.
		rejectTransfer bool
	}
)

func newFakeChain(from common.Address) *fakeChain {
	return &fakeChain{
		from:     from,
		owner:    from,
		deployed: map[artifacts.ContractName]common.Address{},
		balances: map[common.Address]map[common.Address]*big.Int{},
	}
}

var _ chain.Backend = (*fakeChain)(nil)

func (f *fakeChain) From() common.Address {
	return f.from
}

func (f *fakeChain) Deploy(_ context.Context, name artifacts.ContractName, _ artifacts.CompiledContract, args ...any) (common.Address, error) {
	if name == f.failDeploy {
		return common.Address{}, errBoom
	}

	address := common.BigToAddress(big.NewInt(int64(0x1000 + len(f.deployed))))
	f.deployed[name] = address
	if name == artifacts.ContractNameDiamond {
		f.diamondArgs = args
	}
	f.log = append(f.log, "deploy:"+string(name))

	return address, nil
}

func (f *fakeChain) Transact(_ context.Context, to common.Address, calldata []byte) (*types.Receipt, error) {
	fn, err := selectorOf(calldata,
		facets.FuncDeployFarmAndGLTR, facets.FuncBatchAdd, facets.FuncAdd, facets.FuncTransferOwnership, facets.FuncTransfer)
	if err != nil {
		return nil, err
	}
	f.log = append(f.log, "tx:"+funcName(fn))

	if fn == f.failTx || (fn == facets.FuncAdd && f.count("tx:add") == f.failAddAt) {
		return &types.Receipt{Status: types.ReceiptStatusFailed}, fmt.Errorf("%w: %s", chain.ErrReverted, funcName(fn))
	}

	switch fn {
	case facets.FuncDeployFarmAndGLTR:
		if to != f.deployed[artifacts.ContractNameFarmDeployer] {
			return nil, fmt.Errorf("deployFarmAndGLTR sent to %s", to.Hex())
		}
		if err := fn.DecodeArgs(calldata, &f.initArgs, &f.initParams); err != nil {
			return nil, err
		}
		f.initialized = true
	case facets.FuncBatchAdd:
		var (
			points   []*big.Int
			lpTokens []common.Address
		)
		if err := fn.DecodeArgs(calldata, &points, &lpTokens); err != nil {
			return nil, err
		}
		for i := range points {
			f.pools = append(f.pools, pool{lpToken: lpTokens[i], points: points[i]})
		}
	case facets.FuncAdd:
		var (
			points  *big.Int
			lpToken common.Address
		)
		if err := fn.DecodeArgs(calldata, &points, &lpToken); err != nil {
			return nil, err
		}
		f.pools = append(f.pools, pool{lpToken: lpToken, points: points})
	case facets.FuncTransferOwnership:
		var newOwner common.Address
		if err := fn.DecodeArgs(calldata, &newOwner); err != nil {
			return nil, err
		}
		f.owner = newOwner
	case facets.FuncTransfer:
		var (
			recipient common.Address
			amount    *big.Int
		)
		if err := fn.DecodeArgs(calldata, &recipient, &amount); err != nil {
			return nil, err
		}
		balance := f.balanceOf(to, f.from)
		if balance.Cmp(amount) < 0 {
			return &types.Receipt{Status: types.ReceiptStatusFailed}, chain.ErrReverted
		}
		f.setBalance(to, f.from, new(big.Int).Sub(balance, amount))
		f.setBalance(to, recipient, new(big.Int).Add(f.balanceOf(to, recipient), amount))
	}

	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: common.BigToHash(big.NewInt(int64(len(f.log)))),
	}, nil
}

func (f *fakeChain) Call(_ context.Context, to common.Address, calldata []byte) ([]byte, error) {
	fn, err := selectorOf(calldata,
		facets.FuncOwner, facets.FuncPoolLength, facets.FuncTotalAllocPoint, facets.FuncPoolInfo, facets.FuncBalanceOf,
		facets.FuncTransfer)
	if err != nil {
		return nil, err
	}
	f.log = append(f.log, "call:"+funcName(fn))

	switch fn {
	case facets.FuncOwner:
		return word(f.owner.Bytes()), nil
	case facets.FuncPoolLength:
		return word(big.NewInt(int64(len(f.pools))).Bytes()), nil
	case facets.FuncTotalAllocPoint:
		total := new(big.Int)
		for _, p := range f.pools {
			total.Add(total, p.points)
		}
		return word(total.Bytes()), nil
	case facets.FuncPoolInfo:
		var pid *big.Int
		if err := fn.DecodeArgs(calldata, &pid); err != nil {
			return nil, err
		}
		if !pid.IsInt64() || pid.Int64() >= int64(len(f.pools)) {
			return nil, fmt.Errorf("execution reverted")
		}
		p := f.pools[pid.Int64()]
		return bytes.Join([][]byte{word(p.lpToken.Bytes()), word(p.points.Bytes()), word(nil), word(nil)}, nil), nil
	case facets.FuncTransfer:
		if f.rejectTransfer {
			return word(nil), nil
		}
		return word([]byte{1}), nil
	default:
		var account common.Address
		if err := fn.DecodeArgs(calldata, &account); err != nil {
			return nil, err
		}
		return word(f.balanceOf(to, account).Bytes()), nil
	}
}

func (f *fakeChain) balanceOf(token, account common.Address) *big.Int {
	if balance, ok := f.balances[token][account]; ok {
		return balance
	}
	return new(big.Int)
}

func (f *fakeChain) setBalance(token, account common.Address, amount *big.Int) {
	if f.balances[token] == nil {
		f.balances[token] = map[common.Address]*big.Int{}
	}
	f.balances[token][account] = amount
}

// indexOf returns the position of the first log entry equal to entry, or -1.
func (f *fakeChain) indexOf(entry string) int {
	for i, e := range f.log {
		if e == entry {
			return i
		}
	}
	return -1
}

func (f *fakeChain) lastIndexOf(entry string) int {
	for i := len(f.log) - 1; i >= 0; i-- {
		if f.log[i] == entry {
			return i
		}
	}
	return -1
}

func (f *fakeChain) count(entry string) int {
	var n int
	for _, e := range f.log {
		if e == entry {
			n++
		}
	}
	return n
}

func selectorOf(calldata []byte, funcs ...*w3.Func) (*w3.Func, error) {
	if len(calldata) < 4 {
		return nil, fmt.Errorf("calldata too short")
	}
	for _, fn := range funcs {
		if bytes.Equal(calldata[:4], fn.Selector[:]) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("unexpected selector %x", calldata[:4])
}

func funcName(fn *w3.Func) string {
	return fn.Signature[:bytes.IndexByte([]byte(fn.Signature), '(')]
}

func word(b []byte) []byte {
	return common.LeftPadBytes(b, 32)
}

type memoryRecorder struct {
	records []farm.Progress
	err     error
}

func (r *memoryRecorder) Record(progress farm.Progress) error {
	r.records = append(r.records, progress)
	return r.err
}

func compiledContracts() map[artifacts.ContractName]artifacts.CompiledContract {
	contracts := make(map[artifacts.ContractName]artifacts.CompiledContract, len(artifacts.Contracts))
	for name := range artifacts.Contracts {
		contracts[name] = artifacts.CompiledContract{Bytecode: []byte{0x60, 0x80}}
	}
	return contracts
}
