package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gltr-farm/deployer/internal/artifacts"
	"github.com/gltr-farm/deployer/internal/logger"
)

// ErrReverted is returned when a mined transaction has a failed status.
var ErrReverted = errors.New("transaction reverted")

type (
	// Backend is everything the deployment needs from the chain: contract creation,
	// confirmed state-changing calls and read-only calls, all from one signing identity.
	Backend interface {
		From() common.Address
		Deploy(ctx context.Context, name artifacts.ContractName, contract artifacts.CompiledContract, args ...any) (common.Address, error)
		Transact(ctx context.Context, to common.Address, calldata []byte) (*types.Receipt, error)
		Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
	}

	Options struct {
		// ChainID is the expected chain; 0 accepts whatever the endpoint reports.
		ChainID int64
		// GasLimit of 0 lets the node estimate gas.
		GasLimit uint64
		// TxTimeout of 0 waits for every transaction without a deadline.
		TxTimeout time.Duration
	}

	// Client signs and submits transactions with a single key and waits for each to be mined.
	Client struct {
		*Reader
		key     *ecdsa.PrivateKey
		chainID *big.Int
		options Options
	}
)

// Dial connects to rpcURL and binds the signing key. The endpoint chain ID is checked
// against options.ChainID before anything is sent.
func Dial(ctx context.Context, rpcURL, privateKeyHex string, options Options) (*Client, error) {
	key, from, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	reader, err := DialReader(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	reader.from = from
	reader.logger = logger.Named("chain_client")

	chainID, err := reader.eth.ChainID(ctx)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if options.ChainID != 0 && chainID.Int64() != options.ChainID {
		reader.Close()
		return nil, fmt.Errorf("endpoint %s serves chain %d, expected %d", rpcURL, chainID.Int64(), options.ChainID)
	}

	reader.logger.
		With("chain_id", chainID).
		With("from", from.Hex()).
		Info("connected signer")

	return &Client{
		Reader:  reader,
		key:     key,
		chainID: chainID,
		options: options,
	}, nil
}

func (c *Client) From() common.Address {
	return c.from
}

// Deploy creates a contract and blocks until the creation transaction is mined.
func (c *Client) Deploy(ctx context.Context, name artifacts.ContractName, contract artifacts.CompiledContract, args ...any) (common.Address, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	auth, err := c.transactor(ctx)
	if err != nil {
		return common.Address{}, err
	}

	address, tx, _, err := bind.DeployContract(auth, contract.ABI, contract.Bytecode, c.eth, args...)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	c.logger.
		With("contract", name).
		With("address", address.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	if _, err := c.waitMined(ctx, tx); err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	return address, nil
}

// Transact sends calldata to the given address and blocks until it is mined successfully.
func (c *Client) Transact(ctx context.Context, to common.Address, calldata []byte) (*types.Receipt, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	auth, err := c.transactor(ctx)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(to, abi.ABI{}, c.eth, c.eth, c.eth)
	tx, err := contract.RawTransact(auth, calldata)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction to %s: %w", to.Hex(), err)
	}

	c.logger.
		With("to", to.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Debug("transaction sent")

	return c.waitMined(ctx, tx)
}

func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = c.options.GasLimit

	return auth, nil
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: tx %s status %d", ErrReverted, tx.Hash().Hex(), receipt.Status)
	}

	return receipt, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.options.TxTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.options.TxTimeout)
}
