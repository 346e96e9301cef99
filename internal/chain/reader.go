package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gltr-farm/deployer/internal/logger"
)

// Reader performs read-only eth_call requests against a single RPC endpoint.
type Reader struct {
	eth    *ethclient.Client
	from   common.Address
	logger *slog.Logger
}

// DialReader connects to rpcURL without a signing identity.
func DialReader(ctx context.Context, rpcURL string) (*Reader, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	return &Reader{eth: eth, logger: logger.Named("chain_reader")}, nil
}

// Call executes calldata against the latest block and returns the raw return data.
func (r *Reader) Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: r.from,
		To:   &to,
		Data: calldata,
	}

	result, err := r.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract %s: %w", to.Hex(), err)
	}

	return result, nil
}

// ChainID returns the chain ID reported by the endpoint.
func (r *Reader) ChainID(ctx context.Context) (int64, error) {
	chainID, err := r.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID.Int64(), nil
}

func (r *Reader) Close() {
	r.eth.Close()
}

// WaitForRPC polls rpcURL until it answers eth_blockNumber or ctx/timeout expires.
func WaitForRPC(ctx context.Context, rpcURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		client, err := ethclient.DialContext(ctx, rpcURL)
		if err == nil {
			_, err = client.BlockNumber(ctx)
			client.Close()
			if err == nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for RPC at %s: %w", rpcURL, ctx.Err())
		case <-ticker.C:
		}
	}
}
