package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// SetBalance overwrites the balance of account on an anvil node.
func SetBalance(ctx context.Context, rpcURL string, account common.Address, wei *big.Int) error {
	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	defer client.Close()

	if err := client.CallContext(ctx, nil, "anvil_setBalance", account, hexutil.EncodeBig(wei)); err != nil {
		return fmt.Errorf("failed to set balance of %s: %w", account.Hex(), err)
	}

	return nil
}
