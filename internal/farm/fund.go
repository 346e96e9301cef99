package farm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gltr-farm/deployer/internal/farm/facets"
	"github.com/gltr-farm/deployer/internal/logger"
)

var ErrNothingToFund = errors.New("funder holds no reward tokens")

type (
	fundBackend interface {
		From() common.Address
		Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
		Transact(ctx context.Context, to common.Address, calldata []byte) (*types.Receipt, error)
	}

	// Funder moves the funder's whole reward-token balance into the diamond.
	// It runs outside the deployment sequence, signed with the funder key.
	Funder struct {
		backend fundBackend
		logger  *slog.Logger
	}

	FundResult struct {
		Amount         *big.Int
		DiamondBalance *big.Int
		TxHash         common.Hash
	}
)

func NewFunder(backend fundBackend) *Funder {
	return &Funder{backend: backend, logger: logger.Named("farm_funder")}
}

func (f *Funder) Fund(ctx context.Context, rewardToken, diamond common.Address) (FundResult, error) {
	token := facets.NewERC20(f.backend, rewardToken)
	funder := f.backend.From()

	balance, err := token.BalanceOf(ctx, funder)
	if err != nil {
		return FundResult{}, fmt.Errorf("failed to read funder balance: %w", err)
	}
	if balance.Sign() == 0 {
		return FundResult{}, fmt.Errorf("%w: %s", ErrNothingToFund, funder.Hex())
	}

	f.logger.
		With("funder", funder.Hex()).
		With("diamond", diamond.Hex()).
		With("amount", balance).
		Info("transferring reward tokens to diamond")

	receipt, err := token.Transfer(ctx, diamond, balance)
	if err != nil {
		return FundResult{}, fmt.Errorf("failed to transfer reward tokens: %w", err)
	}

	diamondBalance, err := token.BalanceOf(ctx, diamond)
	if err != nil {
		return FundResult{}, fmt.Errorf("failed to read diamond balance: %w", err)
	}

	f.logger.
		With("tx_hash", receipt.TxHash.Hex()).
		With("diamond_balance", diamondBalance).
		Info("reward tokens transferred to diamond")

	return FundResult{Amount: balance, DiamondBalance: diamondBalance, TxHash: receipt.TxHash}, nil
}
