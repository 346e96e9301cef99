// Package gauge looks up the gauge and the token pair behind liquidity pools.
package gauge

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gltr-farm/deployer/internal/logger"
	"github.com/lmittmann/w3"
	"golang.org/x/sync/errgroup"
)

var (
	FuncGauge  = w3.MustNewFunc("gauge()", "address")
	FuncToken0 = w3.MustNewFunc("token0()", "address")
	FuncToken1 = w3.MustNewFunc("token1()", "address")
)

type (
	caller interface {
		Call(ctx context.Context, to common.Address, calldata []byte) ([]byte, error)
	}

	PoolMetadata struct {
		Pool   common.Address
		Gauge  common.Address
		Token0 common.Address
		Token1 common.Address
	}

	Lookup struct {
		caller caller
		out    io.Writer
		logger *slog.Logger
	}
)

func NewLookup(caller caller, out io.Writer) *Lookup {
	return &Lookup{caller: caller, out: out, logger: logger.Named("gauge_lookup")}
}

const header = "Finding gauge addresses for CL pools...\n\n"

// Run queries each pool in order and prints its metadata. A pool that fails is
// logged and skipped; the returned slice holds the pools that succeeded.
func (l *Lookup) Run(ctx context.Context, pools []common.Address) ([]PoolMetadata, error) {
	if _, err := io.WriteString(l.out, header); err != nil {
		return nil, fmt.Errorf("failed to print header: %w", err)
	}

	results := make([]PoolMetadata, 0, len(pools))
	for _, pool := range pools {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		metadata, err := l.Query(ctx, pool)
		if err != nil {
			l.logger.
				With("pool", pool.Hex()).
				With("err", err.Error()).
				Error("failed to query pool")
			continue
		}

		if _, err := io.WriteString(l.out, FormatResult(metadata)); err != nil {
			return results, fmt.Errorf("failed to print pool result: %w", err)
		}
		results = append(results, metadata)
	}

	return results, nil
}

// Query issues gauge(), token0() and token1() against the pool concurrently.
func (l *Lookup) Query(ctx context.Context, pool common.Address) (PoolMetadata, error) {
	metadata := PoolMetadata{Pool: pool}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.readAddress(gctx, pool, FuncGauge, &metadata.Gauge) })
	g.Go(func() error { return l.readAddress(gctx, pool, FuncToken0, &metadata.Token0) })
	g.Go(func() error { return l.readAddress(gctx, pool, FuncToken1, &metadata.Token1) })

	if err := g.Wait(); err != nil {
		return PoolMetadata{}, err
	}

	return metadata, nil
}

func (l *Lookup) readAddress(ctx context.Context, pool common.Address, fn *w3.Func, result *common.Address) error {
	calldata, err := fn.EncodeArgs()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}

	out, err := l.caller.Call(ctx, pool, calldata)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", fn.Signature, err)
	}

	if err := fn.DecodeReturns(out, result); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fn.Signature, err)
	}

	return nil
}

func FormatResult(m PoolMetadata) string {
	return fmt.Sprintf("Pool: %s\n  Token0: %s\n  Token1: %s\n  Gauge: %s\n  Use this gauge address in your farm: %s\n\n",
		m.Pool.Hex(), m.Token0.Hex(), m.Token1.Hex(), m.Gauge.Hex(), m.Gauge.Hex())
}
