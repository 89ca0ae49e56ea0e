package rewards

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/uint128"

	"github.com/gtdvccc/sslv2-go/pkg"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
	"github.com/gtdvccc/sslv2-go/pkg/resolver"
	"github.com/gtdvccc/sslv2-go/pkg/sol"
)

// Claimable returns the LP reward accrued by la since its last observed tap:
//
//	(totalAccumulatedLpReward - lastObservedTap) * amountDeposited / totalLiquidityDeposits
//
// The product is taken in 128 bits and the division truncates.
func Claimable(pool ssl.SSLPool, la ssl.LiquidityAccount) (uint64, error) {
	if pool.TotalLiquidityDeposits == 0 {
		return 0, ssl.ErrNoActiveDeposits
	}
	if la.LastObservedTap > pool.TotalAccumulatedLpReward {
		return 0, fmt.Errorf("%w: tap %d above accumulator %d",
			ssl.ErrAccumulatorInvariantViolated, la.LastObservedTap, pool.TotalAccumulatedLpReward)
	}
	if la.AmountDeposited > pool.TotalLiquidityDeposits {
		return 0, fmt.Errorf("%w: deposit %d above pool deposits %d",
			ssl.ErrAccumulatorInvariantViolated, la.AmountDeposited, pool.TotalLiquidityDeposits)
	}

	delta := uint128.From64(pool.TotalAccumulatedLpReward - la.LastObservedTap)
	// share <= delta, so the result always fits in 64 bits
	share := delta.Mul64(la.AmountDeposited).Div64(pool.TotalLiquidityDeposits)
	return share.Lo, nil
}

// Report is the read model of one liquidity position. Numbers are decimal
// strings; the *UI fields are scaled by the mint's decimals.
type Report struct {
	Mint             string `json:"mint" yaml:"mint"`
	Token            string `json:"token,omitempty" yaml:"token,omitempty"`
	Owner            string `json:"owner" yaml:"owner"`
	LiquidityAccount string `json:"liquidityAccount" yaml:"liquidityAccount"`
	AmountDeposited  string `json:"amountDeposited" yaml:"amountDeposited"`
	TotalEarned      string `json:"totalEarned" yaml:"totalEarned"`
	LastClaimed      string `json:"lastClaimed" yaml:"lastClaimed"`
	ClaimableAmount  string `json:"claimableAmount,omitempty" yaml:"claimableAmount,omitempty"`

	AmountDepositedUI string `json:"amountDepositedUi" yaml:"amountDepositedUi"`
	TotalEarnedUI     string `json:"totalEarnedUi" yaml:"totalEarnedUi"`
	ClaimableUI       string `json:"claimableUi,omitempty" yaml:"claimableUi,omitempty"`

	// Set by Reports when the claimable amount is undefined for this pool.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Option func(*Accountant)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Accountant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Accountant answers read-only reward queries from live snapshots.
type Accountant struct {
	resolver *resolver.Resolver
	reader   pkg.AccountReader
	logger   *zap.Logger
}

func New(res *resolver.Resolver, reader pkg.AccountReader, opts ...Option) *Accountant {
	a := &Accountant{
		resolver: res,
		reader:   reader,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Report reads the pool registry and owner's liquidity account for mint
// concurrently and computes the claimable reward. Nothing is returned unless
// both reads succeed.
func (a *Accountant) Report(ctx context.Context, owner, mint solana.PublicKey) (*Report, error) {
	report, err := a.report(ctx, owner, mint)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationQueryRewards, err, mint)
	}
	return report, nil
}

func (a *Accountant) report(ctx context.Context, owner, mint solana.PublicKey) (*Report, error) {
	token, err := a.resolver.Registry().Token(mint)
	if err != nil {
		return nil, err
	}
	laAddr, err := a.resolver.LiquidityAccount(owner, mint)
	if err != nil {
		return nil, err
	}

	var (
		poolRegistry ssl.PoolRegistry
		la           ssl.LiquidityAccount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.load(gctx, a.resolver.PoolRegistry(), poolRegistry.Decode)
	})
	g.Go(func() error {
		return a.load(gctx, laAddr, la.Decode)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool, err := poolRegistry.FindPool(mint)
	if err != nil {
		return nil, err
	}
	if err := checkPosition(&la, owner, mint); err != nil {
		return nil, err
	}
	claimable, err := Claimable(*pool, la)
	if err != nil {
		return nil, err
	}
	report := newReport(token, owner, laAddr, &la)
	report.setClaimable(claimable, token.Decimals)
	a.logger.Debug("reward report",
		zap.Stringer("owner", owner),
		zap.Stringer("mint", mint),
		zap.Uint64("deposited", la.AmountDeposited),
		zap.Uint64("claimable", claimable),
	)
	return report, nil
}

// Reports returns a report for every registry token in which owner holds a
// liquidity account. Pools whose claimable amount is undefined carry Error
// instead of failing the whole query.
func (a *Accountant) Reports(ctx context.Context, owner solana.PublicKey) ([]Report, error) {
	reports, err := a.reports(ctx, owner)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationQueryRewards, err)
	}
	return reports, nil
}

func (a *Accountant) reports(ctx context.Context, owner solana.PublicKey) ([]Report, error) {
	tokens := a.resolver.Registry().Tokens()
	addrs := make([]solana.PublicKey, len(tokens))
	for i, token := range tokens {
		addr, err := a.resolver.LiquidityAccount(owner, token.Mint)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}

	var (
		poolRegistry ssl.PoolRegistry
		accounts     [][]byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.load(gctx, a.resolver.PoolRegistry(), poolRegistry.Decode)
	})
	g.Go(func() error {
		var err error
		accounts, err = sol.FetchMultipleAccountData(gctx, a.reader, addrs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reports []Report
	for i, data := range accounts {
		if data == nil {
			continue
		}
		token := tokens[i]
		var la ssl.LiquidityAccount
		if err := la.Decode(data); err != nil {
			return nil, fmt.Errorf("liquidity account %s: %w", addrs[i], err)
		}
		if err := checkPosition(&la, owner, token.Mint); err != nil {
			return nil, err
		}
		pool, err := poolRegistry.FindPool(token.Mint)
		if err != nil {
			return nil, err
		}

		report := newReport(token, owner, addrs[i], &la)
		claimable, err := Claimable(*pool, la)
		switch {
		case err == nil:
			report.setClaimable(claimable, token.Decimals)
		case errors.Is(err, ssl.ErrNoActiveDeposits):
			report.Error = err.Error()
		default:
			return nil, fmt.Errorf("%s: %w", token.Name, err)
		}
		reports = append(reports, *report)
	}
	a.logger.Debug("reward reports", zap.Stringer("owner", owner), zap.Int("positions", len(reports)))
	return reports, nil
}

func (a *Accountant) load(ctx context.Context, addr solana.PublicKey, decode func([]byte) error) error {
	data, err := sol.FetchAccountData(ctx, a.reader, addr)
	if err != nil {
		return err
	}
	return decode(data)
}

func checkPosition(la *ssl.LiquidityAccount, owner, mint solana.PublicKey) error {
	if !la.Owner.Equals(owner) || !la.Mint.Equals(mint) {
		return fmt.Errorf("%w: liquidity account belongs to %s/%s", ssl.ErrInvalidAccountData, la.Owner, la.Mint)
	}
	return nil
}

func newReport(token registry.Token, owner, laAddr solana.PublicKey, la *ssl.LiquidityAccount) *Report {
	return &Report{
		Mint:              token.Mint.String(),
		Token:             token.Name,
		Owner:             owner.String(),
		LiquidityAccount:  laAddr.String(),
		AmountDeposited:   math.NewIntFromUint64(la.AmountDeposited).String(),
		TotalEarned:       math.NewIntFromUint64(la.TotalEarned).String(),
		LastClaimed:       math.NewInt(la.LastClaimed).String(),
		AmountDepositedUI: uiAmount(la.AmountDeposited, token.Decimals),
		TotalEarnedUI:     uiAmount(la.TotalEarned, token.Decimals),
	}
}

func (r *Report) setClaimable(amount uint64, decimals uint8) {
	r.ClaimableAmount = math.NewIntFromUint64(amount).String()
	r.ClaimableUI = uiAmount(amount, decimals)
}

func uiAmount(amount uint64, decimals uint8) string {
	return math.LegacyNewDecFromIntWithPrec(math.NewIntFromUint64(amount), int64(decimals)).String()
}
