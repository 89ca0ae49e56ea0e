package assembler

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/gtdvccc/sslv2-go/pkg"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/resolver"
	"github.com/gtdvccc/sslv2-go/pkg/sol"
)

// Plan is the ordered instruction list of one operation. Setup runs before
// Core and Teardown after it, all inside one transaction.
type Plan struct {
	Operation pkg.Operation
	Setup     []solana.Instruction
	Core      []solana.Instruction
	Teardown  []solana.Instruction
}

// Instructions flattens the plan in execution order.
func (p *Plan) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(p.Setup)+len(p.Core)+len(p.Teardown))
	out = append(out, p.Setup...)
	out = append(out, p.Core...)
	return append(out, p.Teardown...)
}

type SwapRequest struct {
	User         solana.PublicKey
	MintIn       solana.PublicKey
	MintOut      solana.PublicKey
	AmountIn     math.Int
	MinAmountOut math.Int
}

type DepositRequest struct {
	Owner             solana.PublicKey
	Mint              solana.PublicKey
	Amount            math.Int
	UseNativeWrapping bool
}

type WithdrawRequest struct {
	Owner          solana.PublicKey
	Mint           solana.PublicKey
	Amount         math.Int
	UnwrapToNative bool
}

type Option func(*Assembler)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler turns resolved account sets into instruction plans. Its only I/O
// is the existence check of accounts a plan may have to create.
type Assembler struct {
	resolver *resolver.Resolver
	reader   pkg.AccountReader
	logger   *zap.Logger
}

func New(res *resolver.Resolver, reader pkg.AccountReader, opts ...Option) *Assembler {
	a := &Assembler{
		resolver: res,
		reader:   reader,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Swap builds a swap plan. The user's output token account is created first
// when it does not exist.
func (a *Assembler) Swap(ctx context.Context, req SwapRequest) (*Plan, error) {
	plan, err := a.swap(ctx, req)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationSwap, err, req.MintIn, req.MintOut)
	}
	return plan, nil
}

func (a *Assembler) swap(ctx context.Context, req SwapRequest) (*Plan, error) {
	accounts, err := a.resolver.Swap(req.User, req.MintIn, req.MintOut)
	if err != nil {
		return nil, err
	}
	amountIn, err := toU64(req.AmountIn, false)
	if err != nil {
		return nil, fmt.Errorf("amount in: %w", err)
	}
	minOut, err := toU64(req.MinAmountOut, true)
	if err != nil {
		return nil, fmt.Errorf("min amount out: %w", err)
	}
	exists, err := a.exist(ctx, accounts.UserAtaOut)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Operation: pkg.OperationSwap}
	if !exists[0] {
		inst, err := sol.CreateATAInstruction(req.User, req.User, req.MintOut)
		if err != nil {
			return nil, err
		}
		plan.Setup = append(plan.Setup, inst)
	}
	plan.Core = append(plan.Core, ssl.NewSwapInstruction(a.resolver.ProgramID(), amountIn, minOut, accounts))
	a.logPlan(plan, zap.Stringer("mintIn", req.MintIn), zap.Stringer("mintOut", req.MintOut),
		zap.Uint64("amountIn", amountIn), zap.Uint64("minAmountOut", minOut))
	return plan, nil
}

// Deposit builds a deposit plan. Setup, when needed, runs in this order:
// create the WSOL account, wrap lamports into it, create the liquidity account.
func (a *Assembler) Deposit(ctx context.Context, req DepositRequest) (*Plan, error) {
	plan, err := a.deposit(ctx, req)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationDeposit, err, req.Mint)
	}
	return plan, nil
}

func (a *Assembler) deposit(ctx context.Context, req DepositRequest) (*Plan, error) {
	accounts, err := a.resolver.Deposit(req.Owner, req.Mint, req.UseNativeWrapping)
	if err != nil {
		return nil, err
	}
	amount, err := toU64(req.Amount, false)
	if err != nil {
		return nil, err
	}
	exists, err := a.exist(ctx, accounts.LiquidityAccount, accounts.UserAta)
	if err != nil {
		return nil, err
	}
	laExists, ataExists := exists[0], exists[1]

	plan := &Plan{Operation: pkg.OperationDeposit}
	if req.UseNativeWrapping {
		if !ataExists {
			inst, err := sol.CreateATAInstruction(req.Owner, req.Owner, req.Mint)
			if err != nil {
				return nil, err
			}
			plan.Setup = append(plan.Setup, inst)
		}
		wrap, err := sol.WrapSolInstructions(req.Owner, amount)
		if err != nil {
			return nil, err
		}
		plan.Setup = append(plan.Setup, wrap...)
	}
	if !laExists {
		createAccounts, err := a.resolver.CreateLiquidityAccount(req.Owner, req.Mint)
		if err != nil {
			return nil, err
		}
		plan.Setup = append(plan.Setup, ssl.NewCreateLiquidityAccountInstruction(a.resolver.ProgramID(), createAccounts))
	}
	plan.Core = append(plan.Core, ssl.NewDepositInstruction(a.resolver.ProgramID(), amount, accounts))
	a.logPlan(plan, zap.Stringer("mint", req.Mint), zap.Uint64("amount", amount),
		zap.Bool("wrap", req.UseNativeWrapping), zap.Bool("newLiquidityAccount", !laExists))
	return plan, nil
}

// Withdraw builds a withdraw plan. Unwrapping closes the WSOL account after
// the withdrawal, returning its lamports to the owner.
func (a *Assembler) Withdraw(ctx context.Context, req WithdrawRequest) (*Plan, error) {
	plan, err := a.withdraw(ctx, req)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationWithdraw, err, req.Mint)
	}
	return plan, nil
}

func (a *Assembler) withdraw(ctx context.Context, req WithdrawRequest) (*Plan, error) {
	accounts, err := a.resolver.Withdraw(req.Owner, req.Mint, req.UnwrapToNative)
	if err != nil {
		return nil, err
	}
	amount, err := toU64(req.Amount, false)
	if err != nil {
		return nil, err
	}
	exists, err := a.exist(ctx, accounts.UserAta)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Operation: pkg.OperationWithdraw}
	if !exists[0] {
		inst, err := sol.CreateATAInstruction(req.Owner, req.Owner, req.Mint)
		if err != nil {
			return nil, err
		}
		plan.Setup = append(plan.Setup, inst)
	}
	plan.Core = append(plan.Core, ssl.NewWithdrawInstruction(a.resolver.ProgramID(), amount, accounts))
	if req.UnwrapToNative {
		inst, err := sol.UnwrapSolInstruction(req.Owner)
		if err != nil {
			return nil, err
		}
		plan.Teardown = append(plan.Teardown, inst)
	}
	a.logPlan(plan, zap.Stringer("mint", req.Mint), zap.Uint64("amount", amount),
		zap.Bool("unwrap", req.UnwrapToNative))
	return plan, nil
}

// ClaimFees builds a claim plan, creating the owner's token account if needed.
func (a *Assembler) ClaimFees(ctx context.Context, owner, mint solana.PublicKey) (*Plan, error) {
	plan, err := a.claimFees(ctx, owner, mint)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationClaimFees, err, mint)
	}
	return plan, nil
}

func (a *Assembler) claimFees(ctx context.Context, owner, mint solana.PublicKey) (*Plan, error) {
	accounts, err := a.resolver.ClaimFees(owner, mint)
	if err != nil {
		return nil, err
	}
	exists, err := a.exist(ctx, accounts.OwnerAta)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Operation: pkg.OperationClaimFees}
	if !exists[0] {
		inst, err := sol.CreateATAInstruction(owner, owner, mint)
		if err != nil {
			return nil, err
		}
		plan.Setup = append(plan.Setup, inst)
	}
	plan.Core = append(plan.Core, ssl.NewClaimFeesInstruction(a.resolver.ProgramID(), accounts))
	a.logPlan(plan, zap.Stringer("mint", mint))
	return plan, nil
}

// CreateLiquidityAccount builds a plan holding only the account creation.
func (a *Assembler) CreateLiquidityAccount(owner, mint solana.PublicKey) (*Plan, error) {
	accounts, err := a.resolver.CreateLiquidityAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Operation: pkg.OperationCreateLiquidityAccount,
		Core:      []solana.Instruction{ssl.NewCreateLiquidityAccountInstruction(a.resolver.ProgramID(), accounts)},
	}
	a.logPlan(plan, zap.Stringer("mint", mint))
	return plan, nil
}

// CloseLiquidityAccount builds a close plan. The program rejects it while the
// account still holds a deposit.
func (a *Assembler) CloseLiquidityAccount(owner, mint, rentRecipient solana.PublicKey) (*Plan, error) {
	accounts, err := a.resolver.CloseLiquidityAccount(owner, mint, rentRecipient)
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Operation: pkg.OperationCloseLiquidityAccount,
		Core:      []solana.Instruction{ssl.NewCloseLiquidityAccountInstruction(a.resolver.ProgramID(), accounts)},
	}
	a.logPlan(plan, zap.Stringer("mint", mint), zap.Stringer("rentRecipient", accounts.RentRecipient))
	return plan, nil
}

func (a *Assembler) exist(ctx context.Context, addrs ...solana.PublicKey) ([]bool, error) {
	exists, err := sol.AccountsExist(ctx, a.reader, addrs)
	if err != nil {
		return nil, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

func (a *Assembler) logPlan(plan *Plan, fields ...zap.Field) {
	fields = append(fields,
		zap.String("op", string(plan.Operation)),
		zap.Int("setup", len(plan.Setup)),
		zap.Int("core", len(plan.Core)),
		zap.Int("teardown", len(plan.Teardown)),
	)
	a.logger.Debug("plan assembled", fields...)
}

// toU64 accepts amounts that fit the program's u64 arguments.
func toU64(amount math.Int, allowZero bool) (uint64, error) {
	if amount.IsNil() || amount.IsNegative() || !amount.IsUint64() {
		return 0, fmt.Errorf("%w: %v", ssl.ErrInvalidAmount, amount)
	}
	if amount.IsZero() && !allowZero {
		return 0, fmt.Errorf("%w: amount must be positive", ssl.ErrInvalidAmount)
	}
	return amount.Uint64(), nil
}
