package resolver

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/gtdvccc/sslv2-go/pkg"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
)

// Resolver builds the complete account set of every SSLv2 user instruction.
// It never returns a partially resolved set.
type Resolver struct {
	deriver      ssl.Deriver
	registry     *registry.Registry
	poolRegistry solana.PublicKey
	eventEmitter solana.PublicKey
}

// New derives the pool registry of reg's authority under programID.
func New(reg *registry.Registry, programID solana.PublicKey) (*Resolver, error) {
	if reg == nil {
		return nil, fmt.Errorf("token registry is required")
	}
	d := ssl.NewDeriver(programID)
	poolRegistry, err := d.PoolRegistry(reg.Authority())
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool registry: %w", err)
	}
	eventEmitter, err := d.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event emitter: %w", err)
	}
	return &Resolver{
		deriver:      d,
		registry:     reg,
		poolRegistry: poolRegistry,
		eventEmitter: eventEmitter,
	}, nil
}

func (r *Resolver) ProgramID() solana.PublicKey {
	return r.deriver.ProgramID
}

func (r *Resolver) PoolRegistry() solana.PublicKey {
	return r.poolRegistry
}

func (r *Resolver) Registry() *registry.Registry {
	return r.registry
}

func (r *Resolver) Deriver() ssl.Deriver {
	return r.deriver
}

// LiquidityAccount derives the owner's liquidity account for mint.
func (r *Resolver) LiquidityAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	return r.deriver.LiquidityAccount(r.poolRegistry, mint, owner)
}

// supportedLiquidityAccount is LiquidityAccount for mints in the registry only.
func (r *Resolver) supportedLiquidityAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := r.registry.Token(mint); err != nil {
		return solana.PublicKey{}, err
	}
	return r.LiquidityAccount(owner, mint)
}

// Swap resolves the 19 swap accounts. The pair must be supported.
func (r *Resolver) Swap(user, mintIn, mintOut solana.PublicKey) (*ssl.SwapAccounts, error) {
	accounts, err := r.swap(user, mintIn, mintOut)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationSwap, err, mintIn, mintOut)
	}
	return accounts, nil
}

func (r *Resolver) swap(user, mintIn, mintOut solana.PublicKey) (*ssl.SwapAccounts, error) {
	pair, err := r.registry.PairExists(mintIn, mintOut)
	if err != nil {
		return nil, err
	}
	feeDestination, err := pair.FeeDestination(mintOut)
	if err != nil {
		return nil, err
	}
	inOracle, err := r.registry.Oracle(mintIn)
	if err != nil {
		return nil, err
	}
	outOracle, err := r.registry.Oracle(mintOut)
	if err != nil {
		return nil, err
	}

	a := &ssl.SwapAccounts{
		PoolRegistry:      r.poolRegistry,
		UserWallet:        user,
		FeeDestination:    feeDestination,
		OutputTokenOracle: outOracle,
		InputTokenOracle:  inOracle,
		EventEmitter:      r.eventEmitter,
		TokenProgram:      ssl.TOKEN_PROGRAM_ID,
	}
	d := r.deriver
	steps := []struct {
		dst    *solana.PublicKey
		derive func() (solana.PublicKey, error)
	}{
		{&a.Pair, func() (solana.PublicKey, error) { return d.Pair(r.poolRegistry, mintIn, mintOut) }},
		{&a.SSLPoolInSigner, func() (solana.PublicKey, error) { return d.SSLPoolSigner(r.poolRegistry, mintIn) }},
		{&a.SSLPoolOutSigner, func() (solana.PublicKey, error) { return d.SSLPoolSigner(r.poolRegistry, mintOut) }},
		{&a.UserAtaIn, func() (solana.PublicKey, error) { return ssl.AssociatedTokenAddress(user, mintIn) }},
		{&a.UserAtaOut, func() (solana.PublicKey, error) { return ssl.AssociatedTokenAddress(user, mintOut) }},
		{&a.SSLOutMainVault, func() (solana.PublicKey, error) { return d.PoolVault(r.poolRegistry, mintOut) }},
		{&a.SSLOutSecondaryVault, func() (solana.PublicKey, error) { return d.SecondaryVault(r.poolRegistry, mintOut, mintIn) }},
		{&a.SSLInMainVault, func() (solana.PublicKey, error) { return d.PoolVault(r.poolRegistry, mintIn) }},
		{&a.SSLInSecondaryVault, func() (solana.PublicKey, error) { return d.SecondaryVault(r.poolRegistry, mintIn, mintOut) }},
		{&a.SSLOutFeeVault, func() (solana.PublicKey, error) { return d.FeeVault(r.poolRegistry, mintOut) }},
		{&a.OutputTokenPriceHistory, func() (solana.PublicKey, error) { return d.OraclePriceHistory(r.poolRegistry, outOracle) }},
		{&a.InputTokenPriceHistory, func() (solana.PublicKey, error) { return d.OraclePriceHistory(r.poolRegistry, inOracle) }},
	}
	for _, step := range steps {
		addr, err := step.derive()
		if err != nil {
			return nil, err
		}
		*step.dst = addr
	}
	return a, nil
}

// CreateLiquidityAccount resolves the accounts that open a liquidity account for owner.
func (r *Resolver) CreateLiquidityAccount(owner, mint solana.PublicKey) (*ssl.CreateLiquidityAccountAccounts, error) {
	la, err := r.supportedLiquidityAccount(owner, mint)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationCreateLiquidityAccount, err, mint)
	}
	return &ssl.CreateLiquidityAccountAccounts{
		PoolRegistry:     r.poolRegistry,
		Mint:             mint,
		LiquidityAccount: la,
		Owner:            owner,
		EventEmitter:     r.eventEmitter,
		SystemProgram:    ssl.SYSTEM_PROGRAM_ID,
	}, nil
}

// Deposit resolves the deposit accounts. Wrapping is only valid for the native mint.
func (r *Resolver) Deposit(owner, mint solana.PublicKey, useNativeWrapping bool) (*ssl.DepositAccounts, error) {
	accounts, err := r.liquidityMove(owner, mint, useNativeWrapping)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationDeposit, err, mint)
	}
	return accounts, nil
}

// Withdraw mirrors Deposit; unwrapping is only valid for the native mint.
func (r *Resolver) Withdraw(owner, mint solana.PublicKey, unwrapToNative bool) (*ssl.WithdrawAccounts, error) {
	accounts, err := r.liquidityMove(owner, mint, unwrapToNative)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationWithdraw, err, mint)
	}
	return accounts, nil
}

func (r *Resolver) liquidityMove(owner, mint solana.PublicKey, native bool) (*ssl.DepositAccounts, error) {
	if native && !mint.Equals(ssl.WSOL_MINT) {
		return nil, fmt.Errorf("%w: %s", ssl.ErrInvalidNativeWrapRequest, mint)
	}
	la, err := r.supportedLiquidityAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	signer, err := r.deriver.SSLPoolSigner(r.poolRegistry, mint)
	if err != nil {
		return nil, err
	}
	vault, err := ssl.AssociatedTokenAddress(signer, mint)
	if err != nil {
		return nil, err
	}
	feeVault, err := r.deriver.FeeVault(r.poolRegistry, mint)
	if err != nil {
		return nil, err
	}
	userAta, err := ssl.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	return &ssl.DepositAccounts{
		LiquidityAccount: la,
		Owner:            owner,
		UserAta:          userAta,
		SSLPoolSigner:    signer,
		PoolVault:        vault,
		SSLFeeVault:      feeVault,
		PoolRegistry:     r.poolRegistry,
		EventEmitter:     r.eventEmitter,
		TokenProgram:     ssl.TOKEN_PROGRAM_ID,
	}, nil
}

// ClaimFees resolves the accounts for claiming accrued LP fees in mint.
func (r *Resolver) ClaimFees(owner, mint solana.PublicKey) (*ssl.ClaimFeesAccounts, error) {
	accounts, err := r.claimFees(owner, mint)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationClaimFees, err, mint)
	}
	return accounts, nil
}

func (r *Resolver) claimFees(owner, mint solana.PublicKey) (*ssl.ClaimFeesAccounts, error) {
	la, err := r.supportedLiquidityAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	feeVault, err := r.deriver.FeeVault(r.poolRegistry, mint)
	if err != nil {
		return nil, err
	}
	ownerAta, err := ssl.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	return &ssl.ClaimFeesAccounts{
		PoolRegistry:     r.poolRegistry,
		Owner:            owner,
		SSLFeeVault:      feeVault,
		OwnerAta:         ownerAta,
		LiquidityAccount: la,
		EventEmitter:     r.eventEmitter,
		TokenProgram:     ssl.TOKEN_PROGRAM_ID,
	}, nil
}

// CloseLiquidityAccount resolves the close accounts. Rent goes to the owner
// when rentRecipient is zero.
func (r *Resolver) CloseLiquidityAccount(owner, mint, rentRecipient solana.PublicKey) (*ssl.CloseLiquidityAccountAccounts, error) {
	la, err := r.supportedLiquidityAccount(owner, mint)
	if err != nil {
		return nil, ssl.NewOpError(pkg.OperationCloseLiquidityAccount, err, mint)
	}
	if rentRecipient.IsZero() {
		rentRecipient = owner
	}
	return &ssl.CloseLiquidityAccountAccounts{
		Owner:            owner,
		RentRecipient:    rentRecipient,
		LiquidityAccount: la,
		EventEmitter:     r.eventEmitter,
		SystemProgram:    ssl.SYSTEM_PROGRAM_ID,
	}, nil
}
