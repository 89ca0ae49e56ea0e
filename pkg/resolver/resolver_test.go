package resolver

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtdvccc/sslv2-go/pkg"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
)

var (
	authority  = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	owner      = solana.MustPublicKeyFromBase58("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	usdcOracle = solana.MustPublicKeyFromBase58("Gnt27xtC473ZT2Mw5u8wZ68Z3gULkSTb5DuxJy7eJotD")
	usdtOracle = solana.MustPublicKeyFromBase58("3vxLXJqLqF3JG5TCbYycbKWRBbCJQLxQmBGCkyqEEefL")
	solOracle  = solana.MustPublicKeyFromBase58("H6ARHf6YXhGYeQfUzQNGk6rDNnLBQKrenN712K4AQJEG")
	usdcFees   = solana.MustPublicKeyFromBase58("GFX1ZjR2P15tmrSwow6FjyDYcEkoFb4p4gJCpLBjaxHD")
	usdtFees   = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	reg, err := registry.New(authority, []registry.Token{
		{Name: "USDC", Mint: ssl.USDC_MINT, Oracle: usdcOracle, Decimals: 6},
		{Name: "USDT", Mint: ssl.USDT_MINT, Oracle: usdtOracle, Decimals: 6},
		{Name: "SOL", Mint: ssl.WSOL_MINT, Oracle: solOracle, Decimals: 9},
	}, []registry.Pair{{
		Mints:           [2]solana.PublicKey{ssl.USDC_MINT, ssl.USDT_MINT},
		FeeDestinations: [2]solana.PublicKey{usdcFees, usdtFees},
		FeeRateBps:      10,
	}})
	require.NoError(t, err)
	res, err := New(reg, ssl.SSL_V2_PROGRAM_ID)
	require.NoError(t, err)
	return res
}

func mustATA(t *testing.T, owner, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	return ata
}

func TestPoolRegistryFromAuthority(t *testing.T) {
	res := newTestResolver(t)
	assert.Equal(t, "51wAd1jX34XFMsWDV4t59QWwzBhecPhNyBEcVHwvSSVa", res.PoolRegistry().String())
	assert.Equal(t, ssl.SSL_V2_PROGRAM_ID, res.ProgramID())
}

func TestSwapResolvesEveryAccount(t *testing.T) {
	res := newTestResolver(t)
	d := res.Deriver()
	reg := res.PoolRegistry()

	a, err := res.Swap(owner, ssl.USDC_MINT, ssl.USDT_MINT)
	require.NoError(t, err)

	inSigner, err := d.SSLPoolSigner(reg, ssl.USDC_MINT)
	require.NoError(t, err)
	outSigner, err := d.SSLPoolSigner(reg, ssl.USDT_MINT)
	require.NoError(t, err)
	pair, err := d.Pair(reg, ssl.USDT_MINT, ssl.USDC_MINT)
	require.NoError(t, err)
	inHistory, err := d.OraclePriceHistory(reg, usdcOracle)
	require.NoError(t, err)
	outHistory, err := d.OraclePriceHistory(reg, usdtOracle)
	require.NoError(t, err)
	emitter, err := d.EventEmitter()
	require.NoError(t, err)

	want := &ssl.SwapAccounts{
		Pair:                    pair,
		PoolRegistry:            reg,
		UserWallet:              owner,
		SSLPoolInSigner:         inSigner,
		SSLPoolOutSigner:        outSigner,
		UserAtaIn:               mustATA(t, owner, ssl.USDC_MINT),
		UserAtaOut:              mustATA(t, owner, ssl.USDT_MINT),
		SSLOutMainVault:         mustATA(t, outSigner, ssl.USDT_MINT),
		SSLOutSecondaryVault:    mustATA(t, outSigner, ssl.USDC_MINT),
		SSLInMainVault:          mustATA(t, inSigner, ssl.USDC_MINT),
		SSLInSecondaryVault:     mustATA(t, inSigner, ssl.USDT_MINT),
		SSLOutFeeVault:          mustATA(t, reg, ssl.USDT_MINT),
		FeeDestination:          usdtFees,
		OutputTokenPriceHistory: outHistory,
		OutputTokenOracle:       usdtOracle,
		InputTokenPriceHistory:  inHistory,
		InputTokenOracle:        usdcOracle,
		EventEmitter:            emitter,
		TokenProgram:            solana.TokenProgramID,
	}
	assert.Equal(t, want, a)

	reverse, err := res.Swap(owner, ssl.USDT_MINT, ssl.USDC_MINT)
	require.NoError(t, err)
	assert.Equal(t, usdcFees, reverse.FeeDestination)
	assert.Equal(t, a.Pair, reverse.Pair)
	assert.Equal(t, a.SSLInMainVault, reverse.SSLOutMainVault)
}

func TestSwapUnsupportedPair(t *testing.T) {
	res := newTestResolver(t)

	a, err := res.Swap(owner, ssl.USDC_MINT, ssl.WSOL_MINT)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.True(t, errors.Is(err, ssl.ErrUnsupportedPair))

	var opErr *ssl.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, pkg.OperationSwap, opErr.Op)
	assert.Equal(t, []solana.PublicKey{ssl.USDC_MINT, ssl.WSOL_MINT}, opErr.Mints)
	assert.Contains(t, err.Error(), ssl.WSOL_MINT.String())

	_, err = res.Swap(owner, ssl.USDC_MINT, ssl.USDC_MINT)
	assert.True(t, errors.Is(err, ssl.ErrUnsupportedPair))
}

func TestDepositAndWithdraw(t *testing.T) {
	res := newTestResolver(t)
	reg := res.PoolRegistry()

	dep, err := res.Deposit(owner, ssl.USDC_MINT, false)
	require.NoError(t, err)
	assert.Equal(t, "HS2JzJaewwhHTTYy55jEZ3XL4tDiCzHJgRE3ck4Nknt1", dep.LiquidityAccount.String())
	assert.Equal(t, "5rmtRfi6SNoi1iVMuaA8X4XDk2GZdTnhRoAboVzMtSLK", dep.SSLPoolSigner.String())
	assert.Equal(t, "G6DgUynciXouWWyaj7Zg7xYWZSjsJc3Emwc2DgUmhFG9", dep.PoolVault.String())
	assert.Equal(t, "2JTppx3koD5oCd5RiwBW7KDjn4V29RXAQ9jaR5FMN9uD", dep.SSLFeeVault.String())
	assert.Equal(t, mustATA(t, owner, ssl.USDC_MINT), dep.UserAta)
	assert.Equal(t, reg, dep.PoolRegistry)
	assert.Equal(t, owner, dep.Owner)

	wd, err := res.Withdraw(owner, ssl.USDC_MINT, false)
	require.NoError(t, err)
	assert.Equal(t, dep, wd)

	native, err := res.Deposit(owner, ssl.WSOL_MINT, true)
	require.NoError(t, err)
	assert.Equal(t, "82q1Nn1an7JxraeHwfi9rH2Shja1gCPXtxSTCCzDE6wM", native.UserAta.String())
}

func TestNativeWrapRequiresWrappedSol(t *testing.T) {
	res := newTestResolver(t)

	_, err := res.Deposit(owner, ssl.USDC_MINT, true)
	assert.True(t, errors.Is(err, ssl.ErrInvalidNativeWrapRequest))
	var opErr *ssl.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, pkg.OperationDeposit, opErr.Op)

	_, err = res.Withdraw(owner, ssl.USDT_MINT, true)
	assert.True(t, errors.Is(err, ssl.ErrInvalidNativeWrapRequest))
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, pkg.OperationWithdraw, opErr.Op)
}

func TestClaimCreateAndClose(t *testing.T) {
	res := newTestResolver(t)
	la, err := res.LiquidityAccount(owner, ssl.USDC_MINT)
	require.NoError(t, err)

	claim, err := res.ClaimFees(owner, ssl.USDC_MINT)
	require.NoError(t, err)
	assert.Equal(t, la, claim.LiquidityAccount)
	assert.Equal(t, mustATA(t, owner, ssl.USDC_MINT), claim.OwnerAta)
	assert.Equal(t, mustATA(t, res.PoolRegistry(), ssl.USDC_MINT), claim.SSLFeeVault)

	create, err := res.CreateLiquidityAccount(owner, ssl.USDC_MINT)
	require.NoError(t, err)
	assert.Equal(t, la, create.LiquidityAccount)
	assert.Equal(t, ssl.USDC_MINT, create.Mint)
	assert.Equal(t, solana.SystemProgramID, create.SystemProgram)

	closeAccounts, err := res.CloseLiquidityAccount(owner, ssl.USDC_MINT, solana.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, owner, closeAccounts.RentRecipient)
	assert.Equal(t, la, closeAccounts.LiquidityAccount)

	closeAccounts, err = res.CloseLiquidityAccount(owner, ssl.USDC_MINT, authority)
	require.NoError(t, err)
	assert.Equal(t, authority, closeAccounts.RentRecipient)
}

func TestUnknownMintRejected(t *testing.T) {
	res := newTestResolver(t)
	bonk := ssl.BONK_MINT

	resolvers := map[pkg.Operation]func() (any, error){
		pkg.OperationDeposit:   func() (any, error) { return res.Deposit(owner, bonk, false) },
		pkg.OperationWithdraw:  func() (any, error) { return res.Withdraw(owner, bonk, false) },
		pkg.OperationClaimFees: func() (any, error) { return res.ClaimFees(owner, bonk) },
		pkg.OperationCreateLiquidityAccount: func() (any, error) {
			return res.CreateLiquidityAccount(owner, bonk)
		},
		pkg.OperationCloseLiquidityAccount: func() (any, error) {
			return res.CloseLiquidityAccount(owner, bonk, solana.PublicKey{})
		},
	}
	for op, resolve := range resolvers {
		t.Run(string(op), func(t *testing.T) {
			accounts, err := resolve()
			require.Error(t, err)
			assert.Nil(t, accounts)
			assert.True(t, errors.Is(err, ssl.ErrUnknownMint))

			var opErr *ssl.OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, op, opErr.Op)
			assert.Equal(t, []solana.PublicKey{bonk}, opErr.Mints)
		})
	}
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(nil, ssl.SSL_V2_PROGRAM_ID)
	assert.Error(t, err)
}
