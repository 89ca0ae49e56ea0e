package ssl

import (
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthority = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	testOwner     = solana.MustPublicKeyFromBase58("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	testSolOracle = solana.MustPublicKeyFromBase58("H6ARHf6YXhGYeQfUzQNGk6rDNnLBQKrenN712K4AQJEG")
)

func isOnCurve(pk solana.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

func TestDeriverFixtures(t *testing.T) {
	d := NewDeriver(SSL_V2_PROGRAM_ID)

	registry, err := d.PoolRegistry(testAuthority)
	require.NoError(t, err)
	assert.Equal(t, "51wAd1jX34XFMsWDV4t59QWwzBhecPhNyBEcVHwvSSVa", registry.String())

	tests := []struct {
		name   string
		derive func() (solana.PublicKey, error)
		want   string
	}{
		{
			name:   "pair",
			derive: func() (solana.PublicKey, error) { return d.Pair(registry, USDC_MINT, WSOL_MINT) },
			want:   "DXFKsakPFG5zzsniJtgnxdVZfGGo41EsYBSa94grtEFH",
		},
		{
			name:   "liquidity account",
			derive: func() (solana.PublicKey, error) { return d.LiquidityAccount(registry, USDC_MINT, testOwner) },
			want:   "HS2JzJaewwhHTTYy55jEZ3XL4tDiCzHJgRE3ck4Nknt1",
		},
		{
			name:   "ssl pool signer",
			derive: func() (solana.PublicKey, error) { return d.SSLPoolSigner(registry, USDC_MINT) },
			want:   "5rmtRfi6SNoi1iVMuaA8X4XDk2GZdTnhRoAboVzMtSLK",
		},
		{
			name:   "pool vault",
			derive: func() (solana.PublicKey, error) { return d.PoolVault(registry, USDC_MINT) },
			want:   "G6DgUynciXouWWyaj7Zg7xYWZSjsJc3Emwc2DgUmhFG9",
		},
		{
			name:   "fee vault",
			derive: func() (solana.PublicKey, error) { return d.FeeVault(registry, USDC_MINT) },
			want:   "2JTppx3koD5oCd5RiwBW7KDjn4V29RXAQ9jaR5FMN9uD",
		},
		{
			name:   "event emitter",
			derive: d.EventEmitter,
			want:   "EoApD8hkDePGpfMwA9rpwwUGJuMZ7u2wK6z9z2pk7EoM",
		},
		{
			name:   "oracle price history",
			derive: func() (solana.PublicKey, error) { return d.OraclePriceHistory(registry, testSolOracle) },
			want:   "3VUyvnJiC3Fm3Rrr943rJENo1ghNQAh8iAsEuJfsA4RX",
		},
		{
			name:   "owner wsol ata",
			derive: func() (solana.PublicKey, error) { return AssociatedTokenAddress(testOwner, WSOL_MINT) },
			want:   "82q1Nn1an7JxraeHwfi9rH2Shja1gCPXtxSTCCzDE6wM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.derive()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, isOnCurve(got), "derived address must be off the ed25519 curve")

			again, err := tt.derive()
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestPairAddressIgnoresMintOrder(t *testing.T) {
	d := NewDeriver(SSL_V2_PROGRAM_ID)
	forward, err := d.Pair(MAINNET_POOL_REGISTRY, USDC_MINT, USDT_MINT)
	require.NoError(t, err)
	backward, err := d.Pair(MAINNET_POOL_REGISTRY, USDT_MINT, USDC_MINT)
	require.NoError(t, err)
	assert.Equal(t, forward, backward)

	lo, hi := NormalizeMintOrder(USDT_MINT, USDC_MINT)
	direct, err := d.Derive(SeedPair, MAINNET_POOL_REGISTRY, lo, hi)
	require.NoError(t, err)
	assert.Equal(t, forward, direct)
}

func TestNormalizeMintOrder(t *testing.T) {
	lo, hi := NormalizeMintOrder(USDC_MINT, WSOL_MINT)
	assert.Equal(t, WSOL_MINT, lo)
	assert.Equal(t, USDC_MINT, hi)

	lo, hi = NormalizeMintOrder(WSOL_MINT, USDC_MINT)
	assert.Equal(t, WSOL_MINT, lo)
	assert.Equal(t, USDC_MINT, hi)
}

func TestSecondaryVaultUsesMainMintSigner(t *testing.T) {
	d := NewDeriver(SSL_V2_PROGRAM_ID)
	signer, err := d.SSLPoolSigner(MAINNET_POOL_REGISTRY, USDC_MINT)
	require.NoError(t, err)
	want, _, err := solana.FindAssociatedTokenAddress(signer, WSOL_MINT)
	require.NoError(t, err)

	got, err := d.SecondaryVault(MAINNET_POOL_REGISTRY, USDC_MINT, WSOL_MINT)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDerivationsDependOnProgramID(t *testing.T) {
	a, err := NewDeriver(SSL_V2_PROGRAM_ID).PoolRegistry(testAuthority)
	require.NoError(t, err)
	b, err := NewDeriver(solana.SystemProgramID).PoolRegistry(testAuthority)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveRejectsOversizedSeed(t *testing.T) {
	// A seed longer than 32 bytes can never produce an address.
	tag := SeedTag("this seed literal is far longer than thirty two bytes")
	_, err := NewDeriver(SSL_V2_PROGRAM_ID).Derive(tag)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressDerivationExhausted))
}
