package ssl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func writeLE(t *testing.T, buf *bytes.Buffer, values ...any) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
	}
}

func TestLiquidityAccountDecode(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(LiquidityAccountDiscriminator[:])
	buf.Write(MAINNET_POOL_REGISTRY[:])
	buf.Write(USDC_MINT[:])
	buf.Write(testOwner[:])
	writeLE(t, buf, uint64(5_000_000), uint64(1234), int64(1_700_000_000), uint64(77), int64(1_690_000_000))
	buf.Write(make([]byte, 128))
	require.Equal(t, DISCRIMINATOR_SIZE+LIQUIDITY_ACCOUNT_SIZE, buf.Len())

	var la LiquidityAccount
	require.NoError(t, la.Decode(buf.Bytes()))
	assert.Equal(t, MAINNET_POOL_REGISTRY, la.PoolRegistry)
	assert.Equal(t, USDC_MINT, la.Mint)
	assert.Equal(t, testOwner, la.Owner)
	assert.Equal(t, uint64(5_000_000), la.AmountDeposited)
	assert.Equal(t, uint64(1234), la.LastObservedTap)
	assert.Equal(t, int64(1_700_000_000), la.LastClaimed)
	assert.Equal(t, uint64(77), la.TotalEarned)
	assert.Equal(t, int64(1_690_000_000), la.CreatedAt)

	encoded, err := la.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), encoded)
}

func TestDecodeRejectsForeignAccounts(t *testing.T) {
	data := make([]byte, DISCRIMINATOR_SIZE+POOL_REGISTRY_SIZE)
	copy(data, PairAccountDiscriminator[:])

	var la LiquidityAccount
	assert.True(t, errors.Is(la.Decode(data), ErrInvalidAccountData))
	var reg PoolRegistry
	assert.True(t, errors.Is(reg.Decode(data), ErrInvalidAccountData))
	var pair Pair
	assert.True(t, errors.Is(pair.Decode(data[:10]), ErrInvalidAccountData))
	var history OraclePriceHistory
	assert.True(t, errors.Is(history.Decode(data), ErrInvalidAccountData))
}

func TestPairDecode(t *testing.T) {
	lo, hi := NormalizeMintOrder(USDC_MINT, USDT_MINT)
	buf := new(bytes.Buffer)
	buf.Write(PairAccountDiscriminator[:])
	buf.Write(MAINNET_POOL_REGISTRY[:])
	buf.Write(lo[:])
	buf.Write(hi[:])
	buf.Write(key(1).Bytes())
	buf.Write(key(2).Bytes())
	writeLE(t, buf, uint16(10), uint16(25))

	volume := uint128.From64(math.MaxUint64).Add64(1)
	var raw [16]byte
	writeLE(t, buf, uint64(100), uint64(0), uint64(200), uint64(0))
	volume.PutBytes(raw[:])
	buf.Write(raw[:])
	writeLE(t, buf, uint64(3), uint64(0), uint64(4), uint64(0))
	buf.Write(make([]byte, 128))
	require.Equal(t, DISCRIMINATOR_SIZE+PAIR_SIZE, buf.Len())

	var pair Pair
	require.NoError(t, pair.Decode(buf.Bytes()))
	assert.Equal(t, [2]solana.PublicKey{lo, hi}, pair.Mints)
	assert.Equal(t, [2]solana.PublicKey{key(1), key(2)}, pair.FeeCollector)
	assert.Equal(t, [2]uint16{10, 25}, pair.FeeRates)
	assert.Equal(t, uint128.From64(100), pair.TotalFeesGeneratedNative[0])
	assert.Equal(t, uint128.From64(200), pair.TotalFeesGeneratedNative[1])
	assert.Equal(t, volume, pair.TotalHistoricalVolume)
	assert.Equal(t, uint128.From64(4), pair.TotalInternallySwapped[1])

	encoded, err := pair.Encode()
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), encoded)
}

func TestPairFeeAttrsFollowOutputMint(t *testing.T) {
	pair := Pair{
		Mints:        [2]solana.PublicKey{key(10), key(20)},
		FeeCollector: [2]solana.PublicKey{key(11), key(21)},
		FeeRates:     [2]uint16{5, 30},
	}

	attrs, err := pair.FeeAttrs(key(10), key(20))
	require.NoError(t, err)
	assert.Equal(t, FeeAttrs{RateBps: 30, Destination: key(21)}, attrs)

	attrs, err = pair.FeeAttrs(key(20), key(10))
	require.NoError(t, err)
	assert.Equal(t, FeeAttrs{RateBps: 5, Destination: key(11)}, attrs)

	_, err = pair.FeeAttrs(key(10), key(99))
	assert.True(t, errors.Is(err, ErrFeeDestinationNotFound))
}

func TestPoolRegistryLayout(t *testing.T) {
	reg := PoolRegistry{
		Admin:        key(1),
		Seed:         testAuthority,
		SuspendAdmin: key(2),
		Bump:         254,
		NumEntries:   2,
	}
	reg.CategoricalPoolTokenRatios[3] = 700
	reg.Entries[0] = SSLPool{
		Status:                   SSLPoolStatusActive,
		AssetType:                AssetTypeStable,
		Mint:                     USDC_MINT,
		MintDecimals:             6,
		Bump:                     253,
		TotalAccumulatedLpReward: 9_000,
		TotalLiquidityDeposits:   3_000_000,
		OraclePriceHistories:     [3]solana.PublicKey{key(5), {}, {}},
		MathParams:               SSLMathParams{MeanWindow: 24, StdWindow: 12, FixedPriceDistance: 10, LatestPriceWeight: 50, StdWeight: 1_000_000},
	}
	reg.Entries[1] = SSLPool{Status: SSLPoolStatusSuspended, Mint: WSOL_MINT, MintDecimals: 9}

	data := reg.Encode()
	require.Len(t, data, DISCRIMINATOR_SIZE+POOL_REGISTRY_SIZE)

	// Fixed offsets of the zero-copy layout.
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[8+104:]))
	entry := data[8+240:]
	assert.Equal(t, USDC_MINT.Bytes(), entry[8:40])
	assert.Equal(t, uint64(9_000), binary.LittleEndian.Uint64(entry[48:56]))
	assert.Equal(t, uint64(3_000_000), binary.LittleEndian.Uint64(entry[56:64]))
	assert.Equal(t, WSOL_MINT.Bytes(), data[8+240+280+8:8+240+280+40])

	var decoded PoolRegistry
	require.NoError(t, decoded.Decode(data))
	assert.Equal(t, reg, decoded)

	pool, err := decoded.FindPool(USDC_MINT)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_000), pool.TotalAccumulatedLpReward)

	_, err = decoded.FindPool(USDT_MINT)
	assert.True(t, errors.Is(err, ErrPoolNotFound))
	_, err = decoded.FindPool(solana.PublicKey{})
	assert.True(t, errors.Is(err, ErrPoolNotFound))

	active := decoded.ActivePools()
	require.Len(t, active, 1)
	assert.Equal(t, USDC_MINT, active[0].Mint)
}

func TestOraclePriceHistoryDecode(t *testing.T) {
	data := make([]byte, DISCRIMINATOR_SIZE+ORACLE_PRICE_HISTORY_SIZE)
	copy(data, OraclePriceHistoryAccountDiscriminator[:])
	body := data[DISCRIMINATOR_SIZE:]
	body[0] = byte(OracleTypePyth)
	body[1] = DEFAULT_MINIMUM_ELAPSED_SLOTS
	body[2] = 50
	copy(body[8:40], MAINNET_POOL_REGISTRY[:])
	copy(body[40:72], testSolOracle[:])
	copy(body[72:104], WSOL_MINT[:])
	binary.LittleEndian.PutUint64(body[104:112], 257)

	// 257 updates put the newest entry at index 1
	entry := body[240+HISTORICAL_PRICE_SIZE : 240+2*HISTORICAL_PRICE_SIZE]
	binary.LittleEndian.PutUint64(entry[0:8], uint64(14_512_345))
	binary.LittleEndian.PutUint32(entry[8:12], 5)
	binary.LittleEndian.PutUint32(entry[12:16], math.Float32bits(0.0069))
	binary.LittleEndian.PutUint64(entry[16:24], 1_000)

	var history OraclePriceHistory
	require.NoError(t, history.Decode(data))
	assert.Equal(t, OracleTypePyth, history.OracleType)
	assert.Equal(t, "Pyth", history.OracleType.String())
	assert.Equal(t, testSolOracle, history.OracleAddress)
	assert.Equal(t, WSOL_MINT, history.Mint)

	latest := history.Latest()
	assert.Equal(t, uint64(1_000), latest.Slot)
	assert.Equal(t, "145.123450000000000000", latest.Price().String())

	assert.False(t, history.IsStale(1_050))
	assert.True(t, history.IsStale(1_051))
}

func TestHistoricalPriceExtremeScale(t *testing.T) {
	price := HistoricalPrice{Num: 5, Scale: 20}
	assert.Equal(t, "0.000000000000000000", price.Price().String())
	price = HistoricalPrice{Num: 5_000, Scale: 20}
	assert.Equal(t, "0.000000000000000050", price.Price().String())
}
