package ssl

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// GooseFX SSLv2 Program ID
	SSL_V2_PROGRAM_ID = solana.MustPublicKeyFromBase58("GFXsSL5sSaDfNFQUYsHekbWBW1TsFdjDYzACh62tEHxn")

	// Pool registry used by the mainnet deployment
	MAINNET_POOL_REGISTRY = solana.MustPublicKeyFromBase58("F451mjRqGEu1azbj46v4FuMEt1CacaPHQKUHzuTqKp4R")

	// Standard Solana Program IDs
	TOKEN_PROGRAM_ID  = solana.TokenProgramID
	SYSTEM_PROGRAM_ID = solana.SystemProgramID
)

// Well-known mints
var (
	WSOL_MINT    = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDC_MINT    = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDT_MINT    = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	MSOL_MINT    = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
	JITOSOL_MINT = solana.MustPublicKeyFromBase58("J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn")
	BONK_MINT    = solana.MustPublicKeyFromBase58("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
	GOFX_MINT    = solana.MustPublicKeyFromBase58("GFX1ZjR2P15tmrSwow6FjyDYcEkoFb4p4gJCpLBjaxHD")
)

// Account sizes, discriminator excluded
const (
	DISCRIMINATOR_SIZE = 8

	POOL_REGISTRY_SIZE        = 9200
	SSL_POOL_SIZE             = 280
	PAIR_SIZE                 = 372
	LIQUIDITY_ACCOUNT_SIZE    = 264
	ORACLE_PRICE_HISTORY_SIZE = 6384
	HISTORICAL_PRICE_SIZE     = 24

	MAX_SSL_POOLS_PER_REGISTRY    = 32
	MAX_NUM_ORACLES_PER_MINT      = 3
	NUM_PRICE_HISTORY_ENTRIES     = 256
	DEFAULT_MINIMUM_ELAPSED_SLOTS = 11

	// Fee rates are basis points
	BPS_DENOMINATOR = 10000
)

// Instruction discriminators, sha256("global:<name>")[:8]
var (
	SwapDiscriminator                   = [8]byte{248, 198, 158, 145, 225, 117, 135, 200}
	DepositDiscriminator                = [8]byte{242, 35, 198, 137, 82, 225, 242, 182}
	WithdrawDiscriminator               = [8]byte{183, 18, 70, 156, 148, 109, 161, 34}
	ClaimFeesDiscriminator              = [8]byte{82, 251, 233, 156, 12, 52, 184, 202}
	CreateLiquidityAccountDiscriminator = [8]byte{112, 19, 213, 238, 68, 113, 146, 38}
	CloseLiquidityAccountDiscriminator  = [8]byte{175, 243, 103, 208, 220, 169, 43, 193}
)

// Account discriminators, sha256("account:<Name>")[:8]
var (
	PoolRegistryAccountDiscriminator       = [8]byte{113, 149, 124, 60, 130, 240, 64, 157}
	PairAccountDiscriminator               = [8]byte{85, 72, 49, 176, 182, 228, 141, 82}
	LiquidityAccountDiscriminator          = [8]byte{190, 123, 167, 176, 248, 51, 215, 26}
	OraclePriceHistoryAccountDiscriminator = [8]byte{180, 252, 163, 223, 218, 49, 27, 242}
)
