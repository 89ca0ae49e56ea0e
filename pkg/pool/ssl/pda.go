package ssl

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SeedTag is the literal prefix of a program-derived address seed list.
type SeedTag string

const (
	SeedPoolRegistry       SeedTag = "pool_registry"
	SeedPair               SeedTag = "pair"
	SeedOraclePriceHistory SeedTag = "oracle_price_history"
	SeedLiquidityAccount   SeedTag = "liquidity_account"
	SeedSSLPoolSigner      SeedTag = "ssl_pool"
	SeedEventEmitter       SeedTag = "event"
)

// Deriver computes the program-derived addresses of one SSLv2 deployment.
type Deriver struct {
	ProgramID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

// Derive prepends the tag literal to inputs and finds the canonical-bump address.
func (d Deriver) Derive(tag SeedTag, inputs ...solana.PublicKey) (solana.PublicKey, error) {
	seeds := make([][]byte, 0, len(inputs)+1)
	seeds = append(seeds, []byte(tag))
	for _, in := range inputs {
		seeds = append(seeds, in.Bytes())
	}
	addr, _, err := solana.FindProgramAddress(seeds, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s: %v", ErrAddressDerivationExhausted, tag, err)
	}
	return addr, nil
}

func (d Deriver) PoolRegistry(authority solana.PublicKey) (solana.PublicKey, error) {
	return d.Derive(SeedPoolRegistry, authority)
}

// Pair derives the pair address. Mint order does not matter.
func (d Deriver) Pair(poolRegistry, mintA, mintB solana.PublicKey) (solana.PublicKey, error) {
	lo, hi := NormalizeMintOrder(mintA, mintB)
	return d.Derive(SeedPair, poolRegistry, lo, hi)
}

func (d Deriver) OraclePriceHistory(poolRegistry, oracle solana.PublicKey) (solana.PublicKey, error) {
	return d.Derive(SeedOraclePriceHistory, poolRegistry, oracle)
}

func (d Deriver) LiquidityAccount(poolRegistry, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	return d.Derive(SeedLiquidityAccount, poolRegistry, mint, owner)
}

func (d Deriver) SSLPoolSigner(poolRegistry, mint solana.PublicKey) (solana.PublicKey, error) {
	return d.Derive(SeedSSLPoolSigner, poolRegistry, mint)
}

func (d Deriver) EventEmitter() (solana.PublicKey, error) {
	return d.Derive(SeedEventEmitter)
}

// PoolVault is the main vault of the pool for mint: the signer's associated account in mint.
func (d Deriver) PoolVault(poolRegistry, mint solana.PublicKey) (solana.PublicKey, error) {
	return d.SecondaryVault(poolRegistry, mint, mint)
}

// SecondaryVault is the signer of mainMint's associated account in secondaryMint.
func (d Deriver) SecondaryVault(poolRegistry, mainMint, secondaryMint solana.PublicKey) (solana.PublicKey, error) {
	signer, err := d.SSLPoolSigner(poolRegistry, mainMint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return AssociatedTokenAddress(signer, secondaryMint)
}

// FeeVault is owned by the pool registry itself.
func (d Deriver) FeeVault(poolRegistry, mint solana.PublicKey) (solana.PublicKey, error) {
	return AssociatedTokenAddress(poolRegistry, mint)
}

// AssociatedTokenAddress derives ATA(owner, token program, mint).
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: associated token account: %v", ErrAddressDerivationExhausted, err)
	}
	return addr, nil
}

// NormalizeMintOrder returns the two mints in ascending byte order.
func NormalizeMintOrder(mintA, mintB solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(mintA.Bytes(), mintB.Bytes()) <= 0 {
		return mintA, mintB
	}
	return mintB, mintA
}
