package ssl

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SSLPoolStatus mirrors the on-chain status byte of a registry entry
type SSLPoolStatus uint8

const (
	SSLPoolStatusUninitialized SSLPoolStatus = iota
	SSLPoolStatusActive
	SSLPoolStatusSuspended
	SSLPoolStatusInvalid
)

func (s SSLPoolStatus) String() string {
	switch s {
	case SSLPoolStatusUninitialized:
		return "Uninitialized"
	case SSLPoolStatusActive:
		return "Active"
	case SSLPoolStatusSuspended:
		return "Suspended"
	default:
		return "Invalid"
	}
}

// AssetType is inert on-chain but still part of the layout
type AssetType uint8

const (
	AssetTypeUninitialized AssetType = iota
	AssetTypeBlueChip
	AssetTypeVolatile
	AssetTypeStable
	AssetTypeInvalid
)

// SSLMathParams is the per-pool pricing configuration (56 bytes)
type SSLMathParams struct {
	MeanWindow           uint8
	StdWindow            uint8
	FixedPriceDistance   uint16
	MinimumPriceDistance uint16
	LatestPriceWeight    uint16
	StdWeight            uint32
}

// SSLPool is one 280-byte entry of the pool registry.
type SSLPool struct {
	Status       SSLPoolStatus
	AssetType    AssetType
	Mint         solana.PublicKey
	MintDecimals uint8
	Bump         uint8

	// Running sum of LP rewards distributed to the pool, the accumulator.
	TotalAccumulatedLpReward uint64
	TotalLiquidityDeposits   uint64

	OraclePriceHistories [MAX_NUM_ORACLES_PER_MINT]solana.PublicKey
	MathParams           SSLMathParams
}

// PoolRegistry holds every SSL pool created under one admin.
type PoolRegistry struct {
	Admin                      solana.PublicKey
	Seed                       solana.PublicKey
	SuspendAdmin               solana.PublicKey
	Bump                       uint8
	NumEntries                 uint32
	CategoricalPoolTokenRatios [16]uint16
	Entries                    [MAX_SSL_POOLS_PER_REGISTRY]SSLPool
}

// Decode parses the zero-copy account, discriminator included.
func (r *PoolRegistry) Decode(data []byte) error {
	if len(data) < DISCRIMINATOR_SIZE+POOL_REGISTRY_SIZE {
		return fmt.Errorf("%w: pool registry too short: %d bytes", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], PoolRegistryAccountDiscriminator[:]) {
		return fmt.Errorf("%w: not a pool registry account", ErrInvalidAccountData)
	}
	offset := DISCRIMINATOR_SIZE

	r.Admin = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	r.Seed = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	r.SuspendAdmin = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	r.Bump = data[offset]
	offset += 1 + 7
	r.NumEntries = binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4 + 4
	for i := range r.CategoricalPoolTokenRatios {
		r.CategoricalPoolTokenRatios[i] = binary.LittleEndian.Uint16(data[offset : offset+2])
		offset += 2
	}
	// _space
	offset += 96

	for i := range r.Entries {
		r.Entries[i].decode(data[offset : offset+SSL_POOL_SIZE])
		offset += SSL_POOL_SIZE
	}
	return nil
}

// Encode is the inverse of Decode. Padding and reserved space are zeroed.
func (r *PoolRegistry) Encode() []byte {
	data := make([]byte, DISCRIMINATOR_SIZE+POOL_REGISTRY_SIZE)
	copy(data, PoolRegistryAccountDiscriminator[:])
	offset := DISCRIMINATOR_SIZE

	copy(data[offset:], r.Admin[:])
	offset += 32
	copy(data[offset:], r.Seed[:])
	offset += 32
	copy(data[offset:], r.SuspendAdmin[:])
	offset += 32
	data[offset] = r.Bump
	offset += 1 + 7
	binary.LittleEndian.PutUint32(data[offset:], r.NumEntries)
	offset += 4 + 4
	for _, ratio := range r.CategoricalPoolTokenRatios {
		binary.LittleEndian.PutUint16(data[offset:], ratio)
		offset += 2
	}
	offset += 96

	for i := range r.Entries {
		r.Entries[i].encode(data[offset : offset+SSL_POOL_SIZE])
		offset += SSL_POOL_SIZE
	}
	return data
}

// FindPool returns the entry for mint.
func (r *PoolRegistry) FindPool(mint solana.PublicKey) (*SSLPool, error) {
	if mint.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, mint)
	}
	for i := range r.Entries {
		if r.Entries[i].Mint.Equals(mint) {
			return &r.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, mint)
}

// ActivePools lists initialized entries in registry order.
func (r *PoolRegistry) ActivePools() []SSLPool {
	var pools []SSLPool
	for _, entry := range r.Entries {
		if entry.Status == SSLPoolStatusActive {
			pools = append(pools, entry)
		}
	}
	return pools
}

func (p *SSLPool) decode(data []byte) {
	p.Status = SSLPoolStatus(data[0])
	p.AssetType = AssetType(data[1])
	p.Mint = solana.PublicKeyFromBytes(data[8:40])
	p.MintDecimals = data[40]
	p.Bump = data[41]
	p.TotalAccumulatedLpReward = binary.LittleEndian.Uint64(data[48:56])
	p.TotalLiquidityDeposits = binary.LittleEndian.Uint64(data[56:64])
	offset := 64
	for i := range p.OraclePriceHistories {
		p.OraclePriceHistories[i] = solana.PublicKeyFromBytes(data[offset : offset+32])
		offset += 32
	}

	m := data[160:216]
	p.MathParams = SSLMathParams{
		MeanWindow:           m[0],
		StdWindow:            m[1],
		FixedPriceDistance:   binary.LittleEndian.Uint16(m[2:4]),
		MinimumPriceDistance: binary.LittleEndian.Uint16(m[4:6]),
		LatestPriceWeight:    binary.LittleEndian.Uint16(m[8:10]),
		StdWeight:            binary.LittleEndian.Uint32(m[16:20]),
	}
}

func (p *SSLPool) encode(data []byte) {
	data[0] = byte(p.Status)
	data[1] = byte(p.AssetType)
	copy(data[8:40], p.Mint[:])
	data[40] = p.MintDecimals
	data[41] = p.Bump
	binary.LittleEndian.PutUint64(data[48:56], p.TotalAccumulatedLpReward)
	binary.LittleEndian.PutUint64(data[56:64], p.TotalLiquidityDeposits)
	offset := 64
	for _, history := range p.OraclePriceHistories {
		copy(data[offset:offset+32], history[:])
		offset += 32
	}

	m := data[160:216]
	m[0] = p.MathParams.MeanWindow
	m[1] = p.MathParams.StdWindow
	binary.LittleEndian.PutUint16(m[2:4], p.MathParams.FixedPriceDistance)
	binary.LittleEndian.PutUint16(m[4:6], p.MathParams.MinimumPriceDistance)
	binary.LittleEndian.PutUint16(m[8:10], p.MathParams.LatestPriceWeight)
	binary.LittleEndian.PutUint32(m[16:20], p.MathParams.StdWeight)
}
