package ssl

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
	"lukechampine.com/uint128"
)

// pairLayout is the borsh layout of the Pair account after the discriminator.
// The trailing reserved space is not decoded.
type pairLayout struct {
	PoolRegistry             solana.PublicKey
	Mints                    [2]solana.PublicKey
	FeeCollector             [2]solana.PublicKey
	FeeRates                 [2]uint16
	TotalFeesGeneratedNative [2][16]byte
	TotalHistoricalVolume    [16]byte
	TotalInternallySwapped   [2][16]byte
}

// Pair is the on-chain trading pair between two SSL pools.
// Mints are stored in canonical byte order.
type Pair struct {
	PoolRegistry solana.PublicKey
	Mints        [2]solana.PublicKey
	// FeeCollector[i] receives the fees of swaps whose output is Mints[i].
	FeeCollector [2]solana.PublicKey
	// Basis points, indexed like FeeCollector.
	FeeRates [2]uint16

	TotalFeesGeneratedNative [2]uint128.Uint128
	TotalHistoricalVolume    uint128.Uint128
	TotalInternallySwapped   [2]uint128.Uint128
}

// FeeAttrs describes where and how much a swap pays in fees.
type FeeAttrs struct {
	RateBps     uint16
	Destination solana.PublicKey
}

func (p *Pair) Decode(data []byte) error {
	if len(data) < DISCRIMINATOR_SIZE+PAIR_SIZE {
		return fmt.Errorf("%w: pair too short: %d bytes", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], PairAccountDiscriminator[:]) {
		return fmt.Errorf("%w: not a pair account", ErrInvalidAccountData)
	}
	var layout pairLayout
	if err := borsh.Deserialize(&layout, data[DISCRIMINATOR_SIZE:]); err != nil {
		return fmt.Errorf("%w: pair: %v", ErrInvalidAccountData, err)
	}

	p.PoolRegistry = layout.PoolRegistry
	p.Mints = layout.Mints
	p.FeeCollector = layout.FeeCollector
	p.FeeRates = layout.FeeRates
	for i := 0; i < 2; i++ {
		p.TotalFeesGeneratedNative[i] = uint128.FromBytes(layout.TotalFeesGeneratedNative[i][:])
		p.TotalInternallySwapped[i] = uint128.FromBytes(layout.TotalInternallySwapped[i][:])
	}
	p.TotalHistoricalVolume = uint128.FromBytes(layout.TotalHistoricalVolume[:])
	return nil
}

// Encode serializes the pair with its discriminator and zeroed reserved space.
func (p *Pair) Encode() ([]byte, error) {
	layout := pairLayout{
		PoolRegistry: p.PoolRegistry,
		Mints:        p.Mints,
		FeeCollector: p.FeeCollector,
		FeeRates:     p.FeeRates,
	}
	for i := 0; i < 2; i++ {
		p.TotalFeesGeneratedNative[i].PutBytes(layout.TotalFeesGeneratedNative[i][:])
		p.TotalInternallySwapped[i].PutBytes(layout.TotalInternallySwapped[i][:])
	}
	p.TotalHistoricalVolume.PutBytes(layout.TotalHistoricalVolume[:])

	body, err := borsh.Serialize(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize pair: %w", err)
	}
	data := make([]byte, DISCRIMINATOR_SIZE+PAIR_SIZE)
	copy(data, PairAccountDiscriminator[:])
	copy(data[DISCRIMINATOR_SIZE:], body)
	return data, nil
}

// FeeAttrs resolves fee rate and destination from the output mint.
func (p *Pair) FeeAttrs(mintIn, mintOut solana.PublicKey) (FeeAttrs, error) {
	switch {
	case mintIn.Equals(p.Mints[0]) && mintOut.Equals(p.Mints[1]):
		return FeeAttrs{RateBps: p.FeeRates[1], Destination: p.FeeCollector[1]}, nil
	case mintIn.Equals(p.Mints[1]) && mintOut.Equals(p.Mints[0]):
		return FeeAttrs{RateBps: p.FeeRates[0], Destination: p.FeeCollector[0]}, nil
	}
	return FeeAttrs{}, fmt.Errorf("%w: %s -> %s", ErrFeeDestinationNotFound, mintIn, mintOut)
}
