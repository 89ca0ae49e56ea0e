package ssl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

type OracleType uint8

const (
	OracleTypeInvalid OracleType = iota
	OracleTypePyth
	OracleTypeSwitchboardV2
)

func (t OracleType) String() string {
	switch t {
	case OracleTypePyth:
		return "Pyth"
	case OracleTypeSwitchboardV2:
		return "Switchboardv2"
	default:
		return "Invalid"
	}
}

// HistoricalPrice is one crank of an oracle price: Num * 10^-Scale at Slot.
type HistoricalPrice struct {
	Num   int64
	Scale uint32
	Inv   float32
	Slot  uint64
}

// Price returns the recorded price as a decimal.
func (h HistoricalPrice) Price() cosmath.LegacyDec {
	if h.Scale <= cosmath.LegacyPrecision {
		return cosmath.LegacyNewDecWithPrec(h.Num, int64(h.Scale))
	}
	excess := cosmath.LegacyNewDec(10).Power(uint64(h.Scale - cosmath.LegacyPrecision))
	return cosmath.LegacyNewDecWithPrec(h.Num, cosmath.LegacyPrecision).Quo(excess)
}

// OraclePriceHistory is the ring buffer of smoothed prices for one oracle.
type OraclePriceHistory struct {
	OracleType            OracleType
	MinimumElapsedSlots   uint8
	MaxSlotPriceStaleness uint8
	PoolRegistry          solana.PublicKey
	OracleAddress         solana.PublicKey
	Mint                  solana.PublicKey
	NumUpdates            uint64
	PriceHistory          [NUM_PRICE_HISTORY_ENTRIES]HistoricalPrice
}

const oraclePriceHistoryHeaderSize = 8 + 32*3 + 8 + 128

func (o *OraclePriceHistory) Decode(data []byte) error {
	if len(data) < DISCRIMINATOR_SIZE+ORACLE_PRICE_HISTORY_SIZE {
		return fmt.Errorf("%w: oracle price history too short: %d bytes", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], OraclePriceHistoryAccountDiscriminator[:]) {
		return fmt.Errorf("%w: not an oracle price history account", ErrInvalidAccountData)
	}
	data = data[DISCRIMINATOR_SIZE:]

	o.OracleType = OracleType(data[0])
	o.MinimumElapsedSlots = data[1]
	o.MaxSlotPriceStaleness = data[2]
	o.PoolRegistry = solana.PublicKeyFromBytes(data[8:40])
	o.OracleAddress = solana.PublicKeyFromBytes(data[40:72])
	o.Mint = solana.PublicKeyFromBytes(data[72:104])
	o.NumUpdates = binary.LittleEndian.Uint64(data[104:112])

	offset := oraclePriceHistoryHeaderSize
	for i := range o.PriceHistory {
		entry := data[offset : offset+HISTORICAL_PRICE_SIZE]
		o.PriceHistory[i] = HistoricalPrice{
			Num:   int64(binary.LittleEndian.Uint64(entry[0:8])),
			Scale: binary.LittleEndian.Uint32(entry[8:12]),
			Inv:   math.Float32frombits(binary.LittleEndian.Uint32(entry[12:16])),
			Slot:  binary.LittleEndian.Uint64(entry[16:24]),
		}
		offset += HISTORICAL_PRICE_SIZE
	}
	return nil
}

// Latest returns the most recently cranked entry.
func (o *OraclePriceHistory) Latest() HistoricalPrice {
	return o.PriceHistory[o.NumUpdates%NUM_PRICE_HISTORY_ENTRIES]
}

// IsStale reports whether the latest entry is older than the staleness bound at currentSlot.
func (o *OraclePriceHistory) IsStale(currentSlot uint64) bool {
	latest := o.Latest()
	if currentSlot < latest.Slot {
		return false
	}
	return currentSlot-latest.Slot > uint64(o.MaxSlotPriceStaleness)
}
