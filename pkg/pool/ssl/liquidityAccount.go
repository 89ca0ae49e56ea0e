package ssl

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// LiquidityAccount tracks one owner's deposit into one SSL pool.
type LiquidityAccount struct {
	PoolRegistry    solana.PublicKey
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	AmountDeposited uint64
	// Value of the pool accumulator at the last claim, deposit or withdraw.
	LastObservedTap uint64
	// Unix timestamp
	LastClaimed int64
	TotalEarned uint64
	CreatedAt   int64
}

func (l *LiquidityAccount) Decode(data []byte) error {
	if len(data) < DISCRIMINATOR_SIZE+LIQUIDITY_ACCOUNT_SIZE {
		return fmt.Errorf("%w: liquidity account too short: %d bytes", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], LiquidityAccountDiscriminator[:]) {
		return fmt.Errorf("%w: not a liquidity account", ErrInvalidAccountData)
	}
	if err := borsh.Deserialize(l, data[DISCRIMINATOR_SIZE:]); err != nil {
		return fmt.Errorf("%w: liquidity account: %v", ErrInvalidAccountData, err)
	}
	return nil
}

func (l *LiquidityAccount) Encode() ([]byte, error) {
	body, err := borsh.Serialize(*l)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize liquidity account: %w", err)
	}
	data := make([]byte, DISCRIMINATOR_SIZE+LIQUIDITY_ACCOUNT_SIZE)
	copy(data, LiquidityAccountDiscriminator[:])
	copy(data[DISCRIMINATOR_SIZE:], body)
	return data, nil
}
