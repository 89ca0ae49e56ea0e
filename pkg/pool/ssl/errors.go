package ssl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/gtdvccc/sslv2-go/pkg"
)

var (
	ErrUnsupportedPair              = errors.New("unsupported pair")
	ErrFeeDestinationNotFound       = errors.New("fee destination not found for output mint")
	ErrInvalidNativeWrapRequest     = errors.New("native wrapping requested for a non-native mint")
	ErrAddressDerivationExhausted   = errors.New("address derivation exhausted")
	ErrNoActiveDeposits             = errors.New("pool has no active deposits")
	ErrAccumulatorInvariantViolated = errors.New("reward accumulator invariant violated")
	ErrAccountNotFound              = errors.New("account not found")

	ErrUnknownMint        = errors.New("unknown mint")
	ErrPoolNotFound       = errors.New("ssl pool not found in registry")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAccountData = errors.New("invalid account data")
)

// OpError attaches the operation kind and the mints involved to a failure.
type OpError struct {
	Op    pkg.Operation
	Mints []solana.PublicKey
	Err   error
}

func (e *OpError) Error() string {
	if len(e.Mints) == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	mints := make([]string, len(e.Mints))
	for i, m := range e.Mints {
		mints[i] = m.String()
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, strings.Join(mints, ","), e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err unless it is nil or already carries operation context.
func NewOpError(op pkg.Operation, err error, mints ...solana.PublicKey) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Mints: mints, Err: err}
}
