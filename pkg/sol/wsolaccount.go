package sol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// WrapSolInstructions moves lamports from owner into its WSOL associated account
// and syncs the token balance. The account must exist when they execute.
func WrapSolInstructions(owner solana.PublicKey, lamports uint64) ([]solana.Instruction, error) {
	wsolAccount, _, err := solana.FindAssociatedTokenAddress(owner, WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to find wsol account: %w", err)
	}

	transferInst, err := system.NewTransferInstruction(
		lamports,
		owner,
		wsolAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}

	// SyncNative makes the token amount reflect the transferred lamports
	syncNativeInst, err := token.NewSyncNativeInstruction(
		wsolAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build sync native instruction: %w", err)
	}
	return []solana.Instruction{transferInst, syncNativeInst}, nil
}

// UnwrapSolInstruction closes owner's WSOL associated account, returning every lamport to owner.
func UnwrapSolInstruction(owner solana.PublicKey) (solana.Instruction, error) {
	wsolAccount, _, err := solana.FindAssociatedTokenAddress(owner, WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to find wsol account: %w", err)
	}
	closeInst, err := token.NewCloseAccountInstruction(
		wsolAccount,
		owner,
		owner,
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build close account instruction: %w", err)
	}
	return closeInst, nil
}
