package ssl

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// SwapAccounts lists the swap instruction accounts in program order.
type SwapAccounts struct {
	Pair                    solana.PublicKey
	PoolRegistry            solana.PublicKey
	UserWallet              solana.PublicKey
	SSLPoolInSigner         solana.PublicKey
	SSLPoolOutSigner        solana.PublicKey
	UserAtaIn               solana.PublicKey
	UserAtaOut              solana.PublicKey
	SSLOutMainVault         solana.PublicKey
	SSLOutSecondaryVault    solana.PublicKey
	SSLInMainVault          solana.PublicKey
	SSLInSecondaryVault     solana.PublicKey
	SSLOutFeeVault          solana.PublicKey
	FeeDestination          solana.PublicKey
	OutputTokenPriceHistory solana.PublicKey
	OutputTokenOracle       solana.PublicKey
	InputTokenPriceHistory  solana.PublicKey
	InputTokenOracle        solana.PublicKey
	EventEmitter            solana.PublicKey
	TokenProgram            solana.PublicKey
}

func (a *SwapAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Pair, true, false),
		solana.NewAccountMeta(a.PoolRegistry, true, false),
		solana.NewAccountMeta(a.UserWallet, false, true),
		solana.NewAccountMeta(a.SSLPoolInSigner, false, false),
		solana.NewAccountMeta(a.SSLPoolOutSigner, false, false),
		solana.NewAccountMeta(a.UserAtaIn, true, false),
		solana.NewAccountMeta(a.UserAtaOut, true, false),
		solana.NewAccountMeta(a.SSLOutMainVault, true, false),
		solana.NewAccountMeta(a.SSLOutSecondaryVault, true, false),
		solana.NewAccountMeta(a.SSLInMainVault, true, false),
		solana.NewAccountMeta(a.SSLInSecondaryVault, true, false),
		solana.NewAccountMeta(a.SSLOutFeeVault, true, false),
		solana.NewAccountMeta(a.FeeDestination, true, false),
		solana.NewAccountMeta(a.OutputTokenPriceHistory, true, false),
		solana.NewAccountMeta(a.OutputTokenOracle, false, false),
		solana.NewAccountMeta(a.InputTokenPriceHistory, true, false),
		solana.NewAccountMeta(a.InputTokenOracle, false, false),
		solana.NewAccountMeta(a.EventEmitter, true, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
	}
}

// DepositAccounts is shared by deposit and withdraw.
type DepositAccounts struct {
	LiquidityAccount solana.PublicKey
	Owner            solana.PublicKey
	UserAta          solana.PublicKey
	SSLPoolSigner    solana.PublicKey
	PoolVault        solana.PublicKey
	SSLFeeVault      solana.PublicKey
	PoolRegistry     solana.PublicKey
	EventEmitter     solana.PublicKey
	TokenProgram     solana.PublicKey
}

type WithdrawAccounts = DepositAccounts

func (a *DepositAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.LiquidityAccount, true, false),
		solana.NewAccountMeta(a.Owner, false, true),
		solana.NewAccountMeta(a.UserAta, true, false),
		solana.NewAccountMeta(a.SSLPoolSigner, false, false),
		solana.NewAccountMeta(a.PoolVault, true, false),
		solana.NewAccountMeta(a.SSLFeeVault, true, false),
		solana.NewAccountMeta(a.PoolRegistry, true, false),
		solana.NewAccountMeta(a.EventEmitter, true, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
	}
}

type ClaimFeesAccounts struct {
	PoolRegistry     solana.PublicKey
	Owner            solana.PublicKey
	SSLFeeVault      solana.PublicKey
	OwnerAta         solana.PublicKey
	LiquidityAccount solana.PublicKey
	EventEmitter     solana.PublicKey
	TokenProgram     solana.PublicKey
}

func (a *ClaimFeesAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.PoolRegistry, false, false),
		solana.NewAccountMeta(a.Owner, true, true),
		solana.NewAccountMeta(a.SSLFeeVault, true, false),
		solana.NewAccountMeta(a.OwnerAta, true, false),
		solana.NewAccountMeta(a.LiquidityAccount, true, false),
		solana.NewAccountMeta(a.EventEmitter, true, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
	}
}

type CreateLiquidityAccountAccounts struct {
	PoolRegistry     solana.PublicKey
	Mint             solana.PublicKey
	LiquidityAccount solana.PublicKey
	Owner            solana.PublicKey
	EventEmitter     solana.PublicKey
	SystemProgram    solana.PublicKey
}

func (a *CreateLiquidityAccountAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.PoolRegistry, false, false),
		solana.NewAccountMeta(a.Mint, false, false),
		solana.NewAccountMeta(a.LiquidityAccount, true, false),
		solana.NewAccountMeta(a.Owner, true, true),
		solana.NewAccountMeta(a.EventEmitter, true, false),
		solana.NewAccountMeta(a.SystemProgram, false, false),
	}
}

type CloseLiquidityAccountAccounts struct {
	Owner            solana.PublicKey
	RentRecipient    solana.PublicKey
	LiquidityAccount solana.PublicKey
	EventEmitter     solana.PublicKey
	SystemProgram    solana.PublicKey
}

func (a *CloseLiquidityAccountAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Owner, true, true),
		solana.NewAccountMeta(a.RentRecipient, true, false),
		solana.NewAccountMeta(a.LiquidityAccount, true, false),
		solana.NewAccountMeta(a.EventEmitter, true, false),
		solana.NewAccountMeta(a.SystemProgram, false, false),
	}
}

// SSLInstruction is an Anchor instruction of the SSLv2 program: discriminator
// followed by borsh-encoded u64 arguments.
type SSLInstruction struct {
	bin.BaseVariant
	Name                    string
	Discriminator           [8]byte
	Args                    []uint64
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// ProgramID returns the program ID for the SSLv2 program
func (inst *SSLInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

// Accounts returns the account metas for the instruction
func (inst *SSLInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

// Data serializes the instruction data
func (inst *SSLInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.Write(inst.Discriminator[:]); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	enc := bin.NewBorshEncoder(buf)
	for i, arg := range inst.Args {
		if err := enc.WriteUint64(arg, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("failed to encode %s arg %d: %w", inst.Name, i, err)
		}
	}
	return buf.Bytes(), nil
}

func NewSwapInstruction(programID solana.PublicKey, amountIn, minOut uint64, accounts *SwapAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "swap",
		Discriminator:    SwapDiscriminator,
		Args:             []uint64{amountIn, minOut},
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}

func NewDepositInstruction(programID solana.PublicKey, amount uint64, accounts *DepositAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "deposit",
		Discriminator:    DepositDiscriminator,
		Args:             []uint64{amount},
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}

func NewWithdrawInstruction(programID solana.PublicKey, amount uint64, accounts *WithdrawAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "withdraw",
		Discriminator:    WithdrawDiscriminator,
		Args:             []uint64{amount},
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}

func NewClaimFeesInstruction(programID solana.PublicKey, accounts *ClaimFeesAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "claim_fees",
		Discriminator:    ClaimFeesDiscriminator,
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}

func NewCreateLiquidityAccountInstruction(programID solana.PublicKey, accounts *CreateLiquidityAccountAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "create_liquidity_account",
		Discriminator:    CreateLiquidityAccountDiscriminator,
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}

func NewCloseLiquidityAccountInstruction(programID solana.PublicKey, accounts *CloseLiquidityAccountAccounts) *SSLInstruction {
	return &SSLInstruction{
		Name:             "close_liquidity_account",
		Discriminator:    CloseLiquidityAccountDiscriminator,
		programID:        programID,
		AccountMetaSlice: accounts.Metas(),
	}
}
