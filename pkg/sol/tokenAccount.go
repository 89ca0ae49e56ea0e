package sol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/sslv2-go/pkg"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
)

// AccountsExist reports, per address and in input order, whether the account
// currently exists with a non-zero lamport balance. Reads are batched.
func AccountsExist(ctx context.Context, reader pkg.AccountReader, addrs []solana.PublicKey) ([]bool, error) {
	accounts, err := fetchMultiple(ctx, reader, addrs)
	if err != nil {
		return nil, err
	}
	exists := make([]bool, len(addrs))
	for i, acc := range accounts {
		exists[i] = acc != nil && acc.Lamports > 0
	}
	return exists, nil
}

// FetchMultipleAccountData returns the data of every address in input order.
// Entries of absent accounts are nil.
func FetchMultipleAccountData(ctx context.Context, reader pkg.AccountReader, addrs []solana.PublicKey) ([][]byte, error) {
	accounts, err := fetchMultiple(ctx, reader, addrs)
	if err != nil {
		return nil, err
	}
	data := make([][]byte, len(addrs))
	for i, acc := range accounts {
		if acc != nil && acc.Lamports > 0 && acc.Data != nil {
			data[i] = acc.Data.GetBinary()
		}
	}
	return data, nil
}

func fetchMultiple(ctx context.Context, reader pkg.AccountReader, addrs []solana.PublicKey) ([]*rpc.Account, error) {
	accounts := make([]*rpc.Account, 0, len(addrs))
	for start := 0; start < len(addrs); start += MaxAccountsPerRequest {
		end := min(start+MaxAccountsPerRequest, len(addrs))
		res, err := reader.GetMultipleAccountsWithOpts(ctx, addrs[start:end], &rpc.GetMultipleAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read accounts: %w", err)
		}
		if len(res.Value) != end-start {
			return nil, fmt.Errorf("rpc returned %d accounts for %d addresses", len(res.Value), end-start)
		}
		accounts = append(accounts, res.Value...)
	}
	return accounts, nil
}

// FetchAccountData returns the raw data of one account, or an error wrapping
// ssl.ErrAccountNotFound when it does not exist.
func FetchAccountData(ctx context.Context, reader pkg.AccountReader, addr solana.PublicKey) ([]byte, error) {
	res, err := reader.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ssl.ErrAccountNotFound, addr)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", addr, err)
	}
	if res == nil || res.Value == nil || res.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", ssl.ErrAccountNotFound, addr)
	}
	return res.Value.Data.GetBinary(), nil
}

// IsAccountNotFoundError recognises the not-found outcomes of the rpc client.
func IsAccountNotFoundError(err error) bool {
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "account not found") ||
		strings.Contains(msg, "could not find account")
}

// CreateATAInstruction creates owner's associated token account for mint, paid by payer.
func CreateATAInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	inst, err := associatedtokenaccount.NewCreateInstruction(payer, owner, mint).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build create ata instruction: %w", err)
	}
	return inst, nil
}
