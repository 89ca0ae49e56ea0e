package pkg

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Operation names a user intent against the SSLv2 program
type Operation string

const (
	OperationSwap                   Operation = "swap"
	OperationCreateLiquidityAccount Operation = "create_liquidity_account"
	OperationDeposit                Operation = "deposit"
	OperationWithdraw               Operation = "withdraw"
	OperationClaimFees              Operation = "claim_fees"
	OperationCloseLiquidityAccount  Operation = "close_liquidity_account"
	OperationQueryRewards           Operation = "query_rewards"
)

// AccountReader is the snapshot surface of the rpc collaborator. *rpc.Client satisfies it.
type AccountReader interface {
	GetAccountInfoWithOpts(
		ctx context.Context,
		account solana.PublicKey,
		opts *rpc.GetAccountInfoOpts,
	) (*rpc.GetAccountInfoResult, error)
	GetMultipleAccountsWithOpts(
		ctx context.Context,
		accounts []solana.PublicKey,
		opts *rpc.GetMultipleAccountsOpts,
	) (*rpc.GetMultipleAccountsResult, error)
}
