package sol

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// signTransaction builds a transaction paid by the first signer and signs it
func signTransaction(blockhash solana.Hash, signers []solana.PrivateKey, instrs ...solana.Instruction) (*solana.Transaction, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("at least one signer is required")
	}

	tx, err := solana.NewTransaction(
		instrs,
		blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			for i := range signers {
				if signers[i].PublicKey().Equals(key) {
					return &signers[i]
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// SendTx sends or simulates a transaction. A simulation returns the zero signature.
func (c *Client) SendTx(ctx context.Context, blockhash solana.Hash, signers []solana.PrivateKey, insts []solana.Instruction, isSimulate bool) (solana.Signature, error) {
	tx, err := signTransaction(blockhash, signers, insts...)
	if err != nil {
		return solana.Signature{}, err
	}

	if isSimulate {
		res, err := c.RpcClient.SimulateTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to simulate transaction: %w", err)
		}
		if res.Value != nil {
			c.logger.Info("simulation finished",
				zap.Any("err", res.Value.Err),
				zap.String("logs", strings.Join(res.Value.Logs, "\n")),
			)
			if res.Value.Err != nil {
				return solana.Signature{}, fmt.Errorf("simulation failed: %v", res.Value.Err)
			}
		}
		return solana.Signature{}, nil
	}

	sig, err := c.RpcClient.SendTransactionWithOpts(
		ctx, tx,
		rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentProcessed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	c.logger.Info("transaction sent", zap.Stringer("signature", sig))
	return sig, nil
}

// Submit fetches a fresh blockhash and calls SendTx. A sent transaction is
// confirmed over the WebSocket connection when there is one.
func (c *Client) Submit(ctx context.Context, signers []solana.PrivateKey, insts []solana.Instruction, isSimulate bool) (solana.Signature, error) {
	recent, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	sig, err := c.SendTx(ctx, recent.Value.Blockhash, signers, insts, isSimulate)
	if err != nil || isSimulate || c.WsClient == nil {
		return sig, err
	}
	return sig, c.confirm(ctx, sig)
}

func (c *Client) confirm(ctx context.Context, sig solana.Signature) error {
	sub, err := c.WsClient.SignatureSubscribe(sig, rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to subscribe to signature: %w", err)
	}
	defer sub.Unsubscribe()

	res, err := sub.Recv(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm %s: %w", sig, err)
	}
	if res.Value.Err != nil {
		return fmt.Errorf("transaction %s failed: %v", sig, res.Value.Err)
	}
	c.logger.Info("transaction confirmed", zap.Stringer("signature", sig), zap.Uint64("slot", res.Context.Slot))
	return nil
}
