package cli

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtdvccc/sslv2-go/pkg/assembler"
	"github.com/gtdvccc/sslv2-go/pkg/config"
)

func addTxFlags(cmd *cobra.Command) {
	cmd.Flags().String("owner", "", "wallet the plan is built for (default: signer)")
	cmd.Flags().Bool("simulate", false, "sign and simulate the transaction")
	cmd.Flags().Bool("send", false, "sign and send the transaction")
	cmd.MarkFlagsMutuallyExclusive("simulate", "send")
}

func addAmountFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		cmd.Flags().String(flag, "", flag+" in base units, or token units with --ui")
	}
	cmd.Flags().Bool("ui", false, "amounts are in token units, scaled by the mint's decimals")
}

// amount reads a base-unit or ui amount of mint from flag.
func (a *app) amount(cmd *cobra.Command, flag string, mint solana.PublicKey, required bool) (math.Int, error) {
	s, _ := cmd.Flags().GetString(flag)
	if s == "" {
		if required {
			return math.Int{}, fmt.Errorf("--%s is required", flag)
		}
		return math.ZeroInt(), nil
	}
	if ui, _ := cmd.Flags().GetBool("ui"); ui {
		decimals, err := a.registry.Decimals(mint)
		if err != nil {
			return math.Int{}, err
		}
		dec, err := math.LegacyNewDecFromStr(s)
		if err != nil {
			return math.Int{}, fmt.Errorf("--%s: %w", flag, err)
		}
		scaled := dec.MulInt(math.NewIntWithDecimal(1, int(decimals)))
		if !scaled.IsInteger() {
			return math.Int{}, fmt.Errorf("--%s: %s has more than %d decimal places", flag, s, decimals)
		}
		return scaled.TruncateInt(), nil
	}
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("--%s: invalid integer %q", flag, s)
	}
	return amount, nil
}

func (a *app) assembler(ctx context.Context) (*assembler.Assembler, error) {
	client, err := a.rpc(ctx)
	if err != nil {
		return nil, err
	}
	return assembler.New(a.resolver, client.RpcClient, assembler.WithLogger(a.logger)), nil
}

// finish prints the plan, after simulating or sending it when asked.
func (a *app) finish(cmd *cobra.Command, owner solana.PublicKey, plan *assembler.Plan) error {
	view, err := viewPlan(plan)
	if err != nil {
		return err
	}
	simulate, _ := cmd.Flags().GetBool("simulate")
	send, _ := cmd.Flags().GetBool("send")
	if simulate || send {
		signer, err := a.cfg.Signer()
		if err != nil {
			return err
		}
		if !signer.PublicKey().Equals(owner) {
			return fmt.Errorf("signer %s is not the owner %s", signer.PublicKey(), owner)
		}
		client, err := a.rpc(cmd.Context())
		if err != nil {
			return err
		}
		sig, err := client.Submit(cmd.Context(), []solana.PrivateKey{signer}, plan.Instructions(), simulate)
		if err != nil {
			return err
		}
		view.Simulated = simulate
		if send {
			view.Signature = sig.String()
			a.logger.Info("transaction sent", zap.String("op", string(plan.Operation)), zap.Stringer("signature", sig))
		}
	}
	return render(cmd.OutOrStdout(), a.cfg.Output, view)
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Build a swap between the two mints of a supported pair",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mintIn, err := a.mint(cmd, "in")
			if err != nil {
				return err
			}
			mintOut, err := a.mint(cmd, "out")
			if err != nil {
				return err
			}
			amountIn, err := a.amount(cmd, "amount", mintIn, true)
			if err != nil {
				return err
			}
			minOut, err := a.amount(cmd, "min-out", mintOut, false)
			if err != nil {
				return err
			}
			asm, err := a.assembler(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := asm.Swap(cmd.Context(), assembler.SwapRequest{
				User:         owner,
				MintIn:       mintIn,
				MintOut:      mintOut,
				AmountIn:     amountIn,
				MinAmountOut: minOut,
			})
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("in", "", "input token name or mint")
	cmd.Flags().String("out", "", "output token name or mint")
	addAmountFlags(cmd, "amount", "min-out")
	addTxFlags(cmd)
	return cmd
}

func newDepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Build a liquidity deposit, opening the liquidity account when needed",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mint, err := a.mint(cmd, "mint")
			if err != nil {
				return err
			}
			amount, err := a.amount(cmd, "amount", mint, true)
			if err != nil {
				return err
			}
			wrap, _ := cmd.Flags().GetBool("wrap")
			asm, err := a.assembler(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := asm.Deposit(cmd.Context(), assembler.DepositRequest{
				Owner:             owner,
				Mint:              mint,
				Amount:            amount,
				UseNativeWrapping: wrap,
			})
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("mint", "", "token name or mint")
	cmd.Flags().Bool("wrap", false, "wrap native SOL into the WSOL account first")
	addAmountFlags(cmd, "amount")
	addTxFlags(cmd)
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Build a liquidity withdrawal",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mint, err := a.mint(cmd, "mint")
			if err != nil {
				return err
			}
			amount, err := a.amount(cmd, "amount", mint, true)
			if err != nil {
				return err
			}
			unwrap, _ := cmd.Flags().GetBool("unwrap")
			asm, err := a.assembler(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := asm.Withdraw(cmd.Context(), assembler.WithdrawRequest{
				Owner:          owner,
				Mint:           mint,
				Amount:         amount,
				UnwrapToNative: unwrap,
			})
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("mint", "", "token name or mint")
	cmd.Flags().Bool("unwrap", false, "close the WSOL account afterwards, returning native SOL")
	addAmountFlags(cmd, "amount")
	addTxFlags(cmd)
	return cmd
}

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Build a claim of accrued LP fees",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mint, err := a.mint(cmd, "mint")
			if err != nil {
				return err
			}
			asm, err := a.assembler(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := asm.ClaimFees(cmd.Context(), owner, mint)
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("mint", "", "token name or mint")
	addTxFlags(cmd)
	return cmd
}

func newCreateAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Build the creation of a liquidity account",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mint, err := a.mint(cmd, "mint")
			if err != nil {
				return err
			}
			plan, err := assembler.New(a.resolver, nil, assembler.WithLogger(a.logger)).CreateLiquidityAccount(owner, mint)
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("mint", "", "token name or mint")
	addTxFlags(cmd)
	return cmd
}

func newCloseAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-account",
		Short: "Build the closure of an empty liquidity account",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			mint, err := a.mint(cmd, "mint")
			if err != nil {
				return err
			}
			var recipient solana.PublicKey
			if s, _ := cmd.Flags().GetString("rent-recipient"); s != "" {
				if recipient, err = config.ParsePublicKey("rent-recipient", s); err != nil {
					return err
				}
			}
			plan, err := assembler.New(a.resolver, nil, assembler.WithLogger(a.logger)).CloseLiquidityAccount(owner, mint, recipient)
			if err != nil {
				return err
			}
			return a.finish(cmd, owner, plan)
		}),
	}
	cmd.Flags().String("mint", "", "token name or mint")
	cmd.Flags().String("rent-recipient", "", "receiver of the reclaimed rent (default: owner)")
	addTxFlags(cmd)
	return cmd
}
