package cli

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
	"github.com/gtdvccc/sslv2-go/pkg/rewards"
	"github.com/gtdvccc/sslv2-go/pkg/sol"
)

type poolAddresses struct {
	Token            string `json:"token" yaml:"token"`
	Mint             string `json:"mint" yaml:"mint"`
	Signer           string `json:"signer" yaml:"signer"`
	Vault            string `json:"vault" yaml:"vault"`
	FeeVault         string `json:"feeVault" yaml:"feeVault"`
	PriceHistory     string `json:"priceHistory" yaml:"priceHistory"`
	LiquidityAccount string `json:"liquidityAccount,omitempty" yaml:"liquidityAccount,omitempty"`
}

type addressesView struct {
	Program      string          `json:"program" yaml:"program"`
	PoolRegistry string          `json:"poolRegistry" yaml:"poolRegistry"`
	EventEmitter string          `json:"eventEmitter" yaml:"eventEmitter"`
	Pools        []poolAddresses `json:"pools" yaml:"pools"`
}

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the program addresses derived for every configured token",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			var owner solana.PublicKey
			if s, _ := cmd.Flags().GetString("owner"); s != "" {
				var err error
				if owner, err = a.owner(cmd); err != nil {
					return err
				}
			}
			view, err := a.addresses(owner)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, view)
		}),
	}
	cmd.Flags().String("owner", "", "also derive this wallet's liquidity accounts")
	return cmd
}

func (a *app) addresses(owner solana.PublicKey) (*addressesView, error) {
	d := a.resolver.Deriver()
	reg := a.resolver.PoolRegistry()
	emitter, err := d.EventEmitter()
	if err != nil {
		return nil, err
	}
	view := &addressesView{
		Program:      a.resolver.ProgramID().String(),
		PoolRegistry: reg.String(),
		EventEmitter: emitter.String(),
	}
	for _, token := range a.registry.Tokens() {
		signer, err := d.SSLPoolSigner(reg, token.Mint)
		if err != nil {
			return nil, err
		}
		vault, err := d.PoolVault(reg, token.Mint)
		if err != nil {
			return nil, err
		}
		feeVault, err := d.FeeVault(reg, token.Mint)
		if err != nil {
			return nil, err
		}
		history, err := d.OraclePriceHistory(reg, token.Oracle)
		if err != nil {
			return nil, err
		}
		pool := poolAddresses{
			Token:        token.Name,
			Mint:         token.Mint.String(),
			Signer:       signer.String(),
			Vault:        vault.String(),
			FeeVault:     feeVault.String(),
			PriceHistory: history.String(),
		}
		if !owner.IsZero() {
			la, err := a.resolver.LiquidityAccount(owner, token.Mint)
			if err != nil {
				return nil, err
			}
			pool.LiquidityAccount = la.String()
		}
		view.Pools = append(view.Pools, pool)
	}
	return view, nil
}

type priceView struct {
	Token  string `json:"token" yaml:"token"`
	Oracle string `json:"oracle" yaml:"oracle"`
	Price  string `json:"price" yaml:"price"`
	Slot   uint64 `json:"slot" yaml:"slot"`
	Stale  bool   `json:"stale" yaml:"stale"`
}

type directionView struct {
	In          string `json:"in" yaml:"in"`
	Out         string `json:"out" yaml:"out"`
	FeeRateBps  uint16 `json:"feeRateBps" yaml:"feeRateBps"`
	Destination string `json:"feeDestination" yaml:"feeDestination"`
}

type pairView struct {
	Address         string          `json:"address" yaml:"address"`
	Mints           [2]string       `json:"mints" yaml:"mints"`
	FeeDestinations [2]string       `json:"feeDestinations" yaml:"feeDestinations"`
	FeeRateBps      uint16          `json:"feeRateBps" yaml:"feeRateBps"`
	SecondaryVaults [2]string       `json:"secondaryVaults" yaml:"secondaryVaults"`
	OnChain         *onChainPair    `json:"onChain,omitempty" yaml:"onChain,omitempty"`
	Directions      []directionView `json:"directions,omitempty" yaml:"directions,omitempty"`
	Prices          []priceView     `json:"prices,omitempty" yaml:"prices,omitempty"`
}

type onChainPair struct {
	Mints                    [2]string `json:"mints" yaml:"mints"`
	FeeCollectors            [2]string `json:"feeCollectors" yaml:"feeCollectors"`
	FeeRatesBps              [2]uint16 `json:"feeRatesBps" yaml:"feeRatesBps"`
	TotalFeesGeneratedNative [2]string `json:"totalFeesGeneratedNative" yaml:"totalFeesGeneratedNative"`
	TotalHistoricalVolume    string    `json:"totalHistoricalVolume" yaml:"totalHistoricalVolume"`
	TotalInternallySwapped   [2]string `json:"totalInternallySwapped" yaml:"totalInternallySwapped"`
}

func newPairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair <A-B>",
		Short: "Resolve a supported pair, optionally reading its on-chain state",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			pair, err := a.registry.ParsePair(args[0])
			if err != nil {
				return err
			}
			view, err := a.pair(pair)
			if err != nil {
				return err
			}
			if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
				if err := a.fetchPair(cmd.Context(), pair, view); err != nil {
					return err
				}
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, view)
		}),
	}
	cmd.Flags().Bool("fetch", false, "read the pair and both price histories from chain")
	return cmd
}

func (a *app) pair(pair registry.Pair) (*pairView, error) {
	d := a.resolver.Deriver()
	reg := a.resolver.PoolRegistry()
	addr, err := d.Pair(reg, pair.Mints[0], pair.Mints[1])
	if err != nil {
		return nil, err
	}
	view := &pairView{Address: addr.String(), FeeRateBps: pair.FeeRateBps}
	for i := 0; i < 2; i++ {
		vault, err := d.SecondaryVault(reg, pair.Mints[i], pair.Mints[1-i])
		if err != nil {
			return nil, err
		}
		view.Mints[i] = pair.Mints[i].String()
		view.FeeDestinations[i] = pair.FeeDestinations[i].String()
		view.SecondaryVaults[i] = vault.String()
	}
	return view, nil
}

// fetchPair reads the pair account and both price histories concurrently.
func (a *app) fetchPair(ctx context.Context, pair registry.Pair, view *pairView) error {
	client, err := a.rpc(ctx)
	if err != nil {
		return err
	}
	d := a.resolver.Deriver()
	reg := a.resolver.PoolRegistry()
	pairAddr, err := d.Pair(reg, pair.Mints[0], pair.Mints[1])
	if err != nil {
		return err
	}

	var (
		tokens       [2]registry.Token
		historyAddrs [2]solana.PublicKey
	)
	for i := 0; i < 2; i++ {
		if tokens[i], err = a.registry.Token(pair.Mints[i]); err != nil {
			return err
		}
		if historyAddrs[i], err = d.OraclePriceHistory(reg, tokens[i].Oracle); err != nil {
			return err
		}
	}

	var (
		onChain   ssl.Pair
		histories [2]ssl.OraclePriceHistory
		slot      uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := sol.FetchAccountData(gctx, client.RpcClient, pairAddr)
		if err != nil {
			return err
		}
		return onChain.Decode(data)
	})
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			data, err := sol.FetchAccountData(gctx, client.RpcClient, historyAddrs[i])
			if err != nil {
				return err
			}
			return histories[i].Decode(data)
		})
	}
	g.Go(func() error {
		var err error
		slot, err = client.RpcClient.GetSlot(gctx, rpc.CommitmentConfirmed)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	view.OnChain = &onChainPair{
		FeeRatesBps:           onChain.FeeRates,
		TotalHistoricalVolume: onChain.TotalHistoricalVolume.String(),
	}
	for i := 0; i < 2; i++ {
		view.OnChain.Mints[i] = onChain.Mints[i].String()
		view.OnChain.FeeCollectors[i] = onChain.FeeCollector[i].String()
		view.OnChain.TotalFeesGeneratedNative[i] = onChain.TotalFeesGeneratedNative[i].String()
		view.OnChain.TotalInternallySwapped[i] = onChain.TotalInternallySwapped[i].String()

		in, out := onChain.Mints[i], onChain.Mints[1-i]
		attrs, err := onChain.FeeAttrs(in, out)
		if err != nil {
			return err
		}
		view.Directions = append(view.Directions, directionView{
			In:          in.String(),
			Out:         out.String(),
			FeeRateBps:  attrs.RateBps,
			Destination: attrs.Destination.String(),
		})

		latest := histories[i].Latest()
		view.Prices = append(view.Prices, priceView{
			Token:  tokens[i].Name,
			Oracle: tokens[i].Oracle.String(),
			Price:  latest.Price().String(),
			Slot:   latest.Slot,
			Stale:  histories[i].IsStale(slot),
		})
	}
	return nil
}

func newRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Report claimable LP rewards for one token or every position",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			owner, err := a.owner(cmd)
			if err != nil {
				return err
			}
			client, err := a.rpc(cmd.Context())
			if err != nil {
				return err
			}
			accountant := rewards.New(a.resolver, client.RpcClient, rewards.WithLogger(a.logger))

			if s, _ := cmd.Flags().GetString("mint"); s != "" {
				mint, err := a.registry.ResolveMint(s)
				if err != nil {
					return err
				}
				report, err := accountant.Report(cmd.Context(), owner, mint)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.cfg.Output, report)
			}
			reports, err := accountant.Reports(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, reports)
		}),
	}
	cmd.Flags().String("owner", "", "wallet to report on (default: signer)")
	cmd.Flags().String("mint", "", "token name or mint; all positions when empty")
	return cmd
}
