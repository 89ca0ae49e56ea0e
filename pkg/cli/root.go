package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtdvccc/sslv2-go/pkg/config"
	"github.com/gtdvccc/sslv2-go/pkg/logger"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
	"github.com/gtdvccc/sslv2-go/pkg/resolver"
	"github.com/gtdvccc/sslv2-go/pkg/sol"
)

// Execute runs the sslv2 command line.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sslv2",
		Short:        "Build GooseFX SSLv2 transactions and query LP rewards",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path (yaml, json or toml)")
	pf.String("rpc", "", "Solana RPC URL")
	pf.String("ws", "", "Solana WebSocket URL, used to confirm sent transactions")
	pf.String("program-id", "", "SSLv2 program id")
	pf.String("authority", "", "pool registry authority")
	pf.StringP("output", "o", "", "output format (json, yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, console)")
	pf.String("log-file", "", "also write logs to this rotated file")

	root.AddCommand(
		newAddressCmd(),
		newPairCmd(),
		newSwapCmd(),
		newDepositCmd(),
		newWithdrawCmd(),
		newClaimCmd(),
		newCreateAccountCmd(),
		newCloseAccountCmd(),
		newRewardsCmd(),
	)
	return root
}

// app carries the per-invocation state shared by every command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *registry.Registry
	resolver *resolver.Resolver
	client   *sol.Client
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogOption())
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	programID, err := cfg.Program()
	if err != nil {
		return nil, err
	}
	res, err := resolver.New(reg, programID)
	if err != nil {
		return nil, err
	}
	log.Debug("config loaded",
		zap.String("rpc", cfg.RPCURL),
		zap.Stringer("program", programID),
		zap.Stringer("poolRegistry", res.PoolRegistry()),
		zap.Int("tokens", len(reg.Tokens())),
		zap.Int("pairs", len(reg.Pairs())),
	)
	return &app{cfg: cfg, logger: log, registry: reg, resolver: res}, nil
}

// rpc connects on first use; address and pair lookups never need it.
func (a *app) rpc(ctx context.Context) (*sol.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	client, err := sol.NewClient(ctx, a.cfg.RPCURL, a.cfg.WSURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	a.client = client
	return client, nil
}

func (a *app) close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("close client", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// owner returns --owner when given, else the configured signer's key.
func (a *app) owner(cmd *cobra.Command) (solana.PublicKey, error) {
	if s, _ := cmd.Flags().GetString("owner"); s != "" {
		return config.ParsePublicKey("owner", s)
	}
	signer, err := a.cfg.Signer()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--owner or a private key is required: %w", err)
	}
	return signer.PublicKey(), nil
}

func (a *app) mint(cmd *cobra.Command, flag string) (solana.PublicKey, error) {
	s, _ := cmd.Flags().GetString(flag)
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", flag)
	}
	return a.registry.ResolveMint(s)
}

// run wraps a command body with app construction and cleanup.
func run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := fn(cmd, a, args); err != nil {
			a.logger.Debug("command failed", zap.String("cmd", cmd.Name()), zap.Error(err))
			return err
		}
		return nil
	}
}
