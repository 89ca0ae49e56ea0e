package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gtdvccc/sslv2-go/pkg/logger"
	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
	"github.com/gtdvccc/sslv2-go/pkg/registry"
)

const envPrefix = "SSLV2"

type TokenConfig struct {
	Name     string `mapstructure:"name"`
	Mint     string `mapstructure:"mint"`
	Oracle   string `mapstructure:"oracle"`
	Decimals uint8  `mapstructure:"decimals"`
}

type PairConfig struct {
	Mints           []string `mapstructure:"mints"`            // token names or base58 mints
	FeeDestinations []string `mapstructure:"fee_destinations"` // same order as Mints
	FeeRateBps      uint16   `mapstructure:"fee_rate_bps"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL     string
	WSURL      string
	ProgramID  string
	Authority  string
	PrivateKey string
	Output     string

	LogLevel    string
	LogFormat   string
	LogFile     string
	LogCompress bool

	Tokens []TokenConfig
	Pairs  []PairConfig
}

// Load merges a .env file, config file, environment variables, and flags into
// Config. Environment keys carry the SSLV2_ prefix; the rpc endpoints and the
// private key also accept the SOLANA_* names.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	LoadDotEnv()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("ws", "")
	v.SetDefault("program-id", ssl.SSL_V2_PROGRAM_ID.String())
	v.SetDefault("output", "json")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("log-compress", true)

	for key, names := range map[string][]string{
		"rpc":         {envPrefix + "_RPC", "SOLANA_RPC_URL"},
		"ws":          {envPrefix + "_WS", "SOLANA_WS_RPC_URL"},
		"private-key": {envPrefix + "_PRIVATE_KEY", "SOLANA_PRIVATE_KEY"},
	} {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("sslv2")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:      v.GetString("rpc"),
		WSURL:       v.GetString("ws"),
		ProgramID:   v.GetString("program-id"),
		Authority:   v.GetString("authority"),
		PrivateKey:  v.GetString("private-key"),
		Output:      v.GetString("output"),
		LogLevel:    v.GetString("log-level"),
		LogFormat:   v.GetString("log-format"),
		LogFile:     v.GetString("log-file"),
		LogCompress: v.GetBool("log-compress"),
	}
	if err := v.UnmarshalKey("tokens", &cfg.Tokens); err != nil {
		return Config{}, fmt.Errorf("decode tokens: %w", err)
	}
	if err := v.UnmarshalKey("pairs", &cfg.Pairs); err != nil {
		return Config{}, fmt.Errorf("decode pairs: %w", err)
	}
	return cfg, nil
}

func (c Config) LogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.LogFormat,
		Level:    c.LogLevel,
		File:     c.LogFile,
		Compress: c.LogCompress,
	}
}

func (c Config) Program() (solana.PublicKey, error) {
	return ParsePublicKey("program-id", c.ProgramID)
}

// Signer decodes the base58 private key. It is only needed to send or simulate.
func (c Config) Signer() (solana.PrivateKey, error) {
	if c.PrivateKey == "" {
		return nil, fmt.Errorf("private key is required: set %s_PRIVATE_KEY or SOLANA_PRIVATE_KEY", envPrefix)
	}
	key, err := solana.PrivateKeyFromBase58(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// Registry builds the token registry described by the tokens and pairs tables.
func (c Config) Registry() (*registry.Registry, error) {
	authority, err := ParsePublicKey("authority", c.Authority)
	if err != nil {
		return nil, err
	}

	tokens := make([]registry.Token, 0, len(c.Tokens))
	byName := make(map[string]solana.PublicKey, len(c.Tokens))
	for i, t := range c.Tokens {
		mint, err := ParsePublicKey(fmt.Sprintf("tokens[%d].mint", i), t.Mint)
		if err != nil {
			return nil, err
		}
		oracle, err := ParsePublicKey(fmt.Sprintf("tokens[%d].oracle", i), t.Oracle)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, registry.Token{Name: t.Name, Mint: mint, Oracle: oracle, Decimals: t.Decimals})
		byName[strings.ToUpper(t.Name)] = mint
	}

	pairs := make([]registry.Pair, 0, len(c.Pairs))
	for i, p := range c.Pairs {
		if len(p.Mints) != 2 || len(p.FeeDestinations) != 2 {
			return nil, fmt.Errorf("pairs[%d]: need exactly two mints and two fee destinations", i)
		}
		var pair registry.Pair
		pair.FeeRateBps = p.FeeRateBps
		for j := 0; j < 2; j++ {
			if mint, ok := byName[strings.ToUpper(strings.TrimSpace(p.Mints[j]))]; ok {
				pair.Mints[j] = mint
			} else if pair.Mints[j], err = ParsePublicKey(fmt.Sprintf("pairs[%d].mints[%d]", i, j), p.Mints[j]); err != nil {
				return nil, err
			}
			if pair.FeeDestinations[j], err = ParsePublicKey(fmt.Sprintf("pairs[%d].fee_destinations[%d]", i, j), p.FeeDestinations[j]); err != nil {
				return nil, err
			}
		}
		pairs = append(pairs, pair)
	}
	return registry.New(authority, tokens, pairs)
}

// ParsePublicKey decodes a base58 key and checks it is 32 bytes long.
func ParsePublicKey(field, value string) (solana.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", field)
	}
	raw, err := base58.Decode(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: invalid base58 %q: %w", field, value, err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("%s: expected %d bytes, got %d", field, solana.PublicKeyLength, len(raw))
	}
	return solana.PublicKeyFromBytes(raw), nil
}
