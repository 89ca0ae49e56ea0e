package registry

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/gtdvccc/sslv2-go/pkg/pool/ssl"
)

// Token is the static description of one supported mint.
type Token struct {
	Name     string
	Mint     solana.PublicKey
	Oracle   solana.PublicKey
	Decimals uint8
}

// Pair is a supported trading pair. Mints keep the order they were configured in.
type Pair struct {
	Mints [2]solana.PublicKey
	// FeeDestinations[i] collects fees for swaps that output Mints[i].
	FeeDestinations [2]solana.PublicKey
	FeeRateBps      uint16
}

// Has reports whether mint is one side of the pair.
func (p Pair) Has(mint solana.PublicKey) bool {
	return p.Mints[0].Equals(mint) || p.Mints[1].Equals(mint)
}

// Other returns the counter mint of the pair.
func (p Pair) Other(mint solana.PublicKey) (solana.PublicKey, bool) {
	switch {
	case p.Mints[0].Equals(mint):
		return p.Mints[1], true
	case p.Mints[1].Equals(mint):
		return p.Mints[0], true
	}
	return solana.PublicKey{}, false
}

// FeeDestination matches the output mint against the stored mints.
func (p Pair) FeeDestination(mintOut solana.PublicKey) (solana.PublicKey, error) {
	for i, mint := range p.Mints {
		if mint.Equals(mintOut) {
			return p.FeeDestinations[i], nil
		}
	}
	return solana.PublicKey{}, fmt.Errorf("%w: %s", ssl.ErrFeeDestinationNotFound, mintOut)
}

// Registry is the immutable token and pair table of one deployment.
type Registry struct {
	authority solana.PublicKey
	tokens    []Token
	byMint    map[solana.PublicKey]int
	byName    map[string]int
	pairs     []Pair
}

// New validates the tables and builds a Registry.
func New(authority solana.PublicKey, tokens []Token, pairs []Pair) (*Registry, error) {
	if authority.IsZero() {
		return nil, fmt.Errorf("registry authority is required")
	}
	r := &Registry{
		authority: authority,
		tokens:    make([]Token, 0, len(tokens)),
		byMint:    make(map[solana.PublicKey]int, len(tokens)),
		byName:    make(map[string]int, len(tokens)),
		pairs:     make([]Pair, 0, len(pairs)),
	}

	for _, token := range tokens {
		if token.Mint.IsZero() {
			return nil, fmt.Errorf("token %q has no mint", token.Name)
		}
		if _, ok := r.byMint[token.Mint]; ok {
			return nil, fmt.Errorf("duplicate token mint %s", token.Mint)
		}
		idx := len(r.tokens)
		r.tokens = append(r.tokens, token)
		r.byMint[token.Mint] = idx
		if token.Name == "" {
			continue
		}
		name := strings.ToUpper(token.Name)
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("duplicate token name %q", token.Name)
		}
		r.byName[name] = idx
	}

	for _, pair := range pairs {
		if pair.Mints[0].Equals(pair.Mints[1]) {
			return nil, fmt.Errorf("pair %s has identical mints", pair.Mints[0])
		}
		for i, mint := range pair.Mints {
			if _, ok := r.byMint[mint]; !ok {
				return nil, fmt.Errorf("pair references %w %s", ssl.ErrUnknownMint, mint)
			}
			if pair.FeeDestinations[i].IsZero() {
				return nil, fmt.Errorf("pair %s-%s has no fee destination for %s",
					pair.Mints[0], pair.Mints[1], mint)
			}
		}
		if pair.FeeRateBps > ssl.BPS_DENOMINATOR {
			return nil, fmt.Errorf("pair %s-%s fee rate %d bps exceeds %d",
				pair.Mints[0], pair.Mints[1], pair.FeeRateBps, ssl.BPS_DENOMINATOR)
		}
		if _, err := r.PairExists(pair.Mints[0], pair.Mints[1]); err == nil {
			return nil, fmt.Errorf("duplicate pair %s-%s", pair.Mints[0], pair.Mints[1])
		}
		r.pairs = append(r.pairs, pair)
	}
	return r, nil
}

// Authority is the seed of the pool registry derivation.
func (r *Registry) Authority() solana.PublicKey {
	return r.authority
}

func (r *Registry) Token(mint solana.PublicKey) (Token, error) {
	idx, ok := r.byMint[mint]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ssl.ErrUnknownMint, mint)
	}
	return r.tokens[idx], nil
}

func (r *Registry) Oracle(mint solana.PublicKey) (solana.PublicKey, error) {
	token, err := r.Token(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return token.Oracle, nil
}

func (r *Registry) Decimals(mint solana.PublicKey) (uint8, error) {
	token, err := r.Token(mint)
	if err != nil {
		return 0, err
	}
	return token.Decimals, nil
}

// MintByName resolves a token name case-insensitively, e.g. "sol" or "USDC".
func (r *Registry) MintByName(name string) (solana.PublicKey, error) {
	idx, ok := r.byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", ssl.ErrUnknownMint, name)
	}
	return r.tokens[idx].Mint, nil
}

// ResolveMint accepts either a configured token name or a base58 mint address.
func (r *Registry) ResolveMint(nameOrAddress string) (solana.PublicKey, error) {
	if mint, err := r.MintByName(nameOrAddress); err == nil {
		return mint, nil
	}
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(nameOrAddress))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", ssl.ErrUnknownMint, nameOrAddress)
	}
	return mint, nil
}

// PairExists looks the pair up in both orders and returns it in stored order.
func (r *Registry) PairExists(mintA, mintB solana.PublicKey) (Pair, error) {
	for _, pair := range r.pairs {
		if pair.Mints[0].Equals(mintA) && pair.Mints[1].Equals(mintB) ||
			pair.Mints[0].Equals(mintB) && pair.Mints[1].Equals(mintA) {
			return pair, nil
		}
	}
	return Pair{}, fmt.Errorf("%w: %s-%s", ssl.ErrUnsupportedPair, mintA, mintB)
}

// ParsePair resolves "SOL-USDC" style names into a supported pair.
func (r *Registry) ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("%w: malformed pair %q", ssl.ErrUnsupportedPair, s)
	}
	a, err := r.MintByName(parts[0])
	if err != nil {
		return Pair{}, err
	}
	b, err := r.MintByName(parts[1])
	if err != nil {
		return Pair{}, err
	}
	return r.PairExists(a, b)
}

func (r *Registry) Tokens() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

func (r *Registry) Pairs() []Pair {
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}
