// Package config builds the relayer's []ChainConfig from CLI flags and
// detects fatal startup error conditions: bad private key, mismatched
// --rpc/--base-token-price counts, and chainId collisions across --rpc
// entries.
package config

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/signer"
)

// ChainConfig is the resolved, immutable configuration for one chain.
// Created once at startup and shared read-only thereafter.
type ChainConfig struct {
	Name              string
	RPCURL            string
	InteropCenter     common.Address
	ChainID           uint64
	Admin             signer.Signer
	BaseTokenPriceUSD *big.Int // cents per 10^18 base-token units

	// TokensForPaymaster is the paymaster target balance in base-token
	// units, derived as paymasterBalanceCents / BaseTokenPriceUSD * 1e18.
	TokensForPaymaster *big.Int
}

// Flags holds the raw, unresolved CLI input, before RPC dial and chainId
// lookup.
type Flags struct {
	RPCs                 []RPCFlag
	BaseTokenPricesCents  []int64
	PrivateKeyHex        string
	KMSKeyARN            string
	PaymasterBalanceCents int64
	MetricsAddr           string
	HistoryWindow         uint64
}

// RPCFlag is one --rpc URL ADDRESS pair.
type RPCFlag struct {
	URL     string
	Address common.Address
}

const defaultPaymasterBalanceCents = 2000

// DefaultFlags returns a Flags with the CLI's documented defaults applied,
// before any --rpc/--private-key values are parsed in.
func DefaultFlags() *Flags {
	return &Flags{
		PaymasterBalanceCents: defaultPaymasterBalanceCents,
		MetricsAddr:           ":9090",
		HistoryWindow:         1000,
	}
}

// Build resolves Flags into []ChainConfig: dials each chain's RPC, fetches
// its chainId, detects collisions, and constructs the shared Signer.
func Build(ctx context.Context, flags *Flags) ([]*ChainConfig, error) {
	if len(flags.RPCs) == 0 {
		return nil, relayerr.NewConfigError("at least one --rpc is required", nil)
	}
	if len(flags.BaseTokenPricesCents) != len(flags.RPCs) {
		return nil, relayerr.NewConfigError("--base-token-price must be given once per --rpc, in the same order", nil)
	}

	admin, err := buildSigner(ctx, flags)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]string, len(flags.RPCs))
	chains := make([]*ChainConfig, 0, len(flags.RPCs))
	for i, rpc := range flags.RPCs {
		client, err := ethclient.DialContext(ctx, rpc.URL)
		if err != nil {
			return nil, relayerr.NewConfigError("dial rpc "+rpc.URL, err)
		}
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, relayerr.NewConfigError("fetch chainId for "+rpc.URL, err)
		}
		client.Close()

		id := chainID.Uint64()
		if _, ok := seen[id]; ok {
			return nil, &relayerr.ChainIdCollisionError{ChainID: id}
		}
		seen[id] = rpc.URL

		priceCents := big.NewInt(flags.BaseTokenPricesCents[i])
		tokensForPaymaster := tokensForPaymasterBalance(flags.PaymasterBalanceCents, priceCents)

		chains = append(chains, &ChainConfig{
			Name:                namedChain(i),
			RPCURL:              rpc.URL,
			InteropCenter:       rpc.Address,
			ChainID:             id,
			Admin:               admin,
			BaseTokenPriceUSD:   priceCents,
			TokensForPaymaster:  tokensForPaymaster,
		})
	}

	return chains, nil
}

// tokensForPaymasterBalance converts a USD-cents paymaster target into
// base-token smallest units: paymasterBalanceCents / priceCentsPer1e18 *
// 1e18.
func tokensForPaymasterBalance(paymasterBalanceCents int64, priceCentsPer1e18 *big.Int) *big.Int {
	oneE18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	numerator := new(big.Int).Mul(big.NewInt(paymasterBalanceCents), oneE18)
	return new(big.Int).Div(numerator, priceCentsPer1e18)
}

func namedChain(ordinal int) string {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if ordinal < len(letters) {
		return "chain-" + string(letters[ordinal])
	}
	return "chain"
}
