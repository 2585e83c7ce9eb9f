package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
)

// rpcValue implements pflag.Value for a repeatable, pair-valued --rpc flag:
// each occurrence supplies "URL,ADDRESS" and appends one RPCFlag.
type rpcValue struct {
	flags *Flags
}

func (v *rpcValue) String() string { return "" }

func (v *rpcValue) Type() string { return "url,address" }

func (v *rpcValue) Set(raw string) error {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("--rpc expects URL,ADDRESS, got %q", raw)
	}
	url := strings.TrimSpace(parts[0])
	addr := strings.TrimSpace(parts[1])
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("--rpc address %q is not a valid address", addr)
	}
	v.flags.RPCs = append(v.flags.RPCs, RPCFlag{URL: url, Address: common.HexToAddress(addr)})
	return nil
}

// priceValue implements pflag.Value for the repeatable --base-token-price
// flag.
type priceValue struct {
	flags *Flags
}

func (v *priceValue) String() string { return "" }
func (v *priceValue) Type() string   { return "int64" }

func (v *priceValue) Set(raw string) error {
	price, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("--base-token-price %q is not an integer: %w", raw, err)
	}
	v.flags.BaseTokenPricesCents = append(v.flags.BaseTokenPricesCents, price)
	return nil
}

// BindFlagSet registers every CLI flag onto fs, writing parsed values into
// flags.
func BindFlagSet(fs *pflag.FlagSet, flags *Flags) {
	fs.Var(&rpcValue{flags: flags}, "rpc", "RPC URL and InteropCenter address, comma-separated (repeatable, one per chain)")
	fs.Var(&priceValue{flags: flags}, "base-token-price", "cents per 10^18 base-token units, one per --rpc in the same order (repeatable)")
	fs.StringVar(&flags.PrivateKeyHex, "private-key", "", "admin signer private key, hex, with or without 0x prefix")
	fs.StringVar(&flags.KMSKeyARN, "kms-key-arn", "", "AWS KMS key ARN to use as the admin signer instead of --private-key")
	fs.Int64Var(&flags.PaymasterBalanceCents, "paymaster-balance-cents", defaultPaymasterBalanceCents, "desired paymaster balance per chain, in USD cents")
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", ":9090", "listen address for the /metrics and /healthz HTTP endpoints")
	fs.Uint64Var(&flags.HistoryWindow, "history-window", 1000, "number of blocks of history to replay on startup, per chain")
}

// Validate performs the structural checks that don't require any RPC
// dial: matching --rpc/--base-token-price counts and a usable signer
// selection. Build performs the remaining (network-dependent) checks.
func (f *Flags) Validate() error {
	if len(f.RPCs) == 0 {
		return relayerr.NewConfigError("at least one --rpc is required", nil)
	}
	if len(f.BaseTokenPricesCents) != len(f.RPCs) {
		return relayerr.NewConfigError(
			fmt.Sprintf("got %d --rpc but %d --base-token-price, counts must match", len(f.RPCs), len(f.BaseTokenPricesCents)),
			nil,
		)
	}
	if f.PrivateKeyHex == "" && f.KMSKeyARN == "" {
		return relayerr.NewConfigError("one of --private-key or --kms-key-arn is required", nil)
	}
	return nil
}
