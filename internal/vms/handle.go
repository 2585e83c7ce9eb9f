// Package vms implements the Chain Handle (C1): a typed facade over one
// chain's JSON-RPC endpoint bound to one admin signer, covering both reads
// (trust/paymaster/bridge state, aliased accounts) and writes (admin
// transactions, raw transaction submission).
package vms

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// HistoryWindow is the default number of blocks of history
// WatchInteropEvents replays on startup. Overridable via --history-window.
const HistoryWindow = 1000

// GasPerPubdata is the constant gas-per-pubdata charged on the
// fee-sponsored envelope the materializer builds.
const GasPerPubdata = 50_000

// Handle is the Chain Handle interface (C1). One implementation
// (*evmHandle) is bound per configured chain.
type Handle interface {
	ChainID() uint64
	InteropCenterAddress() common.Address
	AdminAddress() common.Address

	// WatchInteropEvents fetches historical logs over the last
	// historyWindow blocks, invokes sink for each in order, then
	// subscribes for new logs and invokes sink for each as they arrive.
	// It blocks until ctx is done or the live subscription errors.
	WatchInteropEvents(ctx context.Context, historyWindow uint64, sink func(types.Log) error) error

	AliasedAccountOf(ctx context.Context, sourceChainID uint64, sourceAddress common.Address) (common.Address, error)
	PreferredPaymaster(ctx context.Context) (common.Address, error)
	PaymasterBaseToken(ctx context.Context, paymaster common.Address) (common.Address, error)
	IsBundleExecuted(ctx context.Context, bundleHash common.Hash) (bool, error)
	IsMessageReceived(ctx context.Context, msgHash common.Hash) (bool, error)
	TrustedSource(ctx context.Context, sourceChainID uint64) (common.Address, error)
	PreferredPaymasterOf(ctx context.Context, sourceChainID uint64) (common.Address, error)
	BridgeState(ctx context.Context, token common.Address, sourceChainID uint64) (remote common.Address, ratioNominator, ratioDenominator *big.Int, err error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
	NonceAt(ctx context.Context, addr common.Address) (uint64, error)

	DeployAliasedAccount(ctx context.Context, sourceAddress common.Address, sourceChainID uint64) error
	EnsurePaymasterFunded(ctx context.Context, paymaster common.Address, target *big.Int) error
	ReceiveInteropMessage(ctx context.Context, msgHash common.Hash) error
	AddTrustedSource(ctx context.Context, sourceChainID uint64, interopCenter common.Address) error
	SetPreferredPaymaster(ctx context.Context, sourceChainID uint64, paymaster common.Address) error
	AddOtherBridge(ctx context.Context, sourceChainID uint64, remoteToken common.Address, ratioNominator, ratioDenominator *big.Int) error

	SendRawTransaction(ctx context.Context, raw []byte) (*types.Receipt, error)

	Close()
}
