// Package relayerr defines the typed error kinds the relayer distinguishes
// between at each layer: fatal startup errors versus per-message errors that
// must not abort sibling work.
package relayerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError wraps a fatal startup configuration problem (bad key, mismatched
// flag counts, malformed RPC URL).
type ConfigError struct {
	cause error
}

func NewConfigError(msg string, cause error) *ConfigError {
	return &ConfigError{cause: errors.Wrap(cause, msg)}
}

func (e *ConfigError) Error() string { return e.cause.Error() }
func (e *ConfigError) Unwrap() error { return e.cause }

// ChainIdCollisionError indicates two --rpc entries resolved to the same
// on-chain chainId.
type ChainIdCollisionError struct {
	ChainID uint64
}

func (e *ChainIdCollisionError) Error() string {
	return fmt.Sprintf("chain id collision: %d is claimed by more than one --rpc entry", e.ChainID)
}

// RpcError wraps a transport or node-side failure on a read or write against
// a chain's RPC endpoint. Callers decide whether to log-and-continue
// (reads during event handling, type-C submission failures) or propagate.
type RpcError struct {
	Chain uint64
	Op    string
	cause error
}

func NewRpcError(chain uint64, op string, cause error) *RpcError {
	return &RpcError{Chain: chain, Op: op, cause: cause}
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error on chain %d during %s: %v", e.Chain, e.Op, e.cause)
}

func (e *RpcError) Unwrap() error { return e.cause }

// MissingDependencyError means a type-C message's referenced bundleHash (or
// feesBundleHash) is not yet present in the shared store. Not retried
// in-process; the orchestrator logs it and moves on, and the message is
// handled again only if its chain's watcher delivers it again.
type MissingDependencyError struct {
	Hash [32]byte
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: bundle %x not found in store", e.Hash)
}

// AlreadyExecutedError means the destination contract already reports the
// bundle (or fee bundle) as executed; materialization is skipped silently.
type AlreadyExecutedError struct {
	Hash [32]byte
}

func (e *AlreadyExecutedError) Error() string {
	return fmt.Sprintf("bundle %x already executed on destination", e.Hash)
}

// DecodeError indicates an event payload could not be ABI-decoded. Treated
// as fatal within the handling of that log: it signals a contract/relayer
// version skew, not a transient condition.
type DecodeError struct {
	cause error
}

func NewDecodeError(msg string, cause error) *DecodeError {
	return &DecodeError{cause: errors.Wrap(cause, msg)}
}

func (e *DecodeError) Error() string { return e.cause.Error() }
func (e *DecodeError) Unwrap() error { return e.cause }
