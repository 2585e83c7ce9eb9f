// Package utils collects small helpers shared across the relayer's chain
// I/O code: bounded retry of RPC calls, receipt polling, and private key
// string conversion.
package utils

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// DefaultRPCRetryTimeout is a 30-second retry budget. CallWithRetry does not
// apply it: an invocation is bounded only by ctx and maxAttempts.
const DefaultRPCRetryTimeout = 30 * time.Second

const (
	retryInterval = 500 * time.Millisecond
	maxAttempts   = 5
)

// CallWithRetry retries fn with a fixed backoff until ctx is done or
// maxAttempts is reached. It does not distinguish retryable from
// non-retryable errors; callers that need that distinction should inspect
// the error kind before calling CallWithRetry.
func CallWithRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, errors.Wrap(ctx.Err(), "call with retry: context done")
		case <-time.After(retryInterval):
		}
	}
	return result, errors.Wrap(err, "call with retry: exhausted attempts")
}

// PrivateKeyToString renders a private key as a 0x-prefixed hex string, the
// inverse of ParsePrivateKey.
func PrivateKeyToString(key *ecdsa.PrivateKey) string {
	return "0x" + hex.EncodeToString(crypto.FromECDSA(key))
}

// ParsePrivateKey accepts a hex private key with or without a 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := hexKey
	if len(trimmed) >= 2 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return key, nil
}
