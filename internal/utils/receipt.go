package utils

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

const (
	receiptPollInterval = 250 * time.Millisecond
	receiptPollTimeout  = 60 * time.Second
)

// ReceiptFetcher is the subset of ethclient.Client needed to poll for a
// transaction receipt. Defined here so callers can pass either an
// *ethclient.Client or a test double.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitForReceipt polls for a transaction's receipt until it is mined, ctx is
// done, or receiptPollTimeout elapses.
func WaitForReceipt(ctx context.Context, client ReceiptFetcher, txHash common.Hash) (*types.Receipt, error) {
	cctx, cancel := context.WithTimeout(ctx, receiptPollTimeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(cctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrap(err, "wait for receipt")
		}
		select {
		case <-cctx.Done():
			return nil, errors.Wrap(cctx.Err(), "wait for receipt: timed out")
		case <-ticker.C:
		}
	}
}
