package utils_test

import (
	"context"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/utils"
)

type fakeReceiptFetcher struct {
	callsBeforeFound int
	calls            int
	receipt          *types.Receipt
	err              error
}

func (f *fakeReceiptFetcher) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.callsBeforeFound {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func TestWaitForReceipt_ReturnsAsSoonAsTheReceiptIsMined(t *testing.T) {
	fetcher := &fakeReceiptFetcher{callsBeforeFound: 2, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	receipt, err := utils.WaitForReceipt(context.Background(), fetcher, common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.GreaterOrEqual(t, fetcher.calls, 3)
}

func TestWaitForReceipt_PropagatesNonNotFoundErrorsImmediately(t *testing.T) {
	fetcher := &fakeReceiptFetcher{err: assertErr}
	_, err := utils.WaitForReceipt(context.Background(), fetcher, common.HexToHash("0x01"))
	require.Error(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestWaitForReceipt_StopsWhenTheContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &fakeReceiptFetcher{callsBeforeFound: 1000}
	_, err := utils.WaitForReceipt(ctx, fetcher, common.HexToHash("0x01"))
	require.Error(t, err)
}

var assertErr = &testError{"simulated rpc failure"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
