package utils_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/utils"
)

func TestCallWithRetry_ReturnsImmediatelyOnSuccess(t *testing.T) {
	calls := 0
	result, err := utils.CallWithRetry(context.Background(), func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestCallWithRetry_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	result, err := utils.CallWithRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Equal(t, 3, calls)
}

func TestCallWithRetry_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	calls := 0
	_, err := utils.CallWithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("persistent failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted attempts")
	assert.Equal(t, 5, calls)
}

func TestCallWithRetry_StopsEarlyWhenContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	result, err := utils.CallWithRetry(ctx, func() (int, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return 0, errors.New("transient")
	})
	require.Error(t, err)
	assert.Zero(t, result)
	assert.Contains(t, err.Error(), "context done")
}

func TestPrivateKeyToString_RoundTripsThroughParsePrivateKey(t *testing.T) {
	key, err := utils.ParsePrivateKey("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	encoded := utils.PrivateKeyToString(key)
	assert.True(t, len(encoded) > 2 && encoded[:2] == "0x")

	reparsed, err := utils.ParsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, key.D, reparsed.D)
}

func TestParsePrivateKey_AcceptsHexWithoutPrefix(t *testing.T) {
	_, err := utils.ParsePrivateKey("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
}

func TestParsePrivateKey_RejectsInvalidHex(t *testing.T) {
	_, err := utils.ParsePrivateKey("not-hex")
	require.Error(t, err)
}
