package forwarder_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/lyfeloopinc/interop-relayer/internal/forwarder"
	"github.com/lyfeloopinc/interop-relayer/internal/message"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
	"github.com/lyfeloopinc/interop-relayer/internal/vmstest"
)

func testMessage() message.ParsedMessage {
	return message.ParsedMessage{
		MsgHash: common.HexToHash("0x01"),
		Sender:  common.HexToAddress("0xaa"),
	}
}

func TestForward_SkipsChainsThatAlreadyReceivedTheMessage(t *testing.T) {
	var receiveCalled bool
	chain := &vmstest.Fake{
		ChainIDFunc: func() uint64 { return 7 },
		IsMessageReceivedFunc: func(ctx context.Context, msgHash common.Hash) (bool, error) {
			return true, nil
		},
		ReceiveInteropMessageFunc: func(ctx context.Context, msgHash common.Hash) error {
			receiveCalled = true
			return nil
		},
	}

	fwd := forwarder.New([]vms.Handle{chain}, zaptest.NewLogger(t), nil)
	fwd.Forward(context.Background(), testMessage())

	assert.False(t, receiveCalled, "should not call ReceiveInteropMessage when receivedMessages already reports true")
}

func TestForward_DeliversToChainsThatHaveNotReceivedTheMessage(t *testing.T) {
	var receivedHash common.Hash
	chain := &vmstest.Fake{
		ChainIDFunc: func() uint64 { return 9 },
		IsMessageReceivedFunc: func(ctx context.Context, msgHash common.Hash) (bool, error) {
			return false, nil
		},
		ReceiveInteropMessageFunc: func(ctx context.Context, msgHash common.Hash) error {
			receivedHash = msgHash
			return nil
		},
	}

	msg := testMessage()
	metrics := &recordingMetrics{}
	fwd := forwarder.New([]vms.Handle{chain}, zaptest.NewLogger(t), metrics)
	fwd.Forward(context.Background(), msg)

	assert.Equal(t, msg.MsgHash, receivedHash)
	assert.Equal(t, []uint64{9}, metrics.forwarded)
	assert.Empty(t, metrics.forwardErrors)
}

func TestForward_IsolatesFailuresPerChain(t *testing.T) {
	failing := &vmstest.Fake{
		ChainIDFunc: func() uint64 { return 1 },
		IsMessageReceivedFunc: func(ctx context.Context, msgHash common.Hash) (bool, error) {
			return false, assert.AnError
		},
	}
	var delivered bool
	healthy := &vmstest.Fake{
		ChainIDFunc: func() uint64 { return 2 },
		IsMessageReceivedFunc: func(ctx context.Context, msgHash common.Hash) (bool, error) {
			return false, nil
		},
		ReceiveInteropMessageFunc: func(ctx context.Context, msgHash common.Hash) error {
			delivered = true
			return nil
		},
	}

	metrics := &recordingMetrics{}
	fwd := forwarder.New([]vms.Handle{failing, healthy}, zaptest.NewLogger(t), metrics)
	fwd.Forward(context.Background(), testMessage())

	assert.True(t, delivered, "a failure on one chain must not block delivery to others")
	assert.Equal(t, []uint64{1}, metrics.forwardErrors)
	assert.Equal(t, []uint64{2}, metrics.forwarded)
}

type recordingMetrics struct {
	forwarded     []uint64
	forwardErrors []uint64
}

func (m *recordingMetrics) ObserveForwarded(destinationChain uint64) {
	m.forwarded = append(m.forwarded, destinationChain)
}

func (m *recordingMetrics) ObserveForwardError(destinationChain uint64) {
	m.forwardErrors = append(m.forwardErrors, destinationChain)
}
