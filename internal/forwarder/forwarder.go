// Package forwarder implements the type-A handler (C4): replaying any
// observed message onto every configured chain's InteropCenter (the origin
// chain included) exactly once,
// with per-destination error isolation so one unreachable chain never
// blocks delivery to the rest.
package forwarder

import (
	"context"

	"go.uber.org/zap"

	"github.com/lyfeloopinc/interop-relayer/internal/message"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

// Metrics is the subset of C9's collectors the forwarder updates.
type Metrics interface {
	ObserveForwarded(destinationChain uint64)
	ObserveForwardError(destinationChain uint64)
}

type Forwarder struct {
	chains  []vms.Handle
	logger  *zap.Logger
	metrics Metrics
}

func New(chains []vms.Handle, logger *zap.Logger, metrics Metrics) *Forwarder {
	return &Forwarder{chains: chains, logger: logger, metrics: metrics}
}

// Forward replays msg onto every configured chain's InteropCenter,
// including the origin chain (whose contract is relied on to no-op on its
// own message). For each destination, it checks receivedMessages first and
// skips if already true; a failure on one chain is logged and does not
// abort forwarding to the others.
func (f *Forwarder) Forward(ctx context.Context, msg message.ParsedMessage) {
	for _, chain := range f.chains {
		f.forwardToChain(ctx, chain, msg)
	}
}

func (f *Forwarder) forwardToChain(ctx context.Context, chain vms.Handle, msg message.ParsedMessage) {
	received, err := chain.IsMessageReceived(ctx, msg.MsgHash)
	if err != nil {
		f.logFailure(chain, msg, err)
		return
	}
	if received {
		return
	}

	if err := chain.ReceiveInteropMessage(ctx, msg.MsgHash); err != nil {
		f.logFailure(chain, msg, err)
		return
	}

	if f.metrics != nil {
		f.metrics.ObserveForwarded(chain.ChainID())
	}
	f.logger.Info("forwarded interop message",
		zap.Uint64("destinationChain", chain.ChainID()),
		zap.String("msgHash", msg.MsgHash.Hex()),
	)
}

func (f *Forwarder) logFailure(chain vms.Handle, msg message.ParsedMessage, err error) {
	if f.metrics != nil {
		f.metrics.ObserveForwardError(chain.ChainID())
	}
	f.logger.Error("failed to forward interop message",
		zap.Uint64("destinationChain", chain.ChainID()),
		zap.String("msgHash", msg.MsgHash.Hex()),
		zap.Error(err),
	)
}
