// Package relayer implements the orchestrator (C7): one goroutine per
// configured chain, each watching that chain's InteropCenter and, for every
// observed message, forwarding it to every configured chain and, if it is
// type-C, materializing its bundle on its destination — before finally
// inserting it into the shared store, so a dependent message observed
// later always finds its dependency already recorded.
package relayer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lyfeloopinc/interop-relayer/internal/forwarder"
	"github.com/lyfeloopinc/interop-relayer/internal/materializer"
	"github.com/lyfeloopinc/interop-relayer/internal/message"
	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/store"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

// Orchestrator runs one watch loop per configured chain.
type Orchestrator struct {
	chains       []vms.Handle
	historyWindow uint64
	store        *store.SharedStore
	forwarder    *forwarder.Forwarder
	materializer *materializer.Materializer
	logger       *zap.Logger
}

func New(chains []vms.Handle, historyWindow uint64, sharedStore *store.SharedStore, fwd *forwarder.Forwarder, mat *materializer.Materializer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		chains:        chains,
		historyWindow: historyWindow,
		store:         sharedStore,
		forwarder:     fwd,
		materializer:  mat,
		logger:        logger,
	}
}

// Run starts one watch goroutine per chain and blocks until all of them
// exit. A chain's watch loop that returns an error stops only that chain;
// the other chains keep running until ctx is canceled. Run returns the
// first non-nil error any loop returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	var group errgroup.Group
	for _, chain := range o.chains {
		chain := chain
		group.Go(func() error {
			return o.watchChain(ctx, chain)
		})
	}
	return group.Wait()
}

func (o *Orchestrator) watchChain(ctx context.Context, chain vms.Handle) error {
	sourceChainID := chain.ChainID()
	return chain.WatchInteropEvents(ctx, o.historyWindow, func(log types.Log) error {
		parsed, err := message.Decode(log, sourceChainID)
		if err != nil {
			// A DecodeError indicates a contract/relayer version skew, not a
			// transient condition: surface it fatally so this chain's watch
			// loop stops instead of silently dropping every future event.
			o.logger.Error("failed to decode interop message",
				zap.Uint64("sourceChain", sourceChainID),
				zap.String("txHash", log.TxHash.Hex()),
				zap.Error(err),
			)
			return err
		}
		o.handleMessage(ctx, parsed)
		return nil
	})
}

// handleMessage enforces forward-before-materialize-before-insert
// ordering, so that a crash between forward and insert only risks a
// redundant (idempotent) forward on restart, never a missed materialization
// whose dependency silently vanished.
func (o *Orchestrator) handleMessage(ctx context.Context, msg message.ParsedMessage) {
	o.forwarder.Forward(ctx, msg)

	if msg.IsTypeC() {
		if err := o.materializer.Materialize(ctx, msg); err != nil {
			var alreadyExecuted *relayerr.AlreadyExecutedError
			if !errors.As(err, &alreadyExecuted) {
				o.logger.Warn("materialization did not complete this round",
					zap.String("msgHash", msg.MsgHash.Hex()),
					zap.Error(err),
				)
			}
		}
	}

	o.store.Insert(msg)
}
