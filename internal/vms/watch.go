package vms

import (
	"context"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/lyfeloopinc/interop-relayer/internal/contracts"
	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/utils"
)

// WatchInteropEvents fetches [max(0, H-historyWindow), H] historical logs
// filtered by the InteropMessageSent signature and this chain's
// InteropCenter address, invokes sink for each in order, then subscribes
// from H+1 and invokes sink for each new log. Historical replay is
// strictly sequential; so is the live tail.
func (h *evmHandle) WatchInteropEvents(ctx context.Context, historyWindow uint64, sink func(types.Log) error) error {
	head, err := utils.CallWithRetry(ctx, func() (uint64, error) {
		return h.client.BlockNumber(ctx)
	})
	if err != nil {
		return relayerr.NewRpcError(h.chainID, "BlockNumber", err)
	}

	var from uint64
	if head > historyWindow {
		from = head - historyWindow
	}

	query := ethereum.FilterQuery{
		FromBlock: bigFromU64(from),
		ToBlock:   bigFromU64(head),
		Addresses: []common.Address{h.interopCenter},
		Topics:    [][]common.Hash{{contracts.InteropMessageSentTopic}},
	}

	historical, err := utils.CallWithRetry(ctx, func() ([]types.Log, error) {
		return h.client.FilterLogs(ctx, query)
	})
	if err != nil {
		return relayerr.NewRpcError(h.chainID, "FilterLogs", err)
	}

	h.logger.Info("replaying historical interop logs",
		zap.String("chain", h.name),
		zap.Uint64("fromBlock", from),
		zap.Uint64("toBlock", head),
		zap.Int("count", len(historical)),
	)

	for _, log := range historical {
		if err := sink(log); err != nil {
			return err
		}
	}

	liveQuery := ethereum.FilterQuery{
		FromBlock: bigFromU64(head + 1),
		Addresses: []common.Address{h.interopCenter},
		Topics:    [][]common.Hash{{contracts.InteropMessageSentTopic}},
	}

	logCh := make(chan types.Log)
	sub, err := h.client.SubscribeFilterLogs(ctx, liveQuery, logCh)
	if err != nil {
		return relayerr.NewRpcError(h.chainID, "SubscribeFilterLogs", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return relayerr.NewRpcError(h.chainID, "live subscription", err)
		case log := <-logCh:
			if err := sink(log); err != nil {
				return err
			}
		}
	}
}
