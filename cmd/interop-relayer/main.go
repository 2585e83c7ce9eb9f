// Command interop-relayer is the relayer daemon's entrypoint: parse flags,
// build per-chain configuration and handles, reconcile trust bootstrap,
// then run the orchestrator until interrupted.
package main

import (
	"context"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lyfeloopinc/interop-relayer/internal/bootstrap"
	"github.com/lyfeloopinc/interop-relayer/internal/config"
	"github.com/lyfeloopinc/interop-relayer/internal/forwarder"
	"github.com/lyfeloopinc/interop-relayer/internal/materializer"
	"github.com/lyfeloopinc/interop-relayer/internal/metrics"
	"github.com/lyfeloopinc/interop-relayer/internal/relayer"
	"github.com/lyfeloopinc/interop-relayer/internal/store"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("relayer exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	flags := config.DefaultFlags()
	config.BindFlagSet(pflag.CommandLine, flags)
	pflag.Parse()

	if err := flags.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chainConfigs, err := config.Build(ctx, flags)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collectors := metrics.NewCollectors(registry)

	handles := make(map[uint64]vms.Handle, len(chainConfigs))
	handleList := make([]vms.Handle, 0, len(chainConfigs))
	tokensForPaymaster := make(map[uint64]*big.Int, len(chainConfigs))
	checkers := make([]metrics.ChainChecker, 0, len(chainConfigs))
	for _, cc := range chainConfigs {
		handle, err := vms.NewEVM(cc.Name, cc.RPCURL, cc.ChainID, cc.InteropCenter, cc.Admin, logger, collectors)
		if err != nil {
			return err
		}
		handles[cc.ChainID] = handle
		handleList = append(handleList, handle)
		tokensForPaymaster[cc.ChainID] = cc.TokensForPaymaster
		checkers = append(checkers, metrics.ChainChecker{
			Name:  cc.Name,
			Probe: rpcLivenessProbe(cc.RPCURL),
		})
	}
	defer func() {
		for _, h := range handleList {
			h.Close()
		}
	}()

	reconciler := bootstrap.New(chainConfigs, handles, logger, collectors)
	if err := reconciler.Reconcile(ctx); err != nil {
		return err
	}

	sharedStore := store.New()
	fwd := forwarder.New(handleList, logger, collectors)
	mat := materializer.New(handles, tokensForPaymaster, sharedStore, logger, collectors)
	orchestrator := relayer.New(handleList, flags.HistoryWindow, sharedStore, fwd, mat, logger)

	server := &http.Server{Addr: flags.MetricsAddr, Handler: metrics.NewServer(registry, checkers)}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server exited", zap.Error(err))
		}
	}()
	defer server.Close()

	return orchestrator.Run(ctx)
}

func rpcLivenessProbe(rpcURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		client, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			return err
		}
		defer client.Close()
		_, err = client.BlockNumber(ctx)
		return err
	}
}
