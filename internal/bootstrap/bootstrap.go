// Package bootstrap implements the Bootstrap Reconciler (C6): on startup,
// walk every ordered pair of configured chains (source, destination),
// including a chain paired with itself, and bring destination's view of
// source up to date — trusted source registration, preferred paymaster,
// and bridge ratio. Every step is read-then-write so a re-run after a
// crash mid-reconciliation performs no redundant writes.
package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/lyfeloopinc/interop-relayer/internal/config"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

// Metrics is the subset of C9's collectors the reconciler updates.
type Metrics interface {
	ObserveBootstrapWrite(kind string)
}

// Reconciler walks every (source, destination) chain pair and brings each
// destination's trust configuration for that source up to date.
type Reconciler struct {
	chains  []*config.ChainConfig
	handles map[uint64]vms.Handle
	logger  *zap.Logger
	metrics Metrics
}

func New(chains []*config.ChainConfig, handles map[uint64]vms.Handle, logger *zap.Logger, metrics Metrics) *Reconciler {
	return &Reconciler{chains: chains, handles: handles, logger: logger, metrics: metrics}
}

// Reconcile runs all three per-pair steps for every ordered pair of
// configured chains, including a chain paired with itself. Pairs are
// processed sequentially and independently: a failure on one pair is
// logged and does not abort the remaining pairs, since each pair's
// configuration is independent state on the destination contract.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	for _, source := range r.chains {
		for _, destination := range r.chains {
			if err := r.reconcilePair(ctx, source, destination); err != nil {
				r.logger.Error("bootstrap reconciliation failed for chain pair",
					zap.String("source", source.Name),
					zap.String("destination", destination.Name),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (r *Reconciler) reconcilePair(ctx context.Context, source, destination *config.ChainConfig) error {
	src := r.handles[source.ChainID]
	dst := r.handles[destination.ChainID]

	if err := r.reconcileTrustedSource(ctx, dst, source); err != nil {
		return err
	}
	if err := r.reconcilePreferredPaymaster(ctx, src, dst, source); err != nil {
		return err
	}
	if err := r.reconcileBridgeRatio(ctx, src, dst, destination, source); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) reconcileTrustedSource(ctx context.Context, dst vms.Handle, source *config.ChainConfig) error {
	current, err := dst.TrustedSource(ctx, source.ChainID)
	if err != nil {
		return err
	}
	if current == source.InteropCenter {
		return nil
	}
	if err := dst.AddTrustedSource(ctx, source.ChainID, source.InteropCenter); err != nil {
		return err
	}
	r.recordWrite("trusted_source")
	return nil
}

func (r *Reconciler) reconcilePreferredPaymaster(ctx context.Context, src, dst vms.Handle, source *config.ChainConfig) error {
	preferred, err := dst.PreferredPaymasterOf(ctx, source.ChainID)
	if err != nil {
		return err
	}
	target, err := src.PreferredPaymaster(ctx)
	if err != nil {
		return err
	}
	if preferred == target {
		return nil
	}
	if err := dst.SetPreferredPaymaster(ctx, source.ChainID, target); err != nil {
		return err
	}
	r.recordWrite("preferred_paymaster")
	return nil
}

// reconcileBridgeRatio ensures destination knows how to value source's base
// token relative to its own. Both ChainConfig.BaseTokenPriceUSD values are
// USD cents per 10^18 base-token units, so destinationPrice/sourcePrice is
// exactly the ratio the contract should apply nominator/denominator; no gcd
// reduction is needed since the contract consumes the pair as-is.
//
// The bridge config destination holds for source is keyed by destination's
// own base token (t_d) but its remoteToken field records source's base
// token (t_s): source is the one being priced in destination's bridge.
func (r *Reconciler) reconcileBridgeRatio(ctx context.Context, src, dst vms.Handle, destination, source *config.ChainConfig) error {
	sourcePreferredPaymaster, err := src.PreferredPaymaster(ctx)
	if err != nil {
		return err
	}
	sourceBaseToken, err := src.PaymasterBaseToken(ctx, sourcePreferredPaymaster)
	if err != nil {
		return err
	}

	destPreferredPaymaster, err := dst.PreferredPaymaster(ctx)
	if err != nil {
		return err
	}
	destBaseToken, err := dst.PaymasterBaseToken(ctx, destPreferredPaymaster)
	if err != nil {
		return err
	}

	remote, nominator, denominator, err := dst.BridgeState(ctx, destBaseToken, source.ChainID)
	if err != nil {
		return err
	}
	wantNominator := destination.BaseTokenPriceUSD
	wantDenominator := source.BaseTokenPriceUSD
	if remote == sourceBaseToken && nominator != nil && denominator != nil && nominator.Cmp(wantNominator) == 0 && denominator.Cmp(wantDenominator) == 0 {
		return nil
	}

	if err := dst.AddOtherBridge(ctx, source.ChainID, sourceBaseToken, wantNominator, wantDenominator); err != nil {
		return err
	}
	r.recordWrite("bridge_ratio")
	return nil
}

func (r *Reconciler) recordWrite(kind string) {
	if r.metrics != nil {
		r.metrics.ObserveBootstrapWrite(kind)
	}
}
