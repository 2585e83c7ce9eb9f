// Package materializer implements the type-C handler (C5): turning a
// materialized InteropTransaction into a signed, submitted transaction on
// its destination chain. This is the one place the relayer constructs a
// transaction that is not signed by its own admin key — the aliased
// account "signs" via a provenance record carried in the custom signature
// field of a fee-sponsored transaction envelope instead.
package materializer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/lyfeloopinc/interop-relayer/internal/contracts"
	"github.com/lyfeloopinc/interop-relayer/internal/message"
	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/store"
	"github.com/lyfeloopinc/interop-relayer/internal/txenvelope"
	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

// Metrics is the subset of C9's collectors the materializer updates.
type Metrics interface {
	ObserveMaterialized(destinationChain uint64)
	ObserveMaterializeFailure(destinationChain uint64, reason string)
}

// Materializer executes type-C messages' bundles on their destination
// chains. One instance is shared by every chain's orchestrator goroutine.
type Materializer struct {
	chains             map[uint64]vms.Handle
	tokensForPaymaster map[uint64]*big.Int
	store              *store.SharedStore
	logger             *zap.Logger
	metrics            Metrics
}

func New(chains map[uint64]vms.Handle, tokensForPaymaster map[uint64]*big.Int, sharedStore *store.SharedStore, logger *zap.Logger, metrics Metrics) *Materializer {
	return &Materializer{
		chains:             chains,
		tokensForPaymaster: tokensForPaymaster,
		store:              sharedStore,
		logger:             logger,
		metrics:            metrics,
	}
}

// Materialize executes msg's bundle on its destination chain. msg must
// satisfy msg.IsTypeC() with a non-nil InteropTx; callers are expected to
// have already checked this.
//
// Steps:
//  1. resolve bundleHash (and feesBundleHash, if set) against the shared
//     store; a miss returns MissingDependencyError. Nothing retries the
//     message in-process: the orchestrator logs the error and moves on, and
//     the message is materialized only if the watcher delivers it again.
//  2. check the destination contract's executedBundles for idempotence,
//     for the bundle and, if set, the fee bundle.
//  3. derive the aliased account for the source sender and deploy it if it
//     has no code yet.
//  4. build paymaster params from the fee bundle, if any, and top up the
//     paymaster; funding happens for every type-C message, not only those
//     carrying a fee bundle.
//  5. build executeInteropBundle calldata, wrap it in the fee-sponsored
//     envelope with a provenance-only custom signature, and submit it.
func (m *Materializer) Materialize(ctx context.Context, msg message.ParsedMessage) error {
	if msg.InteropTx == nil {
		return relayerr.NewDecodeError("materialize called on a message with no InteropTransaction", nil)
	}
	tx := *msg.InteropTx

	destination, ok := m.chains[tx.DestinationChainID]
	if !ok {
		err := relayerr.NewConfigError("no chain configured for destination chainId", nil)
		m.fail(tx.DestinationChainID, "unconfigured_destination", err)
		return err
	}

	bundleMsg, ok := m.store.Get(tx.BundleHash)
	if !ok {
		err := &relayerr.MissingDependencyError{Hash: tx.BundleHash}
		m.fail(tx.DestinationChainID, "missing_bundle", err)
		return err
	}

	var feeMsg message.ParsedMessage
	hasFee := tx.FeesBundleHash != (common.Hash{})
	if hasFee {
		feeMsg, ok = m.store.Get(tx.FeesBundleHash)
		if !ok {
			err := &relayerr.MissingDependencyError{Hash: tx.FeesBundleHash}
			m.fail(tx.DestinationChainID, "missing_fee_bundle", err)
			return err
		}
	}

	executed, err := destination.IsBundleExecuted(ctx, tx.BundleHash)
	if err != nil {
		m.fail(tx.DestinationChainID, "check_executed", err)
		return err
	}
	if executed {
		err := &relayerr.AlreadyExecutedError{Hash: tx.BundleHash}
		m.logger.Info("bundle already executed, skipping", zap.String("bundleHash", tx.BundleHash.Hex()))
		return err
	}
	if hasFee {
		feeExecuted, err := destination.IsBundleExecuted(ctx, tx.FeesBundleHash)
		if err != nil {
			m.fail(tx.DestinationChainID, "check_executed", err)
			return err
		}
		if feeExecuted {
			m.logger.Info("fee bundle already executed, skipping", zap.String("feesBundleHash", tx.FeesBundleHash.Hex()))
			return &relayerr.AlreadyExecutedError{Hash: tx.FeesBundleHash}
		}
	}

	aliasedAccount, err := destination.AliasedAccountOf(ctx, msg.Interop.SourceChainID, tx.SourceChainSender)
	if err != nil {
		m.fail(tx.DestinationChainID, "aliased_account_lookup", err)
		return err
	}
	if err := m.ensureAliasedAccountDeployed(ctx, destination, aliasedAccount, msg.Interop.SourceChainID, tx); err != nil {
		m.fail(tx.DestinationChainID, "deploy_aliased_account", err)
		return err
	}

	paymasterParams, err := m.buildPaymasterParams(ctx, destination, tx, hasFee, feeMsg)
	if err != nil {
		m.fail(tx.DestinationChainID, "paymaster_setup", err)
		return err
	}

	calldata, err := contracts.InteropCenterABI.Pack("executeInteropBundle", bundleMsg.RawData, []byte{})
	if err != nil {
		err = relayerr.NewDecodeError("pack executeInteropBundle", err)
		m.fail(tx.DestinationChainID, "pack_calldata", err)
		return err
	}

	signature, err := packReservedStuff(msg, tx)
	if err != nil {
		m.fail(tx.DestinationChainID, "pack_signature", err)
		return err
	}

	nonce, err := destination.NonceAt(ctx, aliasedAccount)
	if err != nil {
		m.fail(tx.DestinationChainID, "nonce_lookup", err)
		return err
	}

	// Value is intentionally not propagated from tx.Value: the
	// fee-sponsored envelope never carries native value, only the
	// paymaster-denominated fee. See DESIGN.md for the Open Question this
	// resolves.
	envelope := txenvelope.FeeSponsoredTx{
		ChainID:         new(big.Int).SetUint64(tx.DestinationChainID),
		Nonce:           nonce,
		GasLimit:        tx.GasLimit,
		GasPrice:        tx.GasPrice,
		GasPerPubdata:   big.NewInt(vms.GasPerPubdata),
		To:              destination.InteropCenterAddress(),
		Value:           big.NewInt(0),
		Data:            calldata,
		From:            aliasedAccount,
		Paymaster:       paymasterParams,
		CustomSignature: signature,
	}

	raw, err := txenvelope.Encode(envelope)
	if err != nil {
		err = relayerr.NewDecodeError("encode fee-sponsored envelope", err)
		m.fail(tx.DestinationChainID, "encode_envelope", err)
		return err
	}

	if _, err := destination.SendRawTransaction(ctx, raw); err != nil {
		m.fail(tx.DestinationChainID, "submit", err)
		return err
	}

	if m.metrics != nil {
		m.metrics.ObserveMaterialized(tx.DestinationChainID)
	}
	m.logger.Info("materialized interop bundle",
		zap.Uint64("destinationChain", tx.DestinationChainID),
		zap.String("bundleHash", tx.BundleHash.Hex()),
		zap.String("aliasedAccount", aliasedAccount.Hex()),
		zap.String("unpropagatedValue", tx.Value.String()),
	)
	return nil
}

func (m *Materializer) ensureAliasedAccountDeployed(ctx context.Context, destination vms.Handle, aliasedAccount common.Address, sourceChainID uint64, tx message.InteropTransaction) error {
	code, err := destination.CodeAt(ctx, aliasedAccount)
	if err != nil {
		return err
	}
	if len(code) > 0 {
		return nil
	}
	return destination.DeployAliasedAccount(ctx, tx.SourceChainSender, sourceChainID)
}

// buildPaymasterParams resolves the destination paymaster (preferring the
// InteropTransaction's explicit choice, falling back to the destination
// chain's configured preferred paymaster), derives the paymaster input from
// the fee bundle's InteropMessage when one is present, and calls
// EnsurePaymasterFunded with the destination's configured target (which
// transfers the full target whenever the balance is below it). Funding does
// not depend on the fee bundle:
// every type-C message must leave its destination paymaster funded,
// whether or not it carries a fee bundle.
func (m *Materializer) buildPaymasterParams(ctx context.Context, destination vms.Handle, tx message.InteropTransaction, hasFee bool, feeMsg message.ParsedMessage) (txenvelope.PaymasterParams, error) {
	paymaster := tx.DestinationPaymaster
	if paymaster == (common.Address{}) {
		var err error
		paymaster, err = destination.PreferredPaymaster(ctx)
		if err != nil {
			return txenvelope.PaymasterParams{}, err
		}
	}

	var paymasterInput []byte
	if hasFee {
		encoded, err := contracts.InteropMessageArguments().Pack(
			feeMsg.Interop.Sender,
			new(big.Int).SetUint64(feeMsg.Interop.SourceChainID),
			new(big.Int).SetUint64(feeMsg.Interop.MessageNum),
			feeMsg.Interop.Data,
		)
		if err != nil {
			return txenvelope.PaymasterParams{}, relayerr.NewDecodeError("pack fee bundle InteropMessage for paymasterInput", err)
		}
		paymasterInput = encoded
	}

	if target, ok := m.tokensForPaymaster[tx.DestinationChainID]; ok {
		if err := destination.EnsurePaymasterFunded(ctx, paymaster, target); err != nil {
			return txenvelope.PaymasterParams{}, err
		}
	}

	return txenvelope.PaymasterParams{Paymaster: paymaster, Input: paymasterInput}, nil
}

// packReservedStuff ABI-encodes the provenance record placed in the
// materialized transaction's custom signature field.
func packReservedStuff(msg message.ParsedMessage, tx message.InteropTransaction) ([]byte, error) {
	encoded, err := contracts.TransactionReservedStuffArguments().Pack(
		tx.SourceChainSender,
		msg.Interop.Sender,
		new(big.Int).SetUint64(msg.Interop.SourceChainID),
		new(big.Int).SetUint64(msg.Interop.MessageNum),
		new(big.Int).SetUint64(tx.DestinationChainID),
		tx.BundleHash,
		tx.FeesBundleHash,
	)
	if err != nil {
		return nil, relayerr.NewDecodeError("pack TransactionReservedStuff", err)
	}
	return encoded, nil
}

func (m *Materializer) fail(destinationChain uint64, reason string, err error) {
	if m.metrics != nil {
		m.metrics.ObserveMaterializeFailure(destinationChain, reason)
	}
	m.logger.Error("materialization failed",
		zap.Uint64("destinationChain", destinationChain),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
