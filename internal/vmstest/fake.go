// Package vmstest provides a hand-written fake of vms.Handle for use in
// other packages' tests, in place of a generated go.uber.org/mock client:
// most of vms.Handle's surface is exercised by only one or two call sites
// per test, so a small struct of overridable function fields (defaulting
// to harmless zero values) is more readable than a full mock's
// expectation DSL for the handful of calls each test actually cares about.
package vmstest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lyfeloopinc/interop-relayer/internal/vms"
)

var _ vms.Handle = (*Fake)(nil)

// Fake implements vms.Handle. Every method delegates to an overridable
// function field; unset fields return harmless zero values so a test only
// needs to set the handful of fields its scenario exercises.
type Fake struct {
	ChainIDFunc              func() uint64
	InteropCenterAddressFunc func() common.Address
	AdminAddressFunc         func() common.Address
	WatchInteropEventsFunc   func(ctx context.Context, historyWindow uint64, sink func(types.Log) error) error
	AliasedAccountOfFunc     func(ctx context.Context, sourceChainID uint64, sourceAddress common.Address) (common.Address, error)
	PreferredPaymasterFunc   func(ctx context.Context) (common.Address, error)
	PaymasterBaseTokenFunc   func(ctx context.Context, paymaster common.Address) (common.Address, error)
	IsBundleExecutedFunc     func(ctx context.Context, bundleHash common.Hash) (bool, error)
	IsMessageReceivedFunc    func(ctx context.Context, msgHash common.Hash) (bool, error)
	TrustedSourceFunc        func(ctx context.Context, sourceChainID uint64) (common.Address, error)
	PreferredPaymasterOfFunc func(ctx context.Context, sourceChainID uint64) (common.Address, error)
	BridgeStateFunc          func(ctx context.Context, token common.Address, sourceChainID uint64) (common.Address, *big.Int, *big.Int, error)
	CodeAtFunc               func(ctx context.Context, addr common.Address) ([]byte, error)
	NonceAtFunc              func(ctx context.Context, addr common.Address) (uint64, error)
	DeployAliasedAccountFunc func(ctx context.Context, sourceAddress common.Address, sourceChainID uint64) error
	EnsurePaymasterFundedFunc func(ctx context.Context, paymaster common.Address, target *big.Int) error
	ReceiveInteropMessageFunc func(ctx context.Context, msgHash common.Hash) error
	AddTrustedSourceFunc     func(ctx context.Context, sourceChainID uint64, interopCenter common.Address) error
	SetPreferredPaymasterFunc func(ctx context.Context, sourceChainID uint64, paymaster common.Address) error
	AddOtherBridgeFunc       func(ctx context.Context, sourceChainID uint64, remoteToken common.Address, ratioNominator, ratioDenominator *big.Int) error
	SendRawTransactionFunc   func(ctx context.Context, raw []byte) (*types.Receipt, error)
	CloseFunc                func()
}

func (f *Fake) ChainID() uint64 {
	if f.ChainIDFunc != nil {
		return f.ChainIDFunc()
	}
	return 0
}

func (f *Fake) InteropCenterAddress() common.Address {
	if f.InteropCenterAddressFunc != nil {
		return f.InteropCenterAddressFunc()
	}
	return common.Address{}
}

func (f *Fake) AdminAddress() common.Address {
	if f.AdminAddressFunc != nil {
		return f.AdminAddressFunc()
	}
	return common.Address{}
}

func (f *Fake) WatchInteropEvents(ctx context.Context, historyWindow uint64, sink func(types.Log) error) error {
	if f.WatchInteropEventsFunc != nil {
		return f.WatchInteropEventsFunc(ctx, historyWindow, sink)
	}
	return nil
}

func (f *Fake) AliasedAccountOf(ctx context.Context, sourceChainID uint64, sourceAddress common.Address) (common.Address, error) {
	if f.AliasedAccountOfFunc != nil {
		return f.AliasedAccountOfFunc(ctx, sourceChainID, sourceAddress)
	}
	return common.Address{}, nil
}

func (f *Fake) PreferredPaymaster(ctx context.Context) (common.Address, error) {
	if f.PreferredPaymasterFunc != nil {
		return f.PreferredPaymasterFunc(ctx)
	}
	return common.Address{}, nil
}

func (f *Fake) PaymasterBaseToken(ctx context.Context, paymaster common.Address) (common.Address, error) {
	if f.PaymasterBaseTokenFunc != nil {
		return f.PaymasterBaseTokenFunc(ctx, paymaster)
	}
	return common.Address{}, nil
}

func (f *Fake) IsBundleExecuted(ctx context.Context, bundleHash common.Hash) (bool, error) {
	if f.IsBundleExecutedFunc != nil {
		return f.IsBundleExecutedFunc(ctx, bundleHash)
	}
	return false, nil
}

func (f *Fake) IsMessageReceived(ctx context.Context, msgHash common.Hash) (bool, error) {
	if f.IsMessageReceivedFunc != nil {
		return f.IsMessageReceivedFunc(ctx, msgHash)
	}
	return false, nil
}

func (f *Fake) TrustedSource(ctx context.Context, sourceChainID uint64) (common.Address, error) {
	if f.TrustedSourceFunc != nil {
		return f.TrustedSourceFunc(ctx, sourceChainID)
	}
	return common.Address{}, nil
}

func (f *Fake) PreferredPaymasterOf(ctx context.Context, sourceChainID uint64) (common.Address, error) {
	if f.PreferredPaymasterOfFunc != nil {
		return f.PreferredPaymasterOfFunc(ctx, sourceChainID)
	}
	return common.Address{}, nil
}

func (f *Fake) BridgeState(ctx context.Context, token common.Address, sourceChainID uint64) (common.Address, *big.Int, *big.Int, error) {
	if f.BridgeStateFunc != nil {
		return f.BridgeStateFunc(ctx, token, sourceChainID)
	}
	return common.Address{}, big.NewInt(0), big.NewInt(0), nil
}

func (f *Fake) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	if f.CodeAtFunc != nil {
		return f.CodeAtFunc(ctx, addr)
	}
	return nil, nil
}

func (f *Fake) NonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	if f.NonceAtFunc != nil {
		return f.NonceAtFunc(ctx, addr)
	}
	return 0, nil
}

func (f *Fake) DeployAliasedAccount(ctx context.Context, sourceAddress common.Address, sourceChainID uint64) error {
	if f.DeployAliasedAccountFunc != nil {
		return f.DeployAliasedAccountFunc(ctx, sourceAddress, sourceChainID)
	}
	return nil
}

func (f *Fake) EnsurePaymasterFunded(ctx context.Context, paymaster common.Address, target *big.Int) error {
	if f.EnsurePaymasterFundedFunc != nil {
		return f.EnsurePaymasterFundedFunc(ctx, paymaster, target)
	}
	return nil
}

func (f *Fake) ReceiveInteropMessage(ctx context.Context, msgHash common.Hash) error {
	if f.ReceiveInteropMessageFunc != nil {
		return f.ReceiveInteropMessageFunc(ctx, msgHash)
	}
	return nil
}

func (f *Fake) AddTrustedSource(ctx context.Context, sourceChainID uint64, interopCenter common.Address) error {
	if f.AddTrustedSourceFunc != nil {
		return f.AddTrustedSourceFunc(ctx, sourceChainID, interopCenter)
	}
	return nil
}

func (f *Fake) SetPreferredPaymaster(ctx context.Context, sourceChainID uint64, paymaster common.Address) error {
	if f.SetPreferredPaymasterFunc != nil {
		return f.SetPreferredPaymasterFunc(ctx, sourceChainID, paymaster)
	}
	return nil
}

func (f *Fake) AddOtherBridge(ctx context.Context, sourceChainID uint64, remoteToken common.Address, ratioNominator, ratioDenominator *big.Int) error {
	if f.AddOtherBridgeFunc != nil {
		return f.AddOtherBridgeFunc(ctx, sourceChainID, remoteToken, ratioNominator, ratioDenominator)
	}
	return nil
}

func (f *Fake) SendRawTransaction(ctx context.Context, raw []byte) (*types.Receipt, error) {
	if f.SendRawTransactionFunc != nil {
		return f.SendRawTransactionFunc(ctx, raw)
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *Fake) Close() {
	if f.CloseFunc != nil {
		f.CloseFunc()
	}
}
