package vms

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lyfeloopinc/interop-relayer/internal/contracts"
	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
	"github.com/lyfeloopinc/interop-relayer/internal/signer"
	"github.com/lyfeloopinc/interop-relayer/internal/utils"
)

const readCacheSize = 1024

// Metrics is the subset of C9's collectors evmHandle reports RPC failures
// through.
type Metrics interface {
	ObserveRPCError(chain uint64, op string)
}

// evmHandle is the go-ethereum-backed Handle implementation. Reads that C5
// and C6 call repeatedly with the same arguments (aliased account lookups,
// preferred-paymaster lookups, paymaster base-token lookups) go through a
// bounded LRU cache with singleflight de-duplication of concurrent misses.
type evmHandle struct {
	name          string
	client        *ethclient.Client
	chainID       uint64
	interopCenter common.Address
	admin         signer.Signer
	logger        *zap.Logger
	metrics       Metrics

	readCache *lru.Cache[string, common.Address]
	sf        singleflight.Group
}

// NewEVM dials rpcURL and returns a Handle bound to interopCenter and
// admin. chainID is the value already fetched during config.Build. metrics
// may be nil, in which case RPC errors are still returned but not observed.
func NewEVM(name, rpcURL string, chainID uint64, interopCenter common.Address, admin signer.Signer, logger *zap.Logger, metrics Metrics) (Handle, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial chain rpc")
	}
	cache, err := lru.New[string, common.Address](readCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "build read cache")
	}
	return &evmHandle{
		name:          name,
		client:        client,
		chainID:       chainID,
		interopCenter: interopCenter,
		admin:         admin,
		logger:        logger,
		metrics:       metrics,
		readCache:     cache,
	}, nil
}

// rpcErr wraps cause as a RpcError for op and reports it to metrics.
func (h *evmHandle) rpcErr(op string, cause error) error {
	if h.metrics != nil {
		h.metrics.ObserveRPCError(h.chainID, op)
	}
	return relayerr.NewRpcError(h.chainID, op, cause)
}

func (h *evmHandle) ChainID() uint64                      { return h.chainID }
func (h *evmHandle) InteropCenterAddress() common.Address { return h.interopCenter }
func (h *evmHandle) AdminAddress() common.Address         { return h.admin.Address() }
func (h *evmHandle) Close()                               { h.client.Close() }

func (h *evmHandle) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := utils.CallWithRetry(ctx, func() ([]byte, error) {
		return h.client.CodeAt(ctx, addr, nil)
	})
	if err != nil {
		return nil, h.rpcErr("CodeAt", err)
	}
	return code, nil
}

func (h *evmHandle) NonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := utils.CallWithRetry(ctx, func() (uint64, error) {
		return h.client.PendingNonceAt(ctx, addr)
	})
	if err != nil {
		return 0, h.rpcErr("PendingNonceAt", err)
	}
	return nonce, nil
}

// callAddress performs a read-only contract call against target with the
// given ABI method/args, decoding a single address result, through the
// cache+singleflight layer keyed by cacheKey.
func (h *evmHandle) callAddress(ctx context.Context, cacheKey string, target common.Address, contractABI interface {
	Pack(string, ...interface{}) ([]byte, error)
}, method string, args ...interface{}) (common.Address, error) {
	if v, ok := h.readCache.Get(cacheKey); ok {
		return v, nil
	}

	v, err, _ := h.sf.Do(cacheKey, func() (interface{}, error) {
		calldata, err := contractABI.Pack(method, args...)
		if err != nil {
			return nil, errors.Wrap(err, "pack call")
		}
		result, err := utils.CallWithRetry(ctx, func() ([]byte, error) {
			return h.client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: calldata}, nil)
		})
		if err != nil {
			return nil, h.rpcErr(method, err)
		}
		var addr common.Address
		if err := unpackInto(contractABI, method, result, &addr); err != nil {
			return nil, err
		}
		return addr, nil
	})
	if err != nil {
		return common.Address{}, err
	}
	addr := v.(common.Address)
	h.readCache.Add(cacheKey, addr)
	return addr, nil
}

func (h *evmHandle) AliasedAccountOf(ctx context.Context, sourceChainID uint64, sourceAddress common.Address) (common.Address, error) {
	key := "aliased:" + sourceAddress.Hex() + ":" + bigFromU64(sourceChainID).String()
	return h.callAddress(ctx, key, h.interopCenter, contracts.InteropCenterABI, "getAliasedAccount", sourceAddress, bigFromU64(sourceChainID))
}

func (h *evmHandle) PreferredPaymaster(ctx context.Context) (common.Address, error) {
	return h.PreferredPaymasterOf(ctx, h.chainID)
}

func (h *evmHandle) PreferredPaymasterOf(ctx context.Context, sourceChainID uint64) (common.Address, error) {
	key := "preferredPaymaster:" + h.interopCenter.Hex() + ":" + bigFromU64(sourceChainID).String()
	return h.callAddress(ctx, key, h.interopCenter, contracts.InteropCenterABI, "preferredPaymasters", bigFromU64(sourceChainID))
}

func (h *evmHandle) TrustedSource(ctx context.Context, sourceChainID uint64) (common.Address, error) {
	key := "trustedSource:" + h.interopCenter.Hex() + ":" + bigFromU64(sourceChainID).String()
	return h.callAddress(ctx, key, h.interopCenter, contracts.InteropCenterABI, "trustedSources", bigFromU64(sourceChainID))
}

func (h *evmHandle) PaymasterBaseToken(ctx context.Context, paymaster common.Address) (common.Address, error) {
	key := "baseToken:" + paymaster.Hex()
	return h.callAddress(ctx, key, paymaster, contracts.PaymasterABI, "paymasterTokenAddress")
}

func (h *evmHandle) BridgeState(ctx context.Context, token common.Address, sourceChainID uint64) (common.Address, *big.Int, *big.Int, error) {
	chainIDBig := bigFromU64(sourceChainID)

	remote, err := h.callAddress(ctx, "remote:"+token.Hex()+":"+chainIDBig.String(), token, contracts.PaymasterTokenABI, "remoteAddresses", chainIDBig)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	nominator, err := h.callUint(ctx, token, "ratioNominator", chainIDBig)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	denominator, err := h.callUint(ctx, token, "ratioDenominator", chainIDBig)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return remote, nominator, denominator, nil
}

func (h *evmHandle) callUint(ctx context.Context, target common.Address, method string, args ...interface{}) (*big.Int, error) {
	calldata, err := contracts.PaymasterTokenABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrap(err, "pack call")
	}
	result, err := utils.CallWithRetry(ctx, func() ([]byte, error) {
		return h.client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: calldata}, nil)
	})
	if err != nil {
		return nil, h.rpcErr(method, err)
	}
	values, err := contracts.PaymasterTokenABI.Unpack(method, result)
	if err != nil || len(values) != 1 {
		return nil, relayerr.NewDecodeError("unpack "+method, err)
	}
	n, ok := values[0].(*big.Int)
	if !ok {
		return nil, relayerr.NewDecodeError("unexpected type for "+method, nil)
	}
	return n, nil
}

func (h *evmHandle) IsBundleExecuted(ctx context.Context, bundleHash common.Hash) (bool, error) {
	return h.callBool(ctx, h.interopCenter, contracts.InteropCenterABI, "executedBundles", bundleHash)
}

func (h *evmHandle) IsMessageReceived(ctx context.Context, msgHash common.Hash) (bool, error) {
	return h.callBool(ctx, h.interopCenter, contracts.InteropCenterABI, "receivedMessages", msgHash)
}

func (h *evmHandle) callBool(ctx context.Context, target common.Address, contractABI interface {
	Pack(string, ...interface{}) ([]byte, error)
}, method string, args ...interface{}) (bool, error) {
	calldata, err := contractABI.Pack(method, args...)
	if err != nil {
		return false, errors.Wrap(err, "pack call")
	}
	result, err := utils.CallWithRetry(ctx, func() ([]byte, error) {
		return h.client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: calldata}, nil)
	})
	if err != nil {
		return false, h.rpcErr(method, err)
	}
	var b bool
	if err := unpackInto(contractABI, method, result, &b); err != nil {
		return false, err
	}
	return b, nil
}

func (h *evmHandle) DeployAliasedAccount(ctx context.Context, sourceAddress common.Address, sourceChainID uint64) error {
	return h.sendAdminTx(ctx, "deployAliasedAccount", h.interopCenter, nil, sourceAddress, bigFromU64(sourceChainID))
}

func (h *evmHandle) ReceiveInteropMessage(ctx context.Context, msgHash common.Hash) error {
	return h.sendAdminTx(ctx, "receiveInteropMessage", h.interopCenter, nil, msgHash)
}

func (h *evmHandle) AddTrustedSource(ctx context.Context, sourceChainID uint64, interopCenter common.Address) error {
	return h.sendAdminTx(ctx, "addTrustedSource", h.interopCenter, nil, bigFromU64(sourceChainID), interopCenter)
}

func (h *evmHandle) SetPreferredPaymaster(ctx context.Context, sourceChainID uint64, paymaster common.Address) error {
	return h.sendAdminTx(ctx, "setPreferredPaymaster", h.interopCenter, nil, bigFromU64(sourceChainID), paymaster)
}

func (h *evmHandle) AddOtherBridge(ctx context.Context, sourceChainID uint64, remoteToken common.Address, ratioNominator, ratioDenominator *big.Int) error {
	return h.sendAdminTx(ctx, "addOtherBridge", h.interopCenter, nil, bigFromU64(sourceChainID), remoteToken, ratioNominator, ratioDenominator)
}

// EnsurePaymasterFunded transfers target units of base token from the
// admin to paymaster if and only if paymaster's current balance is below
// target. It sends target itself, not target minus balance: this
// overshoots intentionally to amortize future calls.
func (h *evmHandle) EnsurePaymasterFunded(ctx context.Context, paymaster common.Address, target *big.Int) error {
	balance, err := utils.CallWithRetry(ctx, func() (*big.Int, error) {
		return h.client.BalanceAt(ctx, paymaster, nil)
	})
	if err != nil {
		return h.rpcErr("BalanceAt", err)
	}
	if balance.Cmp(target) >= 0 {
		return nil
	}
	return h.sendValueTransfer(ctx, paymaster, target)
}

func (h *evmHandle) sendValueTransfer(ctx context.Context, to common.Address, value *big.Int) error {
	nonce, err := h.NonceAt(ctx, h.admin.Address())
	if err != nil {
		return err
	}
	gasTip, gasFeeCap, err := h.suggestFees(ctx)
	if err != nil {
		return err
	}
	chainIDBig := bigFromU64(h.chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainIDBig,
		Nonce:     nonce,
		To:        &to,
		Value:     value,
		Gas:       21_000,
		GasTipCap: gasTip,
		GasFeeCap: gasFeeCap,
	})
	return h.signAndSend(ctx, tx, chainIDBig)
}

func (h *evmHandle) sendAdminTx(ctx context.Context, method string, target common.Address, value *big.Int, args ...interface{}) error {
	calldata, err := contracts.InteropCenterABI.Pack(method, args...)
	if err != nil {
		return errors.Wrap(err, "pack "+method)
	}
	nonce, err := h.NonceAt(ctx, h.admin.Address())
	if err != nil {
		return err
	}
	gasTip, gasFeeCap, err := h.suggestFees(ctx)
	if err != nil {
		return err
	}
	chainIDBig := bigFromU64(h.chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainIDBig,
		Nonce:     nonce,
		To:        &target,
		Value:     value,
		Gas:       2_000_000,
		GasTipCap: gasTip,
		GasFeeCap: gasFeeCap,
		Data:      calldata,
	})
	return h.signAndSend(ctx, tx, chainIDBig)
}

func (h *evmHandle) suggestFees(ctx context.Context) (*big.Int, *big.Int, error) {
	tip, err := h.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, h.rpcErr("SuggestGasTipCap", err)
	}
	head, err := h.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, h.rpcErr("HeaderByNumber", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return tip, feeCap, nil
}

func (h *evmHandle) signAndSend(ctx context.Context, tx *types.Transaction, chainID *big.Int) error {
	signed, err := h.admin.SignTx(ctx, tx, chainID)
	if err != nil {
		return errors.Wrap(err, "sign admin tx")
	}
	if err := h.client.SendTransaction(ctx, signed); err != nil {
		h.logger.Error("admin transaction rejected", zap.String("chain", h.name), zap.Error(err))
		return h.rpcErr("SendTransaction", err)
	}
	_, err = utils.WaitForReceipt(ctx, h.client, signed.Hash())
	if err != nil {
		h.logger.Error("admin transaction not mined", zap.String("chain", h.name), zap.String("txHash", signed.Hash().Hex()), zap.Error(err))
		return h.rpcErr("WaitForReceipt", err)
	}
	return nil
}

// SendRawTransaction submits a fully-formed, pre-signed transaction
// envelope (the materializer's output) and awaits its receipt. The
// fee-sponsored envelope (internal/txenvelope) is not one of go-ethereum's
// known transaction types, so this goes through the raw JSON-RPC call
// rather than ethclient.Client.SendTransaction, and the hash for receipt
// polling is derived independently rather than decoded back out of a
// *types.Transaction.
func (h *evmHandle) SendRawTransaction(ctx context.Context, raw []byte) (*types.Receipt, error) {
	var txHash common.Hash
	err := h.client.Client().CallContext(ctx, &txHash, "eth_sendRawTransaction", hexutil.Encode(raw))
	if err != nil {
		return nil, h.rpcErr("eth_sendRawTransaction", err)
	}
	receipt, err := utils.WaitForReceipt(ctx, h.client, txHash)
	if err != nil {
		return nil, h.rpcErr("WaitForReceipt", err)
	}
	return receipt, nil
}

func bigFromU64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

func unpackInto(contractABI interface {
	Pack(string, ...interface{}) ([]byte, error)
}, method string, data []byte, out interface{}) error {
	unpacker, ok := contractABI.(interface {
		Unpack(string, []byte) ([]interface{}, error)
	})
	if !ok {
		return relayerr.NewDecodeError("abi does not support Unpack", nil)
	}
	values, err := unpacker.Unpack(method, data)
	if err != nil || len(values) != 1 {
		return relayerr.NewDecodeError("unpack "+method, err)
	}
	switch o := out.(type) {
	case *common.Address:
		addr, ok := values[0].(common.Address)
		if !ok {
			return relayerr.NewDecodeError("unexpected type for "+method, nil)
		}
		*o = addr
	case *bool:
		b, ok := values[0].(bool)
		if !ok {
			return relayerr.NewDecodeError("unexpected type for "+method, nil)
		}
		*o = b
	default:
		return relayerr.NewDecodeError("unsupported unpack target", nil)
	}
	return nil
}
