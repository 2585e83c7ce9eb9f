// Package contracts holds the narrow ABI surface the relayer consumes from
// the InteropCenter, Paymaster, and PaymasterToken contracts: a small
// hand-assembled abi.ABI plus thin pack/unpack helpers for exactly the
// calls the relayer makes, rather than a full abigen-generated binding
// tree.
package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// interopCenterABIJSON covers the InteropCenter's read/write surface used by
// C1/C4/C5/C6: receiveInteropMessage, deployAliasedAccount,
// executeInteropBundle, addTrustedSource, setPreferredPaymaster,
// addOtherBridge, getAliasedAccount, preferredPaymasters, trustedSources,
// receivedMessages, executedBundles, and the InteropMessageSent event.
const interopCenterABIJSON = `[
  {"type":"event","name":"InteropMessageSent","inputs":[
    {"name":"msgHash","type":"bytes32","indexed":true},
    {"name":"sender","type":"address","indexed":true},
    {"name":"payload","type":"bytes","indexed":false}
  ]},
  {"type":"function","name":"receiveInteropMessage","stateMutability":"nonpayable","inputs":[
    {"name":"msgHash","type":"bytes32"}
  ],"outputs":[]},
  {"type":"function","name":"deployAliasedAccount","stateMutability":"nonpayable","inputs":[
    {"name":"sourceAddress","type":"address"},
    {"name":"sourceChainId","type":"uint256"}
  ],"outputs":[]},
  {"type":"function","name":"executeInteropBundle","stateMutability":"nonpayable","inputs":[
    {"name":"bundle","type":"bytes"},
    {"name":"proof","type":"bytes"}
  ],"outputs":[]},
  {"type":"function","name":"addTrustedSource","stateMutability":"nonpayable","inputs":[
    {"name":"sourceChainId","type":"uint256"},
    {"name":"interopCenter","type":"address"}
  ],"outputs":[]},
  {"type":"function","name":"setPreferredPaymaster","stateMutability":"nonpayable","inputs":[
    {"name":"sourceChainId","type":"uint256"},
    {"name":"paymaster","type":"address"}
  ],"outputs":[]},
  {"type":"function","name":"addOtherBridge","stateMutability":"nonpayable","inputs":[
    {"name":"sourceChainId","type":"uint256"},
    {"name":"remoteToken","type":"address"},
    {"name":"ratioNominator","type":"uint256"},
    {"name":"ratioDenominator","type":"uint256"}
  ],"outputs":[]},
  {"type":"function","name":"getAliasedAccount","stateMutability":"view","inputs":[
    {"name":"sourceAddress","type":"address"},
    {"name":"sourceChainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"preferredPaymasters","stateMutability":"view","inputs":[
    {"name":"chainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"trustedSources","stateMutability":"view","inputs":[
    {"name":"chainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"receivedMessages","stateMutability":"view","inputs":[
    {"name":"msgHash","type":"bytes32"}
  ],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"executedBundles","stateMutability":"view","inputs":[
    {"name":"bundleHash","type":"bytes32"}
  ],"outputs":[{"name":"","type":"bool"}]}
]`

// paymasterABIJSON covers the preferred-paymaster contract's token lookup
// and balance used by C1's ensurePaymasterFunded.
const paymasterABIJSON = `[
  {"type":"function","name":"paymasterTokenAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

// paymasterTokenABIJSON covers the bridge-ratio surface used by C6's
// addOtherBridge idempotence check.
const paymasterTokenABIJSON = `[
  {"type":"function","name":"remoteAddresses","stateMutability":"view","inputs":[
    {"name":"chainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"ratioNominator","stateMutability":"view","inputs":[
    {"name":"chainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"ratioDenominator","stateMutability":"view","inputs":[
    {"name":"chainId","type":"uint256"}
  ],"outputs":[{"name":"","type":"uint256"}]}
]`

// interopMessageTupleJSON decodes the InteropMessage struct embedded in an
// InteropMessageSent event's payload: (address sender, uint256
// sourceChainId, uint256 messageNum, bytes data).
const interopMessageTupleJSON = `[{"type":"function","name":"_","inputs":[
  {"name":"sender","type":"address"},
  {"name":"sourceChainId","type":"uint256"},
  {"name":"messageNum","type":"uint256"},
  {"name":"data","type":"bytes"}
],"outputs":[]}]`

// interopTransactionTupleJSON decodes the InteropTransaction struct embedded
// in a type-C message's InteropMessage.Data[1:].
const interopTransactionTupleJSON = `[{"type":"function","name":"_","inputs":[
  {"name":"sourceChainSender","type":"address"},
  {"name":"destinationChainId","type":"uint256"},
  {"name":"gasLimit","type":"uint256"},
  {"name":"gasPrice","type":"uint256"},
  {"name":"value","type":"uint256"},
  {"name":"bundleHash","type":"bytes32"},
  {"name":"feesBundleHash","type":"bytes32"},
  {"name":"destinationPaymaster","type":"address"},
  {"name":"destinationPaymasterInput","type":"bytes"}
],"outputs":[]}]`

// transactionReservedStuffTupleJSON encodes message.TransactionReservedStuff,
// the provenance record the materializer places in a type-C transaction's
// custom signature field in place of an ECDSA signature.
const transactionReservedStuffTupleJSON = `[{"type":"function","name":"_","inputs":[
  {"name":"sourceChainSender","type":"address"},
  {"name":"interopMessageSender","type":"address"},
  {"name":"sourceChainId","type":"uint256"},
  {"name":"messageNum","type":"uint256"},
  {"name":"destinationChainId","type":"uint256"},
  {"name":"bundleHash","type":"bytes32"},
  {"name":"feesBundleHash","type":"bytes32"}
],"outputs":[]}]`

var (
	InteropCenterABI        abi.ABI
	PaymasterABI            abi.ABI
	PaymasterTokenABI       abi.ABI
	interopMessageABI       abi.ABI
	interopTransactionABI   abi.ABI
	transactionReservedABI  abi.ABI

	// InteropMessageSentTopic is the event signature hash used to filter
	// InteropCenter logs.
	InteropMessageSentTopic = crypto.Keccak256Hash([]byte("InteropMessageSent(bytes32,address,bytes)"))
)

func init() {
	var err error
	InteropCenterABI, err = abi.JSON(strings.NewReader(interopCenterABIJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse InteropCenter ABI"))
	}
	PaymasterABI, err = abi.JSON(strings.NewReader(paymasterABIJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse Paymaster ABI"))
	}
	PaymasterTokenABI, err = abi.JSON(strings.NewReader(paymasterTokenABIJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse PaymasterToken ABI"))
	}
	interopMessageABI, err = abi.JSON(strings.NewReader(interopMessageTupleJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse InteropMessage tuple ABI"))
	}
	interopTransactionABI, err = abi.JSON(strings.NewReader(interopTransactionTupleJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse InteropTransaction tuple ABI"))
	}
	transactionReservedABI, err = abi.JSON(strings.NewReader(transactionReservedStuffTupleJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse TransactionReservedStuff tuple ABI"))
	}
}

// InteropMessageArguments exposes the (sender, sourceChainId, messageNum,
// data) argument list for encoding/decoding the InteropMessage payload
// region independent of any single contract method.
func InteropMessageArguments() abi.Arguments {
	return interopMessageABI.Methods["_"].Inputs
}

// InteropTransactionArguments exposes the InteropTransaction argument list
// embedded in a type-C message's payload.
func InteropTransactionArguments() abi.Arguments {
	return interopTransactionABI.Methods["_"].Inputs
}

// TransactionReservedStuffArguments exposes the argument list used to
// ABI-encode the provenance record carried in a materialized transaction's
// custom signature field.
func TransactionReservedStuffArguments() abi.Arguments {
	return transactionReservedABI.Methods["_"].Inputs
}
