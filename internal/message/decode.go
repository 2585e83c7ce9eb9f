package message

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lyfeloopinc/interop-relayer/internal/contracts"
	"github.com/lyfeloopinc/interop-relayer/internal/relayerr"
)

// Decode converts one InteropMessageSent log into a ParsedMessage,
// observed on the given chain.
//
// msgHash is topic 1; sender is the low 20 bytes of topic 2. The
// InteropMessage is decoded from the event's non-indexed "payload" bytes,
// whose ABI-encoded dynamic-bytes header occupies the first 64 bytes of
// log.Data per spec.
func Decode(log types.Log, observedChainID uint64) (ParsedMessage, error) {
	if len(log.Topics) != 3 {
		return ParsedMessage{}, relayerr.NewDecodeError("unexpected topic count", nil)
	}

	msgHash := log.Topics[1]
	sender := common.BytesToAddress(log.Topics[2].Bytes()[12:])

	values, err := contracts.InteropCenterABI.Events["InteropMessageSent"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return ParsedMessage{}, relayerr.NewDecodeError("unpack event payload", err)
	}
	if len(values) != 1 {
		return ParsedMessage{}, relayerr.NewDecodeError("unexpected event payload shape", nil)
	}
	payload, ok := values[0].([]byte)
	if !ok {
		return ParsedMessage{}, relayerr.NewDecodeError("event payload is not bytes", nil)
	}

	interopMsg, err := decodeInteropMessage(payload)
	if err != nil {
		return ParsedMessage{}, err
	}

	parsed := ParsedMessage{
		InteropCenterSender: log.Address,
		MsgHash:             msgHash,
		Sender:               sender,
		RawData:              log.Data,
		Interop:              interopMsg,
		ObservedOnChainID:    observedChainID,
	}

	if parsed.IsTypeC() {
		tx, err := decodeInteropTransaction(interopMsg.Data[1:])
		if err != nil {
			return ParsedMessage{}, err
		}
		parsed.InteropTx = &tx
	}

	return parsed, nil
}

func decodeInteropMessage(payload []byte) (InteropMessage, error) {
	values, err := contracts.InteropMessageArguments().UnpackValues(payload)
	if err != nil {
		return InteropMessage{}, relayerr.NewDecodeError("unpack InteropMessage", err)
	}
	if len(values) != 4 {
		return InteropMessage{}, relayerr.NewDecodeError("unexpected InteropMessage shape", nil)
	}
	sender, ok := values[0].(common.Address)
	sourceChainID, ok2 := values[1].(*big.Int)
	messageNum, ok3 := values[2].(*big.Int)
	data, ok4 := values[3].([]byte)
	if !ok || !ok2 || !ok3 || !ok4 {
		return InteropMessage{}, relayerr.NewDecodeError("InteropMessage field type mismatch", nil)
	}
	return InteropMessage{
		Data:          data,
		Sender:        sender,
		SourceChainID: sourceChainID.Uint64(),
		MessageNum:    messageNum.Uint64(),
	}, nil
}

func decodeInteropTransaction(raw []byte) (InteropTransaction, error) {
	values, err := contracts.InteropTransactionArguments().UnpackValues(raw)
	if err != nil {
		return InteropTransaction{}, relayerr.NewDecodeError("unpack InteropTransaction", err)
	}
	if len(values) != 9 {
		return InteropTransaction{}, relayerr.NewDecodeError("unexpected InteropTransaction shape", nil)
	}
	sourceChainSender, ok1 := values[0].(common.Address)
	destinationChainID, ok2 := values[1].(*big.Int)
	gasLimit, ok3 := values[2].(*big.Int)
	gasPrice, ok4 := values[3].(*big.Int)
	value, ok5 := values[4].(*big.Int)
	bundleHash, ok6 := values[5].([32]byte)
	feesBundleHash, ok7 := values[6].([32]byte)
	destinationPaymaster, ok8 := values[7].(common.Address)
	destinationPaymasterInput, ok9 := values[8].([]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 || !ok9 {
		return InteropTransaction{}, relayerr.NewDecodeError("InteropTransaction field type mismatch", nil)
	}
	return InteropTransaction{
		SourceChainSender:         sourceChainSender,
		DestinationChainID:        destinationChainID.Uint64(),
		GasLimit:                  gasLimit,
		GasPrice:                  gasPrice,
		Value:                     value,
		BundleHash:                bundleHash,
		FeesBundleHash:            feesBundleHash,
		DestinationPaymaster:      destinationPaymaster,
		DestinationPaymasterInput: destinationPaymasterInput,
	}, nil
}
