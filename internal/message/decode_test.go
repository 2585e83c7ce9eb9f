package message_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/contracts"
	"github.com/lyfeloopinc/interop-relayer/internal/message"
)

const observedChainID = uint64(42)

func packInteropMessage(t *testing.T, sender common.Address, sourceChainID, messageNum uint64, data []byte) []byte {
	t.Helper()
	packed, err := contracts.InteropMessageArguments().Pack(
		sender,
		new(big.Int).SetUint64(sourceChainID),
		new(big.Int).SetUint64(messageNum),
		data,
	)
	require.NoError(t, err)
	return packed
}

func packInteropTransaction(t *testing.T, bundleHash, feesBundleHash common.Hash) []byte {
	t.Helper()
	packed, err := contracts.InteropTransactionArguments().Pack(
		common.HexToAddress("0x11"),
		new(big.Int).SetUint64(900),
		big.NewInt(500_000),
		big.NewInt(1),
		big.NewInt(0),
		bundleHash,
		feesBundleHash,
		common.HexToAddress("0x22"),
		[]byte{},
	)
	require.NoError(t, err)
	return packed
}

func buildLog(t *testing.T, interopCenter, sender common.Address, msgHash common.Hash, payload []byte) types.Log {
	t.Helper()
	eventPayload, err := contracts.InteropCenterABI.Events["InteropMessageSent"].Inputs.NonIndexed().Pack(payload)
	require.NoError(t, err)
	return types.Log{
		Address: interopCenter,
		Topics: []common.Hash{
			contracts.InteropMessageSentTopic,
			msgHash,
			common.BytesToHash(sender.Bytes()),
		},
		Data: eventPayload,
	}
}

func TestDecode_PlainMessageIsNeitherTypeBNorTypeC(t *testing.T) {
	interopCenter := common.HexToAddress("0x01")
	sender := common.HexToAddress("0x02") // different from interopCenter
	msgHash := common.HexToHash("0xaa")

	payload := packInteropMessage(t, sender, 1, 1, []byte{0x00})
	log := buildLog(t, interopCenter, sender, msgHash, payload)

	parsed, err := message.Decode(log, observedChainID)
	require.NoError(t, err)

	require.Equal(t, msgHash, parsed.MsgHash)
	require.Equal(t, sender, parsed.Sender)
	require.False(t, parsed.IsTypeB())
	require.False(t, parsed.IsTypeC())
	require.Nil(t, parsed.InteropTx)
}

func TestDecode_TypeCMessageDecodesTheEmbeddedInteropTransaction(t *testing.T) {
	interopCenter := common.HexToAddress("0x01")
	bundleHash := common.HexToHash("0xbeef")
	feesBundleHash := common.HexToHash("0xfee5")

	txPayload := packInteropTransaction(t, bundleHash, feesBundleHash)
	data := append([]byte{0x02}, txPayload...)
	payload := packInteropMessage(t, interopCenter, 1, 3, data)
	log := buildLog(t, interopCenter, interopCenter, common.HexToHash("0xcc"), payload)

	parsed, err := message.Decode(log, observedChainID)
	require.NoError(t, err)

	require.True(t, parsed.IsTypeC())
	require.False(t, parsed.IsTypeB())
	require.NotNil(t, parsed.InteropTx)
	require.Equal(t, bundleHash, parsed.InteropTx.BundleHash)
	require.Equal(t, feesBundleHash, parsed.InteropTx.FeesBundleHash)
	require.Equal(t, uint64(900), parsed.InteropTx.DestinationChainID)
}

func TestDecode_TypeBMessageIsNotTypeC(t *testing.T) {
	interopCenter := common.HexToAddress("0x01")
	payload := packInteropMessage(t, interopCenter, 1, 2, []byte{0x01})
	log := buildLog(t, interopCenter, interopCenter, common.HexToHash("0xdd"), payload)

	parsed, err := message.Decode(log, observedChainID)
	require.NoError(t, err)

	require.True(t, parsed.IsTypeB())
	require.False(t, parsed.IsTypeC())
	require.Nil(t, parsed.InteropTx)
}

func TestDecode_RejectsWrongTopicCount(t *testing.T) {
	log := types.Log{
		Topics: []common.Hash{contracts.InteropMessageSentTopic, common.HexToHash("0x01")},
		Data:   []byte{},
	}
	_, err := message.Decode(log, observedChainID)
	require.Error(t, err)
}
