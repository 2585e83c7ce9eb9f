package txenvelope_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyfeloopinc/interop-relayer/internal/txenvelope"
)

func TestEncode_PrependsTheTypeByte(t *testing.T) {
	raw, err := txenvelope.Encode(txenvelope.FeeSponsoredTx{
		ChainID:       big.NewInt(1),
		Nonce:         3,
		GasLimit:      big.NewInt(500_000),
		GasPrice:      big.NewInt(1_000_000_000),
		GasPerPubdata: big.NewInt(50_000),
		To:            common.HexToAddress("0x01"),
		Value:         big.NewInt(0),
		Data:          []byte{0xde, 0xad},
		From:          common.HexToAddress("0x02"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, byte(txenvelope.EnvelopeType), raw[0])
}

// mirrorPayload matches internal rlpPayload's field order and types, so the
// test can confirm the body after the type byte round-trips as valid RLP
// without exporting the encoder's internal representation.
type mirrorPayload struct {
	Nonce                *big.Int
	GasPrice             *big.Int
	GasLimit             *big.Int
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	V                    *big.Int
	R                    *big.Int
	S                    *big.Int
	ChainIDTag1          *big.Int
	From                 common.Address
	GasPerPubdata        *big.Int
	FactoryDeps          [][]byte
	CustomSignature      []byte
	PaymasterAddress     common.Address
	PaymasterInput       []byte
}

func TestEncode_BodyIsValidRLPAfterTheTypeByte(t *testing.T) {
	raw, err := txenvelope.Encode(txenvelope.FeeSponsoredTx{
		ChainID:       big.NewInt(7),
		Nonce:         0,
		GasLimit:      big.NewInt(21_000),
		GasPrice:      big.NewInt(1),
		GasPerPubdata: big.NewInt(50_000),
		To:            common.HexToAddress("0x03"),
		Value:         big.NewInt(0),
		Data:          nil,
		From:          common.HexToAddress("0x04"),
		Paymaster: txenvelope.PaymasterParams{
			Paymaster: common.HexToAddress("0x05"),
			Input:     []byte{0x01, 0x02},
		},
		CustomSignature: []byte{0xaa, 0xbb, 0xcc},
	})
	require.NoError(t, err)

	var decoded mirrorPayload
	require.NoError(t, rlp.DecodeBytes(raw[1:], &decoded))
	assert.Equal(t, common.HexToAddress("0x05"), decoded.PaymasterAddress)
	assert.Equal(t, []byte{0x01, 0x02}, decoded.PaymasterInput)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, decoded.CustomSignature)
	assert.Equal(t, big.NewInt(7), decoded.ChainIDTag1)
	assert.Equal(t, big.NewInt(0), decoded.V)
}

func TestEncode_AllZeroFieldsDoNotErrorOnNilPaymaster(t *testing.T) {
	_, err := txenvelope.Encode(txenvelope.FeeSponsoredTx{
		ChainID:       big.NewInt(1),
		GasLimit:      big.NewInt(1),
		GasPrice:      big.NewInt(1),
		GasPerPubdata: big.NewInt(50_000),
		Value:         big.NewInt(0),
	})
	assert.NoError(t, err)
}
