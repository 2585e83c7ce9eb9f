// Package txenvelope implements the fee-sponsored transaction envelope: an
// EIP-2718 typed transaction carrying paymaster parameters and a custom
// signature field, neither of which go-ethereum's built-in transaction
// types support. The destination account's validator authenticates via
// the custom signature field's contents, so no real ECDSA signature is
// ever produced — the (v, r, s) fields stay zero.
package txenvelope

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// EnvelopeType is the EIP-2718 type byte for the fee-sponsored envelope.
const EnvelopeType = 0x71

// PaymasterParams carries the paymaster address and its input calldata.
type PaymasterParams struct {
	Paymaster common.Address
	Input     []byte
}

// FeeSponsoredTx is the unsigned form of the envelope: targets the
// destination InteropCenter, executes from the aliased account, carries
// paymaster params and a custom signature instead of an ECDSA one.
type FeeSponsoredTx struct {
	ChainID          *big.Int
	Nonce            uint64
	GasLimit         *big.Int
	GasPrice         *big.Int
	GasPerPubdata    *big.Int
	To               common.Address
	Value            *big.Int
	Data             []byte
	From             common.Address
	Paymaster        PaymasterParams
	CustomSignature  []byte
}

// rlpPayload mirrors the on-wire field order of the envelope, including
// all-zero ECDSA (r, s, v) fields: the custom signature supplants
// cryptographic authentication, so these are always zero rather than
// omitted, matching the fixed-arity encoding the destination's
// custom-account validator expects.
type rlpPayload struct {
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

// Encode serializes tx per the 2718 typed-envelope encoding: the type byte
// followed by the RLP-encoded field list, ready for sendRawTransaction.
func Encode(tx FeeSponsoredTx) ([]byte, error) {
	payload := rlpPayload{
		Nonce:            new(big.Int).SetUint64(tx.Nonce),
		GasPrice:         tx.GasPrice,
		GasLimit:         tx.GasLimit,
		To:               tx.To,
		Value:            tx.Value,
		Data:             tx.Data,
		V:                big.NewInt(0),
		R:                big.NewInt(0),
		S:                big.NewInt(0),
		ChainIDTag1:      tx.ChainID,
		From:             tx.From,
		GasPerPubdata:    tx.GasPerPubdata,
		FactoryDeps:      nil,
		CustomSignature:  tx.CustomSignature,
		PaymasterAddress: tx.Paymaster.Paymaster,
		PaymasterInput:   tx.Paymaster.Input,
	}

	body, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, EnvelopeType)
	out = append(out, body...)
	return out, nil
}
