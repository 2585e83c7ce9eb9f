// Package message holds the relayer's core data model: the raw
// InteropMessage decoded from an event log, the ParsedMessage wrapper that
// the rest of the system keys its work on, the InteropTransaction embedded
// in type-C messages, and the provenance payload placed into a
// materialized transaction's custom signature field.
package message

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Type names the classifications of a ParsedMessage. Every message is at
// least TypeA; TypeB and TypeC are additional, non-exclusive classifications
// tested by the IsTypeB and IsTypeC predicates on ParsedMessage, since a
// type-C message is also forwarded as type-A.
type Type int

const (
	TypeA Type = iota
	TypeB
	TypeC
)

// InteropMessage is the decoded payload of an InteropMessageSent event.
type InteropMessage struct {
	// Data's first byte is the type tag: 1 = type-B, 2 = type-C, absent
	// (i.e. zero-length or non-matching sender) = plain type-A envelope.
	Data          []byte
	Sender        common.Address
	SourceChainID uint64
	MessageNum    uint64
}

// TypeTag returns the first byte of Data, or 0 if Data is empty.
func (m InteropMessage) TypeTag() byte {
	if len(m.Data) == 0 {
		return 0
	}
	return m.Data[0]
}

// ParsedMessage is what the decoder (C2) produces from one event log. Its
// primary key is MsgHash.
type ParsedMessage struct {
	InteropCenterSender common.Address
	MsgHash             common.Hash
	Sender              common.Address
	RawData             []byte
	Interop             InteropMessage
	ObservedOnChainID    uint64

	// InteropTx is populated only when IsTypeC() is true; it is the decoded
	// cross-chain transaction carried in Interop.Data[1:].
	InteropTx *InteropTransaction
}

// IsTypeB reports whether this message is an informational bundle: the
// InteropCenter emitted it about itself, with type tag 1.
func (p ParsedMessage) IsTypeB() bool {
	return p.InteropCenterSender == p.Sender && p.Interop.TypeTag() == 1
}

// IsTypeC reports whether this message triggers materialization: the
// InteropCenter emitted it about itself, with type tag 2. Classification is
// stable: IsTypeC implies InteropCenterSender == Sender.
func (p ParsedMessage) IsTypeC() bool {
	return p.InteropCenterSender == p.Sender && p.Interop.TypeTag() == 2
}

// InteropTransaction is decoded from InteropMessage.Data[1:] when the type
// tag is 2 (type-C).
type InteropTransaction struct {
	SourceChainSender         common.Address
	DestinationChainID        uint64
	GasLimit                  *big.Int
	GasPrice                  *big.Int
	Value                     *big.Int
	BundleHash                common.Hash
	FeesBundleHash            common.Hash
	DestinationPaymaster      common.Address
	DestinationPaymasterInput []byte
}

// TransactionReservedStuff is the provenance record placed into the custom
// signature field of a materialized transaction. It is not a cryptographic
// signature.
type TransactionReservedStuff struct {
	SourceChainSender    common.Address
	InteropMessageSender common.Address
	SourceChainID        uint64
	MessageNum           uint64
	DestinationChainID   uint64
	BundleHash           common.Hash
	FeesBundleHash       common.Hash
}
