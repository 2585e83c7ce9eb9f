// Package store implements the process-wide Shared Message Store (C3): a
// mapping from message hash to parsed message, guarded for concurrent
// access by a single mutex held only across the map operation itself —
// never across any RPC call.
package store

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lyfeloopinc/interop-relayer/internal/message"
)

// SharedStore is safe for concurrent use by multiple goroutines.
type SharedStore struct {
	mu   sync.Mutex
	msgs map[common.Hash]message.ParsedMessage
}

func New() *SharedStore {
	return &SharedStore{
		msgs: make(map[common.Hash]message.ParsedMessage),
	}
}

// Insert adds msg to the store keyed by its own MsgHash. Idempotent:
// inserting the same msgHash twice overwrites with what is expected to be
// an identical value, since duplicates arise only from the historical
// window overlapping with live events for the same message.
func (s *SharedStore) Insert(msg message.ParsedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[msg.MsgHash] = msg
}

// Get looks up a message by hash. The bool return reports presence.
func (s *SharedStore) Get(hash common.Hash) (message.ParsedMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.msgs[hash]
	return msg, ok
}

// Len reports the number of distinct messages currently held. Exposed for
// metrics and tests only.
func (s *SharedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}
