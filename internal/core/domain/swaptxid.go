package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SwapTxId is a tagged union: either the Zero
// sentinel ("L1 tx not yet observed") or a concrete 32-byte hash. Both forms
// must round-trip through serialization, so the tag is explicit rather than
// inferred from an all-zero hash value.
type SwapTxId struct {
	isZero bool
	hash   chainhash.Hash
}

// ZeroSwapTxId is the sentinel meaning "no L1 transaction observed yet."
var ZeroSwapTxId = SwapTxId{isZero: true}

// NewSwapTxIdFromHash wraps a concrete 32-byte L1 transaction hash.
func NewSwapTxIdFromHash(h chainhash.Hash) SwapTxId {
	return SwapTxId{hash: h}
}

// SwapTxIdFromBytes parses either an empty slice (Zero) or exactly 32 bytes
// (Hash), matching the on-chain l1_txid_bytes encoding.
func SwapTxIdFromBytes(b []byte) (SwapTxId, error) {
	if len(b) == 0 {
		return ZeroSwapTxId, nil
	}
	if len(b) != 32 {
		return SwapTxId{}, fmt.Errorf("invalid l1_txid_bytes length: got %d, want 0 or 32", len(b))
	}
	var h chainhash.Hash
	copy(h[:], b)
	return NewSwapTxIdFromHash(h), nil
}

func (s SwapTxId) IsZero() bool {
	return s.isZero
}

func (s SwapTxId) Hash() (chainhash.Hash, bool) {
	if s.isZero {
		return chainhash.Hash{}, false
	}
	return s.hash, true
}

// Bytes returns the on-chain encoding: empty for Zero, 32 bytes otherwise.
func (s SwapTxId) Bytes() []byte {
	if s.isZero {
		return nil
	}
	out := make([]byte, 32)
	copy(out, s.hash[:])
	return out
}

// IndexKeyBytes returns the fixed-width key fragment used by
// swaps_by_l1_txid: tag(1) || 32-zero-or-hash.
func (s SwapTxId) IndexKeyBytes() []byte {
	buf := make([]byte, 33)
	if s.isZero {
		return buf
	}
	buf[0] = 1
	copy(buf[1:], s.hash[:])
	return buf
}

func (s SwapTxId) String() string {
	if s.isZero {
		return "zero"
	}
	return hex.EncodeToString(s.hash[:])
}

func (s SwapTxId) Equal(o SwapTxId) bool {
	if s.isZero != o.isZero {
		return false
	}
	if s.isZero {
		return true
	}
	return s.hash == o.hash
}
