package domain

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// SwapId is the deterministic 32-byte swap identifier.
type SwapId [32]byte

var openSwapMarker = []byte("OPEN_SWAP")

// SwapIdOf implements the swap_id_of contract:
//
//	pre  = l1_addr || little_endian_u64(l1_amt) || l2_sender.bytes
//	data = pre || (l2_recipient.bytes if Some, else ASCII("OPEN_SWAP"))
//	id   = BLAKE3(data)
//
// Byte order is fixed and the caller-supplied l1RecipientAddress is hashed
// exactly as given — no canonicalization.
func SwapIdOf(
	l1RecipientAddress string,
	l1Amount Amount,
	l2Sender Address,
	l2Recipient *Address,
) SwapId {
	data := make([]byte, 0, len(l1RecipientAddress)+8+AddressSize+AddressSize)
	data = append(data, []byte(l1RecipientAddress)...)
	var amtLE [8]byte
	putUint64LE(amtLE[:], uint64(l1Amount))
	data = append(data, amtLE[:]...)
	data = append(data, l2Sender.Bytes()...)
	if l2Recipient != nil {
		data = append(data, l2Recipient.Bytes()...)
	} else {
		data = append(data, openSwapMarker...)
	}
	sum := blake3.Sum256(data)
	return SwapId(sum)
}

// SwapIdFromHex parses a hex-encoded SwapId, as stored in the swap store's
// primary key.
func SwapIdFromHex(s string) (SwapId, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return SwapId{}, false
	}
	return SwapIdFromBytes(b)
}

func SwapIdFromBytes(b []byte) (SwapId, bool) {
	var id SwapId
	if len(b) != 32 {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

func (id SwapId) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, id[:])
	return out
}

func (id SwapId) String() string {
	return hex.EncodeToString(id[:])
}

func (id SwapId) IsZero() bool {
	return id == SwapId{}
}
