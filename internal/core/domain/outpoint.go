package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutPoint identifies one UTXO on the sidechain by its creating transaction
// id and output index.
type OutPoint struct {
	Txid chainhash.Hash
	Vout uint32
}

func (o *OutPoint) FromString(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid outpoint string: %s", s)
	}
	txid, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return fmt.Errorf("invalid outpoint txid: %s", parts[0])
	}
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid outpoint vout: %s", parts[1])
	}
	o.Txid = *txid
	o.Vout = uint32(vout)
	return nil
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Txid.String(), o.Vout)
}

// Bytes returns the fixed-width encoding txid(32) || vout_le(4). The lock
// store keys by String(), not by this encoding.
func (o OutPoint) Bytes() []byte {
	buf := make([]byte, 36)
	copy(buf[:32], o.Txid[:])
	putUint32LE(buf[32:36], o.Vout)
	return buf
}
