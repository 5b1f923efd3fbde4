package domain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// TxInput is one spent outpoint of a sidechain transaction, annotated with
// the spending details C5 needs: the value it carried and (for the first
// input only,.1) the spending address, used as l2_sender.
type TxInput struct {
	Outpoint      OutPoint
	Value         Amount
	SenderAddress Address
}

// TxOutput is one created output of a sidechain transaction.
type TxOutput struct {
	Address Address
	Value   Amount
}

// Payload is the sum type a Transaction's tx-data field carries: either one
// of the two new SwapCreate/SwapClaim variants, or nil for
// every other sidechain transaction kind (out of core scope; the core only
// cares that such a transaction exists and what it spends).
type Payload interface {
	// Kind lets a caller switch without a type assertion chain.
	Kind() TxDataKind
}

func (d *SwapCreateData) Kind() TxDataKind { return TxDataSwapCreate }
func (d *SwapClaimData) Kind() TxDataKind  { return TxDataSwapClaim }

// Transaction is the minimal shape of a sidechain transaction that C5/C6
// need: its id, the outpoints+values+sender it spends, what it creates, and
// (if any) the swap tx-data payload it carries. The rest of the sidechain's
// transaction format is out of core scope.
type Transaction struct {
	Txid    chainhash.Hash
	Inputs  []TxInput
	Outputs []TxOutput
	Data    Payload // nil for a foreign (non-swap) transaction
}

// TotalInputValue sums every spent input's value, saturating per
// Amount arithmetic rule.
func (t *Transaction) TotalInputValue() Amount {
	var sum Amount
	for _, in := range t.Inputs {
		sum = SaturatingAdd(sum, in.Value)
	}
	return sum
}

// FirstInputSender returns the spending address of the transaction's first
// input, used as l2_sender in swap_id_of. Panics-free: the
// caller (validator) is responsible for rejecting a zero-input tx first.
func (t *Transaction) FirstInputSender() (Address, bool) {
	if len(t.Inputs) == 0 {
		return Address{}, false
	}
	return t.Inputs[0].SenderAddress, true
}

// OutputValueTo sums every output paying addr, used by the SwapClaim
// effective-recipient check.
func (t *Transaction) OutputValueTo(addr Address) Amount {
	var sum Amount
	for _, out := range t.Outputs {
		if out.Address == addr {
			sum = SaturatingAdd(sum, out.Value)
		}
	}
	return sum
}

// InputOutpoints returns the outpoints of every input of the transaction —
// the set the locked-input rule checks.
func (t *Transaction) InputOutpoints() []OutPoint {
	out := make([]OutPoint, len(t.Inputs))
	for i, in := range t.Inputs {
		out[i] = in.Outpoint
	}
	return out
}
