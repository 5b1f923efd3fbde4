package domain

import (
	"encoding/json"
)

// Direction is fixed to L2ToL1 for now; the field is carried so a future
// L1ToL2 direction (handled by the underlying peg) can be
// added without changing the wire shape.
type Direction byte

const L2ToL1 Direction = 0

// Swap is the offer record.
type Swap struct {
	Id                       SwapId
	Direction                Direction
	ParentChain              ParentChainType
	L1Txid                   SwapTxId
	RequiredConfirmations    uint32
	State                    SwapState
	L2Recipient              *Address // nil = open offer
	L2Amount                 Amount   // > 0
	L1RecipientAddress       *string
	L1Amount                 *Amount
	L1ClaimerAddress         *string // extracted sender of the observed L1 tx
	L2ClaimerAddress         *Address // claimer bound at the time L1ClaimerAddress was recorded
	CreatedAtHeight          uint32
	ExpiresAtHeight          *uint32
	L1TxidValidatedAtBlockHash *BlockHash
	L1TxidValidatedAtHeight    *uint32
	// LockedOutpoints is the escrow set SwapCreate locked to this swap's id,
	// frozen at creation so a later claim disconnect can re-lock exactly the
	// outpoints its connect unlocked, not every input of the claim tx.
	LockedOutpoints []OutPoint
}

// NewSwap constructs a freshly created offer in the Pending state, mirroring
// original_source's Swap::new.
func NewSwap(
	id SwapId,
	parentChain ParentChainType,
	l1Txid SwapTxId,
	requiredConfirmations *uint32,
	l2Recipient *Address,
	l2Amount Amount,
	l1RecipientAddress *string,
	l1Amount *Amount,
	createdAtHeight uint32,
	expiresAtHeight *uint32,
) *Swap {
	req := parentChain.DefaultConfirmations()
	if requiredConfirmations != nil {
		req = *requiredConfirmations
	}
	return &Swap{
		Id:                    id,
		Direction:             L2ToL1,
		ParentChain:           parentChain,
		L1Txid:                l1Txid,
		RequiredConfirmations: req,
		State:                 Pending(),
		L2Recipient:           l2Recipient,
		L2Amount:              l2Amount,
		L1RecipientAddress:    l1RecipientAddress,
		L1Amount:              l1Amount,
		CreatedAtHeight:       createdAtHeight,
		ExpiresAtHeight:       expiresAtHeight,
	}
}

// IsOpenOffer reports whether claimer identity is bound at claim time by the
// L1 transaction sender rather than a pre-specified recipient.
func (s *Swap) IsOpenOffer() bool {
	return s.L2Recipient == nil
}

func (s *Swap) MarkCompleted() {
	s.State = Completed()
}

func (s *Swap) MarkCancelled() {
	s.State = Cancelled()
}

// UpdateL1Observation records a newly observed L1 transaction and its
// confirmations, transitioning state. claimer is the L1 tx's extracted
// sender address. l2Claimer, if non-nil, is the L2 address declared
// alongside this L1 tx for an open offer; it binds to the swap the first
// time it is observed and is ignored thereafter (first-submission wins, per
// original_source's update_swap_l1_txid/l2_claimer_address handling).
func (s *Swap) UpdateL1Observation(l1Txid SwapTxId, claimer string, current uint32, l2Claimer *Address) {
	s.L1Txid = l1Txid
	s.L1ClaimerAddress = &claimer
	if s.IsOpenOffer() && s.L2ClaimerAddress == nil && l2Claimer != nil {
		s.L2ClaimerAddress = l2Claimer
	}
	s.advanceConfirmations(current)
}

// RefreshConfirmations updates current confirmations for an already
// observed L1 tx without touching claimer/txid fields.
func (s *Swap) RefreshConfirmations(current uint32) {
	s.advanceConfirmations(current)
}

func (s *Swap) advanceConfirmations(current uint32) {
	if current >= s.RequiredConfirmations {
		s.State = ReadyToClaim()
		return
	}
	s.State = WaitingConfirmations(current, s.RequiredConfirmations)
}

func (s *Swap) SetL1TxidValidationBlock(blockHash BlockHash, blockHeight uint32) {
	s.L1TxidValidatedAtBlockHash = &blockHash
	s.L1TxidValidatedAtHeight = &blockHeight
}

// EffectiveL2Recipient resolves the recipient a SwapClaim must pay, per
// the open-offer claimer-binding rule.
// claimerSupplied is the l2_claimer_address presented with the claim, which
// may be nil.
func (s *Swap) EffectiveL2Recipient(claimerSupplied *Address) (Address, bool) {
	if s.L2Recipient != nil {
		return *s.L2Recipient, true
	}
	if s.L2ClaimerAddress != nil {
		if claimerSupplied != nil && *claimerSupplied != *s.L2ClaimerAddress {
			return Address{}, false
		}
		return *s.L2ClaimerAddress, true
	}
	if claimerSupplied != nil {
		return *claimerSupplied, true
	}
	return Address{}, false
}

func (s *Swap) String() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

// Clone returns a deep copy, used by C6 disconnect handling to snapshot and
// restore pre-block state without aliasing pointer fields.
func (s *Swap) Clone() *Swap {
	c := *s
	if s.L2Recipient != nil {
		v := *s.L2Recipient
		c.L2Recipient = &v
	}
	if s.L1RecipientAddress != nil {
		v := *s.L1RecipientAddress
		c.L1RecipientAddress = &v
	}
	if s.L1Amount != nil {
		v := *s.L1Amount
		c.L1Amount = &v
	}
	if s.L1ClaimerAddress != nil {
		v := *s.L1ClaimerAddress
		c.L1ClaimerAddress = &v
	}
	if s.L2ClaimerAddress != nil {
		v := *s.L2ClaimerAddress
		c.L2ClaimerAddress = &v
	}
	if s.ExpiresAtHeight != nil {
		v := *s.ExpiresAtHeight
		c.ExpiresAtHeight = &v
	}
	if s.L1TxidValidatedAtBlockHash != nil {
		v := *s.L1TxidValidatedAtBlockHash
		c.L1TxidValidatedAtBlockHash = &v
	}
	if s.L1TxidValidatedAtHeight != nil {
		v := *s.L1TxidValidatedAtHeight
		c.L1TxidValidatedAtHeight = &v
	}
	if s.LockedOutpoints != nil {
		c.LockedOutpoints = append([]OutPoint(nil), s.LockedOutpoints...)
	}
	return &c
}
