package jsonrpc

import "github.com/coinshift-network/coinshiftd/internal/core/domain"

// swapView is the JSON-RPC rendering of a domain.Swap: every opaque or
// unexported-field domain type (SwapId, Address, SwapTxId, BlockHash) gets a
// hex-or-string projection here rather than the domain package growing
// JSON tags of its own, keeping the wire codec of domain/codec.go the only
// encoding the domain types need to know about.
type swapView struct {
	Id                         string  `json:"id"`
	ParentChain                string  `json:"parent_chain"`
	L1Txid                     string  `json:"l1_txid"`
	RequiredConfirmations      uint32  `json:"required_confirmations"`
	State                      string  `json:"state"`
	L2Recipient                *string `json:"l2_recipient,omitempty"`
	L2AmountSats               uint64  `json:"l2_amount_sats"`
	L1RecipientAddress         *string `json:"l1_recipient_address,omitempty"`
	L1AmountSats               *uint64 `json:"l1_amount_sats,omitempty"`
	L1ClaimerAddress           *string `json:"l1_claimer_address,omitempty"`
	L2ClaimerAddress           *string `json:"l2_claimer_address,omitempty"`
	CreatedAtHeight            uint32  `json:"created_at_height"`
	ExpiresAtHeight            *uint32 `json:"expires_at_height,omitempty"`
	L1TxidValidatedAtBlockHash *string `json:"l1_txid_validated_at_block_hash,omitempty"`
	L1TxidValidatedAtHeight    *uint32 `json:"l1_txid_validated_at_height,omitempty"`
}

func toSwapView(s *domain.Swap) swapView {
	v := swapView{
		Id:                    s.Id.String(),
		ParentChain:           s.ParentChain.String(),
		L1Txid:                s.L1Txid.String(),
		RequiredConfirmations: s.RequiredConfirmations,
		State:                 s.State.String(),
		L2AmountSats:          uint64(s.L2Amount),
		CreatedAtHeight:       s.CreatedAtHeight,
		ExpiresAtHeight:       s.ExpiresAtHeight,
		L1ClaimerAddress:      s.L1ClaimerAddress,
		L1TxidValidatedAtHeight: s.L1TxidValidatedAtHeight,
	}
	if s.L2Recipient != nil {
		str := s.L2Recipient.String()
		v.L2Recipient = &str
	}
	if s.L1RecipientAddress != nil {
		v.L1RecipientAddress = s.L1RecipientAddress
	}
	if s.L1Amount != nil {
		sats := uint64(*s.L1Amount)
		v.L1AmountSats = &sats
	}
	if s.L2ClaimerAddress != nil {
		str := s.L2ClaimerAddress.String()
		v.L2ClaimerAddress = &str
	}
	if s.L1TxidValidatedAtBlockHash != nil {
		str := s.L1TxidValidatedAtBlockHash.String()
		v.L1TxidValidatedAtBlockHash = &str
	}
	return v
}

func toSwapViews(swaps []*domain.Swap) []swapView {
	out := make([]swapView, 0, len(swaps))
	for _, s := range swaps {
		out = append(out, toSwapView(s))
	}
	return out
}
