package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/coinshift-network/coinshiftd/internal/core/application"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
)

// createSwapParams mirrors application.CreateSwapParams, but over the wire
// every id/address/amount is hex or decimal JSON, not Go's native types.
type createSwapParams struct {
	ParentChain           string  `json:"parent_chain"`
	L1RecipientAddress    string  `json:"l1_recipient_address"`
	L1AmountSats          uint64  `json:"l1_amount_sats"`
	L2Recipient           *string `json:"l2_recipient,omitempty"`
	L2AmountSats          uint64  `json:"l2_amount_sats"`
	RequiredConfirmations *uint32 `json:"required_confirmations,omitempty"`
	FeeSats               uint64  `json:"fee_sats"`
	L2Sender              string  `json:"l2_sender"`
	CreatedAtHeight       uint32  `json:"created_at_height"`
	ExpiresAtHeight       *uint32 `json:"expires_at_height,omitempty"`
}

type createSwapResult struct {
	SwapId    string `json:"swap_id"`
	ChainHash string `json:"chain_hash"`
}

func (s *Server) handleCreateSwap(ctx context.Context, raw json.RawMessage) (any, error) {
	var p createSwapParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, pkgerrors.ClientError.New("invalid create_swap params: %s", err)
	}

	chain, err := domain.ParseParentChainType(p.ParentChain)
	if err != nil {
		return nil, pkgerrors.ClientError.New("invalid parent_chain: %s", err)
	}
	sender, err := domain.AddressFromHex(p.L2Sender)
	if err != nil {
		return nil, pkgerrors.ClientError.New("invalid l2_sender: %s", err)
	}
	var recipient *domain.Address
	if p.L2Recipient != nil {
		addr, err := domain.AddressFromHex(*p.L2Recipient)
		if err != nil {
			return nil, pkgerrors.ClientError.New("invalid l2_recipient: %s", err)
		}
		recipient = &addr
	}

	swapId, chainHash, err := s.svc.CreateSwap(ctx, application.CreateSwapParams{
		ParentChain:           chain,
		L1RecipientAddress:    p.L1RecipientAddress,
		L1AmountSats:          p.L1AmountSats,
		L2Recipient:           recipient,
		L2AmountSats:          p.L2AmountSats,
		RequiredConfirmations: p.RequiredConfirmations,
		FeeSats:               p.FeeSats,
		L2Sender:              sender,
		CreatedAtHeight:       p.CreatedAtHeight,
		ExpiresAtHeight:       p.ExpiresAtHeight,
	})
	if err != nil {
		return nil, err
	}
	return createSwapResult{SwapId: swapId.String(), ChainHash: chainHash}, nil
}

type claimSwapParams struct {
	SwapId           string  `json:"swap_id"`
	L2ClaimerAddress *string `json:"l2_claimer_address,omitempty"`
}

func (s *Server) handleClaimSwap(ctx context.Context, raw json.RawMessage) (any, error) {
	var p claimSwapParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, pkgerrors.ClientError.New("invalid claim_swap params: %s", err)
	}
	swapId, ok := domain.SwapIdFromHex(p.SwapId)
	if !ok {
		return nil, pkgerrors.ClientError.New("invalid swap_id")
	}
	var claimer *domain.Address
	if p.L2ClaimerAddress != nil {
		addr, err := domain.AddressFromHex(*p.L2ClaimerAddress)
		if err != nil {
			return nil, pkgerrors.ClientError.New("invalid l2_claimer_address: %s", err)
		}
		claimer = &addr
	}

	chainHash, err := s.svc.ClaimSwap(ctx, swapId, claimer)
	if err != nil {
		return nil, err
	}
	return map[string]string{"chain_hash": chainHash}, nil
}

type updateSwapL1TxidParams struct {
	SwapId           string  `json:"swap_id"`
	L1Txid           string  `json:"l1_txid"`
	Confirmations    uint32  `json:"confirmations"`
	L2ClaimerAddress *string `json:"l2_claimer_address,omitempty"`
}

func (s *Server) handleUpdateSwapL1Txid(ctx context.Context, raw json.RawMessage) (any, error) {
	var p updateSwapL1TxidParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, pkgerrors.ClientError.New("invalid update_swap_l1_txid params: %s", err)
	}
	swapId, ok := domain.SwapIdFromHex(p.SwapId)
	if !ok {
		return nil, pkgerrors.ClientError.New("invalid swap_id")
	}
	var claimer *domain.Address
	if p.L2ClaimerAddress != nil {
		addr, err := domain.AddressFromHex(*p.L2ClaimerAddress)
		if err != nil {
			return nil, pkgerrors.ClientError.New("invalid l2_claimer_address: %s", err)
		}
		claimer = &addr
	}
	if err := s.svc.UpdateSwapL1Txid(ctx, swapId, p.L1Txid, p.Confirmations, claimer); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type swapIdParams struct {
	SwapId string `json:"swap_id"`
}

func (s *Server) handleGetSwapStatus(ctx context.Context, raw json.RawMessage) (any, error) {
	var p swapIdParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, pkgerrors.ClientError.New("invalid get_swap_status params: %s", err)
	}
	swapId, ok := domain.SwapIdFromHex(p.SwapId)
	if !ok {
		return nil, pkgerrors.ClientError.New("invalid swap_id")
	}
	swap, err := s.svc.GetSwapStatus(ctx, swapId)
	if err != nil {
		return nil, err
	}
	return toSwapView(swap), nil
}

func (s *Server) handleListSwaps(ctx context.Context, raw json.RawMessage) (any, error) {
	swaps, err := s.svc.ListSwaps(ctx)
	if err != nil {
		return nil, err
	}
	return toSwapViews(swaps), nil
}

type listSwapsByRecipientParams struct {
	Recipient string `json:"recipient"`
}

func (s *Server) handleListSwapsByRecipient(ctx context.Context, raw json.RawMessage) (any, error) {
	var p listSwapsByRecipientParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, pkgerrors.ClientError.New("invalid list_swaps_by_recipient params: %s", err)
	}
	recipient, err := domain.AddressFromHex(p.Recipient)
	if err != nil {
		return nil, pkgerrors.ClientError.New("invalid recipient: %s", err)
	}
	swaps, err := s.svc.ListSwapsByRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}
	return toSwapViews(swaps), nil
}

func (s *Server) handleReconstructSwaps(ctx context.Context, raw json.RawMessage) (any, error) {
	if err := s.svc.ReconstructSwaps(ctx); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handleCleanupOrphanedLocks(ctx context.Context, raw json.RawMessage) (any, error) {
	n, err := s.svc.CleanupOrphanedLocks(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{"unlocked": n}, nil
}

func (s *Server) handleGetL1Health(ctx context.Context, raw json.RawMessage) (any, error) {
	health := s.svc.GetL1Health(ctx)
	out := make(map[string]bool, len(health))
	for chain, healthy := range health {
		out[chain.String()] = healthy
	}
	return out, nil
}
