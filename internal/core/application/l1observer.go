package application

import (
	"context"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
)

// Observer is C7: given the set of non-final swaps and a
// per-chain L1 RPC client, it advances each swap's L1-observation state.
// It is invoked exclusively by C8, never on its own schedule.
type Observer struct {
	swaps   domain.SwapRepository
	clients map[domain.ParentChainType]ports.L1RPCClient
}

func NewObserver(swaps domain.SwapRepository, clients map[domain.ParentChainType]ports.L1RPCClient) *Observer {
	return &Observer{swaps: swaps, clients: clients}
}

// Tick runs one pass over every Pending/WaitingConfirmations swap, in
// SwapId byte order, at sidechain height currentHeight.
func (o *Observer) Tick(ctx context.Context, currentHeight uint32) error {
	swaps, err := o.swaps.ListByState(ctx, domain.StatePending, domain.StateWaitingConfirmations)
	if err != nil {
		return err
	}
	sort.Slice(swaps, func(i, j int) bool {
		return lessSwapId(swaps[i].Id, swaps[j].Id)
	})

	for _, swap := range swaps {
		if err := o.processSwap(ctx, swap, currentHeight); err != nil {
			err.Log().WithField("swap_id", swap.Id.String()).Warn("l1 observer step did not advance this swap")
		}
	}
	return nil
}

func lessSwapId(a, b domain.SwapId) bool {
	ab, bb := a.Bytes(), b.Bytes()
	for i := range ab {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}
	return false
}

func (o *Observer) processSwap(ctx context.Context, swap *domain.Swap, currentHeight uint32) pkgerrors.Error {
	if swap.ExpiresAtHeight != nil && currentHeight >= *swap.ExpiresAtHeight {
		swap.MarkCancelled()
		if err := o.swaps.Update(ctx, swap); err != nil {
			return pkgerrors.Internal.New("failed to mark swap %s cancelled: %s", swap.Id.String(), err)
		}
		return nil
	}

	client, ok := o.clients[swap.ParentChain]
	if !ok {
		return pkgerrors.ChainNotConfigured.New(
			"no L1 RPC client configured for chain",
		).WithMetadata(pkgerrors.ChainMetadata{ParentChain: swap.ParentChain.String()})
	}

	if swap.L1Txid.IsZero() {
		return o.discoverL1Tx(ctx, swap, client)
	}
	return o.refreshL1Tx(ctx, swap, client)
}

// discoverL1Tx finds a confirmed,
// block-included L1 transaction paying l1_amount to l1_recipient_address.
func (o *Observer) discoverL1Tx(ctx context.Context, swap *domain.Swap, client ports.L1RPCClient) pkgerrors.Error {
	if swap.L1RecipientAddress == nil || swap.L1Amount == nil {
		return pkgerrors.Internal.New("swap %s is missing l1_recipient_address/l1_amount", swap.Id.String())
	}

	candidates, err := client.FindTransactionsByAddressAndAmount(
		ctx, *swap.L1RecipientAddress, uint64(*swap.L1Amount),
	)
	if err != nil {
		return pkgerrors.ClientError.New(
			"find_transactions_by_address_and_amount failed: %s", err,
		).WithMetadata(pkgerrors.ClientErrorMetadata{
			ParentChain: swap.ParentChain.String(), Cause: err.Error(),
		})
	}

	for _, cand := range candidates {
		if cand.Confirmations == 0 || cand.BlockHeight == nil {
			continue // not yet block-included
		}

		candHash, err := chainhash.NewHashFromStr(cand.Txid)
		if err != nil {
			continue
		}
		candTxid := domain.NewSwapTxIdFromHash(*candHash)
		if existing, derr := o.swaps.GetByL1Txid(ctx, swap.ParentChain, candTxid); derr == nil &&
			existing != nil && existing.Id != swap.Id {
			continue // already bound to a different swap
		}

		claimer := ""
		if cand.SenderAddress != nil {
			claimer = *cand.SenderAddress
		}
		swap.UpdateL1Observation(candTxid, claimer, cand.Confirmations, nil)
		if cand.BlockHeight != nil && cand.BlockHash != nil {
			if bh, err := chainhash.NewHashFromStr(*cand.BlockHash); err == nil {
				swap.SetL1TxidValidationBlock(*bh, *cand.BlockHeight)
			}
		}
		if err := o.swaps.Update(ctx, swap); err != nil {
			return pkgerrors.Internal.New("failed to persist l1 observation for %s: %s", swap.Id.String(), err)
		}
		return nil
	}
	return nil // no match this tick; swap stays as-is
}

// refreshL1Tx refetches a previously observed
// L1 tx and advances confirmations, or surfaces TransactionDisappeared.
func (o *Observer) refreshL1Tx(ctx context.Context, swap *domain.Swap, client ports.L1RPCClient) pkgerrors.Error {
	hash, ok := swap.L1Txid.Hash()
	if !ok {
		return pkgerrors.Internal.New("swap %s has non-zero l1_txid with no hash", swap.Id.String())
	}
	txid := hash.String()

	l1tx, err := client.GetTransaction(ctx, txid)
	if err != nil || l1tx == nil {
		if swap.State.IsTerminal() {
			return nil
		}
		return pkgerrors.TransactionDisappeared.New(
			"previously observed l1 tx no longer present",
		).WithMetadata(pkgerrors.L1TxMetadata{
			ParentChain: swap.ParentChain.String(), L1Txid: txid,
		})
	}

	swap.RefreshConfirmations(l1tx.Confirmations)
	if err := o.swaps.Update(ctx, swap); err != nil {
		return pkgerrors.Internal.New("failed to persist confirmation refresh for %s: %s", swap.Id.String(), err)
	}
	return nil
}
