package application

import (
	"context"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
)

// Validator is C5: it validates a candidate transaction's
// SwapCreate/SwapClaim payload against the current store state, and
// enforces the foreign-tx locked-input rule on every other transaction.
// It never mutates the stores; blockconnect.go applies the effects once a
// validation call returns cleanly.
type Validator struct {
	swaps domain.SwapRepository
	locks domain.LockRepository
}

func NewValidator(swaps domain.SwapRepository, locks domain.LockRepository) *Validator {
	return &Validator{swaps: swaps, locks: locks}
}

// ValidateSwapCreate implements SwapCreate rules 1-6.
func (v *Validator) ValidateSwapCreate(
	ctx context.Context, tx *domain.Transaction, data *domain.SwapCreateData,
) pkgerrors.Error {
	if data.L2Amount == 0 {
		return pkgerrors.InsufficientL2Amount.New(
			"l2_amount must be greater than zero",
		).WithMetadata(pkgerrors.InsufficientAmountMetadata{
			Required: "1", Got: "0",
		})
	}
	if len(tx.Outputs) == 0 {
		return pkgerrors.InvalidTransaction.New(
			"SwapCreate tx has no outputs",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}

	sender, ok := tx.FirstInputSender()
	if !ok {
		return pkgerrors.InvalidTransaction.New(
			"SwapCreate tx has no inputs",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}
	if data.L1RecipientAddress == nil || data.L1Amount == nil {
		return pkgerrors.InvalidTransaction.New(
			"SwapCreate missing l1_recipient_address/l1_amount (L1->L2 is out of scope)",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}
	expected := domain.SwapIdOf(
		*data.L1RecipientAddress, domain.Amount(*data.L1Amount), sender, data.L2Recipient,
	)
	if expected != data.SwapId {
		return pkgerrors.SwapIdMismatch.New(
			"computed swap id does not match tx-carried swap id",
		).WithMetadata(pkgerrors.SwapIdMismatchMetadata{
			Expected: data.SwapId.String(), Computed: expected.String(),
		})
	}

	if existing, err := v.swaps.Get(ctx, data.SwapId); err == nil && existing != nil {
		return pkgerrors.SwapAlreadyExists.New(
			"swap id already exists",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}

	if err := v.checkNoLockedInputs(ctx, tx, domain.SwapId{}); err != nil {
		return err
	}

	if tx.TotalInputValue() < domain.Amount(data.L2Amount) {
		return pkgerrors.InsufficientL2Amount.New(
			"SwapCreate input sum is below l2_amount",
		).WithMetadata(pkgerrors.InsufficientAmountMetadata{
			Required: domain.Amount(data.L2Amount).String(),
			Got:      tx.TotalInputValue().String(),
		})
	}

	if len(data.L1TxidBytes) > 0 {
		txid, err := domain.SwapTxIdFromBytes(data.L1TxidBytes)
		if err != nil {
			return pkgerrors.InvalidTransaction.New(
				"invalid l1_txid_bytes: %s", err,
			).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
		}
		if !txid.IsZero() {
			if existing, err := v.swaps.GetByL1Txid(ctx, data.ParentChain, txid); err == nil && existing != nil {
				return pkgerrors.L1TxAlreadyUsed.New(
					"l1_txid already bound to another swap",
				).WithMetadata(pkgerrors.L1TxMetadata{
					ParentChain: data.ParentChain.String(), L1Txid: txid.String(),
				})
			}
		}
	}

	return nil
}

// ValidateSwapClaim implements SwapClaim rules 1-5.
func (v *Validator) ValidateSwapClaim(
	ctx context.Context, tx *domain.Transaction, data *domain.SwapClaimData,
) pkgerrors.Error {
	swap, err := v.swaps.Get(ctx, data.SwapId)
	if err != nil || swap == nil {
		return pkgerrors.SwapNotFound.New(
			"swap not found",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}

	if swap.State.Tag != domain.StateReadyToClaim {
		return pkgerrors.InvalidStateTransition.New(
			"swap is not ReadyToClaim (state=%s)", swap.State.String(),
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}
	if swap.L1Txid.IsZero() {
		return pkgerrors.InvalidStateTransition.New(
			"swap has no observed l1_txid",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}

	if err := v.checkClaimLockedInputs(ctx, tx, data.SwapId); err != nil {
		return err
	}

	recipient, ok := swap.EffectiveL2Recipient(data.L2ClaimerAddress)
	if !ok {
		return pkgerrors.InvalidTransaction.New(
			"no effective l2 recipient: open offer claim missing l2_claimer_address, "+
				"or claimer does not match the bound claimer",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: data.SwapId.String()})
	}

	if tx.OutputValueTo(recipient) < swap.L2Amount {
		return pkgerrors.InsufficientL2Amount.New(
			"SwapClaim outputs underpay the effective recipient",
		).WithMetadata(pkgerrors.InsufficientAmountMetadata{
			Required: swap.L2Amount.String(),
			Got:      tx.OutputValueTo(recipient).String(),
		})
	}

	return nil
}

// ValidateForeignTx implements the foreign-tx locked-input rule:
// no input of a non-swap transaction may reference a locked outpoint.
func (v *Validator) ValidateForeignTx(ctx context.Context, tx *domain.Transaction) pkgerrors.Error {
	return v.checkNoLockedInputs(ctx, tx, domain.SwapId{})
}

// checkNoLockedInputs fails if any input outpoint is locked at all
// (exempt is the zero SwapId, meaning "no exemption" — used for
// SwapCreate and foreign txs, never for SwapClaim). A lock whose SwapId no
// longer resolves to a readable Swap record is reported distinctly, as an
// orphaned lock, rather than an ordinary locked-input violation.
func (v *Validator) checkNoLockedInputs(
	ctx context.Context, tx *domain.Transaction, _ domain.SwapId,
) pkgerrors.Error {
	for _, op := range tx.InputOutpoints() {
		lockedTo, locked, err := v.locks.LockedTo(ctx, op)
		if err != nil {
			return pkgerrors.Internal.New("lock lookup failed: %s", err)
		}
		if !locked {
			continue
		}
		if v.lockIsOrphaned(ctx, lockedTo) {
			return pkgerrors.OrphanedLock.New(
				"input locked to a swap id that no longer resolves to a readable swap",
			).WithMetadata(pkgerrors.LockedInputMetadata{
				Outpoint: op.String(), LockedToSwap: lockedTo.String(),
			})
		}
		return pkgerrors.LockedInputViolation.New(
			"input spends a locked outpoint",
		).WithMetadata(pkgerrors.LockedInputMetadata{
			Outpoint: op.String(), LockedToSwap: lockedTo.String(),
		})
	}
	return nil
}

// checkClaimLockedInputs implements SwapClaim rule 3: at least one locked
// input, and every locked input locked to exactly swapId. As in
// checkNoLockedInputs, a lock whose SwapId no longer resolves is reported
// as an orphaned lock rather than a plain locked-input violation.
func (v *Validator) checkClaimLockedInputs(
	ctx context.Context, tx *domain.Transaction, swapId domain.SwapId,
) pkgerrors.Error {
	sawMatchingLock := false
	for _, op := range tx.InputOutpoints() {
		lockedTo, locked, err := v.locks.LockedTo(ctx, op)
		if err != nil {
			return pkgerrors.Internal.New("lock lookup failed: %s", err)
		}
		if !locked {
			continue
		}
		if lockedTo != swapId {
			if v.lockIsOrphaned(ctx, lockedTo) {
				return pkgerrors.OrphanedLock.New(
					"input locked to a swap id that no longer resolves to a readable swap",
				).WithMetadata(pkgerrors.LockedInputMetadata{
					Outpoint: op.String(), LockedToSwap: lockedTo.String(),
				})
			}
			return pkgerrors.LockedInputViolation.New(
				"SwapClaim spends an input locked to a different swap",
			).WithMetadata(pkgerrors.LockedInputMetadata{
				Outpoint: op.String(), LockedToSwap: lockedTo.String(),
			})
		}
		sawMatchingLock = true
	}
	if !sawMatchingLock {
		return pkgerrors.LockedInputViolation.New(
			"SwapClaim has no input locked to its swap id",
		).WithMetadata(pkgerrors.LockedInputMetadata{
			Outpoint: "", LockedToSwap: swapId.String(),
		})
	}
	return nil
}

// lockIsOrphaned reports whether swapId - the target of a lock entry - no
// longer resolves to a readable Swap record.
func (v *Validator) lockIsOrphaned(ctx context.Context, swapId domain.SwapId) bool {
	swap, err := v.swaps.Get(ctx, swapId)
	return err != nil || swap == nil
}
