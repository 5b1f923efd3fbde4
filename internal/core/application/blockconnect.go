package application

import (
	"context"
	"fmt"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Block is the minimal shape C6 needs of a connected/disconnected
// sidechain block: its hash/height and its transactions in body order.
type Block struct {
	Hash         domain.BlockHash
	Height       uint32
	Transactions []*domain.Transaction
	// IsMainchainTipAdvance is true when this block corresponds to a new
	// sidechain-observed mainchain tip; C8 is invoked only
	// on such blocks, in the same write transaction.
	IsMainchainTipAdvance bool
}

// Connector is C6: it applies and reverses swap effects as
// blocks connect to / disconnect from the sidechain, invoking C5 per
// transaction and C8 on mainchain-tip-advance blocks.
type Connector struct {
	swaps     domain.SwapRepository
	locks     domain.LockRepository
	validator *Validator
	scheduler ports.SchedulerService

	// observationSnapshots holds, per mainchain-tip-advance block, a clone of
	// every swap exactly as it stood before that block's C8/C7 tick ran. A
	// pure peg-advance block can carry zero SwapCreate/SwapClaim
	// transactions and still mutate L1-observation fields (L1Txid, State,
	// L1ClaimerAddress, L2ClaimerAddress, confirmations) through the tick;
	// there is no tx to dispatch on at disconnect time, so the snapshot is
	// the only way back to the pre-tick state.
	observationSnapshots map[domain.BlockHash][]*domain.Swap
}

func NewConnector(
	swaps domain.SwapRepository,
	locks domain.LockRepository,
	validator *Validator,
	scheduler ports.SchedulerService,
) *Connector {
	return &Connector{
		swaps:                swaps,
		locks:                locks,
		validator:            validator,
		scheduler:            scheduler,
		observationSnapshots: make(map[domain.BlockHash][]*domain.Swap),
	}
}

// ConnectBlock implements connect procedure. It is the
// caller's responsibility to run this inside the store's single write
// transaction. A transaction that fails validation or apply is logged and
// skipped without failing the block; only a failure to snapshot swap state
// or of the scheduler tick on a mainchain-tip advance is returned as an
// error for the block.
func (c *Connector) ConnectBlock(ctx context.Context, b *Block) error {
	for _, tx := range b.Transactions {
		if err := c.connectTx(ctx, b, tx); err != nil {
			log.WithError(err).WithField("txid", tx.Txid.String()).
				Warn("rejected transaction at block connect")
		}
	}

	if b.IsMainchainTipAdvance && c.scheduler != nil {
		if err := c.snapshotObservations(ctx, b.Hash); err != nil {
			return fmt.Errorf("failed to snapshot pre-tick swap state at height %d: %w", b.Height, err)
		}
		if err := c.scheduler.OnMainchainTipAdvance(ctx, b.Height); err != nil {
			return fmt.Errorf("peg-driven scheduler tick failed at height %d: %w", b.Height, err)
		}
	}
	return nil
}

// snapshotObservations clones every swap's current state and keeps it keyed
// by block hash, so DisconnectBlock can restore the L1-observation fields
// the scheduler tick is about to mutate.
func (c *Connector) snapshotObservations(ctx context.Context, hash domain.BlockHash) error {
	swaps, err := c.swaps.ListAll(ctx)
	if err != nil {
		return err
	}
	snapshot := make([]*domain.Swap, len(swaps))
	for i, swap := range swaps {
		snapshot[i] = swap.Clone()
	}
	c.observationSnapshots[hash] = snapshot
	return nil
}

func (c *Connector) connectTx(ctx context.Context, b *Block, tx *domain.Transaction) pkgerrors.Error {
	switch data := tx.Data.(type) {
	case *domain.SwapCreateData:
		return c.connectSwapCreate(ctx, b, tx, data)
	case *domain.SwapClaimData:
		return c.connectSwapClaim(ctx, tx, data)
	default:
		return c.validator.ValidateForeignTx(ctx, tx)
	}
}

func (c *Connector) connectSwapCreate(
	ctx context.Context, b *Block, tx *domain.Transaction, data *domain.SwapCreateData,
) pkgerrors.Error {
	if err := c.validator.ValidateSwapCreate(ctx, tx, data); err != nil {
		return err
	}

	l1Txid, convErr := domain.SwapTxIdFromBytes(data.L1TxidBytes)
	if convErr != nil {
		return pkgerrors.InvalidTransaction.New("%s", convErr)
	}

	swap := domain.NewSwap(
		data.SwapId, data.ParentChain, l1Txid, &data.RequiredConfirmations,
		data.L2Recipient, domain.Amount(data.L2Amount),
		data.L1RecipientAddress,
		amountPtr(data.L1Amount),
		b.Height, data.ExpiresAtHeight,
	)

	lockedOutpoints := make([]domain.OutPoint, len(tx.Outputs))
	for i := range tx.Outputs {
		op := domain.OutPoint{Txid: tx.Txid, Vout: uint32(i)}
		if err := c.locks.Lock(ctx, op, data.SwapId); err != nil {
			return pkgerrors.Internal.New("failed to lock SwapCreate output %s: %s", op.String(), err)
		}
		lockedOutpoints[i] = op
	}
	swap.LockedOutpoints = lockedOutpoints

	if err := c.swaps.Insert(ctx, swap); err != nil {
		return pkgerrors.Internal.New("failed to insert new swap %s: %s", data.SwapId.String(), err)
	}
	return nil
}

func (c *Connector) connectSwapClaim(
	ctx context.Context, tx *domain.Transaction, data *domain.SwapClaimData,
) pkgerrors.Error {
	if err := c.validator.ValidateSwapClaim(ctx, tx, data); err != nil {
		return err
	}

	swap, err := c.swaps.Get(ctx, data.SwapId)
	if err != nil || swap == nil {
		return pkgerrors.SwapNotFound.New("swap vanished between validate and apply")
	}

	for _, op := range tx.InputOutpoints() {
		lockedTo, locked, lerr := c.locks.LockedTo(ctx, op)
		if lerr != nil {
			return pkgerrors.Internal.New("lock lookup failed: %s", lerr)
		}
		if locked && lockedTo == data.SwapId {
			if uerr := c.locks.Unlock(ctx, op); uerr != nil {
				return pkgerrors.Internal.New("failed to unlock %s: %s", op.String(), uerr)
			}
		}
	}

	swap.MarkCompleted()
	if err := c.swaps.Update(ctx, swap); err != nil {
		return pkgerrors.Internal.New("failed to mark swap %s completed: %s", data.SwapId.String(), err)
	}
	return nil
}

// DisconnectBlock implements disconnect procedure: the
// mirror image of ConnectBlock, run in reverse transaction order. For a
// mainchain-tip-advance block, the C7/C8 tick's L1-observation mutations are
// reverted first, from the snapshot ConnectBlock took, then the scheduler's
// monotonic height gate is rolled back so a subsequent re-trigger at this
// height or below is not swallowed.
func (c *Connector) DisconnectBlock(ctx context.Context, b *Block) error {
	if b.IsMainchainTipAdvance {
		if err := c.revertObservations(ctx, b.Hash); err != nil {
			log.WithError(err).WithField("block_hash", b.Hash.String()).
				Warn("error while reverting L1-observation state on block disconnect")
		}
		if c.scheduler != nil {
			rollbackHeight := uint32(0)
			if b.Height > 0 {
				rollbackHeight = b.Height - 1
			}
			c.scheduler.RollbackTo(rollbackHeight)
		}
	}

	for i := len(b.Transactions) - 1; i >= 0; i-- {
		tx := b.Transactions[i]
		if err := c.disconnectTx(ctx, b, tx); err != nil {
			log.WithError(err).WithField("txid", tx.Txid.String()).
				Warn("error while disconnecting transaction")
		}
	}
	return nil
}

// revertObservations restores every swap captured by snapshotObservations
// back to its pre-tick state, then discards the snapshot. A swap created
// after the snapshot was taken (e.g. by a SwapCreate transaction in this
// same block) is untouched here; the tx-disconnect loop below removes it.
func (c *Connector) revertObservations(ctx context.Context, hash domain.BlockHash) error {
	snapshot, ok := c.observationSnapshots[hash]
	if !ok {
		return nil
	}
	delete(c.observationSnapshots, hash)

	for _, before := range snapshot {
		after, err := c.swaps.Get(ctx, before.Id)
		if err != nil {
			return fmt.Errorf("lookup swap %s during observation revert: %w", before.Id.String(), err)
		}
		if after == nil {
			continue
		}
		if observationsEqual(before, after) {
			continue
		}
		after.L1Txid = before.L1Txid
		after.State = before.State
		after.L1ClaimerAddress = before.L1ClaimerAddress
		after.L2ClaimerAddress = before.L2ClaimerAddress
		after.L1TxidValidatedAtBlockHash = before.L1TxidValidatedAtBlockHash
		after.L1TxidValidatedAtHeight = before.L1TxidValidatedAtHeight
		if err := c.swaps.Update(ctx, after); err != nil {
			return fmt.Errorf("restore swap %s during observation revert: %w", before.Id.String(), err)
		}
	}
	return nil
}

func observationsEqual(a, b *domain.Swap) bool {
	return a.L1Txid == b.L1Txid &&
		a.State == b.State &&
		stringPtrEqual(a.L1ClaimerAddress, b.L1ClaimerAddress) &&
		addressPtrEqual(a.L2ClaimerAddress, b.L2ClaimerAddress)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func addressPtrEqual(a, b *domain.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (c *Connector) disconnectTx(ctx context.Context, b *Block, tx *domain.Transaction) error {
	switch data := tx.Data.(type) {
	case *domain.SwapClaimData:
		return c.disconnectSwapClaim(ctx, tx, data)
	case *domain.SwapCreateData:
		return c.disconnectSwapCreate(ctx, tx, data)
	default:
		return nil
	}
}

// disconnectSwapClaim implements disconnect mirror: re-lock only the
// inputs that were actually unlocked at connect time - the escrow outpoints
// SwapCreate locked to this swap's id, per swap.LockedOutpoints - and revert
// the swap back to ReadyToClaim. SwapClaim rule 3 permits extra unlocked
// fee-funding inputs in the claim tx; those must not be re-locked here, or
// connect+disconnect would fail to restore the lock store byte-for-byte.
func (c *Connector) disconnectSwapClaim(
	ctx context.Context, tx *domain.Transaction, data *domain.SwapClaimData,
) error {
	swap, err := c.swaps.Get(ctx, data.SwapId)
	if err != nil || swap == nil {
		return fmt.Errorf("swap %s not found while disconnecting claim", data.SwapId.String())
	}

	escrow := make(map[domain.OutPoint]struct{}, len(swap.LockedOutpoints))
	for _, op := range swap.LockedOutpoints {
		escrow[op] = struct{}{}
	}
	for _, op := range tx.InputOutpoints() {
		if _, wasEscrow := escrow[op]; !wasEscrow {
			continue
		}
		if err := c.locks.Lock(ctx, op, data.SwapId); err != nil {
			log.WithField("outpoint", op.String()).Debug("input already locked at claim disconnect")
		}
	}

	swap.State = domain.ReadyToClaim()
	return c.swaps.Update(ctx, swap)
}

func (c *Connector) disconnectSwapCreate(
	ctx context.Context, tx *domain.Transaction, data *domain.SwapCreateData,
) error {
	for i := range tx.Outputs {
		op := domain.OutPoint{Txid: tx.Txid, Vout: uint32(i)}
		if err := c.locks.Unlock(ctx, op); err != nil {
			log.WithField("outpoint", op.String()).Debug("output already unlocked at disconnect")
		}
	}
	return c.swaps.Delete(ctx, data.SwapId)
}

func amountPtr(v *uint64) *domain.Amount {
	if v == nil {
		return nil
	}
	a := domain.Amount(*v)
	return &a
}
