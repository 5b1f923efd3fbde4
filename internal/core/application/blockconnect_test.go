package application

import (
	"context"
	"testing"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	badgerdb "github.com/coinshift-network/coinshiftd/internal/infrastructure/db/badger"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	advances []uint32
	err      error
}

func (f *fakeScheduler) OnMainchainTipAdvance(ctx context.Context, height uint32) error {
	f.advances = append(f.advances, height)
	return f.err
}

func (f *fakeScheduler) SetPegAdvanceHandler(fn ports.PegAdvanceFunc) {}

func (f *fakeScheduler) RollbackTo(height uint32) {}

// tickingScheduler is a real PegAdvanceFunc-driven fake: unlike fakeScheduler
// it actually runs the installed handler, so tests can exercise C7-style
// swap mutations against a mainchain-tip-advance block that carries no
// SwapCreate/SwapClaim transaction of its own.
type tickingScheduler struct {
	handler   ports.PegAdvanceFunc
	rollbacks []uint32
}

func (f *tickingScheduler) OnMainchainTipAdvance(ctx context.Context, height uint32) error {
	if f.handler == nil {
		return nil
	}
	return f.handler(ctx, height)
}

func (f *tickingScheduler) SetPegAdvanceHandler(fn ports.PegAdvanceFunc) { f.handler = fn }

func (f *tickingScheduler) RollbackTo(height uint32) {
	f.rollbacks = append(f.rollbacks, height)
}

func newTestConnector(t *testing.T, scheduler ports.SchedulerService) (*Connector, domain.SwapRepository, domain.LockRepository) {
	t.Helper()
	swaps, err := badgerdb.NewSwapRepository(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(swaps.Close)
	locks, err := badgerdb.NewLockRepository(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(locks.Close)
	validator := NewValidator(swaps, locks)
	return NewConnector(swaps, locks, validator, scheduler), swaps, locks
}

func swapCreateTransaction(sender domain.Address, l1Addr string, l1Amount domain.Amount, l2Amount uint64, l2Recipient *domain.Address) (*domain.Transaction, *domain.SwapCreateData) {
	id := domain.SwapIdOf(l1Addr, l1Amount, sender, l2Recipient)
	amt := uint64(l1Amount)
	data := &domain.SwapCreateData{
		SwapId:                id,
		ParentChain:           domain.BTC,
		RequiredConfirmations: 3,
		L2Recipient:           l2Recipient,
		L2Amount:              l2Amount,
		L1RecipientAddress:    &l1Addr,
		L1Amount:              &amt,
	}
	tx := &domain.Transaction{
		Txid:    txid(0x60),
		Inputs:  []domain.TxInput{{Outpoint: outpoint(0x50, 0), Value: domain.Amount(l2Amount), SenderAddress: sender}},
		Outputs: []domain.TxOutput{{Address: domain.Address{1}, Value: domain.Amount(l2Amount)}},
		Data:    data,
	}
	return tx, data
}

func TestConnector_ConnectBlock_AppliesSwapCreate(t *testing.T) {
	connector, swaps, locks := newTestConnector(t, nil)
	sender := domain.Address{1, 2, 3}
	tx, data := swapCreateTransaction(sender, "bc1qrecipient", 50_000, 10_000, nil)

	block := &Block{Hash: chainHashFixture(0x01), Height: 5, Transactions: []*domain.Transaction{tx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	got, err := swaps.Get(context.Background(), data.SwapId)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.StatePending, got.State.Tag)

	lockedTo, locked, err := locks.LockedTo(context.Background(), domain.OutPoint{Txid: tx.Txid, Vout: 0})
	require.NoError(t, err)
	require.True(t, locked)
	require.Equal(t, data.SwapId, lockedTo)
}

func TestConnector_ConnectBlock_AppliesSwapCreateExpiresAtHeight(t *testing.T) {
	connector, swaps, _ := newTestConnector(t, nil)
	sender := domain.Address{1, 2, 3}
	tx, data := swapCreateTransaction(sender, "bc1qrecipient", 50_000, 10_000, nil)
	expires := uint32(42)
	data.ExpiresAtHeight = &expires

	block := &Block{Hash: chainHashFixture(0x01), Height: 5, Transactions: []*domain.Transaction{tx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	got, err := swaps.Get(context.Background(), data.SwapId)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ExpiresAtHeight)
	require.Equal(t, expires, *got.ExpiresAtHeight)
}

func TestConnector_ConnectBlock_RejectsInvalidSwapCreateWithoutFailingBlock(t *testing.T) {
	connector, swaps, _ := newTestConnector(t, nil)
	sender := domain.Address{1, 2, 3}
	tx, data := swapCreateTransaction(sender, "bc1qrecipient", 50_000, 0, nil)

	block := &Block{Hash: chainHashFixture(0x01), Height: 5, Transactions: []*domain.Transaction{tx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block), "invalid tx rejection must not fail the block")

	got, err := swaps.Get(context.Background(), data.SwapId)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConnector_ConnectBlock_AppliesSwapClaimAndUnlocks(t *testing.T) {
	connector, swaps, locks := newTestConnector(t, nil)
	recipient := domain.Address{9, 9, 9}
	swap := readyToClaimSwap(t, &recipient, nil, 10_000)
	op := domain.OutPoint{Txid: txid(0x70), Vout: 0}
	swap.LockedOutpoints = []domain.OutPoint{op}
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, locks.Lock(context.Background(), op, swap.Id))

	claimTx := &domain.Transaction{
		Txid:    txid(0x71),
		Inputs:  []domain.TxInput{{Outpoint: op, Value: 10_000}},
		Outputs: []domain.TxOutput{{Address: recipient, Value: 10_000}},
		Data:    &domain.SwapClaimData{SwapId: swap.Id},
	}

	block := &Block{Hash: chainHashFixture(0x02), Height: 6, Transactions: []*domain.Transaction{claimTx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, got.State.Tag)

	_, locked, err := locks.LockedTo(context.Background(), op)
	require.NoError(t, err)
	require.False(t, locked)
}

func TestConnector_ConnectBlock_InvokesSchedulerOnMainchainTipAdvance(t *testing.T) {
	scheduler := &fakeScheduler{}
	connector, _, _ := newTestConnector(t, scheduler)

	block := &Block{Hash: chainHashFixture(0x03), Height: 7, IsMainchainTipAdvance: true}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))
	require.Equal(t, []uint32{7}, scheduler.advances)
}

func TestConnector_ConnectBlock_SkipsSchedulerWithoutTipAdvance(t *testing.T) {
	scheduler := &fakeScheduler{}
	connector, _, _ := newTestConnector(t, scheduler)

	block := &Block{Hash: chainHashFixture(0x04), Height: 8}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))
	require.Empty(t, scheduler.advances)
}

func TestConnector_DisconnectBlock_ReversesSwapCreate(t *testing.T) {
	connector, swaps, locks := newTestConnector(t, nil)
	sender := domain.Address{1, 2, 3}
	tx, data := swapCreateTransaction(sender, "bc1qrecipient", 50_000, 10_000, nil)

	block := &Block{Hash: chainHashFixture(0x05), Height: 5, Transactions: []*domain.Transaction{tx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	require.NoError(t, connector.DisconnectBlock(context.Background(), block))

	got, err := swaps.Get(context.Background(), data.SwapId)
	require.NoError(t, err)
	require.Nil(t, got)

	_, locked, err := locks.LockedTo(context.Background(), domain.OutPoint{Txid: tx.Txid, Vout: 0})
	require.NoError(t, err)
	require.False(t, locked)
}

func TestConnector_DisconnectBlock_ReversesSwapClaim(t *testing.T) {
	connector, swaps, locks := newTestConnector(t, nil)
	recipient := domain.Address{9, 9, 9}
	swap := readyToClaimSwap(t, &recipient, nil, 10_000)
	op := domain.OutPoint{Txid: txid(0x80), Vout: 0}
	swap.LockedOutpoints = []domain.OutPoint{op}
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, locks.Lock(context.Background(), op, swap.Id))

	claimTx := &domain.Transaction{
		Txid:    txid(0x81),
		Inputs:  []domain.TxInput{{Outpoint: op, Value: 10_000}},
		Outputs: []domain.TxOutput{{Address: recipient, Value: 10_000}},
		Data:    &domain.SwapClaimData{SwapId: swap.Id},
	}
	block := &Block{Hash: chainHashFixture(0x06), Height: 6, Transactions: []*domain.Transaction{claimTx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	require.NoError(t, connector.DisconnectBlock(context.Background(), block))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateReadyToClaim, got.State.Tag)

	lockedTo, locked, err := locks.LockedTo(context.Background(), op)
	require.NoError(t, err)
	require.True(t, locked)
	require.Equal(t, swap.Id, lockedTo)
}

func TestConnector_DisconnectBlock_DoesNotLockFeeFundingInput(t *testing.T) {
	connector, swaps, locks := newTestConnector(t, nil)
	recipient := domain.Address{9, 9, 9}
	swap := readyToClaimSwap(t, &recipient, nil, 10_000)
	escrowOp := domain.OutPoint{Txid: txid(0x90), Vout: 0}
	feeOp := domain.OutPoint{Txid: txid(0x91), Vout: 1}
	swap.LockedOutpoints = []domain.OutPoint{escrowOp}
	require.NoError(t, swaps.Insert(context.Background(), swap))
	require.NoError(t, locks.Lock(context.Background(), escrowOp, swap.Id))

	claimTx := &domain.Transaction{
		Txid: txid(0x92),
		Inputs: []domain.TxInput{
			{Outpoint: escrowOp, Value: 10_000},
			{Outpoint: feeOp, Value: 1_000},
		},
		Outputs: []domain.TxOutput{{Address: recipient, Value: 10_000}},
		Data:    &domain.SwapClaimData{SwapId: swap.Id},
	}
	block := &Block{Hash: chainHashFixture(0x07), Height: 7, Transactions: []*domain.Transaction{claimTx}}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	require.NoError(t, connector.DisconnectBlock(context.Background(), block))

	_, escrowLocked, err := locks.LockedTo(context.Background(), escrowOp)
	require.NoError(t, err)
	require.True(t, escrowLocked, "disconnect must restore the escrow lock")

	_, feeLocked, err := locks.LockedTo(context.Background(), feeOp)
	require.NoError(t, err)
	require.False(t, feeLocked, "disconnect must not lock the claimer's unrelated fee-funding input")
}

// TestConnector_DisconnectBlock_RevertsL1ObservationFromPureTipAdvanceBlock
// mirrors disconnecting a tip-advance block that carries no swap transaction
// of its own but whose C8-triggered tick wrote a state transition: the
// swap must return to exactly its pre-tick state, and the scheduler's
// monotonic height gate must roll back so a same/lower-height re-trigger
// after a reorg is not swallowed.
func TestConnector_DisconnectBlock_RevertsL1ObservationFromPureTipAdvanceBlock(t *testing.T) {
	scheduler := &tickingScheduler{}
	connector, swaps, _ := newTestConnector(t, scheduler)

	swap := pendingSwap(t, "bc1qaddr", 50_000)
	swap.RequiredConfirmations = 3
	require.NoError(t, swaps.Insert(context.Background(), swap))

	observedTxid := domain.NewSwapTxIdFromHash(txid(0xaa))
	scheduler.SetPegAdvanceHandler(func(ctx context.Context, height uint32) error {
		s, err := swaps.Get(ctx, swap.Id)
		if err != nil || s == nil {
			return err
		}
		s.UpdateL1Observation(observedTxid, "bc1qsender", 3, nil)
		return swaps.Update(ctx, s)
	})

	block := &Block{Hash: chainHashFixture(0x09), Height: 10, IsMainchainTipAdvance: true}
	require.NoError(t, connector.ConnectBlock(context.Background(), block))

	advanced, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateReadyToClaim, advanced.State.Tag)
	require.Equal(t, observedTxid, advanced.L1Txid)
	require.NotNil(t, advanced.L1ClaimerAddress)

	require.NoError(t, connector.DisconnectBlock(context.Background(), block))

	reverted, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, reverted.State.Tag)
	require.Equal(t, domain.ZeroSwapTxId, reverted.L1Txid)
	require.Nil(t, reverted.L1ClaimerAddress)
	require.Nil(t, reverted.L2ClaimerAddress)
	require.Equal(t, []uint32{9}, scheduler.rollbacks)
}

func chainHashFixture(b byte) domain.BlockHash {
	var h domain.BlockHash
	h[0] = b
	return h
}
