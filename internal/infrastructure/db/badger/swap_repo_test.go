package badgerdb

import (
	"context"
	"testing"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newTestSwapRepository(t *testing.T) domain.SwapRepository {
	t.Helper()
	repo, err := NewSwapRepository(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

// testSwap builds a distinct open-offer Swap per l2Amount: l2Amount also
// becomes the L1 amount, which is hashed into the SwapId, so two calls with
// different amounts never collide on insert.
func testSwap(t *testing.T, l2Amount domain.Amount) *domain.Swap {
	t.Helper()
	sender := domain.Address{1, 2, 3}
	l1Amount := l2Amount
	l1Addr := "bc1qexampleaddress"
	id := domain.SwapIdOf(l1Addr, l1Amount, sender, nil)
	return domain.NewSwap(id, domain.BTC, domain.ZeroSwapTxId, nil, nil, l2Amount, &l1Addr, &l1Amount, 10, nil)
}

func TestSwapRepository_InsertGetDelete(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()
	swap := testSwap(t, 10_000)

	require.NoError(t, repo.Insert(ctx, swap))

	got, err := repo.Get(ctx, swap.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, swap.Id, got.Id)
	require.Equal(t, swap.L2Amount, got.L2Amount)

	require.NoError(t, repo.Delete(ctx, swap.Id))
	got, err = repo.Get(ctx, swap.Id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSwapRepository_Delete_NotFoundIsNotAnError(t *testing.T) {
	repo := newTestSwapRepository(t)
	require.NoError(t, repo.Delete(context.Background(), domain.SwapId{1, 2, 3}))
}

func TestSwapRepository_Get_MissingReturnsNilNil(t *testing.T) {
	repo := newTestSwapRepository(t)
	got, err := repo.Get(context.Background(), domain.SwapId{9, 9, 9})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSwapRepository_GetByL1Txid(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()
	swap := testSwap(t, 10_000)

	var hash [32]byte
	hash[0] = 0x42
	txid, err := domain.SwapTxIdFromBytes(hash[:])
	require.NoError(t, err)
	swap.UpdateL1Observation(txid, "bc1qclaimer", 0, nil)

	require.NoError(t, repo.Insert(ctx, swap))

	got, err := repo.GetByL1Txid(ctx, domain.BTC, txid)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, swap.Id, got.Id)

	// a different parent chain must not match even with the same txid bytes.
	got, err = repo.GetByL1Txid(ctx, domain.LTC, txid)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSwapRepository_GetByL1Txid_ZeroNeverMatches(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()
	swap := testSwap(t, 10_000)
	require.NoError(t, repo.Insert(ctx, swap))

	got, err := repo.GetByL1Txid(ctx, domain.BTC, domain.ZeroSwapTxId)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSwapRepository_ListByState(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()

	pending := testSwap(t, 10_000)
	require.NoError(t, repo.Insert(ctx, pending))

	ready := testSwap(t, 20_000)
	ready.State = domain.ReadyToClaim()
	require.NoError(t, repo.Insert(ctx, ready))

	pendingOnly, err := repo.ListByState(ctx, domain.StatePending)
	require.NoError(t, err)
	require.Len(t, pendingOnly, 1)
	require.Equal(t, pending.Id, pendingOnly[0].Id)

	both, err := repo.ListByState(ctx, domain.StatePending, domain.StateReadyToClaim)
	require.NoError(t, err)
	require.Len(t, both, 2)
}

func TestSwapRepository_ListByRecipient(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()

	recipient := domain.Address{4, 5, 6}
	sender := domain.Address{1, 2, 3}
	l1Amount := domain.Amount(50_000)
	l1Addr := "bc1qexampleaddress"
	id := domain.SwapIdOf(l1Addr, l1Amount, sender, &recipient)
	bound := domain.NewSwap(id, domain.BTC, domain.ZeroSwapTxId, nil, &recipient, 10_000, &l1Addr, &l1Amount, 10, nil)
	require.NoError(t, repo.Insert(ctx, bound))

	open := testSwap(t, 5_000)
	require.NoError(t, repo.Insert(ctx, open))

	matches, err := repo.ListByRecipient(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, bound.Id, matches[0].Id)
}

func TestSwapRepository_Update_OverwritesState(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()
	swap := testSwap(t, 10_000)
	require.NoError(t, repo.Insert(ctx, swap))

	swap.MarkCompleted()
	require.NoError(t, repo.Update(ctx, swap))

	got, err := repo.Get(ctx, swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, got.State.Tag)
}

func TestSwapRepository_ScanCorrupted_CleanStoreReportsNothing(t *testing.T) {
	repo := newTestSwapRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, testSwap(t, 10_000)))

	corrupted, err := repo.ScanCorrupted(ctx)
	require.NoError(t, err)
	require.Empty(t, corrupted)
}
