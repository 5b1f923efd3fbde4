package badgerdb

import (
	"context"
	"testing"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newTestLockRepository(t *testing.T) domain.LockRepository {
	t.Helper()
	repo, err := NewLockRepository(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func testOutpoint(b byte, vout uint32) domain.OutPoint {
	var hash [32]byte
	hash[0] = b
	var op domain.OutPoint
	copy(op.Txid[:], hash[:])
	op.Vout = vout
	return op
}

func TestLockRepository_LockUnlock(t *testing.T) {
	repo := newTestLockRepository(t)
	ctx := context.Background()
	op := testOutpoint(1, 0)
	swapId := domain.SwapId{1, 2, 3}

	require.NoError(t, repo.Lock(ctx, op, swapId))

	lockedTo, locked, err := repo.LockedTo(ctx, op)
	require.NoError(t, err)
	require.True(t, locked)
	require.Equal(t, swapId, lockedTo)

	require.NoError(t, repo.Unlock(ctx, op))

	_, locked, err = repo.LockedTo(ctx, op)
	require.NoError(t, err)
	require.False(t, locked)
}

func TestLockRepository_Lock_RejectsDoubleLock(t *testing.T) {
	repo := newTestLockRepository(t)
	ctx := context.Background()
	op := testOutpoint(2, 0)

	require.NoError(t, repo.Lock(ctx, op, domain.SwapId{1}))
	require.Error(t, repo.Lock(ctx, op, domain.SwapId{2}))
}

func TestLockRepository_Unlock_RejectsWhenNotLocked(t *testing.T) {
	repo := newTestLockRepository(t)
	require.Error(t, repo.Unlock(context.Background(), testOutpoint(3, 0)))
}

func TestLockRepository_LockedTo_UnlockedOutpoint(t *testing.T) {
	repo := newTestLockRepository(t)
	_, locked, err := repo.LockedTo(context.Background(), testOutpoint(4, 0))
	require.NoError(t, err)
	require.False(t, locked)
}

func TestLockRepository_LockedOutpointsFor(t *testing.T) {
	repo := newTestLockRepository(t)
	ctx := context.Background()
	swapId := domain.SwapId{7, 7, 7}
	other := domain.SwapId{8, 8, 8}

	op1 := testOutpoint(5, 0)
	op2 := testOutpoint(5, 1)
	op3 := testOutpoint(6, 0)
	require.NoError(t, repo.Lock(ctx, op1, swapId))
	require.NoError(t, repo.Lock(ctx, op2, swapId))
	require.NoError(t, repo.Lock(ctx, op3, other))

	matches, err := repo.LockedOutpointsFor(ctx, swapId)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.ElementsMatch(t, []domain.OutPoint{op1, op2}, matches)
}

func TestLockRepository_AllLocked(t *testing.T) {
	repo := newTestLockRepository(t)
	ctx := context.Background()
	op1 := testOutpoint(9, 0)
	op2 := testOutpoint(10, 0)
	swapId1 := domain.SwapId{1}
	swapId2 := domain.SwapId{2}
	require.NoError(t, repo.Lock(ctx, op1, swapId1))
	require.NoError(t, repo.Lock(ctx, op2, swapId2))

	all, err := repo.AllLocked(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, swapId1, all[op1])
	require.Equal(t, swapId2, all[op2])
}
