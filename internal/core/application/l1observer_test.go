package application

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	badgerdb "github.com/coinshift-network/coinshiftd/internal/infrastructure/db/badger"
	"github.com/stretchr/testify/require"
)

// fakeL1RPCClient is an in-memory ports.L1RPCClient stand-in for C7 tests;
// no example repo exercises btcd/rpcclient against a live node, so the
// observer's contract is tested against this fake instead (see DESIGN.md).
type fakeL1RPCClient struct {
	candidates []ports.L1Transaction
	byTxid     map[string]*ports.L1Transaction
	healthy    bool
	findErr    error
}

func newFakeL1RPCClient() *fakeL1RPCClient {
	return &fakeL1RPCClient{byTxid: map[string]*ports.L1Transaction{}, healthy: true}
}

func (f *fakeL1RPCClient) FindTransactionsByAddressAndAmount(
	ctx context.Context, addr string, amountSats uint64,
) ([]ports.L1Transaction, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.candidates, nil
}

func (f *fakeL1RPCClient) GetTransaction(ctx context.Context, txid string) (*ports.L1Transaction, error) {
	tx, ok := f.byTxid[txid]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

func (f *fakeL1RPCClient) Healthy(ctx context.Context) bool { return f.healthy }

func newTestObserver(t *testing.T, clients map[domain.ParentChainType]ports.L1RPCClient) (*Observer, domain.SwapRepository) {
	t.Helper()
	swaps, err := badgerdb.NewSwapRepository(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(swaps.Close)
	return NewObserver(swaps, clients), swaps
}

func pendingSwap(t *testing.T, l1Addr string, l1Amount domain.Amount) *domain.Swap {
	t.Helper()
	sender := domain.Address{1, 2, 3}
	id := domain.SwapIdOf(l1Addr, l1Amount, sender, nil)
	return domain.NewSwap(id, domain.BTC, domain.ZeroSwapTxId, nil, nil, 10_000, &l1Addr, &l1Amount, 1, nil)
}

func TestObserver_Tick_DiscoversConfirmedMatch(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	height := uint32(3)
	sender := "bc1qsender"
	blockHash := chainhash.Hash{0x11}.String()
	client.candidates = []ports.L1Transaction{{
		Txid: chainhash.Hash{0x22}.String(), Confirmations: 2,
		BlockHeight: &height, BlockHash: &blockHash, SenderAddress: &sender,
	}}

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.False(t, got.L1Txid.IsZero())
	require.Equal(t, domain.StateWaitingConfirmations, got.State.Tag)
}

func TestObserver_Tick_IgnoresUnconfirmedCandidate(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	client.candidates = []ports.L1Transaction{{
		Txid: chainhash.Hash{0x22}.String(), Confirmations: 0,
	}}

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.True(t, got.L1Txid.IsZero())
}

func TestObserver_Tick_SkipsCandidateBoundToAnotherSwap(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	height := uint32(3)
	candTxid := chainhash.Hash{0x33}
	client.candidates = []ports.L1Transaction{{
		Txid: candTxid.String(), Confirmations: 2, BlockHeight: &height,
	}}

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	other := pendingSwap(t, "bc1qother", 99_999)
	other.L1Txid = domain.NewSwapTxIdFromHash(candTxid)
	other.State = domain.ReadyToClaim()
	require.NoError(t, swaps.Insert(context.Background(), other))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.True(t, got.L1Txid.IsZero(), "candidate already bound to another swap must not be taken")
}

func TestObserver_Tick_RefreshesConfirmationsToReady(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	swap.RequiredConfirmations = 3
	observedTxid := domain.NewSwapTxIdFromHash(chainhash.Hash{0x44})
	swap.L1Txid = observedTxid
	swap.State = domain.WaitingConfirmations(1, 3)
	hash, _ := observedTxid.Hash()
	client.byTxid[hash.String()] = &ports.L1Transaction{Txid: hash.String(), Confirmations: 3}

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateReadyToClaim, got.State.Tag)
}

func TestObserver_Tick_TransactionDisappearedLeavesSwapUntouched(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	observedTxid := domain.NewSwapTxIdFromHash(chainhash.Hash{0x55})
	swap.L1Txid = observedTxid
	swap.State = domain.WaitingConfirmations(1, 3)

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateWaitingConfirmations, got.State.Tag)
}

func TestObserver_Tick_ExpiresSwapPastExpiryHeight(t *testing.T) {
	client := newFakeL1RPCClient()
	swap := pendingSwap(t, "bc1qaddr", 50_000)
	expires := uint32(5)
	swap.ExpiresAtHeight = &expires

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{domain.BTC: client})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StateCancelled, got.State.Tag)
}

func TestObserver_Tick_NoClientConfiguredSkipsSwap(t *testing.T) {
	swap := pendingSwap(t, "bc1qaddr", 50_000)

	observer, swaps := newTestObserver(t, map[domain.ParentChainType]ports.L1RPCClient{})
	require.NoError(t, swaps.Insert(context.Background(), swap))

	require.NoError(t, observer.Tick(context.Background(), 10))

	got, err := swaps.Get(context.Background(), swap.Id)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, got.State.Tag)
}
