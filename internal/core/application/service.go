package application

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TxBroadcaster is the mempool/wallet collaborator C10 delegates actual
// transaction construction and broadcast to; it is out of core scope
// beyond this narrow contract.
type TxBroadcaster interface {
	BroadcastSwapCreate(ctx context.Context, data *domain.SwapCreateData) (chainHash string, err error)
	BroadcastSwapClaim(ctx context.Context, data *domain.SwapClaimData) (chainHash string, err error)
}

// Service is the C10 external-interfaces surface, exposed
// to the RPC and CLI layers.
type Service interface {
	CreateSwap(ctx context.Context, params CreateSwapParams) (domain.SwapId, string, error)
	ClaimSwap(ctx context.Context, swapId domain.SwapId, l2ClaimerAddress *domain.Address) (string, error)
	UpdateSwapL1Txid(ctx context.Context, swapId domain.SwapId, l1TxidHex string, confirmations uint32, l2ClaimerAddress *domain.Address) error
	GetSwapStatus(ctx context.Context, swapId domain.SwapId) (*domain.Swap, error)
	ListSwaps(ctx context.Context) ([]*domain.Swap, error)
	ListSwapsByRecipient(ctx context.Context, recipient domain.Address) ([]*domain.Swap, error)
	ReconstructSwaps(ctx context.Context) error
	// CleanupOrphanedLocks is supplemented operator op:
	// it unlocks every outpoint locked to a SwapId that no longer resolves.
	CleanupOrphanedLocks(ctx context.Context) (int, error)
	// GetL1Health is supplement: per-chain reachability
	// of the configured L1 RPC clients.
	GetL1Health(ctx context.Context) map[domain.ParentChainType]bool
}

// CreateSwapParams mirrors the create_swap RPC params
type CreateSwapParams struct {
	ParentChain           domain.ParentChainType
	L1RecipientAddress    string
	L1AmountSats          uint64
	L2Recipient           *domain.Address // nil => open offer
	L2AmountSats          uint64
	RequiredConfirmations *uint32
	FeeSats                uint64
	L2Sender              domain.Address
	CreatedAtHeight       uint32
	ExpiresAtHeight       *uint32
}

type service struct {
	swaps       domain.SwapRepository
	locks       domain.LockRepository
	broadcaster TxBroadcaster
	clients     map[domain.ParentChainType]ports.L1RPCClient
	recovery    *Recovery
}

func NewService(
	swaps domain.SwapRepository,
	locks domain.LockRepository,
	broadcaster TxBroadcaster,
	clients map[domain.ParentChainType]ports.L1RPCClient,
	recovery *Recovery,
) Service {
	return &service{
		swaps: swaps, locks: locks,
		broadcaster: broadcaster, clients: clients, recovery: recovery,
	}
}

// CreateSwap implements create_swap: it derives the
// deterministic id, constructs the SwapCreate payload and hands it to the
// broadcaster. The resulting transaction is validated and applied by C6
// once it is included in a block, not here.
func (s *service) CreateSwap(ctx context.Context, p CreateSwapParams) (domain.SwapId, string, error) {
	if p.L2AmountSats == 0 {
		return domain.SwapId{}, "", pkgerrors.InsufficientL2Amount.New("l2_amount_sats must be greater than zero")
	}
	if !p.ParentChain.Valid() {
		return domain.SwapId{}, "", pkgerrors.ChainNotConfigured.New(
			"unknown parent chain",
		).WithMetadata(pkgerrors.ChainMetadata{ParentChain: p.ParentChain.String()})
	}

	l1Amount := domain.Amount(p.L1AmountSats)
	swapId := domain.SwapIdOf(p.L1RecipientAddress, l1Amount, p.L2Sender, p.L2Recipient)

	if existing, err := s.swaps.Get(ctx, swapId); err == nil && existing != nil {
		return domain.SwapId{}, "", pkgerrors.SwapAlreadyExists.New(
			"swap id already exists",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: swapId.String()})
	}

	reqConf := p.ParentChain.DefaultConfirmations()
	if p.RequiredConfirmations != nil {
		reqConf = *p.RequiredConfirmations
	}

	data := &domain.SwapCreateData{
		SwapId:                swapId,
		ParentChain:            p.ParentChain,
		L1TxidBytes:            nil,
		RequiredConfirmations:  reqConf,
		L2Recipient:            p.L2Recipient,
		L2Amount:               p.L2AmountSats,
		L1RecipientAddress:     &p.L1RecipientAddress,
		L1Amount:               &p.L1AmountSats,
		ExpiresAtHeight:        p.ExpiresAtHeight,
	}

	chainHash, err := s.broadcaster.BroadcastSwapCreate(ctx, data)
	if err != nil {
		return domain.SwapId{}, "", fmt.Errorf("broadcast SwapCreate: %w", err)
	}

	log.WithField("swap_id", swapId.String()).WithField("txid", chainHash).Info("submitted SwapCreate")
	return swapId, chainHash, nil
}

// ClaimSwap implements claim_swap.
func (s *service) ClaimSwap(
	ctx context.Context, swapId domain.SwapId, l2ClaimerAddress *domain.Address,
) (string, error) {
	swap, err := s.swaps.Get(ctx, swapId)
	if err != nil || swap == nil {
		return "", pkgerrors.SwapNotFound.New(
			"swap not found",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: swapId.String()})
	}
	if swap.State.Tag != domain.StateReadyToClaim {
		return "", pkgerrors.InvalidStateTransition.New(
			"swap is not ReadyToClaim (state=%s)", swap.State.String(),
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: swapId.String()})
	}

	data := &domain.SwapClaimData{SwapId: swapId, L2ClaimerAddress: l2ClaimerAddress}
	chainHash, err := s.broadcaster.BroadcastSwapClaim(ctx, data)
	if err != nil {
		return "", fmt.Errorf("broadcast SwapClaim: %w", err)
	}

	log.WithField("swap_id", swapId.String()).WithField("txid", chainHash).Info("submitted SwapClaim")
	return chainHash, nil
}

// UpdateSwapL1Txid implements update_swap_l1_txid: an
// operator override subject to the same already-bound-elsewhere check and
// confirmations-nonzero requirement as C7. l2ClaimerAddress, for an open
// offer, binds the L2 address the filler declared alongside this L1 tx; it
// is stored on first submission only.
func (s *service) UpdateSwapL1Txid(
	ctx context.Context, swapId domain.SwapId, l1TxidHex string, confirmations uint32,
	l2ClaimerAddress *domain.Address,
) error {
	if confirmations == 0 {
		return pkgerrors.InvalidTransaction.New("confirmations must be nonzero for a manual override")
	}
	swap, err := s.swaps.Get(ctx, swapId)
	if err != nil || swap == nil {
		return pkgerrors.SwapNotFound.New(
			"swap not found",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: swapId.String()})
	}

	if _, err := hexDecode32(l1TxidHex); err != nil {
		return pkgerrors.InvalidTransaction.New("invalid l1_txid_hex: %s", err)
	}
	txHash, err := chainhash.NewHashFromStr(l1TxidHex)
	if err != nil {
		return pkgerrors.InvalidTransaction.New("invalid l1_txid_hex: %s", err)
	}
	l1Txid := domain.NewSwapTxIdFromHash(*txHash)

	if existing, err := s.swaps.GetByL1Txid(ctx, swap.ParentChain, l1Txid); err == nil &&
		existing != nil && existing.Id != swap.Id {
		return pkgerrors.L1TxAlreadyUsed.New(
			"l1_txid already bound to another swap",
		).WithMetadata(pkgerrors.L1TxMetadata{ParentChain: swap.ParentChain.String(), L1Txid: l1Txid.String()})
	}

	swap.UpdateL1Observation(l1Txid, "", confirmations, l2ClaimerAddress)
	return s.swaps.Update(ctx, swap)
}

func (s *service) GetSwapStatus(ctx context.Context, swapId domain.SwapId) (*domain.Swap, error) {
	swap, err := s.swaps.Get(ctx, swapId)
	if err != nil || swap == nil {
		return nil, pkgerrors.SwapNotFound.New(
			"swap not found",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: swapId.String()})
	}
	return swap, nil
}

func (s *service) ListSwaps(ctx context.Context) ([]*domain.Swap, error) {
	return s.swaps.ListAll(ctx)
}

func (s *service) ListSwapsByRecipient(ctx context.Context, recipient domain.Address) ([]*domain.Swap, error) {
	return s.swaps.ListByRecipient(ctx, recipient)
}

func (s *service) ReconstructSwaps(ctx context.Context) error {
	if s.recovery == nil {
		return pkgerrors.Internal.New("no Recovery component wired")
	}
	return s.recovery.Reconstruct(ctx)
}

// CleanupOrphanedLocks is supplement: it walks every
// locked outpoint and unlocks any whose SwapId no longer resolves to a
// Swap record (e.g. after a partial/aborted reconstruction).
func (s *service) CleanupOrphanedLocks(ctx context.Context) (int, error) {
	locked, err := s.locks.AllLocked(ctx)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for op, swapId := range locked {
		swap, err := s.swaps.Get(ctx, swapId)
		if err != nil || swap == nil {
			log.WithField("outpoint", op.String()).WithField("swap_id", swapId.String()).
				Warn("unlocking orphaned lock")
			pkgerrors.OrphanedLock.New(
				"lock references a swap id with no backing record",
			).WithMetadata(pkgerrors.LockedInputMetadata{
				Outpoint: op.String(), LockedToSwap: swapId.String(),
			}).Log().Warn("orphaned lock detected")
			if err := s.locks.Unlock(ctx, op); err != nil {
				return cleaned, err
			}
			cleaned++
		}
	}
	return cleaned, nil
}

func (s *service) GetL1Health(ctx context.Context) map[domain.ParentChainType]bool {
	health := make(map[domain.ParentChainType]bool, len(s.clients))
	for chain, client := range s.clients {
		health[chain] = client.Healthy(ctx)
	}
	return health
}

func hexDecode32(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	return b, nil
}
