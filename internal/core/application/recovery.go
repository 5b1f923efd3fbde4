package application

import (
	"context"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ChainReader is the replay source C9 needs: every connected block from
// genesis to the current tip, in height order. The sidechain's own block
// storage (out of core scope) implements this.
type ChainReader interface {
	BlocksFromGenesis(ctx context.Context) ([]*Block, error)
}

// Recovery is C9: detects corrupted/missing swap records
// and reconstructs the swap database by replaying SwapCreate/SwapClaim
// from genesis.
type Recovery struct {
	swaps     domain.SwapRepository
	locks     domain.LockRepository
	chain     ChainReader
	connector *Connector
}

func NewRecovery(swaps domain.SwapRepository, locks domain.LockRepository, chain ChainReader, connector *Connector) *Recovery {
	return &Recovery{swaps: swaps, locks: locks, chain: chain, connector: connector}
}

// ScanForCorruption implements step 1: attempt to
// deserialize every stored Swap, returning the ids of any that fail.
func (r *Recovery) ScanForCorruption(ctx context.Context) ([]domain.SwapId, error) {
	return r.swaps.ScanCorrupted(ctx)
}

// Reconstruct implements steps 2: clear every swap store
// and replay the full chain from genesis, re-applying every SwapCreate and
// SwapClaim per C6's connect rules. It intentionally does not invoke C7 —
// L1-observation fields land at NewSwap's Pending/Zero defaults and are
// refreshed at the next peg-driven scheduler tick.
func (r *Recovery) Reconstruct(ctx context.Context) error {
	log.Warn("reconstructing swap database from genesis")

	if err := r.clearAllStores(ctx); err != nil {
		return err
	}

	blocks, err := r.chain.BlocksFromGenesis(ctx)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if err := r.connector.ConnectBlock(ctx, b); err != nil {
			return err
		}
	}

	log.WithField("blocks_replayed", len(blocks)).Info("swap database reconstruction complete")
	return nil
}

func (r *Recovery) clearAllStores(ctx context.Context) error {
	all, err := r.swaps.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, s := range all {
		if err := r.swaps.Delete(ctx, s.Id); err != nil {
			return err
		}
	}

	locked, err := r.locks.AllLocked(ctx)
	if err != nil {
		return err
	}
	for op := range locked {
		if err := r.locks.Unlock(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

// ReconstructIfCorrupted runs ScanForCorruption and, if anything failed to
// deserialize, deletes the offending keys and triggers a full Reconstruct.
func (r *Recovery) ReconstructIfCorrupted(ctx context.Context) error {
	corrupted, err := r.ScanForCorruption(ctx)
	if err != nil {
		return err
	}
	if len(corrupted) == 0 {
		return nil
	}

	for _, id := range corrupted {
		pkgerrors.SerializationCorruption.New(
			"swap value failed to deserialize",
		).WithMetadata(pkgerrors.SwapIdMetadata{SwapId: id.String()}).Log().Error("dropping corrupted swap record")
		_ = r.swaps.Delete(ctx, id)
	}
	return r.Reconstruct(ctx)
}
