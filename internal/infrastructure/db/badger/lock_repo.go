package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// lockDTO is the value half of the locked_swap_outputs store:
// OutPoint (key, via its .String()) -> SwapId. Outpoint is
// carried as a field too, not just the badgerhold key, so it comes back
// directly from Find/TxFind without a second key-only lookup.
type lockDTO struct {
	Outpoint string
	SwapId   string `badgerhold:"index"`
}

type lockRepository struct {
	store *badgerhold.Store
}

func NewLockRepository(config ...interface{}) (domain.LockRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	store, err := createDB(subdir(baseDir, locksStoreDir), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock store: %w", err)
	}
	return &lockRepository{store: store}, nil
}

// Lock implements lock(outpoint, swap_id): insert, failing
// if the outpoint is already locked.
func (r *lockRepository) Lock(ctx context.Context, outpoint domain.OutPoint, swapId domain.SwapId) error {
	dto := lockDTO{Outpoint: outpoint.String(), SwapId: swapId.String()}
	var err error
	if tx := txFromCtx(ctx); tx != nil {
		err = r.store.TxInsert(tx, outpoint.String(), dto)
	} else {
		err = r.store.Insert(outpoint.String(), dto)
	}
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return fmt.Errorf("outpoint %s is already locked", outpoint.String())
	}
	return err
}

// Unlock implements unlock(outpoint): remove, failing if not
// present.
func (r *lockRepository) Unlock(ctx context.Context, outpoint domain.OutPoint) error {
	var err error
	if tx := txFromCtx(ctx); tx != nil {
		err = r.store.TxDelete(tx, outpoint.String(), &lockDTO{})
	} else {
		err = r.store.Delete(outpoint.String(), &lockDTO{})
	}
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("outpoint %s is not locked", outpoint.String())
	}
	return err
}

// LockedTo implements locked_to(outpoint) -> Option<SwapId>.
func (r *lockRepository) LockedTo(ctx context.Context, outpoint domain.OutPoint) (domain.SwapId, bool, error) {
	var dto lockDTO
	var err error
	if tx := txFromCtx(ctx); tx != nil {
		err = r.store.TxGet(tx, outpoint.String(), &dto)
	} else {
		err = r.store.Get(outpoint.String(), &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.SwapId{}, false, nil
		}
		return domain.SwapId{}, false, err
	}
	id, ok := domain.SwapIdFromHex(dto.SwapId)
	if !ok {
		return domain.SwapId{}, false, fmt.Errorf("lock store holds malformed swap id for %s", outpoint.String())
	}
	return id, true, nil
}

// LockedOutpointsFor lists every outpoint currently locked to swapId. The
// lock store's key is the outpoint's string encoding, which round-trips
// through domain.OutPoint.FromString.
func (r *lockRepository) LockedOutpointsFor(ctx context.Context, swapId domain.SwapId) ([]domain.OutPoint, error) {
	all, err := r.allLockedKeyed(ctx, badgerhold.Where("SwapId").Eq(swapId.String()))
	if err != nil {
		return nil, err
	}
	outpoints := make([]domain.OutPoint, 0, len(all))
	for op := range all {
		outpoints = append(outpoints, op)
	}
	return outpoints, nil
}

// AllLocked returns every (outpoint, swapId) pair, used by the
// cleanup_orphaned_locks supplement.
func (r *lockRepository) AllLocked(ctx context.Context) (map[domain.OutPoint]domain.SwapId, error) {
	return r.allLockedKeyed(ctx, &badgerhold.Query{})
}

func (r *lockRepository) allLockedKeyed(
	ctx context.Context, query *badgerhold.Query,
) (map[domain.OutPoint]domain.SwapId, error) {
	dtos := make([]lockDTO, 0)
	var err error
	if tx := txFromCtx(ctx); tx != nil {
		err = r.store.TxFind(tx, &dtos, query)
	} else {
		err = r.store.Find(&dtos, query)
	}
	if err != nil {
		return nil, err
	}

	result := make(map[domain.OutPoint]domain.SwapId, len(dtos))
	for _, dto := range dtos {
		var op domain.OutPoint
		if err := op.FromString(dto.Outpoint); err != nil {
			continue
		}
		id, ok := domain.SwapIdFromHex(dto.SwapId)
		if !ok {
			continue
		}
		result[op] = id
	}
	return result, nil
}

func (r *lockRepository) Close() {
	r.store.Close()
}
