// Package db wires the pluggable-backend store factories into a single
// ports.RepoManager, using a registry-of-constructors shape. Only
// the badger backend is implemented; the map stays so a
// second backend is additive rather than a rewrite.
package db

import (
	"fmt"

	"github.com/coinshift-network/coinshiftd/internal/core/domain"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	badgerdb "github.com/coinshift-network/coinshiftd/internal/infrastructure/db/badger"
)

var (
	swapStoreTypes = map[string]func(...interface{}) (domain.SwapRepository, error){
		"badger": badgerdb.NewSwapRepository,
	}
	lockStoreTypes = map[string]func(...interface{}) (domain.LockRepository, error){
		"badger": badgerdb.NewLockRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	swaps domain.SwapRepository
	locks domain.LockRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	swapFactory, ok := swapStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("swap store type not supported: %s", config.DataStoreType)
	}
	lockFactory, ok := lockStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("lock store type not supported: %s", config.DataStoreType)
	}

	swaps, err := swapFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap store: %w", err)
	}
	locks, err := lockFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock store: %w", err)
	}

	return &service{swaps: swaps, locks: locks}, nil
}

func (s *service) Swaps() domain.SwapRepository {
	return s.swaps
}

func (s *service) Locks() domain.LockRepository {
	return s.locks
}

func (s *service) Close() {
	s.swaps.Close()
	s.locks.Close()
}
