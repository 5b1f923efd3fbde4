package ports

import "github.com/coinshift-network/coinshiftd/internal/core/domain"

// RepoManager bundles the swap and lock stores: one interface, one Close,
// one backend per store. Only a badger backend is wired, but the shape
// is kept so a second backend is additive.
type RepoManager interface {
	Swaps() domain.SwapRepository
	Locks() domain.LockRepository
	Close()
}
