package domain

import "context"

// SwapRepository is the C4 swap store: the primary keyed
// store plus its secondary indexes, maintained atomically.
type SwapRepository interface {
	// Insert adds a brand-new Swap. Fails with ErrAlreadyExists if Id is
	// already present.
	Insert(ctx context.Context, swap *Swap) error
	// Update overwrites an existing Swap, erasing and re-inserting any
	// index keys whose underlying field changed.
	Update(ctx context.Context, swap *Swap) error
	// Delete removes a Swap and all of its index entries. Used by
	// SwapCreate disconnect.
	Delete(ctx context.Context, id SwapId) error
	Get(ctx context.Context, id SwapId) (*Swap, error)
	GetByL1Txid(ctx context.Context, chain ParentChainType, txid SwapTxId) (*Swap, error)
	ListAll(ctx context.Context) ([]*Swap, error)
	ListByState(ctx context.Context, tags ...SwapStateTag) ([]*Swap, error)
	ListByRecipient(ctx context.Context, recipient Address) ([]*Swap, error)
	// ScanCorrupted implements recovery step 1: it walks the primary
	// store's raw values and returns the ids of every key whose value
	// failed to deserialize. Unlike ListAll, it never fails the whole scan
	// on one bad key.
	ScanCorrupted(ctx context.Context) ([]SwapId, error)
	Close()
}
