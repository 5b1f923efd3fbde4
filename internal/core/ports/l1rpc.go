package ports

import "context"

// L1Transaction is the subset of a parent-chain transaction C7 needs.
type L1Transaction struct {
	Txid          string
	Confirmations uint32
	BlockHeight   *uint32
	BlockHash     *string
	SenderAddress *string
}

// L1RPCClient is the two-operation contract C7 consumes from the L1 RPC
// adapter. One client is configured per parent chain.
type L1RPCClient interface {
	// FindTransactionsByAddressAndAmount returns transactions paying
	// exactly amountSats to addr.
	FindTransactionsByAddressAndAmount(
		ctx context.Context, addr string, amountSats uint64,
	) ([]L1Transaction, error)
	// GetTransaction refetches a previously observed transaction by id.
	GetTransaction(ctx context.Context, txid string) (*L1Transaction, error)
	// Healthy reports whether the underlying RPC endpoint is currently
	// reachable.
	Healthy(ctx context.Context) bool
}
