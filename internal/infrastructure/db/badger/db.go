// Package badgerdb implements the C3/C4 stores on top of a
// single badgerhold-managed ordered-KV environment, following a
// createDB/*Repository shape.
package badgerdb

import (
	"context"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const (
	swapsStoreDir = "swaps"
	locksStoreDir = "locked_swap_outputs"
)

// ctxTxKey is the context key callers use to thread a *badger.Txn through
// a single write transaction spanning multiple repository calls.
type ctxTxKeyType struct{}

var ctxTxKey = ctxTxKeyType{}

// WithTx returns a context carrying tx, so that repository calls made with
// it participate in the same write transaction.
func WithTx(ctx context.Context, tx *badger.Txn) context.Context {
	return context.WithValue(ctx, ctxTxKey, tx)
}

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func subdir(baseDir, name string) string {
	if len(baseDir) == 0 {
		return ""
	}
	return filepath.Join(baseDir, name)
}
