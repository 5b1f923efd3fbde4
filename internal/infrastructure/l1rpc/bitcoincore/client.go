// Package bitcoincore adapts a Bitcoin Core-compatible JSON-RPC endpoint to
// the ports.L1RPCClient contract C7 consumes, in the style of the pack's
// rpcclient-based chain watchers: a thin rpcclient.Client wrapper, a
// ConnConfig builder, and verbose-result mapping into the domain-agnostic
// port types.
package bitcoincore

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Config mirrors the fields the pack's chain watchers pull out of their own
// per-chain bitcoind config structs.
type Config struct {
	Host       string
	User       string
	Pass       string
	DisableTLS bool
	Params     *chaincfg.Params
}

func connConfig(cfg Config) rpcclient.ConnConfig {
	return rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}
}

type client struct {
	rpc    *rpcclient.Client
	params *chaincfg.Params
}

// New dials a Bitcoin Core-compatible node. The returned client has no
// notification subscription: C7 polls it on its own schedule, it does
// not push.
func New(cfg Config) (ports.L1RPCClient, error) {
	cc := connConfig(cfg)
	rpc, err := rpcclient.New(&cc, nil)
	if err != nil {
		return nil, fmt.Errorf("dial L1 RPC endpoint %s: %w", cfg.Host, err)
	}
	return &client{rpc: rpc, params: cfg.Params}, nil
}

// FindTransactionsByAddressAndAmount matches candidate L1 transactions via
// listunspent (the address must be watched/imported on the node),
// filtering candidates down to outputs paying exactly
// amountSats to addr, then refetching each via getrawtransaction(verbose)
// for the confirmations/block-hash fields listunspent does not carry
// precisely enough (0 min confirmations is passed so unconfirmed
// candidates are still surfaced, per the confirmations==0 case of step 2b).
func (c *client) FindTransactionsByAddressAndAmount(
	ctx context.Context, addr string, amountSats uint64,
) ([]ports.L1Transaction, error) {
	decoded, err := btcutil.DecodeAddress(addr, c.params)
	if err != nil {
		return nil, fmt.Errorf("decode L1 address %s: %w", addr, err)
	}

	unspent, err := c.rpc.ListUnspentMinMaxAddresses(0, 9999999, []btcutil.Address{decoded})
	if err != nil {
		return nil, fmt.Errorf("list unspent for %s: %w", addr, err)
	}

	// dedup by outpoint, not just txid: listunspent can return more than one
	// matching-amount output of the same transaction, and each must only be
	// refetched/considered once.
	seen := make(map[wire.OutPoint]struct{})
	var matches []ports.L1Transaction
	for _, u := range unspent {
		sats, err := btcutil.NewAmount(u.Amount)
		if err != nil || uint64(sats) != amountSats {
			continue
		}
		txHash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			log.WithField("txid", u.TxID).WithError(err).Warn("L1 node returned malformed txid")
			continue
		}
		op := wire.OutPoint{Hash: *txHash, Index: u.Vout}
		if _, dup := seen[op]; dup {
			continue
		}
		seen[op] = struct{}{}

		verbose, err := c.rpc.GetRawTransactionVerbose(txHash)
		if err != nil {
			log.WithField("txid", u.TxID).WithError(err).Warn("failed to refetch candidate L1 transaction")
			continue
		}
		matches = append(matches, c.toL1Transaction(verbose))
	}
	return matches, nil
}

// GetTransaction implements the refresh path: refetch a txid already bound
// to a swap and report its current confirmation/block state.
func (c *client) GetTransaction(ctx context.Context, txid string) (*ports.L1Transaction, error) {
	txHash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid L1 txid %s: %w", txid, err)
	}

	verbose, err := c.rpc.GetRawTransactionVerbose(txHash)
	if err != nil {
		// the node has no knowledge of this txid at all: a reorg dropped it
		// with no replacement, which is l1observer.go's "disappeared" case.
		return nil, nil
	}
	tx := c.toL1Transaction(verbose)
	return &tx, nil
}

func (c *client) Healthy(ctx context.Context) bool {
	if _, err := c.rpc.GetBlockCount(); err != nil {
		log.WithError(err).Warn("L1 RPC health check failed")
		return false
	}
	return true
}

// toL1Transaction also resolves the confirming block's height, which the
// verbose transaction result itself does not carry, via one extra
// GetBlockVerbose round trip.
func (c *client) toL1Transaction(tx *btcjson.TxRawResult) ports.L1Transaction {
	out := ports.L1Transaction{
		Txid:          tx.Txid,
		Confirmations: uint32(tx.Confirmations),
	}
	if tx.BlockHash == "" {
		return out
	}
	bh := tx.BlockHash
	out.BlockHash = &bh

	blockHash, err := chainhash.NewHashFromStr(tx.BlockHash)
	if err != nil {
		return out
	}
	block, err := c.rpc.GetBlockVerbose(blockHash)
	if err != nil {
		log.WithField("block_hash", tx.BlockHash).WithError(err).Warn("failed to resolve confirming block height")
		return out
	}
	height := uint32(block.Height)
	out.BlockHeight = &height
	return out
}
