package domain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// BlockHash identifies a sidechain block.
type BlockHash = chainhash.Hash
