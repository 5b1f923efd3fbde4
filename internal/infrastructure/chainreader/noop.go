// Package chainreader provides the default application.ChainReader: full
// block replay from genesis belongs to the sidechain's own block storage,
// which is out of core scope. This implementation returns no
// blocks, so reconstruct_swaps is wired and callable standalone but a real
// deployment must supply its own ChainReader backed by the sidechain's
// block index before recovery.Reconstruct can do anything useful.
package chainreader

import (
	"context"
	"fmt"

	"github.com/coinshift-network/coinshiftd/internal/core/application"
	log "github.com/sirupsen/logrus"
)

type unconfigured struct{}

func NewUnconfigured() application.ChainReader {
	return &unconfigured{}
}

func (u *unconfigured) BlocksFromGenesis(ctx context.Context) ([]*application.Block, error) {
	log.Warn("no sidechain block reader wired, reconstruct_swaps would replay zero blocks")
	return nil, fmt.Errorf("no sidechain block reader configured")
}
